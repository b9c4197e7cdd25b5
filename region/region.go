// Package region expands a location selector into the administrative names
// it covers. Lookups are pure: the dataset is loaded once and never changes.
package region

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"broadcast/models"
)

//go:embed data/iebc.json
var bundled embed.FS

type Ward struct {
	Name string `json:"name"`
}

type Constituency struct {
	Name  string `json:"name"`
	Wards []Ward `json:"wards"`
}

type County struct {
	Name           string         `json:"name"`
	Constituencies []Constituency `json:"constituencies"`
}

// Dataset is the country → county → constituency → ward hierarchy.
type Dataset struct {
	Counties []County `json:"counties"`
}

// Resolver answers feed-scope queries against a Dataset.
type Resolver struct {
	data Dataset
	all  []string
}

// New builds a resolver over d.
func New(d Dataset) *Resolver {
	r := &Resolver{data: d}
	r.all = r.everything()
	return r
}

// Bundled returns a resolver over the dataset compiled into the binary. It
// carries every county and constituency; ward lists exist for a subset of
// counties only, so deployments needing ward-level feeds everywhere should
// point REGION_DATASET_PATH at the full IEBC file.
func Bundled() (*Resolver, error) {
	raw, err := bundled.ReadFile("data/iebc.json")
	if err != nil {
		return nil, fmt.Errorf("read bundled dataset: %w", err)
	}
	return Parse(raw)
}

// Load reads a dataset file from disk. An empty path selects the bundled one.
func Load(path string) (*Resolver, error) {
	if path == "" {
		return Bundled()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Resolver, error) {
	var d Dataset
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if len(d.Counties) == 0 {
		return nil, fmt.Errorf("parse dataset: no counties")
	}
	return New(d), nil
}

// Related returns every location name a post must carry in levelValue to fall
// inside the given scope. Unknown names and unknown level types yield an empty,
// non-nil set.
func (r *Resolver) Related(levelType, levelValue string) []string {
	switch levelType {
	case models.LevelHome:
		out := make([]string, len(r.all))
		copy(out, r.all)
		return out
	case models.LevelCounty:
		for _, c := range r.data.Counties {
			if c.Name == levelValue {
				return dedupe(countyNames(c))
			}
		}
	case models.LevelConstituency:
		for _, c := range r.data.Counties {
			for _, cs := range c.Constituencies {
				if cs.Name == levelValue {
					return dedupe(constituencyNames(cs))
				}
			}
		}
	case models.LevelWard:
		return []string{levelValue}
	}
	return []string{}
}

// Coverage counts the dataset's entries per level.
type Coverage struct {
	Counties       int
	Constituencies int
	Wards          int
	// CountiesWithoutWards names counties whose constituencies list no wards.
	CountiesWithoutWards []string
}

func (r *Resolver) Coverage() Coverage {
	var cov Coverage
	for _, c := range r.data.Counties {
		cov.Counties++
		wards := 0
		for _, cs := range c.Constituencies {
			cov.Constituencies++
			wards += len(cs.Wards)
		}
		if wards == 0 {
			cov.CountiesWithoutWards = append(cov.CountiesWithoutWards, c.Name)
		}
		cov.Wards += wards
	}
	return cov
}

// Counties lists county names in dataset order.
func (r *Resolver) Counties() []string {
	out := make([]string, 0, len(r.data.Counties))
	for _, c := range r.data.Counties {
		out = append(out, c.Name)
	}
	return out
}

func (r *Resolver) everything() []string {
	var counties, constituencies, wards []string
	for _, c := range r.data.Counties {
		counties = append(counties, c.Name)
		for _, cs := range c.Constituencies {
			constituencies = append(constituencies, cs.Name)
			for _, w := range cs.Wards {
				wards = append(wards, w.Name)
			}
		}
	}
	all := append(counties, constituencies...)
	return dedupe(append(all, wards...))
}

func countyNames(c County) []string {
	out := []string{c.Name}
	for _, cs := range c.Constituencies {
		out = append(out, cs.Name)
	}
	for _, cs := range c.Constituencies {
		for _, w := range cs.Wards {
			out = append(out, w.Name)
		}
	}
	return out
}

func constituencyNames(cs Constituency) []string {
	out := []string{cs.Name}
	for _, w := range cs.Wards {
		out = append(out, w.Name)
	}
	return out
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
