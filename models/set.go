package models

// toggleMember flips id's membership in set. It returns the new set and
// whether id is present afterwards.
func toggleMember(set []string, id string) ([]string, bool) {
	for i, v := range set {
		if v == id {
			out := make([]string, 0, len(set)-1)
			out = append(out, set[:i]...)
			return append(out, set[i+1:]...), false
		}
	}
	return append(set, id), true
}

func hasMember(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

// addMember appends id unless already present.
func addMember(set []string, id string) []string {
	if hasMember(set, id) {
		return set
	}
	return append(set, id)
}

// removeMember drops every occurrence of id.
func removeMember(set []string, id string) []string {
	out := make([]string, 0, len(set))
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
