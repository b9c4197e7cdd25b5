// Package cfai calls Cloudflare Workers AI text generation models.
package cfai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cloudflare/cloudflare-go/v4"
	"github.com/cloudflare/cloudflare-go/v4/ai"
	"github.com/cloudflare/cloudflare-go/v4/option"
	"github.com/cloudflare/cloudflare-go/v4/shared"
	"github.com/sony/gobreaker"
)

const (
	DefaultBaseURL = "https://api.cloudflare.com/client/v4"
	DefaultModel   = "@cf/meta/llama-3.1-8b-instruct"
)

var ErrNotConfigured = errors.New("cloudflare ai credentials not configured")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Config struct {
	AccountID  string
	APIToken   string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

type Client struct {
	cfg     Config
	api     *cloudflare.Client
	breaker *gobreaker.CircuitBreaker
}

func New(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	// Retries are left to the breaker.
	api := cloudflare.NewClient(
		option.WithAPIToken(cfg.APIToken),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(hc),
		option.WithMaxRetries(0),
	)
	// Open after five straight failures; half-open again after 30s.
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "cloudflare-ai",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Client{cfg: cfg, api: api, breaker: breaker}
}

// Run sends the conversation to the model and returns its text response,
// which may be empty.
func (c *Client) Run(ctx context.Context, messages []Message) (string, error) {
	if c.cfg.AccountID == "" || c.cfg.APIToken == "" {
		return "", ErrNotConfigured
	}
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.run(ctx, messages)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (c *Client) run(ctx context.Context, messages []Message) (string, error) {
	msgs := make([]ai.AIRunParamsBodyTextGenerationMessage, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, ai.AIRunParamsBodyTextGenerationMessage{
			Role:    cloudflare.F(m.Role),
			Content: cloudflare.F(m.Content),
		})
	}

	res, err := c.api.AI.Run(ctx, c.cfg.Model, ai.AIRunParams{
		AccountID: cloudflare.F(c.cfg.AccountID),
		Body: ai.AIRunParamsBodyTextGeneration{
			Messages: cloudflare.F(msgs),
		},
	})
	if err != nil {
		var apiErr *cloudflare.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("cloudflare error %d", apiErr.StatusCode)
		}
		return "", err
	}
	if res == nil || *res == nil {
		return "", nil
	}

	switch out := (*res).(type) {
	case ai.AIRunResponseObject:
		return out.Response, nil
	case shared.UnionString:
		return string(out), nil
	default:
		return "", fmt.Errorf("cloudflare: unexpected %T result for text generation", out)
	}
}
