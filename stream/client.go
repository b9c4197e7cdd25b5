// Package stream talks to the Stream chat and video APIs with server-side
// credentials.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	streamchat "github.com/GetStream/stream-chat-go/v7"
)

const DefaultVideoURL = "https://video.stream-io-api.com/video/v1"

// ErrNotConfigured is returned when the credentials a call needs are empty.
var ErrNotConfigured = errors.New("stream credentials not configured")

// APIError is a non-2xx answer from the video API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stream: status %d: %s", e.Status, e.Body)
}

type Config struct {
	APIKey      string
	APISecret   string
	VideoKey    string
	VideoSecret string
	// ChatURL overrides the chat SDK's base URL.
	ChatURL    string
	VideoURL   string
	HTTPClient *http.Client
}

type Client struct {
	cfg  Config
	chat *streamchat.Client
	http *http.Client
}

// New builds the client. Chat calls stay unavailable until both APIKey and
// APISecret are set.
func New(cfg Config) (*Client, error) {
	if cfg.VideoURL == "" {
		cfg.VideoURL = DefaultVideoURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	c := &Client{cfg: cfg, http: hc}

	if cfg.APIKey == "" || cfg.APISecret == "" {
		return c, nil
	}
	chat, err := streamchat.NewClient(cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("stream chat client: %w", err)
	}
	chat.HTTP = hc
	if cfg.ChatURL != "" {
		chat.BaseURL = cfg.ChatURL
	}
	c.chat = chat
	return c, nil
}

// User is the Stream user record.
type User struct {
	ID    string
	Name  string
	Image string
	Role  string
}

// CreateToken mints a non-expiring chat user token.
func (c *Client) CreateToken(userID string) (string, error) {
	if c.chat == nil {
		return "", ErrNotConfigured
	}
	return c.chat.CreateToken(userID, time.Time{})
}

func (c *Client) UpsertUsers(ctx context.Context, users ...User) error {
	if c.chat == nil {
		return ErrNotConfigured
	}
	batch := make([]*streamchat.User, 0, len(users))
	for _, u := range users {
		batch = append(batch, &streamchat.User{ID: u.ID, Name: u.Name, Image: u.Image, Role: u.Role})
	}
	_, err := c.chat.UpsertUsers(ctx, batch...)
	return err
}

// SendMessage ensures the channel exists, created by userID, and posts text
// to it as userID.
func (c *Client) SendMessage(ctx context.Context, channelType, channelID, userID, text string) error {
	if c.chat == nil {
		return ErrNotConfigured
	}
	created, err := c.chat.CreateChannel(ctx, channelType, channelID, userID, nil)
	if err != nil {
		return fmt.Errorf("create channel: %w", err)
	}
	ch := created.Channel
	if ch == nil {
		ch = c.chat.Channel(channelType, channelID)
	}
	if _, err := ch.SendMessage(ctx, &streamchat.Message{Text: text}, userID); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// CreateVideoToken asks the video API for a user token.
func (c *Client) CreateVideoToken(ctx context.Context, userID string) (string, error) {
	if c.cfg.VideoKey == "" || c.cfg.VideoSecret == "" {
		return "", ErrNotConfigured
	}
	body, err := json.Marshal(map[string]string{"user_id": userID})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.VideoURL+"/tokens", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.VideoKey, c.cfg.VideoSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{Status: resp.StatusCode, Body: string(raw)}
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode video token: %w", err)
	}
	return out.Token, nil
}
