package cfai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSendsMessagesAndReadsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/acct/ai/run/@cf/meta/llama-3.1-8b-instruct", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body struct {
			Messages []Message `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)

		w.Write([]byte(`{"success":true,"result":{"response":"hello there"}}`))
	}))
	defer srv.Close()

	c := New(Config{AccountID: "acct", APIToken: "tok", BaseURL: srv.URL})
	reply, err := c.Run(context.Background(), []Message{
		{Role: "system", Content: "You are a helpful AI assistant."},
		{Role: "user", Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello there", reply)
}

func TestRunAcceptsBareStringResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"result":"plain reply"}`))
	}))
	defer srv.Close()

	c := New(Config{AccountID: "acct", APIToken: "tok", BaseURL: srv.URL, Model: "@cf/test/model"})
	reply, err := c.Run(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "plain reply", reply)
}

func TestRunNeedsCredentials(t *testing.T) {
	_, err := New(Config{}).Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{AccountID: "acct", APIToken: "tok", BaseURL: srv.URL})
	for i := 0; i < 5; i++ {
		_, err := c.Run(context.Background(), nil)
		require.EqualError(t, err, "cloudflare error 502")
	}

	_, err := c.Run(context.Background(), nil)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}
