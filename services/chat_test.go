package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"broadcast/apperr"
)

func TestChatMapsRolesAndPrependsSystemPrompt(t *testing.T) {
	ai := &fakeAI{reply: "hi!"}
	svc := NewChatService(&fakeStream{}, ai, quietLogger())

	reply, err := svc.Chat(context.Background(), []ChatMessage{{Role: "user", Text: "hello"}, {Role: "bot", Text: "yo"}})
	require.NoError(t, err)
	assert.Equal(t, "hi!", reply)

	require.Len(t, ai.got, 3)
	assert.Equal(t, "system", ai.got[0].Role)
	assert.Equal(t, "You are a helpful AI assistant.", ai.got[0].Content)
	assert.Equal(t, "user", ai.got[1].Role)
	assert.Equal(t, "assistant", ai.got[2].Role)
}

func TestChatEdgeCases(t *testing.T) {
	ctx := context.Background()

	_, err := NewChatService(&fakeStream{}, &fakeAI{}, quietLogger()).Chat(ctx, nil)
	requireKind(t, err, apperr.KindValidation)
	assert.Equal(t, "Messages required", apperr.Message(err))

	reply, err := NewChatService(&fakeStream{}, &fakeAI{}, quietLogger()).Chat(ctx, []ChatMessage{{Role: "user", Text: "x"}})
	require.NoError(t, err)
	assert.Equal(t, "No response from AI", reply)

	_, err = NewChatService(&fakeStream{}, &fakeAI{err: errBoom}, quietLogger()).Chat(ctx, []ChatMessage{{Role: "user", Text: "x"}})
	requireKind(t, err, apperr.KindUpstream)
	assert.Equal(t, "AI request failed", apperr.Message(err))
}

func decodeEvent(t *testing.T, raw string) WebhookEvent {
	t.Helper()
	var ev WebhookEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))
	return ev
}

func TestWebhookRepliesAsAssistant(t *testing.T) {
	st := &fakeStream{}
	svc := NewChatService(st, &fakeAI{}, quietLogger())
	ctx := context.Background()

	res, err := svc.HandleWebhook(ctx, decodeEvent(t, `{"type":"message.new","message":{"text":"hey","user":{"id":"u1"}},"channel_id":"room1"}`))
	require.NoError(t, err)
	assert.Equal(t, &WebhookResult{Success: true, Reply: "Hello! How can I help you?"}, res)
	assert.Equal(t, []string{"messaging:room1:ai-assistant:Hello! How can I help you?"}, st.sent)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	st := &fakeStream{}
	svc := NewChatService(st, &fakeAI{reply: "x"}, quietLogger())
	ctx := context.Background()

	res, err := svc.HandleWebhook(ctx, decodeEvent(t, `{"type":"message.updated"}`))
	require.NoError(t, err)
	assert.True(t, res.Received)

	res, err = svc.HandleWebhook(ctx, decodeEvent(t, `{"type":"message.new","message":{"text":"x","user":{"id":"ai-assistant"}},"channel":{"id":"c"}}`))
	require.NoError(t, err)
	assert.True(t, res.Ignored)
	assert.Empty(t, st.sent)
}

func TestTokenAndUpsert(t *testing.T) {
	st := &fakeStream{}
	svc := NewChatService(st, &fakeAI{}, quietLogger())

	token, err := svc.TokenFor("u1")
	require.NoError(t, err)
	assert.Equal(t, "chat-u1", token)

	require.NoError(t, svc.UpsertAssistant(context.Background()))
	require.Len(t, st.upserted, 1)
	assert.Equal(t, "ai-assistant", st.upserted[0].ID)
	assert.Equal(t, "AI Assistant", st.upserted[0].Name)
}
