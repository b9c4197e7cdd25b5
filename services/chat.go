package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"broadcast/apperr"
	"broadcast/cfai"
	"broadcast/stream"
)

const (
	AssistantID     = "ai-assistant"
	assistantName   = "AI Assistant"
	assistantImage  = "https://i.imgur.com/IC7Zz11.png"
	systemPrompt    = "You are a helpful AI assistant."
	noResponse      = "No response from AI"
	fallbackReply   = "Hello! How can I help you?"
	webhookNewEvent = "message.new"
)

// AIClient generates a completion for a conversation.
type AIClient interface {
	Run(ctx context.Context, messages []cfai.Message) (string, error)
}

type ChatService struct {
	stream StreamClient
	ai     AIClient
	log    *logrus.Logger
}

func NewChatService(stream StreamClient, ai AIClient, log *logrus.Logger) *ChatService {
	return &ChatService{stream: stream, ai: ai, log: log}
}

// ChatMessage is one turn of a client conversation.
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// WebhookEvent is the part of a Stream chat webhook the assistant reads.
type WebhookEvent struct {
	Type    string `json:"type"`
	Message *struct {
		Text string `json:"text"`
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	} `json:"message"`
	Channel *struct {
		ID string `json:"id"`
	} `json:"channel"`
	ChannelID string `json:"channel_id"`
}

// WebhookResult is the acknowledgement returned to Stream.
type WebhookResult struct {
	Received bool   `json:"received,omitempty"`
	Ignored  bool   `json:"ignored,omitempty"`
	Success  bool   `json:"success,omitempty"`
	Reply    string `json:"reply,omitempty"`
}

func (s *ChatService) TokenFor(userID string) (string, error) {
	if userID == "" {
		return "", apperr.Validation("userId required")
	}
	token, err := s.stream.CreateToken(userID)
	if err != nil {
		return "", apperr.Upstream("Failed to create token", err)
	}
	return token, nil
}

// UpsertAssistant registers the assistant user with Stream.
func (s *ChatService) UpsertAssistant(ctx context.Context) error {
	err := s.stream.UpsertUsers(ctx, stream.User{ID: AssistantID, Name: assistantName, Image: assistantImage, Role: "user"})
	if err != nil {
		return apperr.Upstream("Failed to upsert AI user", err)
	}
	return nil
}

// Chat answers a conversation. Turns with role "user" are sent as the user,
// every other role as the assistant.
func (s *ChatService) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", apperr.Validation("Messages required")
	}
	conv := make([]cfai.Message, 0, len(messages)+1)
	conv = append(conv, cfai.Message{Role: "system", Content: systemPrompt})
	for _, m := range messages {
		role := "assistant"
		if m.Role == "user" {
			role = "user"
		}
		conv = append(conv, cfai.Message{Role: role, Content: m.Text})
	}

	reply, err := s.ai.Run(ctx, conv)
	if err != nil {
		s.log.WithError(err).Error("[chat] ai request failed")
		return "", apperr.Upstream("AI request failed", err)
	}
	if reply == "" {
		reply = noResponse
	}
	return reply, nil
}

// HandleWebhook replies to new channel messages as the assistant.
func (s *ChatService) HandleWebhook(ctx context.Context, ev WebhookEvent) (*WebhookResult, error) {
	if ev.Type != webhookNewEvent || ev.Message == nil {
		return &WebhookResult{Received: true}, nil
	}
	if ev.Message.User.ID == AssistantID {
		return &WebhookResult{Ignored: true}, nil
	}

	channelID := ev.ChannelID
	if ev.Channel != nil && ev.Channel.ID != "" {
		channelID = ev.Channel.ID
	}
	if channelID == "" {
		return nil, apperr.Validation("channel id required")
	}

	reply, err := s.ai.Run(ctx, []cfai.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: ev.Message.Text},
	})
	if err != nil {
		s.log.WithError(err).WithField("channel", channelID).Error("[ai-reply] ai request failed")
		return nil, apperr.Upstream("AI request failed", err)
	}
	if reply == "" {
		reply = fallbackReply
	}

	if err := s.stream.SendMessage(ctx, "messaging", channelID, AssistantID, reply); err != nil {
		s.log.WithError(err).WithField("channel", channelID).Error("[ai-reply] send failed")
		return nil, apperr.Upstream("Failed to send AI reply", err)
	}
	return &WebhookResult{Success: true, Reply: reply}, nil
}
