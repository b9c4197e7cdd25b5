package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"broadcast/services"
)

type chatRequest struct {
	Messages []services.ChatMessage `json:"messages"`
}

func (h *Handler) StreamToken(c *gin.Context) {
	token, err := h.svc.Chat.TokenFor(c.Param("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) UpsertAI(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.svc.Chat.UpsertAssistant(ctx); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	reply, err := h.svc.Chat.Chat(ctx, req.Messages)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// AIReply is the Stream webhook target.
func (h *Handler) AIReply(c *gin.Context) {
	var ev services.WebhookEvent
	if !bind(c, &ev) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	res, err := h.svc.Chat.HandleWebhook(ctx, ev)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
