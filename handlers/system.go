package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Root(c *gin.Context) {
	c.String(http.StatusOK, "Backend running")
}

func (h *Handler) APIRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "API running"})
}

// Health reports 503 when the store does not answer a ping.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.WithError(err).Warn("[health] store ping failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "store": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": "ok"})
}

// Reconcile runs one comment counter reconciliation pass.
func (h *Handler) Reconcile(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	report, err := h.svc.Comments.ReconcileCommentCounts(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// NotFound answers unknown routes with JSON.
func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"message": "Endpoint not found", "path": c.Request.URL.Path})
}
