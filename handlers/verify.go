package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type verifyRequest struct {
	Email string `json:"email"`
}

func (h *Handler) RequestVerification(c *gin.Context) {
	var req verifyRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.svc.Verify.Request(ctx, req.Email); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification request sent to admin inbox"})
}

func (h *Handler) ConfirmVerification(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.svc.Verify.Confirm(ctx, c.Param("token")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account verified successfully"})
}
