package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"broadcast/services"
)

type createStatusRequest struct {
	UserID    string   `json:"userId"`
	UserName  string   `json:"userName"`
	FirstName string   `json:"firstName"`
	Nickname  string   `json:"nickname"`
	Caption   string   `json:"caption"`
	Media     []string `json:"media"`
}

func (h *Handler) CreateStatus(c *gin.Context) {
	var req createStatusRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	st, err := h.svc.Statuses.Create(ctx, services.CreateStatusInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (h *Handler) ListStatuses(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	list, err := h.svc.Statuses.List(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) LikeStatus(c *gin.Context) {
	var req userRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	res, err := h.svc.Statuses.ToggleLike(ctx, c.Param("statusId"), req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteStatus(c *gin.Context) {
	var req userRequest
	if !bind(c, &req) {
		return
	}
	if req.UserID == "" {
		req.UserID = c.Query("userId")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.svc.Statuses.Delete(ctx, c.Param("statusId"), req.UserID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status deleted successfully"})
}
