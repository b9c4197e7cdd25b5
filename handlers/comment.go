package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"broadcast/services"
)

type createCommentRequest struct {
	PostID   string `json:"postId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Text     string `json:"text"`
}

func (h *Handler) CreateComment(c *gin.Context) {
	var req createCommentRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	comment, err := h.svc.Comments.Create(ctx, services.CreateCommentInput{
		PostID:   req.PostID,
		UserID:   req.UserID,
		UserName: req.UserName,
		Text:     req.Text,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ListComments serves both /api/comments and /api/comments/:id, where id
// is the post.
func (h *Handler) ListComments(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	comments, err := h.svc.Comments.ListForPost(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *Handler) LikeComment(c *gin.Context) {
	var req userRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	comment, err := h.svc.Comments.ToggleLike(ctx, c.Param("id"), req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *Handler) AddReply(c *gin.Context) {
	var req legacyCommentRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	comment, err := h.svc.Comments.AddReply(ctx, c.Param("id"), services.ReplyInput{
		UserID:   req.UserID,
		UserName: req.UserName,
		Text:     req.Text,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// DeleteReply takes the caller from the body or, for clients that cannot
// send a DELETE body, from ?userId=.
func (h *Handler) DeleteReply(c *gin.Context) {
	var req userRequest
	if !bind(c, &req) {
		return
	}
	if req.UserID == "" {
		req.UserID = c.Query("userId")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.svc.Comments.DeleteReply(ctx, c.Param("id"), c.Param("replyId"), req.UserID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reply deleted"})
}

func (h *Handler) LikeReply(c *gin.Context) {
	var req userRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	res, err := h.svc.Comments.ToggleReplyLike(ctx, c.Param("id"), c.Param("replyId"), req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteComment(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.svc.Comments.Delete(ctx, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}
