package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"broadcast/models"
	"broadcast/services"
)

type createPostRequest struct {
	UserID      string      `json:"userId"`
	Caption     string      `json:"caption"`
	Media       []string    `json:"media"`
	LevelType   string      `json:"levelType" binding:"omitempty,leveltype"`
	LevelValue  string      `json:"levelValue"`
	LinkPreview interface{} `json:"linkPreview"`
}

type userRequest struct {
	UserID string `json:"userId"`
}

type recastRequest struct {
	UserID    string `json:"userId"`
	Nickname  string `json:"nickname"`
	QuoteText string `json:"quoteText"`
}

type legacyCommentRequest struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Text     string `json:"text"`
}

func (h *Handler) ListPosts(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	posts, err := h.svc.Posts.List(ctx, c.Query("levelType"), c.Query("levelValue"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if !bind(c, &req) {
		return
	}
	preview, err := models.NewLinkPreview(req.LinkPreview)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	post, err := h.svc.Posts.Create(ctx, services.CreatePostInput{
		UserID:      req.UserID,
		Caption:     req.Caption,
		Media:       req.Media,
		LevelType:   req.LevelType,
		LevelValue:  req.LevelValue,
		LinkPreview: preview,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *Handler) LikePost(c *gin.Context) {
	var req userRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	post, err := h.svc.Posts.ToggleLike(ctx, c.Param("id"), req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) RecastPost(c *gin.Context) {
	var req recastRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	post, err := h.svc.Posts.Recast(ctx, c.Param("id"), services.RecastInput{
		UserID:    req.UserID,
		Nickname:  req.Nickname,
		QuoteText: req.QuoteText,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) ViewPost(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	post, err := h.svc.Posts.View(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// IncrementViews is the comments-router variant of ViewPost that only
// reports the new count.
func (h *Handler) IncrementViews(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	post, err := h.svc.Posts.View(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "View count incremented", "views": post.Views})
}

func (h *Handler) DeletePost(c *gin.Context) {
	var req userRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	id := c.Param("id")
	if err := h.svc.Posts.Delete(ctx, id, req.UserID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post hidden", "postId": id})
}

func (h *Handler) RestorePost(c *gin.Context) {
	var req userRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	post, err := h.svc.Posts.Restore(ctx, c.Param("id"), req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) ListPostComments(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	comments, err := h.svc.Comments.ListForPost(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *Handler) CreatePostComment(c *gin.Context) {
	var req legacyCommentRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	comment, err := h.svc.Comments.Create(ctx, services.CreateCommentInput{
		PostID:   c.Param("id"),
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
