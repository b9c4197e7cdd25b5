package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"broadcast/services"
)

type saveUserRequest struct {
	ClerkID     string `json:"clerkId"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	NickName    string `json:"nickName"`
	Image       string `json:"image"`
	Provider    string `json:"provider"`
	AccountType string `json:"accountType"`
}

type locationRequest struct {
	ClerkID      string `json:"clerkId"`
	County       string `json:"county"`
	Constituency string `json:"constituency"`
	Ward         string `json:"ward"`
}

type imageRequest struct {
	ClerkID string `json:"clerkId"`
	Image   string `json:"image"`
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req saveUserRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	user, created, err := h.svc.Users.Save(ctx, services.SaveUserInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if created {
		c.JSON(http.StatusCreated, gin.H{"success": true, "user": user, "message": "User created"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user, "message": "User updated"})
}

func (h *Handler) CreateOrGetUser(c *gin.Context) {
	var req saveUserRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	sess, err := h.svc.Users.CreateOrGet(ctx, services.SessionInput{
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		NickName:  req.NickName,
		Image:     req.Image,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) UpdateLocation(c *gin.Context) {
	var req locationRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	user, err := h.svc.Users.UpdateLocation(ctx, req.ClerkID, req.County, req.Constituency, req.Ward)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateImage(c *gin.Context) {
	var req imageRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	user, err := h.svc.Users.UpdateImage(ctx, req.ClerkID, req.Image)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *Handler) GetUser(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	user, err := h.svc.Users.Get(ctx, c.Param("clerkId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) Follow(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	target, err := h.svc.Users.Follow(ctx, c.Param("clerkId"), c.Param("targetClerkId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Followed successfully", "target": target})
}

func (h *Handler) Unfollow(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	target, err := h.svc.Users.Unfollow(ctx, c.Param("clerkId"), c.Param("targetClerkId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Unfollowed successfully", "target": target})
}

// ListUsers returns every user, with isFollowing when ?clerkId= names the
// viewer.
func (h *Handler) ListUsers(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	if viewer := c.Query("clerkId"); viewer != "" {
		listing, err := h.svc.Users.ListFor(ctx, viewer)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, listing)
		return
	}

	users, err := h.svc.Users.List(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
