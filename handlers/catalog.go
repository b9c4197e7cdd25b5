package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"broadcast/services"
)

type createProductRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	Category    string   `json:"category"`
	UserID      string   `json:"userId"`
}

type updateProductRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Images      []string `json:"images"`
	Category    *string  `json:"category"`
	Status      *string  `json:"status" binding:"omitempty,oneof=new sold"`
	Verified    *bool    `json:"verified"`
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type newsRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Image   string `json:"image"`
}

// Products

func (h *Handler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	p, err := h.svc.Catalog.CreateProduct(ctx, services.CreateProductInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListProducts(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	list, err := h.svc.Catalog.ListProducts(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetProduct(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	p, err := h.svc.Catalog.GetProduct(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	var req updateProductRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	p, err := h.svc.Catalog.UpdateProduct(ctx, c.Param("id"), services.ProductPatch(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.svc.Catalog.DeleteProduct(ctx, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// Categories

func (h *Handler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	cat, err := h.svc.Catalog.CreateCategory(ctx, req.Name, req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "category": cat})
}

func (h *Handler) ListCategories(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	list, err := h.svc.Catalog.ListCategories(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetCategory(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	cat, err := h.svc.Catalog.GetCategory(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	var req categoryRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	cat, err := h.svc.Catalog.UpdateCategory(ctx, c.Param("id"), req.Name, req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "category": cat})
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.svc.Catalog.DeleteCategory(ctx, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category deleted"})
}

// News

func (h *Handler) CreateNews(c *gin.Context) {
	var req newsRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	n, err := h.svc.Catalog.CreateNews(ctx, req.Title, req.Content, req.Image)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *Handler) ListNews(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	list, err := h.svc.Catalog.ListNews(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetNews(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	n, err := h.svc.Catalog.GetNews(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) UpdateNews(c *gin.Context) {
	var req newsRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	n, err := h.svc.Catalog.UpdateNews(ctx, c.Param("id"), req.Title, req.Content, req.Image)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) DeleteNews(c *gin.Context) {
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.svc.Catalog.DeleteNews(ctx, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "News deleted"})
}
