package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servify-server/middleware"
	"servify-server/models"
)

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) RegisterCategoryRoutes(router *gin.RouterGroup) {
	categories := router.Group("/categorias")
	{
		categories.GET("", h.listCategories)
		categories.GET("/:id", h.getCategory)

		admin := categories.Group("", h.auth, middleware.RequireRole(models.RoleAdmin))
		admin.POST("", h.createCategory)
		admin.POST("/:id/subcategorias", h.createSubcategory)
	}
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.svc.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

func (h *Handler) getCategory(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	category, err := h.svc.Catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": category})
}

func (h *Handler) createCategory(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req nameRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.svc.Catalog.CreateCategory(c.Request.Context(), actor, req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": category})
}

func (h *Handler) createSubcategory(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req nameRequest
	if !h.bindJSON(c, &req) {
		return
	}
	subcategory, err := h.svc.Catalog.CreateSubcategory(c.Request.Context(), actor, id, req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": subcategory})
}
