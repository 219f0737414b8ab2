package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"servify-server/middleware"
	"servify-server/models"
	"servify-server/services"
)

type updateProfileRequest struct {
	Bio             *string `json:"bio"`
	ServiceRadiusKm *int    `json:"service_radius_km" binding:"omitempty,min=1"`
}

type addOfferingRequest struct {
	SubcategoryID uint             `json:"subcategory_id" binding:"required"`
	Description   string           `json:"description"`
	BasePrice     *decimal.Decimal `json:"base_price" binding:"required"`
}

func (h *Handler) RegisterProfessionalRoutes(router *gin.RouterGroup) {
	professionals := router.Group("/profissionais")
	{
		professionals.GET("/:id", h.publicProfile)

		own := professionals.Group("", h.auth, middleware.RequireRole(models.RoleProfessional))
		own.GET("/perfil", h.getOwnProfile)
		own.PUT("/perfil", h.updateOwnProfile)
		own.GET("/servicos", h.listOfferings)
		own.POST("/servicos", h.addOffering)
		own.DELETE("/servicos/:id", h.removeOffering)
	}
}

func (h *Handler) publicProfile(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	profile, err := h.svc.Identity.PublicProfile(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func (h *Handler) getOwnProfile(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	profile, err := h.svc.Identity.GetOwnProfile(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func (h *Handler) updateOwnProfile(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req updateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}
	profile, err := h.svc.Identity.UpdateProfile(c.Request.Context(), actor, services.UpdateProfileInput{
		Bio:             req.Bio,
		ServiceRadiusKm: req.ServiceRadiusKm,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func (h *Handler) listOfferings(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	offerings, err := h.svc.Catalog.ListOfferings(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": offerings})
}

func (h *Handler) addOffering(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req addOfferingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	offering, err := h.svc.Catalog.AddOffering(c.Request.Context(), actor, services.AddOfferingInput{
		SubcategoryID: req.SubcategoryID,
		Description:   req.Description,
		BasePrice:     *req.BasePrice,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": offering})
}

func (h *Handler) removeOffering(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Catalog.RemoveOffering(c.Request.Context(), actor, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "offering removed"})
}
