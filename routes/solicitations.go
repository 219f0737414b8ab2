package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servify-server/middleware"
	"servify-server/models"
	"servify-server/services"
)

type createSolicitationRequest struct {
	CategoryID  uint   `json:"category_id" binding:"required"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

type updateSolicitationRequest struct {
	CategoryID  *uint   `json:"category_id" binding:"omitempty,min=1"`
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Status      *string `json:"status" binding:"omitempty,oneof=open cancelled"`
}

type listSolicitationsQuery struct {
	pageQuery
	Status     string `form:"status"`
	CategoryID uint   `form:"category_id"`
}

func (h *Handler) RegisterSolicitationRoutes(router *gin.RouterGroup) {
	solicitations := router.Group("/solicitacoes", h.auth)
	{
		solicitations.GET("", h.listSolicitations)
		solicitations.GET("/:id", h.getSolicitation)

		owner := solicitations.Group("", middleware.RequireRole(models.RoleClient))
		owner.POST("", h.createSolicitation)
		owner.PUT("/:id", h.updateSolicitation)
		owner.DELETE("/:id", h.deleteSolicitation)
		owner.POST("/:id/cancelar", h.cancelSolicitation)
	}
}

func (h *Handler) createSolicitation(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req createSolicitationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	solicitation, err := h.svc.Lifecycle.CreateSolicitation(c.Request.Context(), actor, services.CreateSolicitationInput{
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": solicitation})
}

func (h *Handler) listSolicitations(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var query listSolicitationsQuery
	if !h.bindQuery(c, &query) {
		return
	}

	page, err := h.svc.Lifecycle.ListSolicitations(c.Request.Context(), actor, services.ListSolicitationsInput{
		PageRequest: query.request(),
		Status:      models.SolicitationStatus(query.Status),
		CategoryID:  query.CategoryID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": page})
}

func (h *Handler) getSolicitation(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	solicitation, err := h.svc.Lifecycle.GetSolicitation(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": solicitation})
}

func (h *Handler) updateSolicitation(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req updateSolicitationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	in := services.UpdateSolicitationInput{
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
	}
	if req.Status != nil {
		status := models.SolicitationStatus(*req.Status)
		in.Status = &status
	}

	solicitation, err := h.svc.Lifecycle.UpdateSolicitation(c.Request.Context(), actor, id, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": solicitation})
}

func (h *Handler) cancelSolicitation(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	solicitation, err := h.svc.Lifecycle.CancelSolicitation(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": solicitation})
}

func (h *Handler) deleteSolicitation(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Lifecycle.DeleteSolicitation(c.Request.Context(), actor, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "solicitation deleted"})
}
