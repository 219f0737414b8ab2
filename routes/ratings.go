package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servify-server/middleware"
	"servify-server/models"
	"servify-server/services"
)

type rateRequest struct {
	SolicitationID uint   `json:"solicitation_id" binding:"required"`
	Score          int    `json:"score" binding:"required,min=1,max=5"`
	Comment        string `json:"comment"`
}

type listRatingsQuery struct {
	pageQuery
	ProfessionalID uint `form:"professional_id"`
}

func (h *Handler) RegisterRatingRoutes(router *gin.RouterGroup) {
	ratings := router.Group("/avaliacoes", h.auth)
	{
		ratings.POST("", middleware.RequireRole(models.RoleClient), h.rateSolicitation)
		ratings.GET("", h.listRatings)
		ratings.GET("/:id", h.getRating)
	}
}

func (h *Handler) rateSolicitation(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req rateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	rating, err := h.svc.Ratings.RateSolicitation(c.Request.Context(), actor, services.RateInput{
		SolicitationID: req.SolicitationID,
		Score:          req.Score,
		Comment:        req.Comment,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": rating})
}

func (h *Handler) listRatings(c *gin.Context) {
	var query listRatingsQuery
	if !h.bindQuery(c, &query) {
		return
	}
	page, err := h.svc.Ratings.ListRatings(c.Request.Context(), services.ListRatingsInput{
		PageRequest:    query.request(),
		ProfessionalID: query.ProfessionalID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": page})
}

func (h *Handler) getRating(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	rating, err := h.svc.Ratings.GetRating(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rating})
}
