package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"servify-server/middleware"
	"servify-server/models"
	"servify-server/services"
)

type submitProposalRequest struct {
	SolicitationID uint             `json:"solicitation_id" binding:"required"`
	Amount         *decimal.Decimal `json:"amount" binding:"required"`
	DurationDays   int              `json:"duration_days" binding:"required,min=1"`
	Message        string           `json:"message"`
}

type updateProposalRequest struct {
	Amount       *decimal.Decimal `json:"amount"`
	DurationDays *int             `json:"duration_days" binding:"omitempty,min=1"`
	Message      *string          `json:"message"`
}

type listProposalsQuery struct {
	pageQuery
	Status         string `form:"status"`
	SolicitationID uint   `form:"solicitation_id"`
}

func (h *Handler) RegisterProposalRoutes(router *gin.RouterGroup) {
	proposals := router.Group("/propostas", h.auth)
	{
		proposals.GET("", h.listProposals)
		proposals.GET("/:id", h.getProposal)

		professional := proposals.Group("", middleware.RequireRole(models.RoleProfessional))
		professional.POST("", h.submitProposal)
		professional.PUT("/:id", h.updateProposal)

		client := proposals.Group("", middleware.RequireRole(models.RoleClient))
		client.POST("/:id/aceitar", h.acceptProposal)
		client.POST("/:id/recusar", h.rejectProposal)
	}
}

func (h *Handler) submitProposal(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req submitProposalRequest
	if !h.bindJSON(c, &req) {
		return
	}

	proposal, err := h.svc.Lifecycle.SubmitProposal(c.Request.Context(), actor, services.SubmitProposalInput{
		SolicitationID: req.SolicitationID,
		Amount:         *req.Amount,
		DurationDays:   req.DurationDays,
		Message:        req.Message,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": proposal})
}

func (h *Handler) listProposals(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var query listProposalsQuery
	if !h.bindQuery(c, &query) {
		return
	}

	page, err := h.svc.Lifecycle.ListProposals(c.Request.Context(), actor, services.ListProposalsInput{
		PageRequest:    query.request(),
		Status:         models.ProposalStatus(query.Status),
		SolicitationID: query.SolicitationID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": page})
}

func (h *Handler) getProposal(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	proposal, err := h.svc.Lifecycle.GetProposal(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": proposal})
}

func (h *Handler) updateProposal(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req updateProposalRequest
	if !h.bindJSON(c, &req) {
		return
	}

	proposal, err := h.svc.Lifecycle.UpdateProposal(c.Request.Context(), actor, id, services.UpdateProposalInput{
		Amount:       req.Amount,
		DurationDays: req.DurationDays,
		Message:      req.Message,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": proposal})
}

func (h *Handler) acceptProposal(c *gin.Context) {
	h.decideProposal(c, h.svc.Lifecycle.AcceptProposal)
}

func (h *Handler) rejectProposal(c *gin.Context) {
	h.decideProposal(c, h.svc.Lifecycle.RejectProposal)
}

type proposalDecision func(ctx context.Context, actor services.Actor, proposalID uint) (*models.Proposal, error)

func (h *Handler) decideProposal(c *gin.Context, decide proposalDecision) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	proposal, err := decide(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": proposal})
}
