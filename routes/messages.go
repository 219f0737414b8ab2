package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type postMessageRequest struct {
	ProposalID uint   `json:"proposal_id" binding:"required"`
	Content    string `json:"content" binding:"required,max=4000"`
}

func (h *Handler) RegisterMessageRoutes(router *gin.RouterGroup) {
	messages := router.Group("/mensagens", h.auth)
	{
		messages.POST("", h.postMessage)
		messages.GET("/proposta/:id", h.listMessages)
	}
}

func (h *Handler) postMessage(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req postMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	message, err := h.svc.Chat.PostMessage(c.Request.Context(), actor, req.ProposalID, req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": message})
}

func (h *Handler) listMessages(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	messages, err := h.svc.Chat.ListMessages(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": messages})
}
