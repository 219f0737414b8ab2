package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servify-server/services"
)

type listNotificationsQuery struct {
	pageQuery
	Unread bool `form:"unread"`
}

func (h *Handler) RegisterNotificationRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/notificacoes", h.auth)
	{
		notifications.GET("", h.listNotifications)
		notifications.PUT("/marcar-todas-lidas", h.markAllNotificationsRead)
		notifications.PUT("/:id/marcar-lida", h.markNotificationRead)
		notifications.DELETE("/:id", h.deleteNotification)
	}
}

func (h *Handler) listNotifications(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var query listNotificationsQuery
	if !h.bindQuery(c, &query) {
		return
	}
	page, err := h.svc.Notifications.List(c.Request.Context(), actor, services.ListNotificationsInput{
		PageRequest: query.request(),
		UnreadOnly:  query.Unread,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": page})
}

func (h *Handler) markNotificationRead(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	notification, err := h.svc.Notifications.MarkRead(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": notification})
}

func (h *Handler) markAllNotificationsRead(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	updated, err := h.svc.Notifications.MarkAllRead(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *Handler) deleteNotification(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Notifications.Delete(c.Request.Context(), actor, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification deleted"})
}
