package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servify-server/middleware"
	"servify-server/models"
	"servify-server/services"
)

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password" binding:"omitempty,min=6"`
}

type listUsersQuery struct {
	pageQuery
	Role string `form:"role" binding:"omitempty,oneof=client professional admin"`
}

func (h *Handler) RegisterUserRoutes(router *gin.RouterGroup) {
	users := router.Group("/usuarios", h.auth)
	{
		users.GET("", middleware.RequireRole(models.RoleAdmin), h.listUsers)
		users.GET("/:id", h.getUser)
		users.PUT("/:id", h.updateUser)
		users.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), h.deleteUser)
	}
}

func (h *Handler) listUsers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var query listUsersQuery
	if !h.bindQuery(c, &query) {
		return
	}

	page, err := h.svc.Identity.ListUsers(c.Request.Context(), actor, services.ListUsersInput{
		PageRequest: query.request(),
		Role:        models.UserRole(query.Role),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": page})
}

func (h *Handler) getUser(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.svc.Identity.GetUser(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (h *Handler) updateUser(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.svc.Identity.UpdateUser(c.Request.Context(), actor, id, services.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (h *Handler) deleteUser(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Identity.DeleteUser(c.Request.Context(), actor, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
