package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servify-server/models"
	"servify-server/services"
)

type registerRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	Phone           string `json:"phone"`
	Role            string `json:"role" binding:"omitempty,oneof=client professional"`
	Bio             string `json:"bio"`
	ServiceRadiusKm int    `json:"service_radius_km" binding:"omitempty,min=1"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) RegisterAuthRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.GET("/me", h.auth, h.me)
	}
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.svc.Identity.Register(c.Request.Context(), services.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		Phone:           req.Phone,
		Role:            models.UserRole(req.Role),
		Bio:             req.Bio,
		ServiceRadiusKm: req.ServiceRadiusKm,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": user})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, token, err := h.svc.Identity.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"user": user, "token": token}})
}

func (h *Handler) me(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	user, err := h.svc.Identity.Me(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}
