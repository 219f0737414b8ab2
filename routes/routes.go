package routes

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"servify-server/apperrors"
	"servify-server/middleware"
	"servify-server/services"
)

func init() {
	// Report validation failures with JSON field names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return ""
		})
	}
}

// Services bundles everything the HTTP layer talks to.
type Services struct {
	JWT           *services.JWTService
	Identity      *services.IdentityService
	Lifecycle     *services.LifecycleService
	Ratings       *services.RatingService
	Chat          *services.ChatService
	Notifications *services.NotificationService
	Catalog       *services.CatalogService
}

type Handler struct {
	svc  Services
	auth gin.HandlerFunc
	log  *zap.SugaredLogger
}

func NewHandler(svc Services, log *zap.SugaredLogger) *Handler {
	log = log.Named("http")
	return &Handler{
		svc:  svc,
		auth: middleware.AuthMiddleware(svc.JWT, svc.Identity, log),
		log:  log,
	}
}

// RegisterRoutes mounts the health check and every /api/v1 route.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := router.Group("/api/v1")
	{
		h.RegisterAuthRoutes(apiV1)
		h.RegisterUserRoutes(apiV1)
		h.RegisterProfessionalRoutes(apiV1)
		h.RegisterCategoryRoutes(apiV1)
		h.RegisterSolicitationRoutes(apiV1)
		h.RegisterProposalRoutes(apiV1)
		h.RegisterRatingRoutes(apiV1)
		h.RegisterMessageRoutes(apiV1)
		h.RegisterNotificationRoutes(apiV1)
	}
}

// respondError renders err with the status matching its kind. Internal
// errors are logged and never leak their cause.
func (h *Handler) respondError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		appErr = apperrors.Internal("unexpected error", err)
	}

	status := appErr.Kind.HTTPStatus()
	if status >= http.StatusInternalServerError {
		h.log.Errorw("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	body := gin.H{"error": appErr.Message}
	if len(appErr.Fields) > 0 {
		body["missing"] = appErr.Fields
	}
	c.JSON(status, body)
}

// bindJSON decodes the body into req and answers 400 when it does not fit.
func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.respondError(c, bindError(err))
		return false
	}
	return true
}

func (h *Handler) bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.respondError(c, bindError(err))
		return false
	}
	return true
}

func bindError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, fe.Field())
		}
		return apperrors.Validation("invalid or missing fields: "+strings.Join(fields, ", "), fields...)
	}
	return apperrors.Validation("invalid request format")
}

// parseID reads a positive integer path parameter.
func (h *Handler) parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		h.respondError(c, apperrors.Validation("invalid "+name, name))
		return 0, false
	}
	return uint(id), true
}

// actor returns the authenticated caller. Routes using it sit behind h.auth.
func (h *Handler) actor(c *gin.Context) (services.Actor, bool) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		h.respondError(c, apperrors.Unauthorized("authentication required"))
	}
	return actor, ok
}

type pageQuery struct {
	Page    int `form:"page" binding:"omitempty,min=1"`
	PerPage int `form:"per_page" binding:"omitempty,min=1"`
}

func (q pageQuery) request() services.PageRequest {
	return services.PageRequest{Page: q.Page, PerPage: q.PerPage}
}
