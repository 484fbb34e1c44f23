package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-estate/internal/domain"
	"github.com/weiawesome/wes-estate/internal/service"
	"github.com/weiawesome/wes-estate/pkg/log"
	"github.com/weiawesome/wes-estate/pkg/middleware"
	"github.com/weiawesome/wes-estate/pkg/response"
)

// Services groups the business services the handlers call.
type Services struct {
	Users           service.UserService
	Properties      service.PropertyService
	Search          service.SearchService
	Favorites       service.FavoriteService
	Recommendations service.RecommendationService
}

// Handler handles HTTP requests for the listing API.
type Handler struct {
	svc            Services
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler creates a new HTTP handler.
func NewHandler(svc Services, authMiddleware *middleware.AuthMiddleware) *Handler {
	return &Handler{
		svc:            svc,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all API routes under api.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	auth := h.authMiddleware.RequireAuth()

	users := api.Group("/users")
	{
		// Public routes
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)

		// Protected routes
		users.GET("/me", auth, h.Me)
		users.PUT("/update", auth, h.UpdateUser)
		users.PUT("/update-password", auth, h.UpdatePassword)
		users.GET("/find", auth, h.FindUser)
	}

	properties := api.Group("/properties")
	{
		properties.GET("", h.ListProperties)
		properties.GET("/:id", h.GetProperty)

		properties.POST("", auth, h.CreateProperty)
		properties.PUT("/:id", auth, h.UpdateProperty)
		properties.DELETE("/:id", auth, h.DeleteProperty)
		properties.GET("/user/me", auth, h.MyProperties)
	}

	search := api.Group("/search")
	{
		search.GET("", h.Search)
		search.GET("/text", h.TextSearch)
	}

	favorites := api.Group("/favorites", auth)
	{
		favorites.GET("", h.ListFavorites)
		favorites.POST("", h.AddFavorite)
		favorites.DELETE("/:id", h.RemoveFavorite)
		favorites.PUT("/:id", h.UpdateFavorite)
		favorites.GET("/check/:propertyId", h.CheckFavorite)
	}

	recommendations := api.Group("/recommendations", auth)
	{
		recommendations.POST("", h.CreateRecommendation)
		recommendations.GET("/received", h.ReceivedRecommendations)
		recommendations.GET("/sent", h.SentRecommendations)
		recommendations.PUT("/:id/read", h.MarkRecommendationRead)
		recommendations.DELETE("/:id", h.DeleteRecommendation)
		recommendations.GET("/unread-count", h.UnreadCount)
	}
}

// Health reports liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail maps a service error to its status. Errors without a kind are logged
// and reported as 500 without detail.
func fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConflict):
		response.BadRequest(c, err.Error())
	default:
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Msg(msg)
		response.InternalError(c, "Internal Server Error")
	}
}

func pageRequest(c *gin.Context) domain.PageRequest {
	return domain.NewPageRequest(c.Query("page"), c.Query("limit"))
}

func paginated[T any](c *gin.Context, p *domain.Page[T]) {
	response.Paginated(c, p.Items, len(p.Items), p.Total, p.TotalPages, p.CurrentPage)
}

// deleted answers a successful delete with an empty data object.
func deleted(c *gin.Context) {
	response.With(c, http.StatusOK, gin.H{"data": gin.H{}})
}
