package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-estate/internal/domain"
	"github.com/weiawesome/wes-estate/pkg/middleware"
	"github.com/weiawesome/wes-estate/pkg/response"
)

// ListFavorites lists the caller's favorites.
func (h *Handler) ListFavorites(c *gin.Context) {
	page, err := h.svc.Favorites.List(c.Request.Context(), middleware.GetUserID(c), pageRequest(c))
	if err != nil {
		fail(c, err, "failed to list favorites")
		return
	}
	paginated(c, page)
}

// AddFavorite saves a property to the caller's favorites.
func (h *Handler) AddFavorite(c *gin.Context) {
	var req domain.AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Please provide a propertyId")
		return
	}

	f, err := h.svc.Favorites.Add(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		fail(c, err, "failed to add favorite")
		return
	}
	response.Created(c, f)
}

// RemoveFavorite deletes one of the caller's favorites.
func (h *Handler) RemoveFavorite(c *gin.Context) {
	if err := h.svc.Favorites.Remove(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		fail(c, err, "failed to remove favorite")
		return
	}
	deleted(c)
}

// UpdateFavorite replaces the notes of one of the caller's favorites.
func (h *Handler) UpdateFavorite(c *gin.Context) {
	var req domain.UpdateFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	f, err := h.svc.Favorites.UpdateNotes(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req.Notes)
	if err != nil {
		fail(c, err, "failed to update favorite")
		return
	}
	response.Success(c, f)
}

// CheckFavorite reports whether a property is among the caller's favorites.
func (h *Handler) CheckFavorite(c *gin.Context) {
	check, err := h.svc.Favorites.Check(c.Request.Context(), middleware.GetUserID(c), c.Param("propertyId"))
	if err != nil {
		fail(c, err, "failed to check favorite")
		return
	}
	response.With(c, http.StatusOK, gin.H{"isFavorite": check.IsFavorite, "data": check.Favorite})
}
