package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-estate/internal/domain"
	"github.com/weiawesome/wes-estate/pkg/middleware"
	"github.com/weiawesome/wes-estate/pkg/response"
)

// CreateRecommendation recommends a property to another user.
func (h *Handler) CreateRecommendation(c *gin.Context) {
	var req domain.CreateRecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Please provide a propertyId and a recipient")
		return
	}

	rec, err := h.svc.Recommendations.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		fail(c, err, "failed to create recommendation")
		return
	}
	response.Created(c, rec)
}

// ReceivedRecommendations lists recommendations sent to the caller.
func (h *Handler) ReceivedRecommendations(c *gin.Context) {
	page, err := h.svc.Recommendations.Received(c.Request.Context(), middleware.GetUserID(c), pageRequest(c))
	if err != nil {
		fail(c, err, "failed to list received recommendations")
		return
	}
	paginated(c, page)
}

// SentRecommendations lists recommendations the caller sent.
func (h *Handler) SentRecommendations(c *gin.Context) {
	page, err := h.svc.Recommendations.Sent(c.Request.Context(), middleware.GetUserID(c), pageRequest(c))
	if err != nil {
		fail(c, err, "failed to list sent recommendations")
		return
	}
	paginated(c, page)
}

// MarkRecommendationRead marks a received recommendation as read.
func (h *Handler) MarkRecommendationRead(c *gin.Context) {
	rec, err := h.svc.Recommendations.MarkRead(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		fail(c, err, "failed to mark recommendation read")
		return
	}
	response.Success(c, rec)
}

// DeleteRecommendation deletes a sent or received recommendation.
func (h *Handler) DeleteRecommendation(c *gin.Context) {
	if err := h.svc.Recommendations.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		fail(c, err, "failed to delete recommendation")
		return
	}
	deleted(c)
}

// UnreadCount returns the number of unread received recommendations.
func (h *Handler) UnreadCount(c *gin.Context) {
	n, err := h.svc.Recommendations.UnreadCount(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err, "failed to count unread recommendations")
		return
	}
	response.With(c, http.StatusOK, gin.H{"count": n})
}
