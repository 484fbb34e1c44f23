package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-estate/internal/domain"
	"github.com/weiawesome/wes-estate/pkg/log"
	"github.com/weiawesome/wes-estate/pkg/middleware"
	"github.com/weiawesome/wes-estate/pkg/response"
)

// ListProperties lists properties with pagination.
func (h *Handler) ListProperties(c *gin.Context) {
	page, err := h.svc.Properties.List(c.Request.Context(), pageRequest(c))
	if err != nil {
		fail(c, err, "failed to list properties")
		return
	}
	paginated(c, page)
}

// GetProperty retrieves a property by ID.
func (h *Handler) GetProperty(c *gin.Context) {
	p, err := h.svc.Properties.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "failed to get property")
		return
	}
	response.Success(c, p)
}

// CreateProperty creates a listing owned by the caller.
func (h *Handler) CreateProperty(c *gin.Context) {
	l := log.Ctx(c.Request.Context())

	var in domain.PropertyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		l.Warn().Err(err).Msg("failed to bind create property request")
		response.BadRequest(c, err.Error())
		return
	}

	p, err := h.svc.Properties.Create(c.Request.Context(), middleware.GetUserID(c), &in)
	if err != nil {
		fail(c, err, "failed to create property")
		return
	}
	response.Created(c, p)
}

// UpdateProperty updates a listing owned by the caller.
func (h *Handler) UpdateProperty(c *gin.Context) {
	l := log.Ctx(c.Request.Context())

	var in domain.PropertyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		l.Warn().Err(err).Msg("failed to bind update property request")
		response.BadRequest(c, err.Error())
		return
	}

	p, err := h.svc.Properties.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), &in)
	if err != nil {
		fail(c, err, "failed to update property")
		return
	}
	response.Success(c, p)
}

// DeleteProperty deletes a listing owned by the caller.
func (h *Handler) DeleteProperty(c *gin.Context) {
	if err := h.svc.Properties.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		fail(c, err, "failed to delete property")
		return
	}
	deleted(c)
}

// MyProperties lists the caller's listings.
func (h *Handler) MyProperties(c *gin.Context) {
	page, err := h.svc.Properties.ListMine(c.Request.Context(), middleware.GetUserID(c), pageRequest(c))
	if err != nil {
		fail(c, err, "failed to list user properties")
		return
	}
	paginated(c, page)
}
