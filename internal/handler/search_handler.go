package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-estate/internal/domain"
	"github.com/weiawesome/wes-estate/pkg/response"
)

// Search runs an advanced property search.
func (h *Handler) Search(c *gin.Context) {
	filter, err := domain.ParseSearchFilter(c.Request.URL.Query())
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	page, err := h.svc.Search.Search(c.Request.Context(), filter)
	if err != nil {
		fail(c, err, "failed to search properties")
		return
	}
	paginated(c, page)
}

// TextSearch runs a free-text property search.
func (h *Handler) TextSearch(c *gin.Context) {
	page, err := h.svc.Search.TextSearch(c.Request.Context(), c.Query("q"), pageRequest(c))
	if err != nil {
		fail(c, err, "failed to text search properties")
		return
	}
	paginated(c, page)
}
