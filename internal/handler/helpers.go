package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/urbandrives/storefront/internal/domain/session"
	"github.com/urbandrives/storefront/internal/platform/apperror"
	"github.com/urbandrives/storefront/internal/platform/middleware"
	"github.com/urbandrives/storefront/internal/platform/response"
)

// parseID reads a positive integer path parameter. On failure it writes a
// not-found response redirecting to listing and returns false.
func parseID(c *gin.Context, entity, listing string) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, apperror.NewNotFoundError(entity, raw).WithRedirect(listing))
		return 0, false
	}
	return id, true
}

// currentSession returns the caller's session or writes a 401.
func currentSession(c *gin.Context) (*session.Current, bool) {
	cur, ok := middleware.CurrentSession(c)
	if !ok {
		response.Unauthorized(c, "Please sign in to continue")
		return nil, false
	}
	return cur, true
}

// parsePagination reads page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
