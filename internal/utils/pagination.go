package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamtasks/task-management-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse represents the pagination metadata in API responses
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// GetPaginationParams reads page and limit from the query string. It
// returns nil when neither is given, so callers can return the full list.
// Out-of-range values fall back to the defaults.
func GetPaginationParams(c *gin.Context) *PaginationParams {
	rawPage, hasPage := c.GetQuery("page")
	rawLimit, hasLimit := c.GetQuery("limit")
	if !hasPage && !hasLimit {
		return nil
	}

	page, err := strconv.Atoi(rawPage)
	if err != nil || page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	limit, err := strconv.Atoi(rawLimit)
	if err != nil || limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return &PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// NewPaginationResponse builds the metadata for one page of total items.
func NewPaginationResponse(params PaginationParams, total int64) *PaginationResponse {
	var pages int64
	if params.Limit > 0 {
		pages = (total + int64(params.Limit) - 1) / int64(params.Limit)
	}
	return &PaginationResponse{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: pages,
	}
}
