package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamtasks/task-management-api/internal/constants"
)

func paginationContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/tasks"+query, nil)
	return c
}

func TestGetPaginationParams(t *testing.T) {
	assert.Nil(t, GetPaginationParams(paginationContext("")))

	params := GetPaginationParams(paginationContext("?page=3&limit=20"))
	require.NotNil(t, params)
	assert.Equal(t, PaginationParams{Page: 3, Limit: 20, Offset: 40}, *params)

	params = GetPaginationParams(paginationContext("?limit=5000"))
	require.NotNil(t, params)
	assert.Equal(t, PaginationParams{Page: 1, Limit: constants.DefaultPageSize, Offset: 0}, *params)

	params = GetPaginationParams(paginationContext("?page=-2"))
	require.NotNil(t, params)
	assert.Equal(t, 1, params.Page)
}

func TestNewPaginationResponse(t *testing.T) {
	resp := NewPaginationResponse(PaginationParams{Page: 2, Limit: 2, Offset: 2}, 3)
	assert.Equal(t, &PaginationResponse{Page: 2, Limit: 2, Total: 3, TotalPages: 2}, resp)

	assert.Equal(t, int64(0), NewPaginationResponse(PaginationParams{Page: 1, Limit: 10}, 0).TotalPages)
}
