package handlers

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	apierrors "github.com/teamtasks/task-management-api/internal/errors"
	"github.com/teamtasks/task-management-api/internal/policy"
	"github.com/teamtasks/task-management-api/internal/services"
)

// respondError maps service and policy errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError

	switch {
	case errors.As(err, &verr):
		apierrors.ValidationFailed(c, verr.Fields)
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, policy.ErrFieldsForbidden),
		errors.Is(err, policy.ErrUpdateForbidden),
		errors.Is(err, services.ErrTaskViewForbidden),
		errors.Is(err, services.ErrTaskCreateForbidden),
		errors.Is(err, services.ErrTaskDeleteForbidden),
		errors.Is(err, services.ErrTaskGenerateForbidden),
		errors.Is(err, services.ErrAdminOnly),
		errors.Is(err, services.ErrCannotDeleteSelf),
		errors.Is(err, services.ErrRoleChangeForbidden):
		apierrors.Forbidden(c, sentence(err.Error()))
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)
	case errors.Is(err, services.ErrInvalidTaskBody),
		errors.Is(err, services.ErrInvalidPreferenceBody),
		errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, sentence(err.Error()))
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		apierrors.InternalError(c, "")
	}
}

// sentence capitalizes the first letter of an error message.
func sentence(msg string) string {
	if msg == "" {
		return msg
	}
	r := []rune(msg)
	r[0] = unicode.ToUpper(r[0])
	return strings.TrimSpace(string(r))
}

func parseID(c *gin.Context, param string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
