package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teamtasks/task-management-api/internal/dto"
	apierrors "github.com/teamtasks/task-management-api/internal/errors"
	"github.com/teamtasks/task-management-api/internal/middleware"
	"github.com/teamtasks/task-management-api/internal/models"
	"github.com/teamtasks/task-management-api/internal/services"
)

// PreferenceHandler serves e-mail preference endpoints.
type PreferenceHandler struct {
	preferenceService *services.PreferenceService
}

func NewPreferenceHandler(preferenceService *services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{preferenceService: preferenceService}
}

// GetPreferences returns the effective preferences of the current user.
func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	c.JSON(http.StatusOK, h.preferenceService.Get(user))
}

func (h *PreferenceHandler) UpdatePreferences(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	patch, ok := readPreferencePatch(c)
	if !ok {
		return
	}

	_, prefs, err := h.preferenceService.Update(user.ID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PreferencesUpdateResponse{
		Message:     "Email preferences updated successfully",
		Preferences: prefs,
	})
}

// GetUserPreferences lets an admin read another user's preferences.
func (h *PreferenceHandler) GetUserPreferences(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		apierrors.NotFound(c, "User not found")
		return
	}

	user, prefs, err := h.preferenceService.GetForUser(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":        owner(user),
		"preferences": prefs,
	})
}

func (h *PreferenceHandler) UpdateUserPreferences(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		apierrors.NotFound(c, "User not found")
		return
	}

	patch, ok := readPreferencePatch(c)
	if !ok {
		return
	}

	user, prefs, err := h.preferenceService.UpdateForUser(actor, id, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PreferencesUpdateResponse{
		Message:     "User email preferences updated successfully",
		Preferences: prefs,
		User:        owner(user),
	})
}

// Overview reports every user's preferences with per-type totals.
func (h *PreferenceHandler) Overview(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	overview, err := h.preferenceService.Overview(actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

func readPreferencePatch(c *gin.Context) (models.Preferences, bool) {
	body, err := c.GetRawData()
	if err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return nil, false
	}

	patch, err := services.ParsePreferencePatch(body)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return patch, true
}

func owner(user *models.User) *dto.PreferenceOwner {
	return &dto.PreferenceOwner{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}
