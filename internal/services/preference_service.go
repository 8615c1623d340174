package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/teamtasks/task-management-api/internal/models"
	"github.com/teamtasks/task-management-api/internal/notification"
	"github.com/teamtasks/task-management-api/internal/repository"
	"gorm.io/gorm"
)

// ErrInvalidPreferenceBody is returned when a preference update is not a JSON object.
var ErrInvalidPreferenceBody = errors.New("request body must be a JSON object")

// PreferenceService reads and updates e-mail notification preferences.
type PreferenceService struct {
	userRepo repository.UserRepository
}

func NewPreferenceService(userRepo repository.UserRepository) *PreferenceService {
	return &PreferenceService{userRepo: userRepo}
}

// ParsePreferencePatch reads the known notification keys from a JSON
// object. Unknown keys are ignored. Values accept the usual boolean
// spellings: true, false, 1, 0, "1", "0", "true", "false".
func ParsePreferencePatch(body []byte) (models.Preferences, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, ErrInvalidPreferenceBody
	}

	patch := models.Preferences{}
	errs := fieldErrors{}
	for _, t := range models.NotificationTypes {
		value, ok := raw[string(t)]
		if !ok {
			continue
		}
		enabled, ok := parseBool(value)
		if !ok {
			errs.add(string(t), fmt.Sprintf("The %s field must be true or false.", strings.ReplaceAll(string(t), "_", " ")))
			continue
		}
		patch[t] = enabled
	}

	if err := errs.err(); err != nil {
		return nil, err
	}
	return patch, nil
}

func parseBool(raw json.RawMessage) (bool, bool) {
	switch string(bytes.TrimSpace(raw)) {
	case "true", "1", `"1"`, `"true"`:
		return true, true
	case "false", "0", `"0"`, `"false"`:
		return false, true
	}
	return false, false
}

// Get returns the user's effective preferences.
func (s *PreferenceService) Get(user models.User) models.Preferences {
	return notification.ResolvePreferences(user.EmailPreferences)
}

// GetForUser is the admin view of another user's preferences.
func (s *PreferenceService) GetForUser(actor models.User, id uint64) (*models.User, models.Preferences, error) {
	if !actor.IsAdmin() {
		return nil, nil, ErrAdminOnly
	}
	user, err := s.find(id)
	if err != nil {
		return nil, nil, err
	}
	return user, s.Get(*user), nil
}

// Update merges patch into the user's stored preferences and saves the
// full merged mapping.
func (s *PreferenceService) Update(userID uint64, patch models.Preferences) (*models.User, models.Preferences, error) {
	user, err := s.find(userID)
	if err != nil {
		return nil, nil, err
	}

	user.EmailPreferences = notification.MergePreferences(user.EmailPreferences, patch)
	if err := s.userRepo.Update(user); err != nil {
		return nil, nil, fmt.Errorf("failed to update preferences: %w", err)
	}
	return user, user.EmailPreferences, nil
}

// UpdateForUser is Update performed by an admin on any user.
func (s *PreferenceService) UpdateForUser(actor models.User, id uint64, patch models.Preferences) (*models.User, models.Preferences, error) {
	if !actor.IsAdmin() {
		return nil, nil, ErrAdminOnly
	}
	return s.Update(id, patch)
}

// PreferenceStat counts how many users have a notification type enabled.
type PreferenceStat struct {
	Enabled    int     `json:"enabled"`
	Disabled   int     `json:"disabled"`
	Percentage float64 `json:"percentage"`
}

// UserPreferences is one row of the overview.
type UserPreferences struct {
	ID          uint64             `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Preferences models.Preferences `json:"preferences"`
}

// PreferencesOverview lists every user's effective preferences and the
// per-type totals.
type PreferencesOverview struct {
	Users      []UserPreferences                          `json:"users"`
	Statistics map[models.NotificationType]PreferenceStat `json:"statistics"`
}

func (s *PreferenceService) Overview(actor models.User) (*PreferencesOverview, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return summarizePreferences(users), nil
}

// summarizePreferences builds the overview. The percentage is rounded to
// one decimal and is zero when there are no users.
func summarizePreferences(users []models.User) *PreferencesOverview {
	overview := &PreferencesOverview{
		Users:      make([]UserPreferences, 0, len(users)),
		Statistics: make(map[models.NotificationType]PreferenceStat, len(models.NotificationTypes)),
	}

	for _, u := range users {
		overview.Users = append(overview.Users, UserPreferences{
			ID:          u.ID,
			Name:        u.Name,
			Email:       u.Email,
			Preferences: notification.ResolvePreferences(u.EmailPreferences),
		})
	}

	total := len(users)
	for _, t := range models.NotificationTypes {
		enabled := 0
		for _, u := range users {
			if notification.PreferenceValue(u, t) {
				enabled++
			}
		}

		var percentage float64
		if total > 0 {
			percentage = math.Round(float64(enabled)/float64(total)*1000) / 10
		}
		overview.Statistics[t] = PreferenceStat{
			Enabled:    enabled,
			Disabled:   total - enabled,
			Percentage: percentage,
		}
	}

	return overview
}

func (s *PreferenceService) find(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
