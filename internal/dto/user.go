package dto

import (
	"time"

	"github.com/teamtasks/task-management-api/internal/models"
	"github.com/teamtasks/task-management-api/internal/notification"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID               uint64             `json:"id"`
	Name             string             `json:"name"`
	Email            string             `json:"email"`
	Role             models.UserRole    `json:"role"`
	EmailPreferences models.Preferences `json:"email_preferences"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// ToUserDTO converts a User model to UserDTO with effective preferences
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:               user.ID,
		Name:             user.Name,
		Email:            user.Email,
		Role:             user.Role,
		EmailPreferences: notification.ResolvePreferences(user.EmailPreferences),
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}
}

func ToUserDTOs(users []models.User) []UserDTO {
	items := make([]UserDTO, len(users))
	for i, user := range users {
		items[i] = ToUserDTO(user)
	}
	return items
}

// PreferencesUpdateResponse is returned after a preference change
type PreferencesUpdateResponse struct {
	Message     string             `json:"message"`
	Preferences models.Preferences `json:"preferences"`
	User        *PreferenceOwner   `json:"user,omitempty"`
}

// PreferenceOwner identifies whose preferences an admin changed
type PreferenceOwner struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
