package notification

import (
	"strings"

	"github.com/teamtasks/task-management-api/internal/models"
)

// DefaultPreferences returns a fresh mapping with every notification type
// enabled. Read and write paths both start from this.
func DefaultPreferences() models.Preferences {
	prefs := make(models.Preferences, len(models.NotificationTypes))
	for _, t := range models.NotificationTypes {
		prefs[t] = true
	}
	return prefs
}

// PreferenceValue returns the user's stored choice for a notification type,
// or true when nothing is stored.
func PreferenceValue(user models.User, t models.NotificationType) bool {
	if enabled, ok := user.EmailPreferences[t]; ok {
		return enabled
	}
	return true
}

// CanReceive reports whether an e-mail of the given type should be
// attempted for the user.
func CanReceive(user models.User, t models.NotificationType) bool {
	return PreferenceValue(user, t) && strings.TrimSpace(user.Email) != ""
}

// MergePreferences overlays patch onto current, seeded with the defaults.
// The result always carries every known type and the inputs are left
// untouched.
func MergePreferences(current, patch models.Preferences) models.Preferences {
	merged := DefaultPreferences()
	for t, enabled := range current {
		merged[t] = enabled
	}
	for t, enabled := range patch {
		merged[t] = enabled
	}
	return merged
}

// ResolvePreferences is the read-side view of stored preferences.
func ResolvePreferences(stored models.Preferences) models.Preferences {
	return MergePreferences(stored, nil)
}
