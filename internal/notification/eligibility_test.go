package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/teamtasks/task-management-api/internal/models"
)

func TestDefaultPreferences(t *testing.T) {
	prefs := DefaultPreferences()
	assert.Len(t, prefs, 5)
	for _, nt := range models.NotificationTypes {
		assert.True(t, prefs[nt], nt)
	}

	// Each call returns an independent map.
	prefs[models.NotificationTaskAssigned] = false
	assert.True(t, DefaultPreferences()[models.NotificationTaskAssigned])
}

func TestPreferenceValue(t *testing.T) {
	tests := []struct {
		name  string
		prefs models.Preferences
		want  bool
	}{
		{"nil mapping", nil, true},
		{"empty mapping", models.Preferences{}, true},
		{"key absent", models.Preferences{models.NotificationTaskAssigned: false}, true},
		{"stored false", models.Preferences{models.NotificationTaskReminders: false}, false},
		{"stored true", models.Preferences{models.NotificationTaskReminders: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := models.User{Email: "x@example.com", EmailPreferences: tt.prefs}
			assert.Equal(t, tt.want, PreferenceValue(user, models.NotificationTaskReminders))
		})
	}
}

func TestCanReceive(t *testing.T) {
	enabled := models.User{Email: "x@example.com"}
	assert.True(t, CanReceive(enabled, models.NotificationTaskAssigned))

	optedOut := models.User{Email: "x@example.com", EmailPreferences: models.Preferences{
		models.NotificationTaskAssigned: false,
	}}
	assert.False(t, CanReceive(optedOut, models.NotificationTaskAssigned))
	assert.True(t, CanReceive(optedOut, models.NotificationTaskUpdated))

	noEmail := models.User{Email: "  "}
	assert.False(t, CanReceive(noEmail, models.NotificationTaskAssigned))
}

func TestMergePreferences(t *testing.T) {
	t.Run("overlays onto partial current", func(t *testing.T) {
		merged := MergePreferences(
			models.Preferences{models.NotificationTaskAssigned: false},
			models.Preferences{models.NotificationWelcomeEmail: false},
		)

		assert.Equal(t, models.Preferences{
			models.NotificationTaskAssigned:  false,
			models.NotificationTaskUpdated:   true,
			models.NotificationTaskReminders: true,
			models.NotificationWelcomeEmail:  false,
			models.NotificationPasswordReset: true,
		}, merged)
	})

	t.Run("empty current is seeded with defaults", func(t *testing.T) {
		merged := MergePreferences(nil, models.Preferences{models.NotificationTaskUpdated: false})
		expected := DefaultPreferences()
		expected[models.NotificationTaskUpdated] = false
		assert.Equal(t, expected, merged)
	})

	t.Run("patch wins", func(t *testing.T) {
		merged := MergePreferences(
			models.Preferences{models.NotificationTaskReminders: false},
			models.Preferences{models.NotificationTaskReminders: true},
		)
		assert.True(t, merged[models.NotificationTaskReminders])
	})

	t.Run("idempotent", func(t *testing.T) {
		patch := models.Preferences{models.NotificationTaskAssigned: false}
		once := MergePreferences(models.Preferences{models.NotificationWelcomeEmail: false}, patch)
		twice := MergePreferences(once, patch)
		assert.Equal(t, once, twice)
	})

	t.Run("inputs are not mutated", func(t *testing.T) {
		current := models.Preferences{models.NotificationTaskAssigned: false}
		patch := models.Preferences{models.NotificationTaskUpdated: false}
		MergePreferences(current, patch)
		assert.Len(t, current, 1)
		assert.Len(t, patch, 1)
	})
}

func TestResolvePreferences(t *testing.T) {
	assert.Equal(t, DefaultPreferences(), ResolvePreferences(nil))
}
