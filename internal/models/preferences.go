package models

import (
	"encoding/json"
	"fmt"
)

// NotificationType identifies a category of outbound e-mail a user can opt
// out of.
type NotificationType string

const (
	NotificationTaskAssigned  NotificationType = "task_assigned"
	NotificationTaskUpdated   NotificationType = "task_updated"
	NotificationTaskReminders NotificationType = "task_reminders"
	NotificationWelcomeEmail  NotificationType = "welcome_email"
	NotificationPasswordReset NotificationType = "password_reset"
)

// NotificationTypes lists every known notification type in a stable order.
var NotificationTypes = []NotificationType{
	NotificationTaskAssigned,
	NotificationTaskUpdated,
	NotificationTaskReminders,
	NotificationWelcomeEmail,
	NotificationPasswordReset,
}

func ParseNotificationType(s string) (NotificationType, error) {
	t := NotificationType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown notification type %q", s)
	}
	return t, nil
}

func (t NotificationType) Valid() bool {
	for _, known := range NotificationTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t *NotificationType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseNotificationType(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Preferences maps a notification type to whether the user wants it.
// A missing key means enabled.
type Preferences map[NotificationType]bool
