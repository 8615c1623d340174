package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// ParseUserRole converts a raw string into a UserRole, rejecting anything
// outside the known set.
func ParseUserRole(s string) (UserRole, error) {
	role := UserRole(s)
	if !role.Valid() {
		return "", fmt.Errorf("invalid role %q", s)
	}
	return role, nil
}

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

// UnmarshalJSON rejects unknown roles at the boundary.
func (r *UserRole) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	role, err := ParseUserRole(s)
	if err != nil {
		return err
	}
	*r = role
	return nil
}

type User struct {
	ID               uint64      `gorm:"primarykey" json:"id"`
	Name             string      `gorm:"type:varchar(255);not null" json:"name"`
	Email            string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash     string      `gorm:"type:varchar(255);not null" json:"-"`
	Role             UserRole    `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	EmailPreferences Preferences `gorm:"type:json;serializer:json" json:"email_preferences"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`

	// Relations
	Tasks []Task `gorm:"foreignKey:AssignedTo" json:"-"`
}

func (u User) IsAdmin() bool {
	return u.Role.IsAdmin()
}
