package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/teamtasks/task-management-api/internal/constants"
	"github.com/teamtasks/task-management-api/internal/models"
	"github.com/teamtasks/task-management-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// userRules holds the checks shared by registration, profile edits and
// admin user management.
type userRules struct {
	validate *validator.Validate
	userRepo repository.UserRepository
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r userRules) name(errs fieldErrors, name string) {
	name = strings.TrimSpace(name)
	if !errs.check(r.validate, "name", name, "required", "The name field is required.") {
		return
	}
	errs.check(r.validate, "name", name, fmt.Sprintf("max=%d", constants.MaxNameLength),
		fmt.Sprintf("The name field must not be greater than %d characters.", constants.MaxNameLength))
}

// email checks format and uniqueness. ignoreID is the user allowed to
// already own the address, zero for none.
func (r userRules) email(errs fieldErrors, email string, ignoreID uint64) error {
	email = normalizeEmail(email)
	if !errs.check(r.validate, "email", email, "required", "The email field is required.") {
		return nil
	}
	if !errs.check(r.validate, "email", email, "email", "The email field must be a valid email address.") {
		return nil
	}
	if !errs.check(r.validate, "email", email, "max=255", "The email field must not be greater than 255 characters.") {
		return nil
	}

	existing, err := r.userRepo.FindByEmail(email)
	switch {
	case err == nil && existing.ID != ignoreID:
		errs.add("email", "The email has already been taken.")
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("failed to check email: %w", err)
	}
	return nil
}

func (r userRules) password(errs fieldErrors, password string) {
	if !errs.check(r.validate, "password", password, "required", "The password field is required.") {
		return
	}
	errs.check(r.validate, "password", password, fmt.Sprintf("min=%d", constants.MinPasswordLength),
		fmt.Sprintf("The password field must be at least %d characters.", constants.MinPasswordLength))
}

func (r userRules) role(errs fieldErrors, role string) models.UserRole {
	parsed, err := models.ParseUserRole(role)
	if err != nil {
		errs.add("role", "The selected role is invalid.")
		return ""
	}
	return parsed
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrFailedToHashPassword
	}
	return string(hashed), nil
}
