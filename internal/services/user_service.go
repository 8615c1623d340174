package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/teamtasks/task-management-api/internal/models"
	"github.com/teamtasks/task-management-api/internal/notification"
	"github.com/teamtasks/task-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrAdminOnly        = errors.New("forbidden")
	ErrCannotDeleteSelf = errors.New("you cannot delete your own account")
)

// UserService is the admin-only user management surface.
type UserService struct {
	userRepo repository.UserRepository
	notifier *notification.Notifier
	rules    userRules
}

func NewUserService(userRepo repository.UserRepository, notifier *notification.Notifier) *UserService {
	return &UserService{
		userRepo: userRepo,
		notifier: notifier,
		rules:    userRules{validate: newValidator(), userRepo: userRepo},
	}
}

// UserInput carries the user fields present in a request.
type UserInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

func (s *UserService) ListUsers(actor models.User) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *UserService) GetUser(actor models.User, id uint64) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	return s.find(id)
}

// CreateUser creates an account with any role and sends the welcome
// e-mail. Every field is required.
func (s *UserService) CreateUser(ctx context.Context, actor models.User, input UserInput) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	errs := fieldErrors{}
	s.rules.name(errs, deref(input.Name))
	if err := s.rules.email(errs, deref(input.Email), 0); err != nil {
		return nil, err
	}
	s.rules.password(errs, deref(input.Password))
	var role models.UserRole
	if input.Role == nil {
		errs.add("role", "The role field is required.")
	} else {
		role = s.rules.role(errs, *input.Role)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	hashed, err := hashPassword(*input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(*input.Name),
		Email:        normalizeEmail(*input.Email),
		PasswordHash: hashed,
		Role:         role,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateUser, err)
	}

	s.notifier.Welcome(ctx, *user)

	return user, nil
}

// UpdateUser changes the present fields. A null or empty password leaves
// the current one in place.
func (s *UserService) UpdateUser(actor models.User, id uint64, input UserInput) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	user, err := s.find(id)
	if err != nil {
		return nil, err
	}

	errs := fieldErrors{}
	if input.Name != nil {
		s.rules.name(errs, *input.Name)
	}
	if input.Email != nil {
		if err := s.rules.email(errs, *input.Email, user.ID); err != nil {
			return nil, err
		}
	}
	changePassword := input.Password != nil && *input.Password != ""
	if changePassword {
		s.rules.password(errs, *input.Password)
	}
	var role models.UserRole
	if input.Role != nil {
		role = s.rules.role(errs, *input.Role)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		user.Email = normalizeEmail(*input.Email)
	}
	if changePassword {
		hashed, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}
	if input.Role != nil {
		user.Role = role
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user together with their tasks. Admins cannot
// remove themselves.
func (s *UserService) DeleteUser(actor models.User, id uint64) error {
	if !actor.IsAdmin() {
		return ErrAdminOnly
	}
	if actor.ID == id {
		return ErrCannotDeleteSelf
	}

	if err := s.userRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (s *UserService) find(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
