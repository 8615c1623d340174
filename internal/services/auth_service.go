package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/teamtasks/task-management-api/internal/models"
	"github.com/teamtasks/task-management-api/internal/notification"
	"github.com/teamtasks/task-management-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials   = errors.New("the provided credentials are incorrect")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
	ErrRoleChangeForbidden  = errors.New("you cannot change your own role")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	notifier *notification.Notifier
	rules    userRules
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, notifier *notification.Notifier) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		notifier: notifier,
		rules:    userRules{validate: newValidator(), userRepo: userRepo},
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation *string
}

// Register creates a regular user and sends the welcome e-mail.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	errs := fieldErrors{}
	s.rules.name(errs, input.Name)
	if err := s.rules.email(errs, input.Email, 0); err != nil {
		return nil, err
	}
	s.rules.password(errs, input.Password)
	if input.PasswordConfirmation != nil && *input.PasswordConfirmation != input.Password {
		errs.add("password", "The password field confirmation does not match.")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        normalizeEmail(input.Email),
		PasswordHash: hashed,
		Role:         models.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateUser, err)
	}

	s.notifier.Welcome(ctx, *user)

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// ProfileInput carries the profile fields present in a request.
type ProfileInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// UpdateProfile edits the actor's own account. The role is not editable
// here; asking for a different role is refused.
func (s *AuthService) UpdateProfile(actor models.User, input ProfileInput) (*models.User, error) {
	if input.Role != nil && models.UserRole(*input.Role) != actor.Role {
		return nil, ErrRoleChangeForbidden
	}

	errs := fieldErrors{}
	if input.Name != nil {
		s.rules.name(errs, *input.Name)
	}
	if input.Email != nil {
		if err := s.rules.email(errs, *input.Email, actor.ID); err != nil {
			return nil, err
		}
	}
	if input.Password != nil {
		s.rules.password(errs, *input.Password)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	user, err := s.GetUser(actor.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		user.Email = normalizeEmail(*input.Email)
	}
	if input.Password != nil {
		hashed, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}
