package auth

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/mrlokans/donorbase/internal/config"
	"github.com/mrlokans/donorbase/internal/database/admins"
	"github.com/mrlokans/donorbase/internal/entities"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrAdminNotFound    = errors.New("admin not found")
	ErrAdminExists      = errors.New("admin already exists")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidRole      = errors.New("invalid role")
	ErrUsernameRequired = errors.New("username is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
	ErrEmailInvalid     = errors.New("invalid email format")
)

// Service handles authentication and admin account management.
type Service struct {
	admins *admins.Repository
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(repo *admins.Repository, cfg config.Auth) *Service {
	return &Service{
		admins: repo,
		config: cfg,
	}
}

// CreateAdmin creates a back-office account and issues its API token.
// The plaintext token is returned exactly once.
func (s *Service) CreateAdmin(email, username, password string, role entities.AdminRole) (*entities.AdminUser, string, error) {
	if username == "" {
		return nil, "", ErrUsernameRequired
	}
	if email == "" {
		return nil, "", ErrEmailRequired
	}
	if password == "" {
		return nil, "", ErrPasswordRequired
	}
	if !usernamePattern.MatchString(username) {
		return nil, "", ErrUsernameInvalid
	}
	// RFC 5321 limit is 254
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, "", ErrEmailInvalid
	}
	switch role {
	case entities.AdminRoleAdmin, entities.AdminRoleViewer:
	default:
		return nil, "", ErrInvalidRole
	}

	existing, err := s.admins.GetByEmail(email)
	if err == nil && existing != nil {
		return nil, "", ErrAdminExists
	}
	if err != nil && !admins.ErrNotFound(err) {
		return nil, "", fmt.Errorf("failed to check existing admin: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, "", err
	}

	plaintext, tokenHash, err := GenerateAPIToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	admin, err := s.admins.Create(email, username, passwordHash, tokenHash, role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create admin: %w", err)
	}

	return admin, plaintext, nil
}

// Authenticate validates email and password and returns the admin.
func (s *Service) Authenticate(email, password string) (*entities.AdminUser, error) {
	admin, err := s.admins.GetByEmail(email)
	if err != nil {
		if admins.ErrNotFound(err) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}

	if err := CheckPassword(password, admin.PasswordHash); err != nil {
		return nil, err
	}

	if err := s.admins.TouchLogin(admin.ID); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	return admin, nil
}

// ValidateToken checks a plaintext API token and returns the associated admin.
func (s *Service) ValidateToken(token string) (*entities.AdminUser, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	admin, err := s.admins.GetByTokenHash(HashToken(token))
	if err != nil {
		if admins.ErrNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return admin, nil
}

// GetAdminByID retrieves an admin account by its ID.
func (s *Service) GetAdminByID(id uint) (*entities.AdminUser, error) {
	admin, err := s.admins.GetByID(id)
	if err != nil {
		if admins.ErrNotFound(err) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return admin, nil
}

// HasAdmins returns true if any back-office accounts exist.
func (s *Service) HasAdmins() (bool, error) {
	count, err := s.admins.Count()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsAuthEnabled returns true if authentication is required.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeLocal
}
