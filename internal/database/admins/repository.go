// Package admins provides database operations for back-office accounts.
package admins

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/donorbase/internal/entities"
)

// Repository handles admin user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new admins repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new admin account. The password hash and token hash are
// produced by the auth service; this layer only stores them.
func (r *Repository) Create(email, username, passwordHash, tokenHash string, role entities.AdminRole) (*entities.AdminUser, error) {
	admin := &entities.AdminUser{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Username:     username,
		PasswordHash: passwordHash,
		TokenHash:    tokenHash,
		Role:         role,
	}
	if err := r.db.Create(admin).Error; err != nil {
		return nil, err
	}
	return admin, nil
}

// GetByEmail retrieves an admin by case-insensitive email.
func (r *Repository) GetByEmail(email string) (*entities.AdminUser, error) {
	var admin entities.AdminUser
	err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// GetByID retrieves an admin by primary key.
func (r *Repository) GetByID(id uint) (*entities.AdminUser, error) {
	var admin entities.AdminUser
	err := r.db.First(&admin, id).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// GetByTokenHash retrieves an admin by the SHA-256 hash of their API token.
func (r *Repository) GetByTokenHash(tokenHash string) (*entities.AdminUser, error) {
	var admin entities.AdminUser
	err := r.db.Where("token_hash = ?", tokenHash).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// Count returns the number of admin accounts. Used to decide whether the
// initial setup endpoint is still open.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.AdminUser{}).Count(&count).Error
	return count, err
}

// TouchLogin records a successful login time.
func (r *Repository) TouchLogin(id uint) error {
	now := time.Now()
	return r.db.Model(&entities.AdminUser{}).Where("id = ?", id).
		Update("last_login_at", now).Error
}

// ErrNotFound reports whether err is the record-not-found error.
func ErrNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
