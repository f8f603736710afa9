// Package donors provides database operations for donor records.
//
// # Usage
//
//	repo := donors.NewRepository(db)
//	donor, err := repo.FindByEmail("donor@example.com")
package donors

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/donorbase/internal/entities"
)

// Repository handles all donor database operations.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository creates a new donors repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// SetClock overrides the time source. Intended for tests.
func (r *Repository) SetClock(now func() time.Time) {
	r.now = now
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
// Donor emails are unique case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByEmail looks a donor up by case-insensitive email.
// Returns (nil, nil) when no donor matches.
func (r *Repository) FindByEmail(email string) (*entities.Donor, error) {
	var donor entities.Donor
	err := r.db.Where("email = ?", NormalizeEmail(email)).First(&donor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &donor, nil
}

// GetByID retrieves a donor by primary key.
func (r *Repository) GetByID(id uint) (*entities.Donor, error) {
	var donor entities.Donor
	err := r.db.First(&donor, id).Error
	if err != nil {
		return nil, err
	}
	return &donor, nil
}

// Create inserts a new donor. The email is normalized; a blank username
// falls back to the email local part.
func (r *Repository) Create(email, username string) (*entities.Donor, error) {
	email = NormalizeEmail(email)
	if username == "" {
		if at := strings.Index(email, "@"); at > 0 {
			username = email[:at]
		}
	}

	donor := &entities.Donor{
		Email:    email,
		Username: username,
		Status:   entities.DonorStatusActive,
	}
	if err := r.db.Create(donor).Error; err != nil {
		return nil, err
	}
	return donor, nil
}

// SetUsername backfills the username of an existing donor.
func (r *Repository) SetUsername(id uint, username string) error {
	return r.db.Model(&entities.Donor{}).Where("id = ?", id).
		Update("username", username).Error
}

// RecalculateAggregates recomputes the denormalized lifetime total, last
// donation date and lifecycle status from the donations table. Always a full
// re-aggregation from the source of truth, never an incremental update, so
// the cached values cannot drift.
func (r *Repository) RecalculateAggregates(id uint) error {
	var donor entities.Donor
	if err := r.db.First(&donor, id).Error; err != nil {
		return err
	}

	var total float64
	err := r.db.Model(&entities.Donation{}).
		Where("donor_id = ?", id).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return err
	}

	var last *time.Time
	row := struct{ Last *time.Time }{}
	err = r.db.Model(&entities.Donation{}).
		Where("donor_id = ?", id).
		Select("MAX(donation_date) AS last").
		Scan(&row).Error
	if err != nil {
		return err
	}
	last = row.Last

	status := entities.StatusForLastDonation(last, donor.Status, r.now())

	return r.db.Model(&entities.Donor{}).Where("id = ?", id).
		Updates(map[string]any{
			"lifetime_amount":    total,
			"last_donation_date": last,
			"status":             status,
		}).Error
}

// RefreshAllStatuses recomputes the lifecycle status for every donor from
// their last donation date. Returns the number of donors whose status changed.
func (r *Repository) RefreshAllStatuses() (int64, error) {
	var donors []entities.Donor
	if err := r.db.Find(&donors).Error; err != nil {
		return 0, err
	}

	var changed int64
	now := r.now()
	for _, donor := range donors {
		status := entities.StatusForLastDonation(donor.LastDonationDate, donor.Status, now)
		if status == donor.Status {
			continue
		}
		err := r.db.Model(&entities.Donor{}).Where("id = ?", donor.ID).
			Update("status", status).Error
		if err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// List returns donors filtered by an optional search query (matched against
// username and email) and status, newest first.
func (r *Repository) List(query string, status entities.DonorStatus, limit, offset int) ([]entities.Donor, int64, error) {
	var donorList []entities.Donor
	var total int64

	q := r.db.Model(&entities.Donor{})
	if query != "" {
		pattern := "%" + strings.ToLower(query) + "%"
		q = q.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&donorList).Error
	return donorList, total, err
}

// TopDonors returns donors ordered by lifetime amount.
func (r *Repository) TopDonors(limit int) ([]entities.Donor, error) {
	if limit <= 0 {
		limit = 10
	}
	var donorList []entities.Donor
	err := r.db.Order("lifetime_amount DESC").Limit(limit).Find(&donorList).Error
	return donorList, err
}

// Stats returns donor counts for the dashboard overview.
func (r *Repository) Stats() (total, active int64, lifetime float64, err error) {
	if err = r.db.Model(&entities.Donor{}).Count(&total).Error; err != nil {
		return
	}
	if err = r.db.Model(&entities.Donor{}).
		Where("status = ?", entities.DonorStatusActive).Count(&active).Error; err != nil {
		return
	}
	err = r.db.Model(&entities.Donor{}).
		Select("COALESCE(SUM(lifetime_amount), 0)").Scan(&lifetime).Error
	return
}
