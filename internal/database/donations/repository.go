// Package donations provides database operations for donation records.
package donations

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/donorbase/internal/entities"
)

// Repository handles all donation database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new donations repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByTransactionID looks a donation up by its provider transaction
// identifier. Returns (nil, nil) when no donation matches. Transaction
// identifiers are globally unique when present.
func (r *Repository) FindByTransactionID(txID string) (*entities.Donation, error) {
	if txID == "" {
		return nil, nil
	}
	var donation entities.Donation
	err := r.db.Where("transaction_id = ?", txID).First(&donation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

// FindByDonorAmountDay is the fallback duplicate lookup: same donor, same
// amount, donation date within the same calendar day as the given timestamp.
// Returns (nil, nil) when no donation matches.
func (r *Repository) FindByDonorAmountDay(donorID uint, amount float64, day time.Time) (*entities.Donation, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var donation entities.Donation
	err := r.db.Where(
		"donor_id = ? AND amount = ? AND donation_date >= ? AND donation_date < ?",
		donorID, amount, start, end,
	).First(&donation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

// Create inserts a new donation.
func (r *Repository) Create(donation *entities.Donation) error {
	return r.db.Create(donation).Error
}

// GetByID retrieves a donation by primary key.
func (r *Repository) GetByID(id uint) (*entities.Donation, error) {
	var donation entities.Donation
	err := r.db.First(&donation, id).Error
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

// Delete soft-deletes a donation. The caller is responsible for recomputing
// the donor's aggregates afterwards.
func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.Donation{}, id).Error
}

// ListForDonor returns a donor's donations, newest first.
func (r *Repository) ListForDonor(donorID uint, limit, offset int) ([]entities.Donation, int64, error) {
	var list []entities.Donation
	var total int64

	q := r.db.Model(&entities.Donation{}).Where("donor_id = ?", donorID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	err := q.Order("donation_date DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

// List returns donations filtered by platform, newest first.
func (r *Repository) List(platform string, limit, offset int) ([]entities.Donation, int64, error) {
	var list []entities.Donation
	var total int64

	q := r.db.Model(&entities.Donation{})
	if platform != "" {
		q = q.Where("platform = ?", platform)
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

	err := q.Order("donation_date DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

// PlatformTotal holds an aggregate per platform for the stats endpoint.
type PlatformTotal struct {
	Platform string  `json:"platform"`
	Count    int64   `json:"count"`
	Total    float64 `json:"total"`
}

// StatsByPlatform returns donation counts and totals grouped by platform.
func (r *Repository) StatsByPlatform() ([]PlatformTotal, error) {
	var totals []PlatformTotal
	err := r.db.Model(&entities.Donation{}).
		Select("platform, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Group("platform").
		Order("total DESC").
		Scan(&totals).Error
	return totals, err
}

// TotalForPeriod returns the donation sum within [start, end).
func (r *Repository) TotalForPeriod(start, end time.Time) (float64, error) {
	var total float64
	err := r.db.Model(&entities.Donation{}).
		Where("donation_date >= ? AND donation_date < ?", start, end).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
