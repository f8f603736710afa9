// Package imports provides database operations for import run records.
package imports

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/donorbase/internal/entities"
)

// Repository handles import run database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new import runs repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create records the start of an upload attempt. The run gets a UUID
// reference and starts in the processing state.
func (r *Repository) Create(filename, provider string, actorID uint) (*entities.ImportRun, error) {
	run := &entities.ImportRun{
		Reference: uuid.New().String(),
		Filename:  filename,
		Provider:  provider,
		Status:    entities.ImportStatusProcessing,
		ActorID:   actorID,
	}
	if err := r.db.Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// Finish writes the terminal state of a run. Counters, error details and
// summary must already be set on the run by the caller.
func (r *Repository) Finish(run *entities.ImportRun, status entities.ImportStatus) error {
	now := time.Now()
	run.Status = status
	run.CompletedAt = &now
	return r.db.Save(run).Error
}

// GetByID retrieves a run by primary key.
func (r *Repository) GetByID(id uint) (*entities.ImportRun, error) {
	var run entities.ImportRun
	err := r.db.First(&run, id).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns runs newest first, optionally filtered by status and provider.
func (r *Repository) List(status entities.ImportStatus, provider string, limit, offset int) ([]entities.ImportRun, int64, error) {
	var runs []entities.ImportRun
	var total int64

	q := r.db.Model(&entities.ImportRun{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if provider != "" {
		q = q.Where("provider = ?", provider)
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

	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&runs).Error
	return runs, total, err
}

// DeleteOldRuns removes terminal runs older than the given time. Returns the
// number of deleted runs.
func (r *Repository) DeleteOldRuns(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ? AND status IN ?", olderThan,
		[]entities.ImportStatus{entities.ImportStatusCompleted, entities.ImportStatusFailed}).
		Delete(&entities.ImportRun{})
	return result.RowsAffected, result.Error
}
