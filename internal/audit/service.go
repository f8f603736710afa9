// Package audit provides high-level audit logging over the audit repository.
package audit

import (
	"encoding/json"
	"log"
	"time"

	auditrepo "github.com/mrlokans/donorbase/internal/database/audit"
	"github.com/mrlokans/donorbase/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *auditrepo.Repository
}

// NewService creates a new audit service.
func NewService(repo *auditrepo.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	go func() {
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// ImportMetadata is the structured payload attached to csv_import events.
type ImportMetadata struct {
	Provider           string `json:"provider"`
	Filename           string `json:"filename"`
	TotalRows          int    `json:"total_rows"`
	ProcessedRows      int    `json:"processed_rows"`
	FailedRows         int    `json:"failed_rows"`
	NewUsers           int    `json:"new_users"`
	ExistingUsers      int    `json:"existing_users"`
	NewDonations       int    `json:"new_donations"`
	DuplicateDonations int    `json:"duplicate_donations"`
}

// LogImport records a CSV import run. Called synchronously from the pipeline
// so the audit entry exists before the run result is returned to the caller.
func (s *Service) LogImport(actorID uint, runID uint, description string, meta ImportMetadata, failed bool) error {
	event := &entities.AuditEvent{
		ActorID:     actorID,
		Action:      entities.AuditActionCSVImport,
		Description: description,
		EntityType:  "import_run",
		EntityID:    &runID,
		Status:      entities.AuditStatusSuccess,
	}
	if failed {
		event.Status = entities.AuditStatusFailed
	}

	if mdBytes, err := json.Marshal(meta); err == nil {
		event.Metadata = string(mdBytes)
	}

	return s.repo.LogEvent(event)
}

// LogManualEntry records a manually created donation.
func (s *Service) LogManualEntry(actorID, donationID uint, description string) {
	s.LogAsync(&entities.AuditEvent{
		ActorID:     actorID,
		Action:      entities.AuditActionManualEntry,
		Description: description,
		EntityType:  "donation",
		EntityID:    &donationID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogDonationDelete records the removal of a donation.
func (s *Service) LogDonationDelete(actorID, donationID uint, description string) {
	s.LogAsync(&entities.AuditEvent{
		ActorID:     actorID,
		Action:      entities.AuditActionDonationDelete,
		Description: description,
		EntityType:  "donation",
		EntityID:    &donationID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogAuth records a login or logout event.
func (s *Service) LogAuth(actorID uint, description string, success bool) {
	event := &entities.AuditEvent{
		ActorID:     actorID,
		Action:      entities.AuditActionAuth,
		Description: description,
		Status:      entities.AuditStatusSuccess,
	}
	if !success {
		event.Status = entities.AuditStatusFailed
	}
	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(actorID uint, action entities.AuditAction, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(actorID, action, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}
