package entities

import "time"

type AuditAction string

const (
	AuditActionCSVImport      AuditAction = "csv_import"
	AuditActionManualEntry    AuditAction = "manual_entry"
	AuditActionDonationDelete AuditAction = "donation_delete"
	AuditActionDonorUpdate    AuditAction = "donor_update"
	AuditActionAuth           AuditAction = "auth"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	ActorID     uint        `gorm:"index" json:"actor_id"`
	Action      AuditAction `gorm:"index;size:50" json:"action"`
	Description string      `gorm:"size:500" json:"description"`
	EntityType  string      `gorm:"size:50" json:"entity_type,omitempty"`
	EntityID    *uint       `gorm:"index" json:"entity_id,omitempty"`
	Metadata    string      `gorm:"type:text" json:"metadata,omitempty"` // JSON payload
	Status      AuditStatus `gorm:"size:20" json:"status"`
	ErrorMsg    string      `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
