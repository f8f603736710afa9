package entities

import "time"

type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "pending"
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

// ImportRun records a single CSV upload attempt. Created when the upload
// starts and finalized exactly once; terminal runs are never mutated again.
type ImportRun struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Reference string       `gorm:"uniqueIndex;size:36" json:"reference"`
	Filename  string       `gorm:"size:512" json:"filename"`
	Provider  string       `gorm:"index;size:20" json:"provider"`
	Status    ImportStatus `gorm:"index;size:20;default:'pending'" json:"status"`
	ActorID   uint         `gorm:"index" json:"actor_id"`

	TotalRows     int `json:"total_rows"`
	ProcessedRows int `json:"processed_rows"`
	FailedRows    int `json:"failed_rows"`

	// JSON-encoded error list and counter summary for dashboard display.
	ErrorDetails string `gorm:"type:text" json:"error_details,omitempty"`
	Summary      string `gorm:"type:text" json:"summary,omitempty"`

	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Terminal reports whether the run has reached a final state.
func (r ImportRun) Terminal() bool {
	return r.Status == ImportStatusCompleted || r.Status == ImportStatusFailed
}

// SuccessRate returns the processed-row percentage for dashboard listings.
func (r ImportRun) SuccessRate() float64 {
	if r.TotalRows == 0 {
		return 0
	}
	return float64(r.ProcessedRows) / float64(r.TotalRows) * 100
}

func (ImportRun) TableName() string {
	return "import_runs"
}
