package entities

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type DonorStatus string

const (
	DonorStatusActive    DonorStatus = "active"
	DonorStatusInactive  DonorStatus = "inactive"
	DonorStatusSuspended DonorStatus = "suspended"
)

// Donor status thresholds based on last donation recency.
const (
	ActiveWithinDays   = 90
	InactiveWithinDays = 365
)

type Donor struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Email            string         `gorm:"uniqueIndex;size:255" json:"email"`
	Username         string         `gorm:"size:100" json:"username"`
	LifetimeAmount   float64        `gorm:"default:0" json:"lifetime_amount"`
	LastDonationDate *time.Time     `json:"last_donation_date,omitempty"`
	Status           DonorStatus    `gorm:"size:20;default:'active'" json:"status"`
	Donations        []Donation     `gorm:"foreignKey:DonorID" json:"donations,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// DisplayName returns the username, falling back to the email local part.
func (d Donor) DisplayName() string {
	if d.Username != "" {
		return d.Username
	}
	if at := strings.Index(d.Email, "@"); at > 0 {
		return d.Email[:at]
	}
	return d.Email
}

// StatusForLastDonation derives the lifecycle status from donation recency.
// Suspended is an admin action and is never assigned automatically, so the
// current status is returned unchanged in that case. A donor with no
// donations on record is inactive, which also covers a donor whose every
// donation has been deleted.
func StatusForLastDonation(last *time.Time, current DonorStatus, now time.Time) DonorStatus {
	if current == DonorStatusSuspended {
		return current
	}
	if last == nil {
		return DonorStatusInactive
	}
	days := int(now.Sub(*last).Hours() / 24)
	switch {
	case days <= ActiveWithinDays:
		return DonorStatusActive
	case days <= InactiveWithinDays:
		return DonorStatusInactive
	}
	return current
}

type Donation struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	DonorID       uint           `gorm:"index" json:"donor_id"`
	Amount        float64        `json:"amount"`
	Currency      string         `gorm:"size:10;default:'USD'" json:"currency"`
	Platform      string         `gorm:"index;size:50" json:"platform"`
	TransactionID string         `gorm:"index;size:256" json:"transaction_id,omitempty"`
	DonationDate  time.Time      `gorm:"index" json:"donation_date"`
	Donor         Donor          `gorm:"foreignKey:DonorID" json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Donor) TableName() string {
	return "donors"
}

func (Donation) TableName() string {
	return "donations"
}
