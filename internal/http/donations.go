package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/donorbase/internal/audit"
	"github.com/mrlokans/donorbase/internal/database/donations"
	"github.com/mrlokans/donorbase/internal/database/donors"
	"github.com/mrlokans/donorbase/internal/entities"
)

// DonationsController handles manual donation entry and donation management.
type DonationsController struct {
	donors          *donors.Repository
	donations       *donations.Repository
	auditService    *audit.Service
	defaultCurrency string
}

// NewDonationsController creates a new donations controller.
func NewDonationsController(donorRepo *donors.Repository, donationRepo *donations.Repository, auditService *audit.Service, defaultCurrency string) *DonationsController {
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}
	return &DonationsController{
		donors:          donorRepo,
		donations:       donationRepo,
		auditService:    auditService,
		defaultCurrency: defaultCurrency,
	}
}

type manualEntryRequest struct {
	Email         string  `json:"email" binding:"required"`
	Username      string  `json:"username"`
	Amount        float64 `json:"amount" binding:"required"`
	DonationDate  string  `json:"donation_date" binding:"required"`
	TransactionID string  `json:"transaction_id"`
	Platform      string  `json:"platform"`
	Currency      string  `json:"currency"`
}

// Create records a single donation entered by hand. The same duplicate rules
// apply as for CSV imports: a known transaction id, or the same donor, amount
// and calendar day, is rejected.
func (dc *DonationsController) Create(c *gin.Context) {
	var req manualEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email, amount and donation_date are required")
		return
	}

	if req.Amount <= 0 {
		respondBadRequest(c, fmt.Sprintf("amount must be positive: %.2f", req.Amount))
		return
	}

	donationDate, err := time.ParseInLocation("2006-01-02", req.DonationDate, time.Local)
	if err != nil {
		donationDate, err = time.ParseInLocation("2006-01-02 15:04:05", req.DonationDate, time.Local)
	}
	if err != nil {
		respondBadRequest(c, "donation_date must be YYYY-MM-DD or YYYY-MM-DD HH:MM:SS")
		return
	}

	if req.TransactionID != "" {
		existing, err := dc.donations.FindByTransactionID(req.TransactionID)
		if err != nil {
			respondInternalError(c, err, "manual entry duplicate check")
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "donation with this transaction_id already exists"})
			return
		}
	}

	donor, err := dc.donors.FindByEmail(req.Email)
	if err != nil {
		respondInternalError(c, err, "manual entry donor lookup")
		return
	}
	if donor == nil {
		donor, err = dc.donors.Create(req.Email, req.Username)
		if err != nil {
			respondInternalError(c, err, "manual entry donor creation")
			return
		}
	}

	existing, err := dc.donations.FindByDonorAmountDay(donor.ID, req.Amount, donationDate)
	if err != nil {
		respondInternalError(c, err, "manual entry duplicate check")
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "donation with this amount already exists for this donor on this day"})
		return
	}

	platform := req.Platform
	if platform == "" {
		platform = "Manual"
	}
	currency := req.Currency
	if currency == "" {
		currency = dc.defaultCurrency
	}

	donation := &entities.Donation{
		DonorID:       donor.ID,
		Amount:        req.Amount,
		Currency:      currency,
		Platform:      platform,
		TransactionID: req.TransactionID,
		DonationDate:  donationDate,
	}
	if err := dc.donations.Create(donation); err != nil {
		respondInternalError(c, err, "manual entry creation")
		return
	}

	if err := dc.donors.RecalculateAggregates(donor.ID); err != nil {
		respondInternalError(c, err, "manual entry aggregate update")
		return
	}

	if dc.auditService != nil {
		desc := fmt.Sprintf("Manually recorded %.2f %s donation for %s", req.Amount, currency, donor.Email)
		dc.auditService.LogManualEntry(GetActorID(c), donation.ID, desc)
	}

	respondCreated(c, donation)
}

// List returns donations, optionally filtered by platform.
func (dc *DonationsController) List(c *gin.Context) {
	limit, offset := parsePagination(c)
	platform := c.Query("platform")

	list, total, err := dc.donations.List(platform, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list donations")
		return
	}

	c.JSON(http.StatusOK, paginated(list, total, limit, offset))
}

// Delete removes a donation and recomputes the donor's aggregates.
func (dc *DonationsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	donation, err := dc.donations.GetByID(id)
	if err != nil {
		respondNotFound(c, "donation")
		return
	}

	if err := dc.donations.Delete(id); err != nil {
		respondInternalError(c, err, "delete donation")
		return
	}

	if err := dc.donors.RecalculateAggregates(donation.DonorID); err != nil {
		respondInternalError(c, err, "delete donation aggregate update")
		return
	}

	if dc.auditService != nil {
		desc := fmt.Sprintf("Deleted %.2f %s donation (donor %d)", donation.Amount, donation.Currency, donation.DonorID)
		dc.auditService.LogDonationDelete(GetActorID(c), donation.ID, desc)
	}

	respondSuccess(c, "donation deleted")
}
