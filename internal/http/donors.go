package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/donorbase/internal/database/donations"
	"github.com/mrlokans/donorbase/internal/database/donors"
	"github.com/mrlokans/donorbase/internal/entities"
)

// DonorsController handles donor browsing and dashboard statistics.
type DonorsController struct {
	donors    *donors.Repository
	donations *donations.Repository
}

// NewDonorsController creates a new donors controller.
func NewDonorsController(donorRepo *donors.Repository, donationRepo *donations.Repository) *DonorsController {
	return &DonorsController{
		donors:    donorRepo,
		donations: donationRepo,
	}
}

// List returns donors, optionally filtered by a search query (matched against
// username and email) and lifecycle status.
func (dc *DonorsController) List(c *gin.Context) {
	limit, offset := parsePagination(c)
	query := c.Query("q")
	status := entities.DonorStatus(c.Query("status"))

	switch status {
	case "", entities.DonorStatusActive, entities.DonorStatusInactive, entities.DonorStatusSuspended:
	default:
		respondBadRequest(c, "unknown status: "+string(status))
		return
	}

	donorList, total, err := dc.donors.List(query, status, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list donors")
		return
	}

	c.JSON(http.StatusOK, paginated(donorList, total, limit, offset))
}

// Get returns a single donor.
func (dc *DonorsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	donor, err := dc.donors.GetByID(id)
	if err != nil {
		respondNotFound(c, "donor")
		return
	}

	c.JSON(http.StatusOK, donor)
}

// Donations returns a donor's donation history, newest first.
func (dc *DonorsController) Donations(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := dc.donors.GetByID(id); err != nil {
		respondNotFound(c, "donor")
		return
	}

	limit, offset := parsePagination(c)
	list, total, err := dc.donations.ListForDonor(id, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list donor donations")
		return
	}

	c.JSON(http.StatusOK, paginated(list, total, limit, offset))
}

// Top returns donors ranked by lifetime amount.
func (dc *DonorsController) Top(c *gin.Context) {
	limit, _ := parsePagination(c)

	donorList, err := dc.donors.TopDonors(limit)
	if err != nil {
		respondInternalError(c, err, "top donors")
		return
	}

	c.JSON(http.StatusOK, gin.H{"donors": donorList})
}

// Stats returns the dashboard overview: donor counts, lifetime totals and
// per-platform donation breakdown.
func (dc *DonorsController) Stats(c *gin.Context) {
	total, active, lifetime, err := dc.donors.Stats()
	if err != nil {
		respondInternalError(c, err, "donor stats")
		return
	}

	platforms, err := dc.donations.StatsByPlatform()
	if err != nil {
		respondInternalError(c, err, "platform stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_donors":    total,
		"active_donors":   active,
		"lifetime_amount": lifetime,
		"platforms":       platforms,
	})
}
