package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/donorbase/internal/entities"
)

func seedDonors(t *testing.T, f *routerFixture) (alice, bob *entities.Donor) {
	t.Helper()

	alice, err := f.donors.Create("alice@example.com", "Alice")
	require.NoError(t, err)
	bob, err = f.donors.Create("bob@example.com", "Bob")
	require.NoError(t, err)

	for i, amount := range []float64{25.50, 10.00} {
		require.NoError(t, f.donations.Create(&entities.Donation{
			DonorID:      alice.ID,
			Amount:       amount,
			Currency:     "USD",
			Platform:     "PayPal",
			DonationDate: testNow.AddDate(0, 0, -(i + 1)),
		}))
	}
	require.NoError(t, f.donors.RecalculateAggregates(alice.ID))
	return alice, bob
}

func TestListDonors(t *testing.T) {
	f := setupTestRouter(t)
	seedDonors(t, f)

	t.Run("all donors", func(t *testing.T) {
		response := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/donors", nil)
		f.router.ServeHTTP(response, req)

		assert.Equal(t, http.StatusOK, response.Code)

		var page PaginatedResponse
		decodeJSON(t, response.Body, &page)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("search query", func(t *testing.T) {
		response := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/donors?q=alice", nil)
		f.router.ServeHTTP(response, req)

		var page PaginatedResponse
		decodeJSON(t, response.Body, &page)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("status filter", func(t *testing.T) {
		response := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/donors?status=active", nil)
		f.router.ServeHTTP(response, req)

		assert.Equal(t, http.StatusOK, response.Code)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		response := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/donors?status=vip", nil)
		f.router.ServeHTTP(response, req)

		assert.Equal(t, http.StatusBadRequest, response.Code)
	})
}

func TestGetDonor(t *testing.T) {
	f := setupTestRouter(t)
	alice, _ := seedDonors(t, f)

	t.Run("existing donor", func(t *testing.T) {
		response := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", fmt.Sprintf("/api/donors/%d", alice.ID), nil)
		f.router.ServeHTTP(response, req)

		assert.Equal(t, http.StatusOK, response.Code)

		var donor entities.Donor
		decodeJSON(t, response.Body, &donor)
		assert.Equal(t, "alice@example.com", donor.Email)
		assert.InDelta(t, 35.50, donor.LifetimeAmount, 0.001)
		assert.Equal(t, entities.DonorStatusActive, donor.Status)
	})

	t.Run("missing donor", func(t *testing.T) {
		response := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/donors/9999", nil)
		f.router.ServeHTTP(response, req)

		assert.Equal(t, http.StatusNotFound, response.Code)
	})
}

func TestDonorDonations(t *testing.T) {
	f := setupTestRouter(t)
	alice, bob := seedDonors(t, f)

	t.Run("history newest first", func(t *testing.T) {
		response := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", fmt.Sprintf("/api/donors/%d/donations", alice.ID), nil)
		f.router.ServeHTTP(response, req)

		assert.Equal(t, http.StatusOK, response.Code)

		var page struct {
			Data  []entities.Donation `json:"data"`
			Total int64               `json:"total"`
		}
		decodeJSON(t, response.Body, &page)
		assert.Equal(t, int64(2), page.Total)
		require.Len(t, page.Data, 2)
		assert.True(t, page.Data[0].DonationDate.After(page.Data[1].DonationDate))
	})

	t.Run("donor without donations", func(t *testing.T) {
		response := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", fmt.Sprintf("/api/donors/%d/donations", bob.ID), nil)
		f.router.ServeHTTP(response, req)

		assert.Equal(t, http.StatusOK, response.Code)

		var page PaginatedResponse
		decodeJSON(t, response.Body, &page)
		assert.Equal(t, int64(0), page.Total)
	})

	t.Run("missing donor returns 404", func(t *testing.T) {
		response := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/donors/9999/donations", nil)
		f.router.ServeHTTP(response, req)

		assert.Equal(t, http.StatusNotFound, response.Code)
	})
}

func TestTopDonors(t *testing.T) {
	f := setupTestRouter(t)
	seedDonors(t, f)

	response := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/donors/top", nil)
	f.router.ServeHTTP(response, req)

	assert.Equal(t, http.StatusOK, response.Code)

	var body struct {
		Donors []entities.Donor `json:"donors"`
	}
	decodeJSON(t, response.Body, &body)
	require.Len(t, body.Donors, 2)
	assert.Equal(t, "alice@example.com", body.Donors[0].Email)
}

func TestDonorStats(t *testing.T) {
	f := setupTestRouter(t)
	seedDonors(t, f)

	response := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/donors/stats", nil)
	f.router.ServeHTTP(response, req)

	assert.Equal(t, http.StatusOK, response.Code)

	var stats struct {
		TotalDonors    int64   `json:"total_donors"`
		ActiveDonors   int64   `json:"active_donors"`
		LifetimeAmount float64 `json:"lifetime_amount"`
		Platforms      []struct {
			Platform string  `json:"platform"`
			Count    int64   `json:"count"`
			Total    float64 `json:"total"`
		} `json:"platforms"`
	}
	decodeJSON(t, response.Body, &stats)
	assert.Equal(t, int64(2), stats.TotalDonors)
	assert.InDelta(t, 35.50, stats.LifetimeAmount, 0.001)
	require.Len(t, stats.Platforms, 1)
	assert.Equal(t, "PayPal", stats.Platforms[0].Platform)
}
