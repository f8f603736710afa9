package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/donorbase/internal/entities"
)

func postDonation(t *testing.T, router http.Handler, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	response := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/donations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(response, req)
	return response
}

func TestManualDonationEntry(t *testing.T) {
	t.Run("creates donation and donor", func(t *testing.T) {
		f := setupTestRouter(t)

		response := postDonation(t, f.router, map[string]any{
			"email":         "alice@example.com",
			"username":      "Alice",
			"amount":        25.50,
			"donation_date": "2025-06-01",
		})
		assert.Equal(t, http.StatusCreated, response.Code)

		var donation entities.Donation
		decodeJSON(t, response.Body, &donation)
		assert.InDelta(t, 25.50, donation.Amount, 0.001)
		assert.Equal(t, "Manual", donation.Platform)
		assert.Equal(t, "USD", donation.Currency)

		donor, err := f.donors.FindByEmail("alice@example.com")
		require.NoError(t, err)
		require.NotNil(t, donor)
		assert.InDelta(t, 25.50, donor.LifetimeAmount, 0.001)
	})

	t.Run("accepts datetime format", func(t *testing.T) {
		f := setupTestRouter(t)

		response := postDonation(t, f.router, map[string]any{
			"email":         "alice@example.com",
			"amount":        10.0,
			"donation_date": "2025-06-01 14:30:00",
		})
		assert.Equal(t, http.StatusCreated, response.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		f := setupTestRouter(t)

		response := postDonation(t, f.router, map[string]any{
			"email": "alice@example.com",
		})
		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("negative amount", func(t *testing.T) {
		f := setupTestRouter(t)

		response := postDonation(t, f.router, map[string]any{
			"email":         "alice@example.com",
			"amount":        -5.0,
			"donation_date": "2025-06-01",
		})
		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("malformed date", func(t *testing.T) {
		f := setupTestRouter(t)

		response := postDonation(t, f.router, map[string]any{
			"email":         "alice@example.com",
			"amount":        5.0,
			"donation_date": "June 1st",
		})
		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("duplicate transaction id", func(t *testing.T) {
		f := setupTestRouter(t)

		payload := map[string]any{
			"email":          "alice@example.com",
			"amount":         25.50,
			"donation_date":  "2025-06-01",
			"transaction_id": "TX-1",
		}
		response := postDonation(t, f.router, payload)
		require.Equal(t, http.StatusCreated, response.Code)

		payload["amount"] = 99.0
		payload["donation_date"] = "2025-06-02"
		response = postDonation(t, f.router, payload)
		assert.Equal(t, http.StatusConflict, response.Code)
	})

	t.Run("duplicate donor amount and day", func(t *testing.T) {
		f := setupTestRouter(t)

		payload := map[string]any{
			"email":         "alice@example.com",
			"amount":        25.50,
			"donation_date": "2025-06-01",
		}
		response := postDonation(t, f.router, payload)
		require.Equal(t, http.StatusCreated, response.Code)

		response = postDonation(t, f.router, payload)
		assert.Equal(t, http.StatusConflict, response.Code)

		// Same amount on a different day is fine
		payload["donation_date"] = "2025-06-02"
		response = postDonation(t, f.router, payload)
		assert.Equal(t, http.StatusCreated, response.Code)
	})
}

func TestListDonations(t *testing.T) {
	f := setupTestRouter(t)

	for i, platform := range []string{"PayPal", "Stripe", "PayPal"} {
		response := postDonation(t, f.router, map[string]any{
			"email":         fmt.Sprintf("donor%d@example.com", i),
			"amount":        10.0 + float64(i),
			"donation_date": "2025-06-01",
			"platform":      platform,
		})
		require.Equal(t, http.StatusCreated, response.Code)
	}

	t.Run("all donations", func(t *testing.T) {
		response := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/donations", nil)
		f.router.ServeHTTP(response, req)

		assert.Equal(t, http.StatusOK, response.Code)

		var page PaginatedResponse
		decodeJSON(t, response.Body, &page)
		assert.Equal(t, int64(3), page.Total)
	})

	t.Run("platform filter", func(t *testing.T) {
		response := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/donations?platform=PayPal", nil)
		f.router.ServeHTTP(response, req)

		var page PaginatedResponse
		decodeJSON(t, response.Body, &page)
		assert.Equal(t, int64(2), page.Total)
	})
}

func TestDeleteDonation(t *testing.T) {
	f := setupTestRouter(t)

	response := postDonation(t, f.router, map[string]any{
		"email":         "alice@example.com",
		"amount":        25.50,
		"donation_date": "2025-06-01",
	})
	require.Equal(t, http.StatusCreated, response.Code)

	var donation entities.Donation
	decodeJSON(t, response.Body, &donation)

	t.Run("delete recomputes aggregates", func(t *testing.T) {
		response := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", fmt.Sprintf("/api/donations/%d", donation.ID), nil)
		f.router.ServeHTTP(response, req)

		assert.Equal(t, http.StatusOK, response.Code)

		donor, err := f.donors.FindByEmail("alice@example.com")
		require.NoError(t, err)
		require.NotNil(t, donor)
		assert.InDelta(t, 0.0, donor.LifetimeAmount, 0.001)
		assert.Nil(t, donor.LastDonationDate)
	})

	t.Run("deleting twice returns 404", func(t *testing.T) {
		response := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", fmt.Sprintf("/api/donations/%d", donation.ID), nil)
		f.router.ServeHTTP(response, req)

		assert.Equal(t, http.StatusNotFound, response.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		response := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/donations/abc", nil)
		f.router.ServeHTTP(response, req)

		assert.Equal(t, http.StatusBadRequest, response.Code)
	})
}
