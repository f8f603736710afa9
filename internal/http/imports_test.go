package http

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/donorbase/internal/entities"
	"github.com/mrlokans/donorbase/internal/importer"
)

func uploadCSV(t *testing.T, router http.Handler, provider, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("csv_file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)

	if provider != "" {
		require.NoError(t, writer.WriteField("provider", provider))
	}
	require.NoError(t, writer.Close())

	response := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/imports", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	router.ServeHTTP(response, req)
	return response
}

func TestImportUpload(t *testing.T) {
	csvContent := "email,name,amount,date\n" +
		"alice@example.com,Alice,25.50,2025-06-01\n" +
		"bob@example.com,Bob,10.00,2025-06-02\n"

	t.Run("successful generic import", func(t *testing.T) {
		f := setupTestRouter(t)

		response := uploadCSV(t, f.router, "generic", "donations.csv", csvContent)
		assert.Equal(t, http.StatusOK, response.Code)

		var result importer.Result
		decodeJSON(t, response.Body, &result)
		assert.True(t, result.Success)
		assert.Equal(t, 2, result.TotalRows)
		assert.Equal(t, 2, result.ProcessedRows)
		assert.Equal(t, 2, result.Summary.NewUsers)
		assert.Equal(t, 2, result.Summary.NewDonations)
		assert.NotEmpty(t, result.RunReference)

		donor, err := f.donors.FindByEmail("alice@example.com")
		require.NoError(t, err)
		require.NotNil(t, donor)
		assert.InDelta(t, 25.50, donor.LifetimeAmount, 0.001)
	})

	t.Run("partial failure still returns 200", func(t *testing.T) {
		f := setupTestRouter(t)

		broken := "email,name,amount,date\n" +
			"alice@example.com,Alice,25.50,2025-06-01\n" +
			",NoEmail,10.00,2025-06-02\n"

		response := uploadCSV(t, f.router, "generic", "donations.csv", broken)
		assert.Equal(t, http.StatusOK, response.Code)

		var result importer.Result
		decodeJSON(t, response.Body, &result)
		assert.False(t, result.Success)
		assert.Equal(t, 1, result.ProcessedRows)
		assert.Equal(t, 1, result.FailedRows)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "Row 3")
	})

	t.Run("missing file", func(t *testing.T) {
		f := setupTestRouter(t)

		response := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/imports", nil)
		f.router.ServeHTTP(response, req)

		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("unknown provider", func(t *testing.T) {
		f := setupTestRouter(t)

		response := uploadCSV(t, f.router, "venmo", "donations.csv", csvContent)
		assert.Equal(t, http.StatusBadRequest, response.Code)

		var errResp ErrorResponse
		decodeJSON(t, response.Body, &errResp)
		assert.Contains(t, errResp.Error, "unknown provider")
	})

	t.Run("blank provider defaults to generic", func(t *testing.T) {
		f := setupTestRouter(t)

		response := uploadCSV(t, f.router, "", "donations.csv", csvContent)
		assert.Equal(t, http.StatusOK, response.Code)

		var result importer.Result
		decodeJSON(t, response.Body, &result)
		assert.True(t, result.Success)
	})
}

func TestImportRunHistory(t *testing.T) {
	f := setupTestRouter(t)

	csvContent := "email,name,amount,date\nalice@example.com,Alice,25.50,2025-06-01\n"
	response := uploadCSV(t, f.router, "generic", "donations.csv", csvContent)
	require.Equal(t, http.StatusOK, response.Code)

	var result importer.Result
	decodeJSON(t, response.Body, &result)

	t.Run("list runs", func(t *testing.T) {
		response := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/imports", nil)
		f.router.ServeHTTP(response, req)

		assert.Equal(t, http.StatusOK, response.Code)

		var page PaginatedResponse
		decodeJSON(t, response.Body, &page)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("filter by status", func(t *testing.T) {
		response := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/imports?status=failed", nil)
		f.router.ServeHTTP(response, req)

		var page PaginatedResponse
		decodeJSON(t, response.Body, &page)
		assert.Equal(t, int64(0), page.Total)
	})

	t.Run("get single run", func(t *testing.T) {
		response := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", fmt.Sprintf("/api/imports/%d", result.RunID), nil)
		f.router.ServeHTTP(response, req)

		assert.Equal(t, http.StatusOK, response.Code)

		var run entities.ImportRun
		decodeJSON(t, response.Body, &run)
		assert.Equal(t, result.RunReference, run.Reference)
		assert.Equal(t, entities.ImportStatusCompleted, run.Status)
		assert.NotNil(t, run.CompletedAt)
	})

	t.Run("missing run returns 404", func(t *testing.T) {
		response := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/imports/9999", nil)
		f.router.ServeHTTP(response, req)

		assert.Equal(t, http.StatusNotFound, response.Code)
	})
}

func TestImportTemplates(t *testing.T) {
	f := setupTestRouter(t)

	response := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/imports/templates", nil)
	f.router.ServeHTTP(response, req)

	assert.Equal(t, http.StatusOK, response.Code)

	var body struct {
		Templates []providerTemplate `json:"templates"`
	}
	decodeJSON(t, response.Body, &body)
	require.Len(t, body.Templates, 4)

	providers := make([]string, 0, len(body.Templates))
	for _, tpl := range body.Templates {
		providers = append(providers, tpl.Provider)
		assert.NotEmpty(t, tpl.Columns)
	}
	assert.ElementsMatch(t, []string{"generic", "paypal", "stripe", "square"}, providers)
}
