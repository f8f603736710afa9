package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/donorbase/internal/database/imports"
	"github.com/mrlokans/donorbase/internal/entities"
	"github.com/mrlokans/donorbase/internal/importer"
)

// ImportsController handles CSV uploads and import run history.
type ImportsController struct {
	pipeline    *importer.Pipeline
	runs        *imports.Repository
	maxFileSize int64
}

// NewImportsController creates a new imports controller. maxFileSizeMB bounds
// the accepted upload size.
func NewImportsController(pipeline *importer.Pipeline, runs *imports.Repository, maxFileSizeMB int64) *ImportsController {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = 10
	}
	return &ImportsController{
		pipeline:    pipeline,
		runs:        runs,
		maxFileSize: maxFileSizeMB << 20,
	}
}

// Upload accepts a multipart CSV file plus a provider form field and runs it
// through the import pipeline. The response carries the full per-row outcome;
// partial failures still return 200 with success=false in the body.
func (ic *ImportsController) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ic.maxFileSize)

	file, header, err := c.Request.FormFile("csv_file")
	if err != nil {
		respondBadRequest(c, "no CSV file provided")
		return
	}
	defer file.Close()

	if header.Size > ic.maxFileSize {
		respondBadRequest(c, "file too large")
		return
	}

	providerName := c.PostForm("provider")
	if providerName != "" && !importer.KnownProvider(providerName) {
		respondBadRequest(c, "unknown provider: "+providerName)
		return
	}
	provider := importer.ParseProvider(providerName)

	result, err := ic.pipeline.Process(file, provider, header.Filename, GetActorID(c))
	if err != nil {
		respondInternalError(c, err, "csv import")
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListRuns returns import run history, newest first.
func (ic *ImportsController) ListRuns(c *gin.Context) {
	limit, offset := parsePagination(c)
	status := entities.ImportStatus(c.Query("status"))
	provider := c.Query("provider")

	runs, total, err := ic.runs.List(status, provider, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list import runs")
		return
	}

	c.JSON(http.StatusOK, paginated(runs, total, limit, offset))
}

// GetRun returns a single import run with its error details and summary.
func (ic *ImportsController) GetRun(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	run, err := ic.runs.GetByID(id)
	if err != nil {
		respondNotFound(c, "import run")
		return
	}

	c.JSON(http.StatusOK, run)
}

// providerTemplate describes the expected CSV columns for one provider.
type providerTemplate struct {
	Provider string   `json:"provider"`
	Name     string   `json:"name"`
	Columns  []string `json:"columns"`
}

// Templates lists the expected CSV layout per provider so the dashboard can
// show upload guidance.
func (ic *ImportsController) Templates(c *gin.Context) {
	templates := []providerTemplate{
		{
			Provider: string(importer.ProviderGeneric),
			Name:     importer.ProviderGeneric.DisplayName(),
			Columns:  []string{"email", "name", "amount", "date", "transaction_id", "platform", "currency"},
		},
		{
			Provider: string(importer.ProviderPayPal),
			Name:     importer.ProviderPayPal.DisplayName(),
			Columns:  []string{"From Email Address", "Name", "Gross", "Date", "Time", "Transaction ID", "Type", "Currency"},
		},
		{
			Provider: string(importer.ProviderStripe),
			Name:     importer.ProviderStripe.DisplayName(),
			Columns:  []string{"id", "Customer Email", "Customer Name", "Amount", "Currency", "Created"},
		},
		{
			Provider: string(importer.ProviderSquare),
			Name:     importer.ProviderSquare.DisplayName(),
			Columns:  []string{"id", "Buyer Email Address", "Buyer Name", "Total Money", "Created At"},
		},
	}

	c.JSON(http.StatusOK, gin.H{"templates": templates})
}
