package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/mrlokans/donorbase/internal/audit"
	"github.com/mrlokans/donorbase/internal/entities"
)

// DonorStore resolves and mutates donor identities.
type DonorStore interface {
	FindByEmail(email string) (*entities.Donor, error)
	Create(email, username string) (*entities.Donor, error)
	SetUsername(id uint, username string) error
	RecalculateAggregates(id uint) error
}

// DonationStore persists donations and answers the two duplicate lookups.
type DonationStore interface {
	FindByTransactionID(txID string) (*entities.Donation, error)
	FindByDonorAmountDay(donorID uint, amount float64, day time.Time) (*entities.Donation, error)
	Create(donation *entities.Donation) error
}

// RunStore records import run lifecycle.
type RunStore interface {
	Create(filename, provider string, actorID uint) (*entities.ImportRun, error)
	Finish(run *entities.ImportRun, status entities.ImportStatus) error
}

// AuditSink records one audit entry per run.
type AuditSink interface {
	LogImport(actorID uint, runID uint, description string, meta audit.ImportMetadata, failed bool) error
}

// Summary accumulates the per-row outcome counters of a run.
type Summary struct {
	NewUsers           int `json:"new_users"`
	ExistingUsers      int `json:"existing_users"`
	NewDonations       int `json:"new_donations"`
	DuplicateDonations int `json:"duplicate_donations"`
}

// Result is what the caller gets back from a run, successful or not.
// Success is true iff the error list is empty; duplicates are informational
// and never fail a run.
type Result struct {
	Success       bool     `json:"success"`
	TotalRows     int      `json:"total_rows"`
	ProcessedRows int      `json:"processed_rows"`
	FailedRows    int      `json:"failed_rows"`
	Errors        []string `json:"errors"`
	Summary       Summary  `json:"summary"`
	RunID         uint     `json:"run_id,omitempty"`
	RunReference  string   `json:"run_reference,omitempty"`
}

// Pipeline drives one uploaded file through parse → normalize → validate →
// resolve donor → dedup/write → aggregate, row by row. Rows are independent:
// nothing but a structurally unparsable file aborts a run.
type Pipeline struct {
	donors          DonorStore
	donations       DonationStore
	runs            RunStore
	audit           AuditSink
	clock           Clock
	locks           *donorLocks
	defaultCurrency string
}

// NewPipeline creates an import pipeline over the given stores.
func NewPipeline(donors DonorStore, donations DonationStore, runs RunStore, auditSink AuditSink) *Pipeline {
	return &Pipeline{
		donors:          donors,
		donations:       donations,
		runs:            runs,
		audit:           auditSink,
		clock:           time.Now,
		locks:           newDonorLocks(),
		defaultCurrency: "USD",
	}
}

// SetClock overrides the time source used for date fallbacks. Tests pin a
// fixed clock here.
func (p *Pipeline) SetClock(clock Clock) {
	p.clock = clock
}

// SetDefaultCurrency overrides the currency assumed for rows without one.
func (p *Pipeline) SetDefaultCurrency(currency string) {
	if currency != "" {
		p.defaultCurrency = currency
	}
}

// Process consumes one uploaded file and returns the aggregated result.
// A non-nil error means the import run record itself could not be written;
// everything else, including a completely malformed file, is reported
// through the Result.
func (p *Pipeline) Process(r io.Reader, provider Provider, filename string, actorID uint) (*Result, error) {
	run, err := p.runs.Create(filename, string(provider), actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to create import run: %w", err)
	}

	result := &Result{
		RunID:        run.ID,
		RunReference: run.Reference,
	}

	rows, err := ParseRows(r)
	if err != nil {
		// Structural failure: the file is not tabular data. One top-level
		// error, zero rows processed.
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid CSV format: %v", err))
		p.finish(run, result, actorID)
		return result, nil
	}

	result.TotalRows = len(rows)
	normalizer := normalizerFor(provider, p.clock, p.defaultCurrency)

	for i, row := range rows {
		// Row numbers are 1-based and offset by the header row.
		p.processRow(row, i+2, provider, normalizer, result)
	}

	p.finish(run, result, actorID)
	return result, nil
}

// processRow runs one row through the pipeline. Panics are confined to the
// row boundary: one bad row cannot abort the batch.
func (p *Pipeline) processRow(row Row, rowNum int, provider Provider, normalizer Normalizer, result *Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Import row %d panicked: %v", rowNum, r)
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: unexpected processing failure", rowNum))
			result.FailedRows++
		}
	}()

	normalized := normalizer.Normalize(row)

	if reason, ok := validateRow(normalized, provider); !ok {
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", rowNum, reason))
		result.FailedRows++
		return
	}

	email := strings.ToLower(strings.TrimSpace(normalized.Email))
	unlock := p.locks.acquire(email)
	defer unlock()

	donor, err := p.resolveDonor(email, normalized.Username, &result.Summary)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		result.FailedRows++
		return
	}

	if err := p.writeUnlessDuplicate(donor, normalized, &result.Summary); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		result.FailedRows++
		return
	}

	result.ProcessedRows++
}

// resolveDonor finds the donor by case-insensitive email or creates one,
// backfilling a blank username when the row supplies one.
func (p *Pipeline) resolveDonor(email, username string, summary *Summary) (*entities.Donor, error) {
	donor, err := p.donors.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("donor lookup failed: %w", err)
	}

	if donor != nil {
		summary.ExistingUsers++
		if donor.Username == "" && username != "" {
			if err := p.donors.SetUsername(donor.ID, username); err != nil {
				return nil, fmt.Errorf("donor update failed: %w", err)
			}
			donor.Username = username
		}
		return donor, nil
	}

	donor, err = p.donors.Create(email, username)
	if err != nil {
		return nil, fmt.Errorf("donor creation failed: %w", err)
	}
	summary.NewUsers++
	return donor, nil
}

// writeUnlessDuplicate checks both duplicate keys and persists the donation
// when neither matches, then recomputes the donor's denormalized aggregates.
func (p *Pipeline) writeUnlessDuplicate(donor *entities.Donor, c CanonicalRow, summary *Summary) error {
	// The transaction identifier is authoritative: a match is a duplicate
	// regardless of amount or date.
	if c.TransactionID != "" {
		existing, err := p.donations.FindByTransactionID(c.TransactionID)
		if err != nil {
			return fmt.Errorf("duplicate lookup failed: %w", err)
		}
		if existing != nil {
			summary.DuplicateDonations++
			return nil
		}
	}

	// Fallback key: same donor, same amount, same calendar day.
	existing, err := p.donations.FindByDonorAmountDay(donor.ID, c.Amount, c.DonationDate)
	if err != nil {
		return fmt.Errorf("duplicate lookup failed: %w", err)
	}
	if existing != nil {
		summary.DuplicateDonations++
		return nil
	}

	donation := &entities.Donation{
		DonorID:       donor.ID,
		Amount:        c.Amount,
		Currency:      c.Currency,
		Platform:      c.Platform,
		TransactionID: c.TransactionID,
		DonationDate:  c.DonationDate,
	}
	if err := p.donations.Create(donation); err != nil {
		return fmt.Errorf("donation creation failed: %w", err)
	}
	summary.NewDonations++

	if err := p.donors.RecalculateAggregates(donor.ID); err != nil {
		return fmt.Errorf("donor aggregate update failed: %w", err)
	}
	return nil
}

// finish seals the run record, derives its terminal status from the error
// list and writes the audit entry.
func (p *Pipeline) finish(run *entities.ImportRun, result *Result, actorID uint) {
	result.Success = len(result.Errors) == 0

	status := entities.ImportStatusCompleted
	if !result.Success {
		status = entities.ImportStatusFailed
	}

	run.TotalRows = result.TotalRows
	run.ProcessedRows = result.ProcessedRows
	run.FailedRows = result.FailedRows
	if errBytes, err := json.Marshal(result.Errors); err == nil {
		run.ErrorDetails = string(errBytes)
	}
	if sumBytes, err := json.Marshal(result.Summary); err == nil {
		run.Summary = string(sumBytes)
	}

	if err := p.runs.Finish(run, status); err != nil {
		log.Printf("Failed to finalize import run %d: %v", run.ID, err)
	}

	if p.audit == nil {
		return
	}
	description := fmt.Sprintf("Imported %s via %s: %d/%d rows processed, %d failed, %d duplicates skipped",
		run.Filename, run.Provider, result.ProcessedRows, result.TotalRows,
		result.FailedRows, result.Summary.DuplicateDonations)
	meta := audit.ImportMetadata{
		Provider:           run.Provider,
		Filename:           run.Filename,
		TotalRows:          result.TotalRows,
		ProcessedRows:      result.ProcessedRows,
		FailedRows:         result.FailedRows,
		NewUsers:           result.Summary.NewUsers,
		ExistingUsers:      result.Summary.ExistingUsers,
		NewDonations:       result.Summary.NewDonations,
		DuplicateDonations: result.Summary.DuplicateDonations,
	}
	if err := p.audit.LogImport(actorID, run.ID, description, meta, !result.Success); err != nil {
		log.Printf("Failed to write audit entry for import run %d: %v", run.ID, err)
	}
}
