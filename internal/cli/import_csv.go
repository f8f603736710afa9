package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrlokans/donorbase/internal/audit"
	"github.com/mrlokans/donorbase/internal/config"
	"github.com/mrlokans/donorbase/internal/database"
	auditevents "github.com/mrlokans/donorbase/internal/database/audit"
	"github.com/mrlokans/donorbase/internal/database/donations"
	"github.com/mrlokans/donorbase/internal/database/donors"
	"github.com/mrlokans/donorbase/internal/database/imports"
	"github.com/mrlokans/donorbase/internal/importer"
)

// ImportCSVCommand handles importing a donation CSV file from the command line
type ImportCSVCommand struct {
	FilePath     string
	Provider     string
	DatabasePath string
	Currency     string
	Verbose      bool
}

// NewImportCSVCommand creates a new ImportCSVCommand
func NewImportCSVCommand() *ImportCSVCommand {
	return &ImportCSVCommand{}
}

// ParseFlags parses command line flags
func (cmd *ImportCSVCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-csv", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the CSV file to import (required)")
	fs.StringVar(&cmd.Provider, "provider", "generic", "Payment provider format: generic, paypal, stripe, square")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.StringVar(&cmd.Currency, "currency", "USD", "Default currency for rows without one")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print every row-level error")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-csv -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import a donation CSV export into the local database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Import a generic export:\n")
		fmt.Fprintf(os.Stderr, "  %s import-csv -file donations.csv\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Import a PayPal activity export:\n")
		fmt.Fprintf(os.Stderr, "  %s import-csv -file paypal.csv -provider paypal\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		fs.Usage()
		return fmt.Errorf("-file is required")
	}
	if !importer.KnownProvider(cmd.Provider) {
		return fmt.Errorf("unknown provider: %s", cmd.Provider)
	}

	return nil
}

// Run executes the import command
func (cmd *ImportCSVCommand) Run() error {
	fmt.Println("📥 Donation CSV Import")
	fmt.Println("======================")

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath

	fmt.Printf("📁 File: %s\n", cmd.FilePath)
	fmt.Printf("🏦 Provider: %s\n", importer.ParseProvider(cmd.Provider).DisplayName())
	fmt.Printf("💾 Database: %s\n", cmd.DatabasePath)

	file, err := os.Open(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	donorRepo := donors.NewRepository(db.DB)
	donationRepo := donations.NewRepository(db.DB)
	runRepo := imports.NewRepository(db.DB)
	auditService := audit.NewService(auditevents.NewRepository(db.DB))

	pipeline := importer.NewPipeline(donorRepo, donationRepo, runRepo, auditService)
	pipeline.SetDefaultCurrency(cmd.Currency)

	fmt.Println("\n⚙️  Processing rows...")

	result, err := pipeline.Process(file, importer.ParseProvider(cmd.Provider),
		filepath.Base(cmd.FilePath), 0)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("🔖 Run: %s\n", result.RunReference)
	fmt.Printf("📊 Rows: %d total, %d processed, %d failed\n",
		result.TotalRows, result.ProcessedRows, result.FailedRows)
	fmt.Printf("👤 Donors: %d new, %d existing\n",
		result.Summary.NewUsers, result.Summary.ExistingUsers)
	fmt.Printf("💰 Donations: %d created, %d duplicates skipped\n",
		result.Summary.NewDonations, result.Summary.DuplicateDonations)

	if len(result.Errors) > 0 {
		if cmd.Verbose {
			fmt.Printf("\n⚠️  %d errors occurred:\n", len(result.Errors))
			for _, errMsg := range result.Errors {
				fmt.Printf("  ❌ %s\n", errMsg)
			}
		} else {
			fmt.Printf("\n⚠️  %d errors occurred (use -verbose to list them)\n", len(result.Errors))
		}
	}

	if result.Success {
		fmt.Println("\n✅ Import complete!")
	} else {
		fmt.Println("\n⚠️  Import finished with errors")
	}
	return nil
}
