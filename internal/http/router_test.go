package http

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/donorbase/internal/audit"
	"github.com/mrlokans/donorbase/internal/database"
	auditrepo "github.com/mrlokans/donorbase/internal/database/audit"
	"github.com/mrlokans/donorbase/internal/database/donations"
	"github.com/mrlokans/donorbase/internal/database/donors"
	"github.com/mrlokans/donorbase/internal/database/imports"
	"github.com/mrlokans/donorbase/internal/importer"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)

func fixedClock() time.Time { return testNow }

type routerFixture struct {
	router    *gin.Engine
	db        *gorm.DB
	donors    *donors.Repository
	donations *donations.Repository
	runs      *imports.Repository
	audit     *audit.Service
}

// setupTestRouter builds the full router against an in-memory database with
// authentication disabled.
func setupTestRouter(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))

	donorRepo := donors.NewRepository(db)
	donorRepo.SetClock(fixedClock)
	donationRepo := donations.NewRepository(db)
	runRepo := imports.NewRepository(db)
	auditService := audit.NewService(auditrepo.NewRepository(db))

	pipeline := importer.NewPipeline(donorRepo, donationRepo, runRepo, auditService)
	pipeline.SetClock(fixedClock)

	router := NewRouter(RouterConfig{
		Database:        &database.Database{DB: db},
		Pipeline:        pipeline,
		DonorRepo:       donorRepo,
		DonationRepo:    donationRepo,
		RunRepo:         runRepo,
		AuditService:    auditService,
		DefaultCurrency: "USD",
		Version:         "test",
	})

	return &routerFixture{
		router:    router,
		db:        db,
		donors:    donorRepo,
		donations: donationRepo,
		runs:      runRepo,
		audit:     auditService,
	}
}

func decodeJSON(t testing.TB, body io.Reader, target any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(body).Decode(target))
}
