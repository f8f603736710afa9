package imports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/donorbase/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.ImportRun{})
	require.NoError(t, err)

	return db
}

func TestRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	run, err := repo.Create("donations.csv", "paypal", 7)
	require.NoError(t, err)
	assert.NotZero(t, run.ID)
	assert.Len(t, run.Reference, 36)
	assert.Equal(t, "donations.csv", run.Filename)
	assert.Equal(t, "paypal", run.Provider)
	assert.Equal(t, entities.ImportStatusProcessing, run.Status)
	assert.Equal(t, uint(7), run.ActorID)
	assert.Nil(t, run.CompletedAt)

	t.Run("references are unique", func(t *testing.T) {
		other, err := repo.Create("other.csv", "generic", 0)
		require.NoError(t, err)
		assert.NotEqual(t, run.Reference, other.Reference)
	})
}

func TestRepository_Finish(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	run, err := repo.Create("donations.csv", "generic", 0)
	require.NoError(t, err)

	run.TotalRows = 10
	run.ProcessedRows = 8
	run.FailedRows = 2
	run.ErrorDetails = `["Row 3: Invalid email format"]`

	err = repo.Finish(run, entities.ImportStatusFailed)
	require.NoError(t, err)

	stored, err := repo.GetByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ImportStatusFailed, stored.Status)
	assert.Equal(t, 10, stored.TotalRows)
	assert.Equal(t, 8, stored.ProcessedRows)
	require.NotNil(t, stored.CompletedAt)
	assert.True(t, stored.Terminal())
	assert.InDelta(t, 80.0, stored.SuccessRate(), 0.001)
}

func TestRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	run1, err := repo.Create("a.csv", "paypal", 0)
	require.NoError(t, err)
	require.NoError(t, repo.Finish(run1, entities.ImportStatusCompleted))

	run2, err := repo.Create("b.csv", "stripe", 0)
	require.NoError(t, err)
	require.NoError(t, repo.Finish(run2, entities.ImportStatusFailed))

	_, err = repo.Create("c.csv", "paypal", 0)
	require.NoError(t, err)

	t.Run("all runs", func(t *testing.T) {
		runs, total, err := repo.List("", "", 25, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, runs, 3)
	})

	t.Run("status filter", func(t *testing.T) {
		runs, total, err := repo.List(entities.ImportStatusFailed, "", 25, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, runs, 1)
		assert.Equal(t, "b.csv", runs[0].Filename)
	})

	t.Run("provider filter", func(t *testing.T) {
		_, total, err := repo.List("", "paypal", 25, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("combined filters", func(t *testing.T) {
		runs, total, err := repo.List(entities.ImportStatusCompleted, "paypal", 25, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, runs, 1)
		assert.Equal(t, "a.csv", runs[0].Filename)
	})
}

func TestRepository_DeleteOldRuns(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	old := time.Now().AddDate(0, 0, -100)

	oldCompleted, err := repo.Create("old.csv", "generic", 0)
	require.NoError(t, err)
	require.NoError(t, repo.Finish(oldCompleted, entities.ImportStatusCompleted))
	require.NoError(t, db.Model(oldCompleted).Update("created_at", old).Error)

	// Still processing runs are never cleaned up regardless of age
	oldProcessing, err := repo.Create("stuck.csv", "generic", 0)
	require.NoError(t, err)
	require.NoError(t, db.Model(oldProcessing).Update("created_at", old).Error)

	recent, err := repo.Create("recent.csv", "generic", 0)
	require.NoError(t, err)
	require.NoError(t, repo.Finish(recent, entities.ImportStatusCompleted))

	deleted, err := repo.DeleteOldRuns(time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, total, err := repo.List("", "", 25, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
