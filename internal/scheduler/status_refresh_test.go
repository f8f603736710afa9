package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/donorbase/internal/tasks"
)

func newTestScheduler(t *testing.T, schedule string) *StatusRefreshScheduler {
	t.Helper()

	cfg := tasks.DefaultConfig()
	cfg.Workers = 1

	client, err := tasks.NewClient(filepath.Join(t.TempDir(), "test.db"), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewStatusRefreshScheduler(client, schedule, 90)
}

func TestSchedulerStartStop(t *testing.T) {
	s := newTestScheduler(t, "0 3 * * *")

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	require.NotNil(t, s.NextRunTime())

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRunTime())

	// Stopping twice is a no-op
	s.Stop()
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	s := newTestScheduler(t, "0 3 * * *")

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	require.True(t, s.IsRunning())

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() },
		2*time.Second, 10*time.Millisecond)
}

func TestSchedulerInvalidSchedule(t *testing.T) {
	s := newTestScheduler(t, "every day at three")

	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestSchedulerWithoutClient(t *testing.T) {
	s := NewStatusRefreshScheduler(nil, "0 3 * * *", 90)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}
