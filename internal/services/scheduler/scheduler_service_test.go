package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func newTestScheduler() *Service {
	return NewService(arbor.NewLogger())
}

func TestRegisterJobValidation(t *testing.T) {
	s := newTestScheduler()

	err := s.RegisterJob("", "0 0 3 * * *", func() error { return nil })
	assert.Error(t, err)

	err = s.RegisterJob("reindex", "0 0 3 * * *", nil)
	assert.Error(t, err)

	err = s.RegisterJob("reindex", "not a schedule", func() error { return nil })
	assert.Error(t, err)

	// Five-field expressions are rejected, the seconds field is required
	err = s.RegisterJob("reindex", "0 3 * * *", func() error { return nil })
	assert.Error(t, err)

	err = s.RegisterJob("reindex", "0 0 3 * * *", func() error { return nil })
	assert.NoError(t, err)
}

func TestRegisterJobDuplicate(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.RegisterJob("reindex", "0 0 3 * * *", func() error { return nil }))

	err := s.RegisterJob("reindex", "0 0 4 * * *", func() error { return nil })
	assert.Error(t, err)
}

func TestTriggerNowRunsHandler(t *testing.T) {
	s := newTestScheduler()

	ran := make(chan struct{})
	require.NoError(t, s.RegisterJob("reindex", "0 0 3 * * *", func() error {
		close(ran)
		return nil
	}))

	require.NoError(t, s.TriggerNow("reindex"))

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job handler was not invoked")
	}
}

func TestTriggerNowUnknownJob(t *testing.T) {
	s := newTestScheduler()

	err := s.TriggerNow("missing")
	assert.Error(t, err)
}

func TestJobStatusTracksLastError(t *testing.T) {
	s := newTestScheduler()

	done := make(chan struct{})
	require.NoError(t, s.RegisterJob("reindex", "0 0 3 * * *", func() error {
		defer close(done)
		return fmt.Errorf("index run failed")
	}))

	require.NoError(t, s.TriggerNow("reindex"))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job handler was not invoked")
	}

	// The run state is written after the handler returns, poll briefly
	var lastErr string
	for i := 0; i < 50; i++ {
		status, err := s.GetJobStatus("reindex")
		require.NoError(t, err)
		if status.LastRun != nil {
			lastErr = status.LastError
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, "index run failed", lastErr)
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler()

	assert.False(t, s.IsRunning())
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	err := s.Start()
	assert.Error(t, err)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())

	// Stopping twice is a no-op
	assert.NoError(t, s.Stop())
}

func TestGetAllJobStatuses(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.RegisterJob("reindex", "0 0 3 * * *", func() error { return nil }))
	require.NoError(t, s.RegisterJob("cleanup", "0 30 2 * * *", func() error { return nil }))

	statuses := s.GetAllJobStatuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, "0 0 3 * * *", statuses["reindex"].Schedule)
	assert.True(t, statuses["cleanup"].Enabled)
}
