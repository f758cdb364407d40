package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefreshPurger struct {
	calledWith time.Time
	deleted    int64
	err        error
}

func (f *fakeRefreshPurger) PurgeRefreshTokens(_ context.Context, now time.Time) (int64, error) {
	f.calledWith = now
	return f.deleted, f.err
}

type fakeAccessPurger struct{ calls int }

func (f *fakeAccessPurger) PurgeRevoked(time.Time) int {
	f.calls++
	return 3
}

func TestSessionJobs_RunOnce(t *testing.T) {
	refresh := &fakeRefreshPurger{deleted: 2}
	access := &fakeAccessPurger{}
	jobs := NewSessionJobs(refresh, access)
	fixed := time.Date(2024, 3, 12, 3, 0, 0, 0, time.UTC)
	jobs.now = func() time.Time { return fixed }

	s := NewScheduler()
	jobs.RegisterJobs(s)
	assert.Equal(t, []string{"purge_refresh_tokens", "purge_revoked_access_tokens"}, s.Jobs())

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, fixed, refresh.calledWith)
	assert.Equal(t, 1, access.calls)
}

func TestRunOnce_JoinsFailures(t *testing.T) {
	refresh := &fakeRefreshPurger{err: errors.New("db down")}
	s := NewScheduler()
	NewSessionJobs(refresh, &fakeAccessPurger{}).RegisterJobs(s)

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	var runs atomic.Int32
	done := make(chan struct{}, 1)
	s := NewScheduler()
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		select {
		case done <- struct{}{}:
		default:
		}
		return nil
	})

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerStarted)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
	assert.Equal(t, int32(1), runs.Load())
}
