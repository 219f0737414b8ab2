package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"servify-server/logging"
)

func TestPeriodicJobRunsUntilStopped(t *testing.T) {
	var runs atomic.Int32
	job := NewPeriodicJob("counter", 5*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("ignored")
	}, logging.Nop())

	job.Start(context.Background())
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)

	job.Stop()
	stopped := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())

	job.Stop()
}

func TestPeriodicJobStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	job := NewPeriodicJob("noop", time.Hour, func(context.Context) error { return nil }, logging.Nop())
	job.Start(ctx)
	cancel()

	select {
	case <-job.done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop after context cancellation")
	}
}

func TestPeriodicJobStopWithoutStart(t *testing.T) {
	job := NewPeriodicJob("idle", time.Hour, func(context.Context) error { return nil }, logging.Nop())
	job.Stop()
}
