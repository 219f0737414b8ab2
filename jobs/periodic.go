package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PeriodicJob runs a task on a fixed interval until stopped.
type PeriodicJob struct {
	name     string
	interval time.Duration
	task     func(ctx context.Context) error
	log      *zap.SugaredLogger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func NewPeriodicJob(name string, interval time.Duration, task func(ctx context.Context) error, log *zap.SugaredLogger) *PeriodicJob {
	return &PeriodicJob{
		name:     name,
		interval: interval,
		task:     task,
		log:      log.Named("jobs").With("job", name),
		done:     make(chan struct{}),
	}
}

// Start launches the job in its own goroutine. The job also stops when ctx
// is cancelled.
func (j *PeriodicJob) Start(ctx context.Context) {
	ctx, j.cancel = context.WithCancel(ctx)
	go j.run(ctx)
	j.log.Infow("job started", "interval", j.interval)
}

// Stop cancels the job and waits for a running task to return.
func (j *PeriodicJob) Stop() {
	j.once.Do(func() {
		if j.cancel == nil {
			close(j.done)
			return
		}
		j.cancel()
		<-j.done
		j.log.Info("job stopped")
	})
}

func (j *PeriodicJob) run(ctx context.Context) {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.task(ctx); err != nil {
				j.log.Warnw("job run failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
