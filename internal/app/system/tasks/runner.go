// internal/app/system/tasks/runner.go

// Package tasks runs periodic background jobs for the lifetime of the
// application. Jobs are registered at startup and stopped together on
// shutdown.
package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is one periodic unit of work. Run errors are logged and the job
// keeps its schedule; a failing job never stops the runner.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner executes registered jobs on their intervals.
type Runner struct {
	jobs   []Job
	log    *zap.Logger
	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewRunner(log *zap.Logger) *Runner {
	return &Runner{log: log, stopCh: make(chan struct{})}
}

// Register adds a job. Must be called before Start.
func (r *Runner) Register(j Job) {
	r.jobs = append(r.jobs, j)
}

// Start launches one goroutine per job.
func (r *Runner) Start() {
	for _, j := range r.jobs {
		r.wg.Add(1)
		go r.loop(j)
	}
	r.log.Info("background task runner started", zap.Int("jobs", len(r.jobs)))
}

// Stop signals all job loops to stop and waits for them to finish.
func (r *Runner) Stop() {
	close(r.stopCh)
	r.wg.Wait()
	r.log.Info("background task runner stopped")
}

func (r *Runner) loop(j Job) {
	defer r.wg.Done()

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), j.Interval)
			if err := j.Run(ctx); err != nil {
				r.log.Warn("background job failed",
					zap.String("job", j.Name),
					zap.Error(err))
			}
			cancel()
		}
	}
}
