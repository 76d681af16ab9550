// backend/src/scheduler/scheduler.go
package scheduler

import (
	"github.com/robfig/cron/v3"

	"github.com/username/tallytrace/backend/src/logger"
)

// Job is a unit of background work the scheduler can run.
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages recurring background jobs on standard 5-field cron specs.
type Scheduler struct {
	cron *cron.Cron
}

func New() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.L.Info("Scheduler started")
}

// Stop halts the schedule and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.L.Info("Scheduler stopped")
}

// AddJob registers a job with a cron schedule, e.g. "0 7 * * *" for 7 AM daily.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		logger.L.Debug("Running scheduled job", "job", job.Name())
		if err := job.Run(); err != nil {
			logger.L.Error("Scheduled job failed", "job", job.Name(), "error", err)
			return
		}
		logger.L.Debug("Scheduled job completed", "job", job.Name())
	})
	if err != nil {
		return err
	}
	logger.L.Info("Scheduled job registered", "job", job.Name(), "schedule", schedule)
	return nil
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) error {
	logger.L.Info("Running job immediately", "job", job.Name())
	return job.Run()
}
