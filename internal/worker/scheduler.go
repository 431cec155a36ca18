package worker

import (
	"context"
	"log"
	"sync"
	"time"
)

// ScheduledJob is a job submitted to the pool on every tick.
type ScheduledJob struct {
	Name string
	Run  Job
}

// Pool is what a scheduler needs from a working pool.
type Pool interface {
	SubmitJob(ctx context.Context, job Job) error
}

// JobScheduler runs a list of jobs on a fixed schedule.
type JobScheduler struct {
	Name     string
	Interval time.Duration
	Jobs     []ScheduledJob
	Pool     Pool
	mu       sync.RWMutex
}

func NewJobScheduler(name string, interval time.Duration, pool Pool) *JobScheduler {
	return &JobScheduler{
		Name:     name,
		Interval: interval,
		Jobs:     make([]ScheduledJob, 0),
		Pool:     pool,
	}
}

func (s *JobScheduler) AddJob(job ScheduledJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Jobs = append(s.Jobs, job)
}

func (s *JobScheduler) Run(ctx context.Context) {
	log.Printf("[Scheduler %s] Running every %s.", s.Name, s.Interval)
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.submitJobs(ctx)
		case <-ctx.Done():
			log.Printf("[Scheduler %s] Shutting down.", s.Name)
			return
		}
	}
}

func (s *JobScheduler) submitJobs(ctx context.Context) {
	s.mu.RLock()
	jobsToRun := make([]ScheduledJob, len(s.Jobs))
	copy(jobsToRun, s.Jobs)
	s.mu.RUnlock()

	for _, job := range jobsToRun {
		submitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := s.Pool.SubmitJob(submitCtx, job.Run); err != nil {
			log.Printf("[Scheduler %s] FAILED to submit job %s: %v", s.Name, job.Name, err)
		}
		cancel()
	}
}
