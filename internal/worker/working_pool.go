package worker

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// Job is one unit of background work.
type Job func(ctx context.Context) error

var (
	ErrQueueFull   = errors.New("job queue is full")
	ErrPoolStopped = errors.New("working pool is stopped")
)

// WorkingPool runs submitted jobs on a fixed number of workers. On shutdown
// the queue is closed and workers drain what was already accepted.
type WorkingPool struct {
	Name       string
	NumWorkers int
	JobTimeout time.Duration

	jobChan chan Job
	mu      sync.RWMutex
	stopped bool
}

func NewWorkingPool(name string, numWorkers int, queueSize int, jobTimeout time.Duration) *WorkingPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &WorkingPool{
		Name:       name,
		NumWorkers: numWorkers,
		JobTimeout: jobTimeout,
		jobChan:    make(chan Job, queueSize),
	}
}

// TrySubmit enqueues job without blocking.
func (p *WorkingPool) TrySubmit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.jobChan <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// SubmitJob waits for queue space until ctx is done.
func (p *WorkingPool) SubmitJob(ctx context.Context, job Job) error {
	for {
		err := p.TrySubmit(job)
		if !errors.Is(err, ErrQueueFull) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (p *WorkingPool) Start(ctx context.Context, managerWg *sync.WaitGroup) {
	defer managerWg.Done()

	var workerWg sync.WaitGroup

	// jobs outlive the shutdown signal so accepted work can finish
	jobCtx := context.WithoutCancel(ctx)
	for i := range p.NumWorkers {
		workerWg.Add(1)
		go p.worker(jobCtx, &workerWg, i+1)
	}

	<-ctx.Done()

	log.Printf("[WorkingPool %s] Shutdown signaled. Closing job channel.", p.Name)
	p.mu.Lock()
	p.stopped = true
	close(p.jobChan)
	p.mu.Unlock()

	workerWg.Wait()
	log.Printf("[WorkingPool %s] All workers stopped.", p.Name)
}

func (p *WorkingPool) worker(ctx context.Context, wg *sync.WaitGroup, id int) {
	defer wg.Done()

	for job := range p.jobChan {
		p.safeExecution(ctx, job, id)
	}
	log.Printf("[WorkingPool %s-Worker %d] Job channel closed. Exiting.", p.Name, id)
}

func (p *WorkingPool) safeExecution(ctx context.Context, job Job, workerID int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WorkingPool %s-Worker %d] FATAL: Panic recovered in job: %v", p.Name, workerID, r)
		}
	}()

	if p.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.JobTimeout)
		defer cancel()
	}

	if err = job(ctx); err != nil {
		log.Printf("[WorkingPool %s-Worker %d] Error executing job: %s", p.Name, workerID, err)
	}
	return err
}

// QueueLength is the number of accepted jobs not yet picked up.
func (p *WorkingPool) QueueLength() int {
	return len(p.jobChan)
}
