package worker

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"
)

var (
	ErrPoolBusy    = errors.New("working pool queue is full")
	ErrPoolStopped = errors.New("working pool is stopped")
)

type Job func(ctx context.Context) error

type WorkingPool struct {
	NumWorkers int
	jobChan    chan Job

	mu      sync.RWMutex
	stopped bool
}

func NewWorkingPool(numWorkers int, queueSize int) *WorkingPool {
	return &WorkingPool{
		NumWorkers: numWorkers,
		jobChan:    make(chan Job, queueSize),
	}
}

// SubmitJob queues a job without blocking. A full queue means the previous
// refresh has not been picked up yet.
func (p *WorkingPool) SubmitJob(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}
	select {
	case p.jobChan <- job:
		return nil
	default:
		return ErrPoolBusy
	}
}

func (p *WorkingPool) Start(ctx context.Context, managerWg *sync.WaitGroup) {
	defer managerWg.Done()

	var workerWg sync.WaitGroup

	for i := range p.NumWorkers {
		workerWg.Add(1)
		go p.worker(ctx, &workerWg, i+1)
	}

	<-ctx.Done()

	log.Info("[WorkingPool] Shutdown signaled. Closing job channel.")
	p.mu.Lock()
	p.stopped = true
	close(p.jobChan)
	p.mu.Unlock()

	workerWg.Wait()
	log.Info("[WorkingPool] All workers stopped.")
}

func (p *WorkingPool) worker(ctx context.Context, wg *sync.WaitGroup, id int) {
	defer wg.Done()
	logger := log.WithField("worker", id)
	logger.Debug("[WorkingPool] Worker started and waiting for jobs.")

	for {
		select {
		case job, ok := <-p.jobChan:
			if !ok {
				logger.Debug("[WorkingPool] Job channel closed. Exiting.")
				return
			}
			p.safeExecution(ctx, job, id)

		case <-ctx.Done():
			logger.Debug("[WorkingPool] Context canceled. Exiting.")
			return
		}
	}
}

func (p *WorkingPool) safeExecution(ctx context.Context, job Job, workerID int) (err error) {
	logger := log.WithField("worker", workerID)
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[WorkingPool] Panic recovered in job: %v", r)
			err = errors.New("job panicked")
		}
	}()

	err = job(ctx)
	if err != nil {
		logger.WithError(err).Error("[WorkingPool] Error executing job")
	}
	return err
}
