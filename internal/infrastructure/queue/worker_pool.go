package queue

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type WorkerPool struct {
	JobChan chan ConfirmJob
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewWorkerPool(parent context.Context, workerCount int, handle Handler, log *zap.Logger) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(parent)
	pool := &WorkerPool{
		JobChan: make(chan ConfirmJob, 100),
		ctx:     ctx,
		cancel:  cancel,
	}
	for i := 0; i < workerCount; i++ {
		worker := &Worker{
			ID:      i,
			JobChan: pool.JobChan,
			Wg:      &pool.wg,
			Handle:  handle,
			Log:     log,
		}
		pool.wg.Add(1)
		worker.Start(pool.ctx)
	}
	return pool
}

// AddJob queues a job; it returns false once the pool is shutting down.
func (p *WorkerPool) AddJob(job ConfirmJob) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.JobChan <- job:
		return true
	}
}

// Shutdown cancels in-flight confirmations and waits for the workers.
func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}
