package queue

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Handler processes one confirmation job. It must return once ctx is done.
type Handler func(ctx context.Context, job ConfirmJob) error

type Worker struct {
	ID      int
	JobChan <-chan ConfirmJob
	Wg      *sync.WaitGroup
	Handle  Handler
	Log     *zap.Logger
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer w.Wg.Done()
		for {
			select {
			case job, ok := <-w.JobChan:
				if !ok {
					w.Log.Debug("job channel closed", zap.Int("worker", w.ID))
					return
				}
				select {
				case <-ctx.Done():
					w.Log.Info("job cancelled", zap.Int("worker", w.ID), zap.String("tx", job.TransactionID))
					continue
				default:
					w.processJob(ctx, job)
				}
			case <-ctx.Done():
				w.Log.Debug("worker stopping", zap.Int("worker", w.ID))
				return
			}
		}
	}()
}

func (w *Worker) processJob(ctx context.Context, job ConfirmJob) {
	log := w.Log.With(zap.Int("worker", w.ID), zap.String("tx", job.TransactionID), zap.String("kind", job.Kind))
	log.Info("processing confirmation")
	if err := w.Handle(ctx, job); err != nil {
		log.Warn("confirmation failed", zap.Error(err))
		return
	}
	log.Info("confirmation finished")
}
