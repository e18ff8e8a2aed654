package usecases

import (
	"context"
	"time"

	"ppv-marketplace/internal/domain/repositories"
	"ppv-marketplace/internal/infrastructure/queue"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type CleanupService interface {
	// ExpirePending marks unsubmitted payloads past validUntil as expired.
	ExpirePending(ctx context.Context) (int64, error)
	// RequeueAwaiting hands every submitted, still pending transaction back
	// to the confirmation queue.
	RequeueAwaiting(ctx context.Context, q ConfirmQueue) (int, error)
}

type cleanupService struct {
	txs repositories.TransactionRepository
	log *zap.Logger
	now func() time.Time
}

func NewCleanupService(txs repositories.TransactionRepository, log *zap.Logger) CleanupService {
	return &cleanupService{txs: txs, log: log, now: time.Now}
}

func (s *cleanupService) ExpirePending(ctx context.Context) (int64, error) {
	n, err := s.txs.ExpirePending(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("expired pending transactions", zap.Int64("count", n))
	}
	return n, nil
}

func (s *cleanupService) RequeueAwaiting(ctx context.Context, q ConfirmQueue) (int, error) {
	rows, err := s.txs.ListAwaitingConfirmation(ctx)
	if err != nil {
		return 0, err
	}
	for i, tx := range rows {
		job := queue.ConfirmJob{TransactionID: tx.ID.String(), Kind: tx.Kind, Backend: tx.Backend, TxHash: tx.TxHash}
		if err := q.EnqueueConfirm(ctx, job); err != nil {
			return i, err
		}
	}
	if len(rows) > 0 {
		s.log.Info("requeued awaiting transactions", zap.Int("count", len(rows)))
	}
	return len(rows), nil
}

// StartExpiryCron runs ExpirePending on spec (six-field, with seconds).
// The caller stops the returned scheduler.
func StartExpiryCron(cleanup CleanupService, spec string, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := cleanup.ExpirePending(ctx); err != nil {
			log.Error("expiring pending transactions", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
