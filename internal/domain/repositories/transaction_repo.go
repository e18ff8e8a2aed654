package repositories

import (
	"context"
	"time"

	"ppv-marketplace/internal/domain/entities"

	"github.com/google/uuid"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *entities.PendingTransaction) error
	Get(ctx context.Context, id uuid.UUID) (*entities.PendingTransaction, error)
	// MarkSubmitted records the hash once; it fails if the transaction is
	// no longer pending or already carries a hash.
	MarkSubmitted(ctx context.Context, id uuid.UUID, txHash string, at time.Time) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	// ExpirePending moves pending rows past validUntil to expired.
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
	// ListAwaitingConfirmation returns pending rows that carry a hash.
	ListAwaitingConfirmation(ctx context.Context) ([]entities.PendingTransaction, error)
}
