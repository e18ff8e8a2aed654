package repositories

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/internal/domain/repositories"
	"ppv-marketplace/pkg/constants"
	"ppv-marketplace/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) repositories.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *entities.PendingTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *transactionRepository) Get(ctx context.Context, id uuid.UUID) (*entities.PendingTransaction, error) {
	var tx entities.PendingTransaction
	err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrNotFound(fmt.Errorf("transaction %s", id))
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, txHash string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&entities.PendingTransaction{}).
		Where("id = ? AND status = ? AND (tx_hash IS NULL OR tx_hash = '') AND valid_until > ?", id, constants.TxStatusPending, at).
		Updates(map[string]any{"tx_hash": txHash, "submitted_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrRejected(fmt.Errorf("transaction %s is not awaiting submission", id))
	}
	return nil
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&entities.PendingTransaction{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *transactionRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entities.PendingTransaction{}).
		Where("status = ? AND submitted_at IS NULL AND valid_until <= ?", constants.TxStatusPending, now).
		Update("status", constants.TxStatusExpired)
	return res.RowsAffected, res.Error
}

func (r *transactionRepository) ListAwaitingConfirmation(ctx context.Context) ([]entities.PendingTransaction, error) {
	var out []entities.PendingTransaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND tx_hash <> ''", constants.TxStatusPending).
		Order("submitted_at").
		Find(&out).Error
	return out, err
}
