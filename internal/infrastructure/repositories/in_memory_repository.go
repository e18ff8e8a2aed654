package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/pkg/constants"
	"ppv-marketplace/pkg/errors"

	"github.com/google/uuid"
)

// In-memory repositories back the CLI and tests where no database runs.

type InMemoryEntitlementRepository struct {
	mu   sync.RWMutex
	data map[string]entities.EntitlementRecord
}

func NewInMemoryEntitlementRepository() *InMemoryEntitlementRepository {
	return &InMemoryEntitlementRepository{data: make(map[string]entities.EntitlementRecord)}
}

func entitlementKey(backend entities.Backend, contract string, videoID uint64, viewer string) string {
	return fmt.Sprintf("%s|%s|%d|%s", backend, strings.ToLower(contract), videoID, viewer)
}

func (r *InMemoryEntitlementRepository) Grant(_ context.Context, rec *entities.EntitlementRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := entitlementKey(entities.Backend(rec.Backend), rec.Contract, rec.VideoID, rec.Viewer)
	if _, exists := r.data[key]; exists {
		return false, nil
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.GrantedAt.IsZero() {
		rec.GrantedAt = time.Now()
	}
	rec.Granted = true
	r.data[key] = *rec
	return true, nil
}

func (r *InMemoryEntitlementRepository) IsGranted(_ context.Context, backend entities.Backend, contract string, videoID uint64, viewer string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.data[entitlementKey(backend, contract, videoID, viewer)]
	return ok && rec.Granted, nil
}

func (r *InMemoryEntitlementRepository) ListByViewer(_ context.Context, viewer string) ([]entities.EntitlementRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entities.EntitlementRecord, 0)
	for _, rec := range r.data {
		if rec.Viewer == viewer {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GrantedAt.Before(out[j].GrantedAt) })
	return out, nil
}

type InMemoryVideoRepository struct {
	mu   sync.RWMutex
	data map[string]entities.VideoRecord
}

func NewInMemoryVideoRepository() *InMemoryVideoRepository {
	return &InMemoryVideoRepository{data: make(map[string]entities.VideoRecord)}
}

func videoKey(backend entities.Backend, videoID uint64) string {
	return fmt.Sprintf("%s|%d", backend, videoID)
}

func (r *InMemoryVideoRepository) Upsert(_ context.Context, video entities.VideoRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[videoKey(video.Backend, video.ID)] = video
	return nil
}

func (r *InMemoryVideoRepository) Get(_ context.Context, backend entities.Backend, videoID uint64) (*entities.VideoRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[videoKey(backend, videoID)]
	if !ok {
		return nil, errors.ErrNotFound(fmt.Errorf("%s video %d not mirrored", backend, videoID))
	}
	return &v, nil
}

func (r *InMemoryVideoRepository) List(_ context.Context, backend entities.Backend) ([]entities.VideoRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entities.VideoRecord, 0, len(r.data))
	for _, v := range r.data {
		if v.Backend == backend {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type InMemoryTransactionRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]*entities.PendingTransaction
}

func NewInMemoryTransactionRepository() *InMemoryTransactionRepository {
	return &InMemoryTransactionRepository{data: make(map[uuid.UUID]*entities.PendingTransaction)}
}

func (r *InMemoryTransactionRepository) Create(_ context.Context, tx *entities.PendingTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	now := time.Now()
	tx.CreatedAt, tx.UpdatedAt = now, now
	stored := *tx
	r.data[tx.ID] = &stored
	return nil
}

func (r *InMemoryTransactionRepository) Get(_ context.Context, id uuid.UUID) (*entities.PendingTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.data[id]
	if !ok {
		return nil, errors.ErrNotFound(fmt.Errorf("transaction %s", id))
	}
	out := *tx
	return &out, nil
}

func (r *InMemoryTransactionRepository) MarkSubmitted(_ context.Context, id uuid.UUID, txHash string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.data[id]
	if !ok {
		return errors.ErrNotFound(fmt.Errorf("transaction %s", id))
	}
	if tx.Status != constants.TxStatusPending || tx.TxHash != "" || !at.Before(tx.ValidUntil) {
		return errors.ErrRejected(fmt.Errorf("transaction %s is not awaiting submission", id))
	}
	tx.TxHash = txHash
	tx.SubmittedAt = &at
	tx.UpdatedAt = at
	return nil
}

func (r *InMemoryTransactionRepository) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.data[id]
	if !ok {
		return errors.ErrNotFound(fmt.Errorf("transaction %s", id))
	}
	tx.Status = status
	tx.UpdatedAt = time.Now()
	return nil
}

func (r *InMemoryTransactionRepository) ExpirePending(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, tx := range r.data {
		if tx.Status == constants.TxStatusPending && tx.SubmittedAt == nil && !now.Before(tx.ValidUntil) {
			tx.Status = constants.TxStatusExpired
			tx.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (r *InMemoryTransactionRepository) ListAwaitingConfirmation(_ context.Context) ([]entities.PendingTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entities.PendingTransaction
	for _, tx := range r.data {
		if tx.Status == constants.TxStatusPending && tx.TxHash != "" {
			out = append(out, *tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(*out[j].SubmittedAt) })
	return out, nil
}
