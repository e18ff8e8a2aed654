package usecases

import (
	"context"
	"testing"
	"time"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/pkg/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExpirePendingTransactions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	stale := &entities.PendingTransaction{Status: constants.TxStatusPending, ValidUntil: time.Now().Add(-time.Minute)}
	require.NoError(t, h.txRepo.Create(ctx, stale))

	svc := NewCleanupService(h.txRepo, zap.NewNop())
	n, err := svc.ExpirePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := h.txs.Status(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TxStatusExpired, got.Status)
}

func TestRequeueAwaitingSkipsUnsubmitted(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	valid := time.Now().Add(time.Hour)
	submitted := &entities.PendingTransaction{Kind: string(entities.KindPayToView), Backend: "evm", Status: constants.TxStatusPending, ValidUntil: valid}
	fresh := &entities.PendingTransaction{Kind: string(entities.KindWithdraw), Backend: "evm", Status: constants.TxStatusPending, ValidUntil: valid}
	done := &entities.PendingTransaction{Kind: string(entities.KindWithdraw), Backend: "evm", Status: constants.TxStatusPending, ValidUntil: valid}
	for _, tx := range []*entities.PendingTransaction{submitted, fresh, done} {
		require.NoError(t, h.txRepo.Create(ctx, tx))
	}
	require.NoError(t, h.txRepo.MarkSubmitted(ctx, submitted.ID, "0xaaa", time.Now()))
	require.NoError(t, h.txRepo.MarkSubmitted(ctx, done.ID, "0xbbb", time.Now()))
	require.NoError(t, h.txRepo.UpdateStatus(ctx, done.ID, constants.TxStatusConfirmed))

	q := &fakeQueue{}
	n, err := NewCleanupService(h.txRepo, zap.NewNop()).RequeueAwaiting(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, q.jobs, 1)
	assert.Equal(t, submitted.ID.String(), q.jobs[0].TransactionID)
	assert.Equal(t, "0xaaa", q.jobs[0].TxHash)
}

func TestExpiryCronRejectsBadSpec(t *testing.T) {
	h := newHarness(t)
	_, err := StartExpiryCron(NewCleanupService(h.txRepo, zap.NewNop()), "every minute", zap.NewNop())
	assert.Error(t, err)

	c, err := StartExpiryCron(NewCleanupService(h.txRepo, zap.NewNop()), "*/30 * * * * *", zap.NewNop())
	require.NoError(t, err)
	c.Stop()
}
