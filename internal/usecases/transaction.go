package usecases

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/internal/domain/mapper"
	"ppv-marketplace/internal/domain/repositories"
	"ppv-marketplace/internal/infrastructure/metrics"
	"ppv-marketplace/internal/infrastructure/queue"
	"ppv-marketplace/internal/pkg/config"
	"ppv-marketplace/pkg/constants"
	"ppv-marketplace/pkg/errors"
	"ppv-marketplace/pkg/file"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PrepareRequest struct {
	Kind    entities.Kind
	Backend entities.Backend
	VideoID uint64
	// Sender is the wallet that will sign. Owner-only kinds require it.
	Sender        string
	Title         string
	Description   string
	Price         *big.Int
	DisplayTime   int64
	ContentHash   string
	ThumbnailHash string
}

type Prepared struct {
	Tx      *entities.PendingTransaction
	Payload *entities.CallPayload
	// ContentHash is the pinned video identifier of a registration.
	ContentHash string
}

type ConfirmResult struct {
	Tx       *entities.PendingTransaction
	Observed *big.Int
	Attempts int
}

// ConfirmQueue hands submitted transactions to the confirmation workers.
type ConfirmQueue interface {
	EnqueueConfirm(ctx context.Context, job queue.ConfirmJob) error
}

type TransactionService interface {
	// Prepare checks the request, builds the payload and records the
	// baseline of the effect it is expected to have.
	Prepare(ctx context.Context, req PrepareRequest) (*Prepared, error)
	// MarkSubmitted records the hash an external wallet returned and
	// queues the transaction for confirmation. Only the wallet the
	// transaction was prepared for may report it.
	MarkSubmitted(ctx context.Context, id uuid.UUID, submitter, txHash string) (*entities.PendingTransaction, error)
	// Confirm polls for the effect of a submitted transaction and moves it
	// to a terminal status. A confirmed purchase is granted before Confirm returns.
	Confirm(ctx context.Context, id uuid.UUID) (*ConfirmResult, error)
	// Execute runs prepare, submit and confirm through the backend's own wallet.
	Execute(ctx context.Context, req PrepareRequest) (*ConfirmResult, error)
	Status(ctx context.Context, id uuid.UUID) (*entities.PendingTransaction, error)
}

type transactionService struct {
	chains      Chains
	txs         repositories.TransactionRepository
	entitlement EntitlementService
	queue       ConfirmQueue
	txCfg       config.TxConfig
	poll        PollOptions
	metrics     *metrics.Metrics
	log         *zap.Logger
	now         func() time.Time
}

// NewTransactionService wires the transaction flow. q may be nil when
// confirmation runs in-process only.
func NewTransactionService(
	chains Chains,
	txs repositories.TransactionRepository,
	entitlement EntitlementService,
	q ConfirmQueue,
	txCfg config.TxConfig,
	pollCfg config.PollConfig,
	m *metrics.Metrics,
	log *zap.Logger,
) TransactionService {
	return &transactionService{
		chains:      chains,
		txs:         txs,
		entitlement: entitlement,
		queue:       q,
		txCfg:       txCfg,
		poll: PollOptions{
			Interval:          pollCfg.Interval,
			MaxAttempts:       pollCfg.MaxAttempts,
			MaxLookupFailures: pollCfg.MaxLookupFailures,
		},
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

func (s *transactionService) Prepare(ctx context.Context, req PrepareRequest) (*Prepared, error) {
	if !req.Kind.Valid() {
		return nil, errors.ErrInvalidInput(fmt.Errorf("unknown transaction kind %q", req.Kind))
	}
	client, err := s.chains.Get(req.Backend)
	if err != nil {
		return nil, err
	}
	if req.Sender != "" {
		if req.Sender, err = client.NormalizeAddress(req.Sender); err != nil {
			return nil, err
		}
	}

	var video *entities.VideoRecord
	if req.Kind != entities.KindRegisterVideo {
		if video, err = client.GetVideoInfo(ctx, req.VideoID); err != nil {
			return nil, err
		}
	}
	if req.Kind.OwnerOnly() {
		if req.Sender == "" || !entities.SameAddress(req.Sender, video.Uploader) {
			return nil, errors.ErrNotAuthorized(fmt.Errorf("%s on video %d by %s", req.Kind, req.VideoID, file.ShortAddress(req.Sender)))
		}
	}

	var target *big.Int
	var payload *entities.CallPayload
	builder := client.Builder()
	switch req.Kind {
	case entities.KindPayToView:
		if !video.Active {
			return nil, errors.ErrRejected(fmt.Errorf("video %d is not active", video.ID))
		}
		if req.Sender == "" {
			return nil, errors.ErrNotAuthorized(fmt.Errorf("purchase of video %d without a paying wallet", video.ID))
		}
		paid, perr := client.HasPurchased(ctx, video.ID, req.Sender)
		if perr != nil {
			return nil, errors.ErrLookupFailed(fmt.Errorf("hasPurchased(%d, %s): %w", video.ID, file.ShortAddress(req.Sender), perr))
		}
		if paid {
			return nil, errors.ErrRejected(fmt.Errorf("video %d already purchased by %s", video.ID, file.ShortAddress(req.Sender)))
		}
		payload, err = builder.BuildPayToView(video.ID, video.Price)
	case entities.KindRegisterVideo:
		if err = s.validateRegister(&req); err != nil {
			return nil, err
		}
		payload, err = builder.BuildRegisterVideo(req.ContentHash, req.ThumbnailHash, req.Title, req.Price, req.DisplayTime)
	case entities.KindWithdraw:
		payload, err = builder.BuildWithdraw(video.ID)
	case entities.KindUpdateMetadata:
		if req.Price == nil || req.Price.Sign() < 0 {
			return nil, errors.ErrInvalidInput(fmt.Errorf("price must be non-negative"))
		}
		if strings.TrimSpace(req.Title) == "" {
			return nil, errors.ErrInvalidInput(fmt.Errorf("title is required"))
		}
		target = metadataFingerprint(req.Title, req.Description, req.Price)
		payload, err = builder.BuildUpdateMetadata(video.ID, req.Title, req.Description, req.Price)
	case entities.KindToggleActive:
		payload, err = builder.BuildToggleActive(video.ID)
	}
	if err != nil {
		return nil, err
	}

	eff, err := effectFor(client, req.Kind, payload.VideoID, req.Sender, target)
	if err != nil {
		return nil, errors.ErrInternal(err)
	}
	baseline, err := eff.readBaseline(ctx)
	if err != nil {
		return nil, err
	}
	if req.Kind == entities.KindWithdraw && baseline.Sign() == 0 {
		return nil, errors.ErrRejected(fmt.Errorf("nothing to withdraw for video %d", req.VideoID))
	}

	tx := &entities.PendingTransaction{
		Kind:           string(req.Kind),
		Backend:        string(req.Backend),
		Contract:       payload.Contract,
		VideoID:        payload.VideoID,
		Sender:         req.Sender,
		Payload:        payload.Data,
		Value:          valueString(payload.Value),
		ObservedEffect: eff.describe,
		Baseline:       baseline.String(),
		Status:         constants.TxStatusPending,
		ValidUntil:     payload.ValidUntil,
	}
	if target != nil {
		tx.Target = target.String()
	}
	if err := s.txs.Create(ctx, tx); err != nil {
		return nil, errors.ErrInternal(fmt.Errorf("storing pending transaction: %w", err))
	}
	s.log.Info("transaction prepared",
		zap.String("tx", tx.ID.String()),
		zap.String("kind", tx.Kind),
		zap.String("backend", tx.Backend),
		zap.Uint64("video_id", tx.VideoID),
		zap.String("baseline", tx.Baseline))
	return &Prepared{Tx: tx, Payload: payload, ContentHash: req.ContentHash}, nil
}

func (s *transactionService) validateRegister(req *PrepareRequest) error {
	if !file.IsPlausibleCID(req.ContentHash) {
		return errors.ErrInvalidInput(fmt.Errorf("content hash %q is not an IPFS identifier", req.ContentHash))
	}
	if req.ThumbnailHash != "" && !file.IsPlausibleCID(req.ThumbnailHash) {
		return errors.ErrInvalidInput(fmt.Errorf("thumbnail hash %q is not an IPFS identifier", req.ThumbnailHash))
	}
	if req.Price == nil || req.Price.Cmp(big.NewInt(s.txCfg.MinPriceNano)) < 0 {
		return errors.ErrInvalidInput(fmt.Errorf("price below minimum %d", s.txCfg.MinPriceNano))
	}
	if req.DisplayTime <= 0 {
		req.DisplayTime = s.txCfg.DefaultDisplayTime
	}
	return nil
}

func (s *transactionService) MarkSubmitted(ctx context.Context, id uuid.UUID, submitter, txHash string) (*entities.PendingTransaction, error) {
	txHash = strings.TrimSpace(txHash)
	if txHash == "" {
		return nil, errors.ErrInvalidInput(fmt.Errorf("tx hash is required"))
	}
	tx, err := s.txs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkSubmitter(tx, submitter); err != nil {
		return nil, err
	}
	if err := s.txs.MarkSubmitted(ctx, id, txHash, s.now()); err != nil {
		return nil, err
	}
	if tx, err = s.txs.Get(ctx, id); err != nil {
		return nil, err
	}
	s.metrics.Submission(tx.Backend, tx.Kind, "submitted")

	if s.queue != nil {
		job := queue.ConfirmJob{TransactionID: id.String(), Kind: tx.Kind, Backend: tx.Backend, TxHash: txHash}
		if err := s.queue.EnqueueConfirm(ctx, job); err != nil {
			return nil, errors.ErrInternal(fmt.Errorf("queueing confirmation: %w", err))
		}
	}
	return tx, nil
}

func (s *transactionService) checkSubmitter(tx *entities.PendingTransaction, submitter string) error {
	if tx.Sender == "" {
		return nil
	}
	denied := errors.ErrNotAuthorized(fmt.Errorf("transaction %s was prepared for %s", tx.ID, file.ShortAddress(tx.Sender)))
	if strings.TrimSpace(submitter) == "" {
		return denied
	}
	client, err := s.chains.Get(entities.Backend(tx.Backend))
	if err != nil {
		return err
	}
	normalized, err := client.NormalizeAddress(submitter)
	if err != nil || normalized != tx.Sender {
		return denied
	}
	return nil
}

func (s *transactionService) Confirm(ctx context.Context, id uuid.UUID) (*ConfirmResult, error) {
	tx, err := s.txs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.Status != constants.TxStatusPending {
		return &ConfirmResult{Tx: tx}, nil
	}
	if tx.TxHash == "" {
		return nil, errors.ErrRejected(fmt.Errorf("transaction %s was never submitted", id))
	}
	backend := entities.Backend(tx.Backend)
	client, err := s.chains.Get(backend)
	if err != nil {
		return nil, err
	}
	var target *big.Int
	if tx.Target != "" {
		target = mapper.ParseInt(tx.Target)
	}
	eff, err := effectFor(client, entities.Kind(tx.Kind), tx.VideoID, tx.Sender, target)
	if err != nil {
		return nil, errors.ErrInternal(err)
	}

	conf, pollErr := AwaitEffect(ctx, mapper.ParseInt(tx.Baseline), eff.observe, eff.pred, s.poll)
	if pollErr != nil && ctx.Err() != nil {
		// The write stays submitted; only the wait ends.
		return nil, pollErr
	}

	status := constants.TxStatusConfirmed
	switch {
	case errors.HasCode(pollErr, errors.CodeTimedOut):
		status = constants.TxStatusTimedOut
	case errors.HasCode(pollErr, errors.CodeLookupFailed):
		status = constants.TxStatusLookupFailed
	case pollErr != nil:
		return nil, pollErr
	}

	result := &ConfirmResult{Tx: tx}
	if conf != nil {
		result.Observed, result.Attempts = conf.Observed, conf.Attempts
	}
	if status == constants.TxStatusConfirmed && tx.Kind == string(entities.KindPayToView) {
		s.grantPurchase(ctx, client, tx, result.Observed)
	}
	if err := s.txs.UpdateStatus(ctx, id, status); err != nil {
		return nil, errors.ErrInternal(fmt.Errorf("updating status: %w", err))
	}
	tx.Status = status
	s.metrics.PollResult(tx.Backend, tx.Kind, status, result.Attempts)
	s.log.Info("transaction resolved",
		zap.String("tx", id.String()),
		zap.String("kind", tx.Kind),
		zap.String("status", status),
		zap.Int("attempts", result.Attempts))
	return result, pollErr
}

// grantPurchase failures are logged only: the purchase is on chain and
// CanView recovers it through hasPurchased.
func (s *transactionService) grantPurchase(ctx context.Context, client repositories.ChainClient, tx *entities.PendingTransaction, observed *big.Int) {
	video, err := client.GetVideoInfo(ctx, tx.VideoID)
	if err != nil {
		s.log.Warn("cannot load video for grant", zap.String("tx", tx.ID.String()), zap.Error(err))
		return
	}
	proof := entities.PaymentProof{TxHash: tx.TxHash, Observed: observed, ConfirmedAt: s.now()}
	if err := s.entitlement.RecordGrant(ctx, *video, tx.Sender, proof); err != nil {
		s.log.Warn("recording grant failed", zap.String("tx", tx.ID.String()), zap.Error(err))
	}
}

func (s *transactionService) Execute(ctx context.Context, req PrepareRequest) (*ConfirmResult, error) {
	client, err := s.chains.Get(req.Backend)
	if err != nil {
		return nil, err
	}
	if req.Sender = client.Sender(); req.Sender == "" {
		return nil, errors.ErrNotAuthorized(fmt.Errorf("no %s wallet attached", req.Backend))
	}
	prepared, err := s.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	tx := prepared.Tx

	ref := entities.ContractRef{Backend: req.Backend, Address: prepared.Payload.Contract}
	handle, err := client.Submit(ctx, ref, prepared.Payload)
	if err != nil {
		status, outcome := constants.TxStatusCancelled, "failed"
		switch {
		case errors.HasCode(err, errors.CodeUserDeclined):
			outcome = "declined"
		case errors.HasCode(err, errors.CodeRejected):
			status, outcome = constants.TxStatusRejected, "rejected"
		}
		s.metrics.Submission(tx.Backend, tx.Kind, outcome)
		if uerr := s.txs.UpdateStatus(context.WithoutCancel(ctx), tx.ID, status); uerr != nil {
			s.log.Warn("updating status failed", zap.String("tx", tx.ID.String()), zap.Error(uerr))
		}
		return nil, err
	}

	if err := s.txs.MarkSubmitted(context.WithoutCancel(ctx), tx.ID, handle.Hash, handle.SubmittedAt); err != nil {
		return nil, err
	}
	s.metrics.Submission(tx.Backend, tx.Kind, "submitted")
	return s.Confirm(ctx, tx.ID)
}

func (s *transactionService) Status(ctx context.Context, id uuid.UUID) (*entities.PendingTransaction, error) {
	return s.txs.Get(ctx, id)
}

func valueString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
