package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/internal/domain/repositories"
	"ppv-marketplace/internal/infrastructure/cache"
	"ppv-marketplace/internal/infrastructure/chain/evm"
	"ppv-marketplace/internal/infrastructure/queue"
	infra_repo "ppv-marketplace/internal/infrastructure/repositories"
	"ppv-marketplace/internal/pkg/config"
	"ppv-marketplace/pkg/errors"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const (
	testContract = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	uploaderAddr = "0x1111111111111111111111111111111111111111"
	viewerAddr   = "0x2222222222222222222222222222222222222222"
	cidVideo     = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
	cidThumb     = "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"
)

var errOffline = errors.ErrNetworkUnavailable(stderrors.New("dial tcp: connection refused"))

// fakeChain is an in-memory EVM registry. Submitted payloads take effect
// immediately, as if mined in the next block.
type fakeChain struct {
	mu        sync.Mutex
	builder   *evm.Builder
	sender    string
	decline   bool
	videos    []entities.VideoRecord
	purchased map[string]bool
	earnings  map[string]*big.Int

	offline        bool // every read fails
	purchaseErr    error
	freezeEffects  bool // submits succeed but change nothing
	purchaseLookup int
	submitted      []*entities.CallPayload
	pendingUpdate  *entities.VideoRecord
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		builder:   evm.NewBuilder(testContract, 360*time.Second, time.Now),
		purchased: map[string]bool{},
		earnings:  map[string]*big.Int{},
	}
}

func (f *fakeChain) addVideo(uploader string, price int64, active bool) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uint64(len(f.videos))
	f.videos = append(f.videos, entities.VideoRecord{
		ID:                 id,
		Backend:            entities.BackendEVM,
		Contract:           common.HexToAddress(testContract).Hex(),
		Uploader:           common.HexToAddress(uploader).Hex(),
		ContentHash:        fmt.Sprintf("Qm%044d", id),
		Title:              fmt.Sprintf("clip %d", id),
		Price:              big.NewInt(price),
		DisplayTimeSeconds: 3600,
		Active:             active,
		TotalViews:         new(big.Int),
		TotalRevenue:       new(big.Int),
	})
	return id
}

func (f *fakeChain) setActive(id uint64, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.videos[id].Active = active
}

func (f *fakeChain) setOffline(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = v
}

func (f *fakeChain) Backend() entities.Backend       { return entities.BackendEVM }
func (f *fakeChain) Sender() string                  { return f.sender }
func (f *fakeChain) Builder() repositories.TxBuilder { return f.builder }

func (f *fakeChain) NormalizeAddress(addr string) (string, error) {
	if !common.IsHexAddress(addr) {
		return "", errors.ErrInvalidInput(fmt.Errorf("not an EVM address: %q", addr))
	}
	return common.HexToAddress(addr).Hex(), nil
}

func (f *fakeChain) Read(context.Context, entities.ContractRef, string, ...any) ([]any, error) {
	return nil, errors.ErrRejected(stderrors.New("raw reads unsupported by fake"))
}

func (f *fakeChain) Submit(_ context.Context, _ entities.ContractRef, p *entities.CallPayload) (*entities.TxHandle, error) {
	if f.decline {
		return nil, errors.ErrUserDeclined(stderrors.New("declined"))
	}
	if !p.Claim(time.Now()) {
		return nil, errors.ErrRejected(stderrors.New("payload reused or expired"))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, p)
	if !f.freezeEffects {
		f.apply(p)
	}
	return &entities.TxHandle{
		Hash:        fmt.Sprintf("0x%064x", len(f.submitted)),
		Backend:     entities.BackendEVM,
		Contract:    p.Contract,
		SubmittedAt: time.Now(),
	}, nil
}

func (f *fakeChain) apply(p *entities.CallPayload) {
	switch p.Kind {
	case entities.KindPayToView:
		v := &f.videos[p.VideoID]
		v.TotalViews = new(big.Int).Add(v.TotalViews, big.NewInt(1))
		v.TotalRevenue = new(big.Int).Add(v.TotalRevenue, p.Value)
		f.purchased[purchaseKey(p.VideoID, f.sender)] = true
		owner := v.Uploader
		f.earnings[owner] = new(big.Int).Add(f.balance(owner), p.Value)
	case entities.KindRegisterVideo:
		f.videos = append(f.videos, entities.VideoRecord{
			ID:           uint64(len(f.videos)),
			Backend:      entities.BackendEVM,
			Contract:     p.Contract,
			Uploader:     f.sender,
			Active:       true,
			Price:        new(big.Int),
			TotalViews:   new(big.Int),
			TotalRevenue: new(big.Int),
		})
	case entities.KindWithdraw:
		f.earnings[f.sender] = new(big.Int)
	case entities.KindToggleActive:
		f.videos[p.VideoID].Active = !f.videos[p.VideoID].Active
	case entities.KindUpdateMetadata:
		if u := f.pendingUpdate; u != nil {
			v := &f.videos[p.VideoID]
			v.Title, v.Description, v.Price = u.Title, u.Description, u.Price
		}
	}
}

func purchaseKey(id uint64, viewer string) string {
	return fmt.Sprintf("%d|%s", id, viewer)
}

func (f *fakeChain) balance(owner string) *big.Int {
	if b, ok := f.earnings[owner]; ok {
		return b
	}
	return new(big.Int)
}

func (f *fakeChain) GetVideos(context.Context) ([]entities.VideoRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errOffline
	}
	out := make([]entities.VideoRecord, len(f.videos))
	copy(out, f.videos)
	return out, nil
}

func (f *fakeChain) GetVideoInfo(_ context.Context, id uint64) (*entities.VideoRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errOffline
	}
	if id >= uint64(len(f.videos)) {
		return nil, errors.ErrNotFound(fmt.Errorf("evm video %d", id))
	}
	v := f.videos[id]
	return &v, nil
}

func (f *fakeChain) HasPurchased(_ context.Context, id uint64, viewer string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purchaseLookup++
	if f.offline {
		return false, errOffline
	}
	if f.purchaseErr != nil {
		return false, f.purchaseErr
	}
	return f.purchased[purchaseKey(id, viewer)], nil
}

func (f *fakeChain) GetTotalViewers(_ context.Context, id uint64) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errOffline
	}
	return new(big.Int).Set(f.videos[id].TotalViews), nil
}

func (f *fakeChain) VideoCount(context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errOffline
	}
	return big.NewInt(int64(len(f.videos))), nil
}

func (f *fakeChain) WithdrawableBalance(_ context.Context, _ uint64, owner string) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errOffline
	}
	return new(big.Int).Set(f.balance(owner)), nil
}

func (f *fakeChain) lookups() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.purchaseLookup
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []queue.ConfirmJob
}

func (q *fakeQueue) EnqueueConfirm(_ context.Context, job queue.ConfirmJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

// harness wires the usecases over in-memory infrastructure.
type harness struct {
	chain       *fakeChain
	grants      *infra_repo.InMemoryEntitlementRepository
	txRepo      *infra_repo.InMemoryTransactionRepository
	mirror      *infra_repo.InMemoryVideoRepository
	cache       *cache.MemoryCache
	queue       *fakeQueue
	entitlement EntitlementService
	txs         TransactionService
	catalog     CatalogService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		chain:  newFakeChain(),
		grants: infra_repo.NewInMemoryEntitlementRepository(),
		txRepo: infra_repo.NewInMemoryTransactionRepository(),
		mirror: infra_repo.NewInMemoryVideoRepository(),
		cache:  cache.NewMemoryCache(),
		queue:  &fakeQueue{},
	}
	chains := Chains{entities.BackendEVM: h.chain}
	log := zap.NewNop()
	h.entitlement = NewEntitlementService(chains, h.grants, h.cache, nil, log)
	h.txs = NewTransactionService(chains, h.txRepo, h.entitlement, h.queue,
		config.TxConfig{ValidityWindow: 360 * time.Second, DefaultDisplayTime: 3600, MinPriceNano: 1, MaxFileSize: 1 << 20},
		config.PollConfig{Interval: time.Millisecond, MaxAttempts: 5, MaxLookupFailures: 1},
		nil, log)
	h.catalog = NewCatalogService(chains, h.mirror, log)
	return h
}
