package evm

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"testing"
	"time"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/pkg/errors"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCaller struct {
	responses map[string][]byte
	err       error
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	method, err := contractABI.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	out, ok := f.responses[method.Name]
	if !ok {
		return nil, fmt.Errorf("no response for %s", method.Name)
	}
	return out, nil
}

func (f *fakeCaller) respond(t *testing.T, method string, values ...any) {
	t.Helper()
	out, err := contractABI.Methods[method].Outputs.Pack(values...)
	require.NoError(t, err)
	if f.responses == nil {
		f.responses = map[string][]byte{}
	}
	f.responses[method] = out
}

type revertError struct{}

func (revertError) Error() string  { return "execution reverted" }
func (revertError) ErrorCode() int { return 3 }

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func newTestClient(caller *fakeCaller, wallet *KeyWallet) *Client {
	return NewClient(caller, NewBuilder(testContract, 360*time.Second, nil), wallet, zap.NewNop())
}

func TestGetVideosKeepsIndexCorrespondence(t *testing.T) {
	caller := &fakeCaller{}
	caller.respond(t, MethodGetVideos,
		[]common.Address{alice, bob},
		[]string{"QmA", "QmB"},
		[]string{"QmThumbA", "QmThumbB"},
		[]*big.Int{big.NewInt(10), big.NewInt(20)},
		[]*big.Int{big.NewInt(3600), big.NewInt(60)},
	)
	caller.respond(t, MethodGetVideoInfo, alice, "QmA", "QmThumbA", "Title", "Desc",
		big.NewInt(10), big.NewInt(3600), true, big.NewInt(0), big.NewInt(0))
	c := newTestClient(caller, nil)

	videos, err := c.GetVideos(context.Background())
	require.NoError(t, err)
	require.Len(t, videos, 2)

	assert.Equal(t, uint64(0), videos[0].ID)
	assert.Equal(t, alice.Hex(), videos[0].Uploader)
	assert.Equal(t, "QmA", videos[0].ContentHash)
	assert.Equal(t, "QmThumbA", videos[0].ThumbnailHash)
	assert.Equal(t, int64(10), videos[0].Price.Int64())

	assert.Equal(t, uint64(1), videos[1].ID)
	assert.Equal(t, bob.Hex(), videos[1].Uploader)
	assert.Equal(t, "QmB", videos[1].ContentHash)
	assert.Equal(t, "QmThumbB", videos[1].ThumbnailHash)
	assert.Equal(t, int64(60), videos[1].DisplayTimeSeconds)
}

func TestGetVideosCarriesFlagsAndCounters(t *testing.T) {
	caller := &fakeCaller{}
	caller.respond(t, MethodGetVideos,
		[]common.Address{alice},
		[]string{"QmA"},
		[]string{"QmThumbA"},
		[]*big.Int{big.NewInt(10)},
		[]*big.Int{big.NewInt(3600)},
	)
	caller.respond(t, MethodGetVideoInfo, alice, "QmA", "QmThumbA", "Retired clip", "Desc",
		big.NewInt(10), big.NewInt(3600), false, big.NewInt(1), big.NewInt(10))

	videos, err := newTestClient(caller, nil).GetVideos(context.Background())
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.False(t, videos[0].Active)
	assert.Equal(t, int64(1), videos[0].TotalViews.Int64())
	assert.Equal(t, int64(10), videos[0].TotalRevenue.Int64())
	assert.Equal(t, "Retired clip", videos[0].Title)
	assert.Equal(t, "Desc", videos[0].Description)
}

func TestGetVideosRejectsRaggedArrays(t *testing.T) {
	caller := &fakeCaller{}
	caller.respond(t, MethodGetVideos,
		[]common.Address{alice, bob},
		[]string{"QmA"},
		[]string{"", ""},
		[]*big.Int{big.NewInt(1), big.NewInt(2)},
		[]*big.Int{big.NewInt(1), big.NewInt(2)},
	)
	_, err := newTestClient(caller, nil).GetVideos(context.Background())
	assert.True(t, errors.HasCode(err, errors.CodeRejected))
}

func TestGetVideoInfoAndCounters(t *testing.T) {
	caller := &fakeCaller{}
	caller.respond(t, MethodGetVideoInfo, alice, "QmA", "QmT", "Title", "Desc",
		big.NewInt(100), big.NewInt(3600), false, big.NewInt(4), big.NewInt(400))
	caller.respond(t, MethodHasPurchased, true)
	caller.respond(t, MethodGetTotalViewers, big.NewInt(4))
	c := newTestClient(caller, nil)
	ctx := context.Background()

	v, err := c.GetVideoInfo(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v.ID)
	assert.Equal(t, "Title", v.Title)
	assert.False(t, v.Active)
	assert.Equal(t, int64(400), v.TotalRevenue.Int64())

	ok, err := c.HasPurchased(ctx, 7, bob.Hex())
	require.NoError(t, err)
	assert.True(t, ok)

	views, err := c.GetTotalViewers(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(4), views.Int64())
}

func TestGetVideoInfoUnknownVideo(t *testing.T) {
	caller := &fakeCaller{}
	caller.respond(t, MethodGetVideoInfo, common.Address{}, "", "", "", "",
		big.NewInt(0), big.NewInt(0), false, big.NewInt(0), big.NewInt(0))
	_, err := newTestClient(caller, nil).GetVideoInfo(context.Background(), 99)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestReadErrorKinds(t *testing.T) {
	ctx := context.Background()

	_, err := newTestClient(&fakeCaller{err: revertError{}}, nil).VideoCount(ctx)
	assert.True(t, errors.HasCode(err, errors.CodeRejected))

	_, err = newTestClient(&fakeCaller{err: fmt.Errorf("dial tcp: connection refused")}, nil).VideoCount(ctx)
	assert.True(t, errors.HasCode(err, errors.CodeNetworkUnavailable))
}

type fakeTxBackend struct {
	sent []*types.Transaction
}

func (f *fakeTxBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return uint64(len(f.sent)), nil
}
func (f *fakeTxBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}
func (f *fakeTxBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 90_000, nil
}
func (f *fakeTxBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.sent = append(f.sent, tx)
	return nil
}

func newTestWallet(t *testing.T, backend TxBackend, approve bool) *KeyWallet {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	w, err := NewKeyWallet(hexKey(key), 999999999, backend, func(context.Context, *entities.CallPayload) (bool, error) {
		return approve, nil
	})
	require.NoError(t, err)
	return w
}

func hexKey(key *ecdsa.PrivateKey) string {
	return hex.EncodeToString(crypto.FromECDSA(key))
}

func TestSubmitSignsAndSendsOnce(t *testing.T) {
	backend := &fakeTxBackend{}
	c := newTestClient(&fakeCaller{}, newTestWallet(t, backend, true))
	ctx := context.Background()

	payload, err := c.Builder().BuildPayToView(3, big.NewInt(100))
	require.NoError(t, err)

	ref := entities.ContractRef{Backend: entities.BackendEVM, Address: testContract}
	handle, err := c.Submit(ctx, ref, payload)
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)
	assert.Equal(t, backend.sent[0].Hash().Hex(), handle.Hash)
	assert.Equal(t, int64(100), backend.sent[0].Value().Int64())
	assert.Equal(t, payload.Data, backend.sent[0].Data())

	_, err = c.Submit(ctx, ref, payload)
	assert.True(t, errors.HasCode(err, errors.CodeRejected))
	assert.Len(t, backend.sent, 1)
}

func TestSubmitDeclinedByWallet(t *testing.T) {
	backend := &fakeTxBackend{}
	c := newTestClient(&fakeCaller{}, newTestWallet(t, backend, false))

	payload, err := c.Builder().BuildToggleActive(1)
	require.NoError(t, err)
	_, err = c.Submit(context.Background(), entities.ContractRef{Backend: entities.BackendEVM, Address: testContract}, payload)
	assert.True(t, errors.HasCode(err, errors.CodeUserDeclined))
	assert.Empty(t, backend.sent)
}

func TestSubmitRefusesExpiredPayload(t *testing.T) {
	backend := &fakeTxBackend{}
	c := newTestClient(&fakeCaller{}, newTestWallet(t, backend, true))

	payload, err := c.Builder().BuildWithdraw(0)
	require.NoError(t, err)
	payload.ValidUntil = time.Now().Add(-time.Second)

	_, err = c.Submit(context.Background(), entities.ContractRef{Backend: entities.BackendEVM, Address: testContract}, payload)
	assert.True(t, errors.HasCode(err, errors.CodeRejected))
	assert.Empty(t, backend.sent)
}

func TestNormalizeAddress(t *testing.T) {
	c := newTestClient(&fakeCaller{}, nil)
	got, err := c.NormalizeAddress("0x3557cc57bfec1ba4b7119e5589712a6e3b9a3dc7")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testContract).Hex(), got)

	_, err = c.NormalizeAddress("kQCsj")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}
