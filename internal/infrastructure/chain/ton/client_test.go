package ton

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"testing"
	"time"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/ton"
	"github.com/xssnick/tonutils-go/ton/wallet"
	"github.com/xssnick/tonutils-go/tvm/cell"
	"go.uber.org/zap"
)

type getCall struct {
	addr   string
	method string
	params []any
}

type fakeGetter struct {
	results map[string][]any // key: address|method
	balance *big.Int
	err     error
	calls   []getCall
}

func (f *fakeGetter) RunGet(_ context.Context, addr *address.Address, method string, params ...any) ([]any, error) {
	f.calls = append(f.calls, getCall{addr: addr.String(), method: method, params: params})
	if f.err != nil {
		return nil, f.err
	}
	out, ok := f.results[addr.String()+"|"+method]
	if !ok {
		return nil, ton.ContractExecError{Code: 11}
	}
	return out, nil
}

func (f *fakeGetter) Balance(context.Context, *address.Address) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.balance, nil
}

func (f *fakeGetter) set(addr *address.Address, method string, values ...any) {
	if f.results == nil {
		f.results = map[string][]any{}
	}
	f.results[addr.String()+"|"+method] = values
}

func strCell(s string) *cell.Cell {
	return cell.BeginCell().MustStoreStringSnake(s).EndCell()
}

func addrSlice(a *address.Address) *cell.Slice {
	return cell.BeginCell().MustStoreAddr(a).EndCell().BeginParse()
}

func videoInfo(owner *address.Address, price, views int64, hash string, active bool) []any {
	flag := big.NewInt(0)
	if active {
		flag = big.NewInt(-1)
	}
	return []any{
		addrSlice(owner), big.NewInt(price), strCell(hash), strCell("Title " + hash),
		strCell("Desc"), big.NewInt(views), big.NewInt(price * views), flag,
	}
}

func newTestClient(t *testing.T, getter Getter, videos int, w *SeedWallet) *Client {
	t.Helper()
	b := NewBuilder(testOps, newTestDirectory(t, videos), 50_000_000, 360*time.Second, nil)
	return NewClient(getter, b, w, zap.NewNop())
}

func TestGetVideoInfoDecodesStack(t *testing.T) {
	owner := testAddr(0xA1)
	g := &fakeGetter{}
	g.set(testAddr(1), GetVideoInfo, videoInfo(owner, 100_000_000, 2, "QmOne", true)...)
	c := newTestClient(t, g, 1, nil)

	v, err := c.GetVideoInfo(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v.ID)
	assert.Equal(t, rawAddress(owner), v.Uploader)
	assert.Equal(t, "QmOne", v.ContentHash)
	assert.Equal(t, "Title QmOne", v.Title)
	assert.Equal(t, int64(100_000_000), v.Price.Int64())
	assert.Equal(t, int64(2), v.TotalViews.Int64())
	assert.True(t, v.Active)
}

func TestGetVideosIsOrderedByID(t *testing.T) {
	g := &fakeGetter{}
	g.set(testAddr(1), GetVideoInfo, videoInfo(testAddr(0xA1), 1, 0, "QmOne", true)...)
	g.set(testAddr(2), GetVideoInfo, videoInfo(testAddr(0xB2), 2, 5, "QmTwo", false)...)
	c := newTestClient(t, g, 2, nil)

	videos, err := c.GetVideos(context.Background())
	require.NoError(t, err)
	require.Len(t, videos, 2)
	for i, v := range videos {
		assert.Equal(t, uint64(i+1), v.ID)
	}
	assert.Equal(t, "QmTwo", videos[1].ContentHash)
	assert.Equal(t, rawAddress(testAddr(0xB2)), videos[1].Uploader)
	assert.Equal(t, int64(2), videos[1].Price.Int64())
}

func TestHasPurchasedPassesAddressSlice(t *testing.T) {
	viewer := testAddr(0xC3)
	g := &fakeGetter{}
	g.set(testAddr(1), HasPurchased, big.NewInt(-1))
	c := newTestClient(t, g, 1, nil)

	ok, err := c.HasPurchased(context.Background(), 1, viewer.String())
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, g.calls, 1)
	require.Len(t, g.calls[0].params, 1)
	arg, isSlice := g.calls[0].params[0].(*cell.Slice)
	require.True(t, isSlice)
	got, err := arg.LoadAddr()
	require.NoError(t, err)
	assert.Equal(t, rawAddress(viewer), rawAddress(got))
}

func TestVideoCountReadsRegistry(t *testing.T) {
	g := &fakeGetter{}
	g.set(testAddr(0xEE), GetCounter, big.NewInt(7))
	c := newTestClient(t, g, 0, nil)

	n, err := c.VideoCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), n.Int64())
}

func TestReadErrorKinds(t *testing.T) {
	ctx := context.Background()

	_, err := newTestClient(t, &fakeGetter{}, 1, nil).GetTotalViewers(ctx, 1)
	assert.True(t, errors.HasCode(err, errors.CodeRejected))

	_, err = newTestClient(t, &fakeGetter{err: fmt.Errorf("adnl: timeout")}, 1, nil).GetTotalViewers(ctx, 1)
	assert.True(t, errors.HasCode(err, errors.CodeNetworkUnavailable))

	_, err = newTestClient(t, &fakeGetter{}, 1, nil).GetTotalViewers(ctx, 4)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestNormalizeAddressForms(t *testing.T) {
	c := newTestClient(t, &fakeGetter{}, 0, nil)
	a := testAddr(0x42)

	friendly, err := c.NormalizeAddress(a.String())
	require.NoError(t, err)
	raw, err := c.NormalizeAddress(rawAddress(a))
	require.NoError(t, err)
	assert.Equal(t, friendly, raw)

	_, err = c.NormalizeAddress("0xnothing")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestRawAddressRoundTrips(t *testing.T) {
	a := testAddr(0x42)
	raw := rawAddress(a)
	assert.Equal(t, "0:"+hex.EncodeToString(a.Data()), raw)

	back, err := address.ParseRawAddr(raw)
	require.NoError(t, err)
	assert.True(t, back.Equals(a))

	master := address.NewAddress(0, 0xff, a.Data())
	assert.Equal(t, "-1:"+hex.EncodeToString(a.Data()), rawAddress(master))
}

type fakeSender struct {
	addr *address.Address
	sent []*wallet.Message
	err  error
}

func (f *fakeSender) WalletAddress() *address.Address { return f.addr }

func (f *fakeSender) Send(_ context.Context, msg *wallet.Message, _ ...bool) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func approveAll(approve bool) func(context.Context, *entities.CallPayload) (bool, error) {
	return func(context.Context, *entities.CallPayload) (bool, error) { return approve, nil }
}

func TestSubmitSendsValueSeparately(t *testing.T) {
	sender := &fakeSender{addr: testAddr(0xD4)}
	c := newTestClient(t, &fakeGetter{}, 3, NewSenderWallet(sender, approveAll(true)))
	ctx := context.Background()

	payload, err := c.Builder().BuildPayToView(3, big.NewInt(100_000_000))
	require.NoError(t, err)
	ref := entities.ContractRef{Backend: entities.BackendTON, Address: payload.Contract}

	handle, err := c.Submit(ctx, ref, payload)
	require.NoError(t, err)
	assert.NotEmpty(t, handle.Hash)
	assert.Equal(t, rawAddress(testAddr(0xD4)), c.Sender())

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0].InternalMessage
	assert.Equal(t, int64(100_000_000), msg.Amount.Nano().Int64())
	assert.Equal(t, rawAddress(testAddr(3)), rawAddress(msg.DstAddr))

	_, err = c.Submit(ctx, ref, payload)
	assert.True(t, errors.HasCode(err, errors.CodeRejected))
	assert.Len(t, sender.sent, 1)
}

func TestSubmitDeclinedAndUnreachable(t *testing.T) {
	ctx := context.Background()

	declined := &fakeSender{addr: testAddr(0xD4)}
	c := newTestClient(t, &fakeGetter{}, 1, NewSenderWallet(declined, approveAll(false)))
	payload, err := c.Builder().BuildToggleActive(1)
	require.NoError(t, err)
	_, err = c.Submit(ctx, entities.ContractRef{Backend: entities.BackendTON, Address: payload.Contract}, payload)
	assert.True(t, errors.HasCode(err, errors.CodeUserDeclined))
	assert.Empty(t, declined.sent)

	down := &fakeSender{addr: testAddr(0xD4), err: fmt.Errorf("lite server unavailable")}
	c = newTestClient(t, &fakeGetter{}, 1, NewSenderWallet(down, approveAll(true)))
	payload, err = c.Builder().BuildWithdraw(1)
	require.NoError(t, err)
	_, err = c.Submit(ctx, entities.ContractRef{Backend: entities.BackendTON, Address: payload.Contract}, payload)
	assert.True(t, errors.HasCode(err, errors.CodeNetworkUnavailable))
}
