package usecases

import (
	"context"
	stderrors "errors"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"ppv-marketplace/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(values ...int64) (Observation, *atomic.Int32) {
	var calls atomic.Int32
	return func(context.Context) (*big.Int, error) {
		i := int(calls.Add(1)) - 1
		if i >= len(values) {
			i = len(values) - 1
		}
		return big.NewInt(values[i]), nil
	}, &calls
}

var fastPoll = PollOptions{Interval: time.Millisecond, MaxAttempts: 5}

func TestAwaitEffectConfirmsOnFirstChange(t *testing.T) {
	observe, calls := sequence(5, 5, 6, 7)

	conf, err := AwaitEffect(context.Background(), big.NewInt(5), observe, Increased(), fastPoll)
	require.NoError(t, err)
	assert.Equal(t, int64(6), conf.Observed.Int64())
	assert.Equal(t, 3, conf.Attempts)
	assert.Equal(t, int32(3), calls.Load())
}

func TestAwaitEffectTimesOutWhenUnchanged(t *testing.T) {
	observe, calls := sequence(5)

	conf, err := AwaitEffect(context.Background(), big.NewInt(5), observe, Increased(), fastPoll)
	assert.True(t, errors.HasCode(err, errors.CodeTimedOut))
	require.NotNil(t, conf)
	assert.Equal(t, 5, conf.Attempts)
	assert.Equal(t, int32(5), calls.Load())
}

func TestAwaitEffectRequiresAttemptBound(t *testing.T) {
	observe, calls := sequence(6)
	for _, n := range []int{0, -1} {
		_, err := AwaitEffect(context.Background(), big.NewInt(5), observe, Increased(), PollOptions{Interval: time.Millisecond, MaxAttempts: n})
		assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
	}
	assert.Zero(t, calls.Load())
}

func TestAwaitEffectLookupFailuresDoNotCountAsAttempts(t *testing.T) {
	var calls atomic.Int32
	observe := func(context.Context) (*big.Int, error) {
		if calls.Add(1) <= 2 {
			return nil, errors.ErrNetworkUnavailable(stderrors.New("connection reset"))
		}
		return big.NewInt(6), nil
	}

	opts := PollOptions{Interval: time.Millisecond, MaxAttempts: 1, MaxLookupFailures: 2}
	conf, err := AwaitEffect(context.Background(), big.NewInt(5), observe, Increased(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, conf.Attempts)
}

func TestAwaitEffectReportsLookupFailed(t *testing.T) {
	observe := func(context.Context) (*big.Int, error) {
		return nil, errors.ErrNetworkUnavailable(stderrors.New("dial tcp"))
	}

	_, err := AwaitEffect(context.Background(), big.NewInt(5), observe, Increased(), fastPoll)
	assert.True(t, errors.HasCode(err, errors.CodeLookupFailed))
	assert.False(t, errors.HasCode(err, errors.CodeTimedOut))
}

func TestAwaitEffectStopsOnCancel(t *testing.T) {
	observe, _ := sequence(5)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := AwaitEffect(ctx, big.NewInt(5), observe, Increased(), PollOptions{Interval: time.Millisecond, MaxAttempts: 1_000_000})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPredicates(t *testing.T) {
	five, six := big.NewInt(5), big.NewInt(6)
	assert.True(t, Decreased()(six, five))
	assert.False(t, Decreased()(five, five))
	assert.True(t, Changed()(five, six))
	assert.True(t, Reached(six)(five, six))
	assert.False(t, Reached(six)(six, five))
}
