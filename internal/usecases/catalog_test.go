package usecases

import (
	"context"
	"testing"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogFallsBackToMirror(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.chain.addVideo(uploaderAddr, 10, true)
	h.chain.addVideo(uploaderAddr, 20, true)

	videos, stale, err := h.catalog.List(ctx, entities.BackendEVM)
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Len(t, videos, 2)

	h.chain.setOffline(true)
	videos, stale, err = h.catalog.List(ctx, entities.BackendEVM)
	require.NoError(t, err)
	assert.True(t, stale)
	require.Len(t, videos, 2)
	assert.Equal(t, int64(20), videos[1].Price.Int64())
}

func TestCatalogOfflineWithEmptyMirror(t *testing.T) {
	h := newHarness(t)
	h.chain.setOffline(true)

	_, _, err := h.catalog.List(context.Background(), entities.BackendEVM)
	assert.True(t, errors.HasCode(err, errors.CodeNetworkUnavailable))
}

func TestCatalogRefresh(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.chain.addVideo(uploaderAddr, 10, true)

	require.NoError(t, h.catalog.Refresh(ctx, entities.BackendEVM, id))
	got, err := h.mirror.Get(ctx, entities.BackendEVM, id)
	require.NoError(t, err)
	assert.Equal(t, "clip 0", got.Title)

	err = h.catalog.Refresh(ctx, entities.BackendEVM, 42)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestCatalogMirrorKeepsFlagsAndCounters(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.chain.addVideo(uploaderAddr, 10, true)
	h.chain.setActive(id, false)
	h.chain.videos[id].TotalViews.SetInt64(1)

	_, _, err := h.catalog.List(ctx, entities.BackendEVM)
	require.NoError(t, err)

	got, err := h.mirror.Get(ctx, entities.BackendEVM, id)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, int64(1), got.TotalViews.Int64())

	h.chain.setOffline(true)
	videos, stale, err := h.catalog.List(ctx, entities.BackendEVM)
	require.NoError(t, err)
	assert.True(t, stale)
	require.Len(t, videos, 1)
	assert.False(t, videos[0].Active)
	assert.Equal(t, int64(1), videos[0].TotalViews.Int64())
}
