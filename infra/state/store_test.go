package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hweijer/tapplan/core/model"
)

func TestStateRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	last := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	st := model.PlannerState{
		LastDesinfectionCompletedAt: &last,
		LastPlan: []model.ScheduledSession{{
			Kind:         model.SessionHeating,
			Start:        last.Add(time.Hour),
			End:          last.Add(3 * time.Hour),
			AveragePrice: 0.18,
		}},
	}
	require.NoError(t, store.StoreState("last-state", st))

	got := store.LoadState("last-state")
	require.NotNil(t, got.LastDesinfectionCompletedAt)
	require.True(t, got.LastDesinfectionCompletedAt.Equal(last))
	require.Len(t, got.LastPlan, 1)
	require.Equal(t, model.SessionHeating, got.LastPlan[0].Kind)
	require.Equal(t, 0.18, got.LastPlan[0].AveragePrice)
}

func TestLoadStateMissingBlobYieldsEmptyState(t *testing.T) {
	store := NewStore(t.TempDir())
	got := store.LoadState("last-state")
	require.Nil(t, got.LastDesinfectionCompletedAt)
	require.Empty(t, got.LastPlan)
}

func TestLoadStateUnparseableBlobYieldsEmptyState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "last-state.yaml"), []byte(":::not yaml"), 0o644))

	got := NewStore(dir).LoadState("last-state")
	require.Nil(t, got.LastDesinfectionCompletedAt)
}

func TestStoreStateLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, store.StoreState("last-state", model.PlannerState{}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "last-state.yaml", entries[0].Name())
}

func TestLoadSpotPricesSumsComponents(t *testing.T) {
	dir := t.TempDir()
	doc := `
- from: 2026-03-06T01:00:00Z
  till: 2026-03-06T02:00:00Z
  marketPrice: 0.20
  marketPriceTax: 0.042
  sourcingMarkup: 0.017
  energyTaxPrice: 0.12
- from: 2026-03-06T00:00:00Z
  till: 2026-03-06T01:00:00Z
  marketPrice: 0.10
  marketPriceTax: 0.021
  sourcingMarkup: 0.017
  energyTaxPrice: 0.12
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spot-prices.yaml"), []byte(doc), 0o644))

	forecast, err := NewStore(dir).LoadSpotPrices("spot-prices")
	require.NoError(t, err)
	require.Len(t, forecast, 2)
	// Samples come back sorted regardless of feed order.
	require.True(t, forecast[0].Start.Before(forecast[1].Start))
	require.InDelta(t, 0.258, forecast[0].Price, 1e-9)
	require.InDelta(t, 0.379, forecast[1].Price, 1e-9)
}

func TestLoadSpotPricesMissingBlobFails(t *testing.T) {
	_, err := NewStore(t.TempDir()).LoadSpotPrices("spot-prices")
	require.Error(t, err)
}

func TestLoadSpotPricesRejectsOverlaps(t *testing.T) {
	dir := t.TempDir()
	doc := `
- from: 2026-03-06T00:00:00Z
  till: 2026-03-06T02:00:00Z
  marketPrice: 0.10
- from: 2026-03-06T01:00:00Z
  till: 2026-03-06T03:00:00Z
  marketPrice: 0.20
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spot-prices.yaml"), []byte(doc), 0o644))

	_, err := NewStore(dir).LoadSpotPrices("spot-prices")
	require.Error(t, err)
}
