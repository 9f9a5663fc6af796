// internal/service/priceupdate_test.go
package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpwyse/bitsofstock-sandbox/internal/market"
)

func TestRefreshOnceUpdatesQuotedAssets(t *testing.T) {
	ctx := context.Background()
	cryptoRepo := newFakeCryptoRepo()

	btc := newTestCrypto("BTC", "bitcoin", "")
	eth := newTestCrypto("ETH", "ethereum", "")
	require.NoError(t, cryptoRepo.Create(ctx, nil, btc))
	require.NoError(t, cryptoRepo.Create(ctx, nil, eth))

	gateway := &fakeGateway{
		quotes: map[string]market.Quote{
			// ETH is missing from the response: partial results apply as-is.
			"BTC": {
				Price:     mustDecimal("64000.12345678"),
				Change24h: mustDecimal("-2.5"),
				Volume24h: mustDecimal("28000000000"),
				MarketCap: mustDecimal("1260000000000"),
			},
		},
	}

	priceHistoryRepo := newFakePriceHistoryRepo()
	svc := NewPriceUpdateService(fakeExecutor{}, cryptoRepo, priceHistoryRepo, gateway, testLogger())
	updated, err := svc.RefreshOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	snapshots, err := priceHistoryRepo.ListRange(ctx, nil, btc.ID, time.Time{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.True(t, snapshots[0].Price.Equal(mustDecimal("64000.12345678")))

	got, err := cryptoRepo.GetByID(ctx, nil, btc.ID)
	require.NoError(t, err)
	assert.True(t, got.HasPrice())
	assert.True(t, got.Price().Equal(mustDecimal("64000.12345678")))
	require.NotNil(t, got.LastUpdated)

	unquoted, err := cryptoRepo.GetByID(ctx, nil, eth.ID)
	require.NoError(t, err)
	assert.False(t, unquoted.HasPrice())
}

func TestRefreshOnceNoAssets(t *testing.T) {
	svc := NewPriceUpdateService(fakeExecutor{}, newFakeCryptoRepo(), newFakePriceHistoryRepo(), &fakeGateway{}, testLogger())
	updated, err := svc.RefreshOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, updated)
}

func TestRefreshOnceGatewayFailure(t *testing.T) {
	ctx := context.Background()
	cryptoRepo := newFakeCryptoRepo()
	require.NoError(t, cryptoRepo.Create(ctx, nil, newTestCrypto("BTC", "bitcoin", "")))

	gateway := &fakeGateway{quotesErr: errors.New("rate limited")}
	svc := NewPriceUpdateService(fakeExecutor{}, cryptoRepo, newFakePriceHistoryRepo(), gateway, testLogger())

	_, err := svc.RefreshOnce(ctx)
	assert.Error(t, err)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc := NewPriceUpdateService(fakeExecutor{}, newFakeCryptoRepo(), newFakePriceHistoryRepo(), &fakeGateway{}, testLogger())

	done := make(chan struct{})
	go func() {
		svc.Start(ctx, 10*time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("price updater did not stop after context cancellation")
	}
}
