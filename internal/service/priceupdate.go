// internal/service/priceupdate.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
	"github.com/jpwyse/bitsofstock-sandbox/internal/market"
	"github.com/jpwyse/bitsofstock-sandbox/internal/repository"
)

// PriceUpdateService keeps cryptocurrency market data fresh by polling the
// gateway on a fixed interval.
type PriceUpdateService interface {
	// RefreshOnce fetches quotes for every active asset in one batched call
	// and persists whatever came back. Partial results are applied as-is.
	RefreshOnce(ctx context.Context) (int, error)
	// Start runs RefreshOnce immediately and then on every interval tick
	// until the context is cancelled. It blocks; run it in a goroutine.
	Start(ctx context.Context, interval time.Duration)
}

type priceUpdateService struct {
	db               repository.DBExecutor
	cryptoRepo       repository.CryptocurrencyRepository
	priceHistoryRepo repository.PriceHistoryRepository
	gateway          market.DataGateway
	log              *logrus.Logger
	now              func() time.Time
}

// NewPriceUpdateService creates a new instance of PriceUpdateService.
func NewPriceUpdateService(
	db repository.DBExecutor,
	cryptoRepo repository.CryptocurrencyRepository,
	priceHistoryRepo repository.PriceHistoryRepository,
	gateway market.DataGateway,
	log *logrus.Logger,
) PriceUpdateService {
	return &priceUpdateService{
		db:               db,
		cryptoRepo:       cryptoRepo,
		priceHistoryRepo: priceHistoryRepo,
		gateway:          gateway,
		log:              log,
		now:              time.Now,
	}
}

func (s *priceUpdateService) RefreshOnce(ctx context.Context) (int, error) {
	cryptos, err := s.cryptoRepo.ListActive(ctx, s.db)
	if err != nil {
		return 0, fmt.Errorf("price refresh: failed to list cryptocurrencies: %w", err)
	}
	if len(cryptos) == 0 {
		return 0, nil
	}

	assets := make(map[string]string, len(cryptos))
	for _, c := range cryptos {
		assets[c.Symbol] = c.CoinGeckoID
	}

	quotes, err := s.gateway.GetCurrentPrices(ctx, assets)
	if err != nil {
		return 0, fmt.Errorf("price refresh: gateway fetch failed: %w", err)
	}

	at := s.now().UTC()
	updated := 0
	for _, c := range cryptos {
		quote, ok := quotes[c.Symbol]
		if !ok {
			continue
		}
		if err := s.cryptoRepo.UpdateMarketData(ctx, s.db, c.ID, quote, at); err != nil {
			s.log.Warnf("price refresh: failed to update %s: %v", c.Symbol, err)
			continue
		}
		snapshot := domain.NewPriceHistory(c.ID, quote.Price, at)
		if err := s.priceHistoryRepo.Insert(ctx, s.db, snapshot); err != nil {
			s.log.Warnf("price refresh: failed to record snapshot for %s: %v", c.Symbol, err)
		}
		updated++
	}
	return updated, nil
}

func (s *priceUpdateService) Start(ctx context.Context, interval time.Duration) {
	s.log.Infof("price updater started, interval %s", interval)

	if n, err := s.RefreshOnce(ctx); err != nil {
		s.log.Errorf("price refresh failed: %v", err)
	} else {
		s.log.Infof("refreshed prices for %d assets", n)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("price updater stopped")
			return
		case <-ticker.C:
			if n, err := s.RefreshOnce(ctx); err != nil {
				s.log.Errorf("price refresh failed: %v", err)
			} else {
				s.log.Infof("refreshed prices for %d assets", n)
			}
		}
	}
}
