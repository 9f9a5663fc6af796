// internal/service/assets.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
	"github.com/jpwyse/bitsofstock-sandbox/internal/market"
	"github.com/jpwyse/bitsofstock-sandbox/internal/repository"
)

// detailHistoryWindow is how far back the asset detail chart reaches.
const detailHistoryWindow = 7 * 24 * time.Hour

// CryptocurrencyDetail is one asset together with its recent price snapshots.
type CryptocurrencyDetail struct {
	Cryptocurrency domain.Cryptocurrency `json:"cryptocurrency"`
	PriceHistory   []domain.PriceHistory `json:"price_history"`
}

// AssetService exposes the tradable asset catalog and the news feed.
type AssetService interface {
	ListCryptocurrencies(ctx context.Context) ([]domain.Cryptocurrency, error)
	GetCryptocurrency(ctx context.Context, id string) (*CryptocurrencyDetail, error)
	GetCryptoNews(ctx context.Context, limit int) ([]market.NewsArticle, error)
}

type assetService struct {
	db               repository.DBExecutor
	cryptoRepo       repository.CryptocurrencyRepository
	priceHistoryRepo repository.PriceHistoryRepository
	news             market.NewsProvider
}

// NewAssetService creates a new instance of AssetService.
func NewAssetService(db repository.DBExecutor, cryptoRepo repository.CryptocurrencyRepository, priceHistoryRepo repository.PriceHistoryRepository, news market.NewsProvider) AssetService {
	return &assetService{
		db:               db,
		cryptoRepo:       cryptoRepo,
		priceHistoryRepo: priceHistoryRepo,
		news:             news,
	}
}

func (s *assetService) ListCryptocurrencies(ctx context.Context) ([]domain.Cryptocurrency, error) {
	cryptos, err := s.cryptoRepo.ListActive(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list cryptocurrencies: %w", err)
	}
	return cryptos, nil
}

func (s *assetService) GetCryptocurrency(ctx context.Context, id string) (*CryptocurrencyDetail, error) {
	crypto, err := s.cryptoRepo.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("get cryptocurrency %s: %w", id, err)
	}

	now := time.Now().UTC()
	history, err := s.priceHistoryRepo.ListRange(ctx, s.db, crypto.ID, now.Add(-detailHistoryWindow), now)
	if err != nil {
		return nil, fmt.Errorf("get price history for cryptocurrency %s: %w", id, err)
	}

	return &CryptocurrencyDetail{
		Cryptocurrency: *crypto,
		PriceHistory:   history,
	}, nil
}

func (s *assetService) GetCryptoNews(ctx context.Context, limit int) ([]market.NewsArticle, error) {
	return s.news.GetCryptoNews(ctx, limit)
}
