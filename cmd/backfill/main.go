// Command backfill recomputes realized P&L for historical transactions.
//
// Usage:
//
//	backfill [--portfolio <id>] [--dry-run]
//
// With no --portfolio flag every portfolio is processed.
package main

import (
	"context"
	"flag"
	"os"

	app "github.com/jpwyse/bitsofstock-sandbox/internal"
	"github.com/jpwyse/bitsofstock-sandbox/internal/service"
	"github.com/jpwyse/bitsofstock-sandbox/internal/util"
)

func main() {
	portfolioID := flag.String("portfolio", "", "portfolio ID to backfill (default: all portfolios)")
	dryRun := flag.Bool("dry-run", false, "compute and report without persisting")
	flag.Parse()

	ctx := context.Background()

	application := app.NewApplication()
	if err := application.Initialize(ctx); err != nil {
		util.GetLogger().Errorf("Failed to initialize application: %v", err)
		os.Exit(1)
	}
	defer func() {
		_ = application.Shutdown(ctx)
	}()

	log := application.Logger

	var results []service.BackfillResult
	if *portfolioID != "" {
		result, err := application.BackfillService.BackfillRealizedGains(ctx, *portfolioID, *dryRun)
		if err != nil {
			log.Errorf("Backfill failed: %v", err)
			os.Exit(1)
		}
		results = append(results, *result)
	} else {
		var err error
		results, err = application.BackfillService.BackfillAll(ctx, *dryRun)
		if err != nil {
			log.Errorf("Backfill failed: %v", err)
			os.Exit(1)
		}
	}

	for _, result := range results {
		log.Infof("portfolio %s: %d transactions updated, %d anomalies (dry run: %v)",
			result.PortfolioID, result.Updated, result.Anomalies, result.DryRun)
		for _, asset := range result.Assets {
			log.Infof("  asset %s: %d transactions, %d updated, total realized %s",
				asset.CryptocurrencyID, asset.Transactions, asset.Updated, asset.TotalRealized)
		}
	}
}
