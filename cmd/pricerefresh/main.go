// Command pricerefresh updates cryptocurrency market data from the gateway.
//
// Usage:
//
//	pricerefresh [--once]
//
// With --once it performs a single refresh and exits. Without it the updater
// keeps running on the configured interval until interrupted.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	app "github.com/jpwyse/bitsofstock-sandbox/internal"
	"github.com/jpwyse/bitsofstock-sandbox/internal/util"
)

func main() {
	once := flag.Bool("once", false, "refresh prices once and exit")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application := app.NewApplication()
	if err := application.Initialize(ctx); err != nil {
		util.GetLogger().Errorf("Failed to initialize application: %v", err)
		os.Exit(1)
	}
	defer func() {
		_ = application.Shutdown(context.Background())
	}()

	log := application.Logger

	if *once {
		updated, err := application.PriceUpdateService.RefreshOnce(ctx)
		if err != nil {
			log.Errorf("Price refresh failed: %v", err)
			os.Exit(1)
		}
		log.Infof("Refreshed prices for %d assets.", updated)
		return
	}

	go application.PriceUpdateService.Start(ctx, application.Config.PriceUpdateInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Stopping price updater...")
	cancel()
}
