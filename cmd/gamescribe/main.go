// Package main provides the gamescribe service: an HTTP endpoint that
// renders a game web page in a remote headless browser and returns its move
// list as numbered-pair notation.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrhq/gamescribe/pkg/browser"
	"github.com/entrhq/gamescribe/pkg/config"
	"github.com/entrhq/gamescribe/pkg/logging"
	"github.com/entrhq/gamescribe/pkg/scrape"
	"github.com/entrhq/gamescribe/pkg/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Create context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if runErr := run(ctx, cfg); runErr != nil {
		cancel()
		log.Fatalf("Application error: %v", runErr)
	}
	cancel()
}

func run(ctx context.Context, cfg config.Config) error {
	mainLog := logging.New("main")
	mainLog.Infof("starting gamescribe session %s", logging.GetSessionID())

	driver, err := browser.NewDriver(browser.Options{
		Endpoint: cfg.Endpoint(),
		Retry: browser.RetryPolicy{
			MaxAttempts: cfg.ConnectAttempts,
			Backoff:     cfg.ConnectBackoff(),
		},
		Workspace: browser.WorkspaceOptions{
			UserAgent:       cfg.UserAgent,
			NavTimeout:      cfg.NavTimeout(),
			SelectorTimeout: cfg.SelectorTimeout(),
			SettleDelay:     cfg.SettleDelay(),
		},
	}, logging.New("browser"))
	if err != nil {
		return err
	}
	defer driver.Close()

	svc, err := scrape.NewService(driver, scrape.Options{
		MaxPages:      cfg.MaxConcurrentPages,
		MaxQueueDepth: cfg.MaxQueueDepth,
		AllowedHosts:  cfg.AllowedHosts,
	}, logging.New("scrape"))
	if err != nil {
		return err
	}

	srv := server.New(svc, server.Config{Addr: cfg.Addr}, logging.New("server"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		mainLog.Infof("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
