// Package main runs the storefront sync core behind the view bridge.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/R3E-Network/tiny-trolley/internal/config"
	"github.com/R3E-Network/tiny-trolley/internal/httpapi"
	"github.com/R3E-Network/tiny-trolley/internal/logging"
	"github.com/R3E-Network/tiny-trolley/internal/remote"
	"github.com/R3E-Network/tiny-trolley/internal/session"
)

func main() {
	var (
		configPath = flag.String("config", config.DefaultPath, "Path to storefront YAML config")
		envFile    = flag.String("env", ".env", "Optional .env file loaded before the config")
	)
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("load env (%s): %v", *envFile, err)
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New("storefront", cfg.Logging.Level, cfg.Logging.Format)

	client, err := remote.New(remote.Config{
		URL:     cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatalf("create remote client: %v", err)
	}

	sess := session.New(client, session.Options{
		Sequenced: cfg.Sync.Sequenced,
		Logger:    logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: httpapi.NewHandler(sess, httpapi.Config{
			Logger:         logger,
			RateLimit:      cfg.HTTP.RateLimit,
			Burst:          cfg.HTTP.Burst,
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
			CleanupStop:    ctx.Done(),
		}),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sess.Start(gctx)
		logger.WithField("products", len(sess.Products())).Info("catalog loaded")
		return nil
	})

	g.Go(func() error {
		logger.WithField("addr", server.Addr).
			WithField("api", client.BaseURL()).
			WithField("sequenced", cfg.Sync.Sequenced).
			Info("storefront listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Fatal("storefront stopped with error")
	}
	logger.Info("storefront stopped")
}
