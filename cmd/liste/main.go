package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/liste/internal/config"
	"github.com/dukerupert/liste/internal/database"
	"github.com/dukerupert/liste/internal/logging"
	"github.com/dukerupert/liste/internal/push"
	"github.com/dukerupert/liste/internal/relay"
	"github.com/dukerupert/liste/internal/server"
)

func main() {
	genKeys := flag.Bool("vapid-keys", false, "print a new VAPID key pair and exit")
	flag.Parse()

	if *genKeys {
		pub, priv, err := push.GenerateVAPIDKeys()
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate VAPID keys: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s=%s\n%s=%s\n", config.VAPIDPublicKey, pub, config.VAPIDPrivateKey, priv)
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Open(cfg.Server.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	logger.Info("database ready", "path", cfg.Server.DBPath)

	// Cross-instance relay, only when Redis is configured
	var rl relay.Relay = relay.Noop{}
	if cfg.Redis.Addr != "" {
		client := relay.NewClient(cfg)
		if err := relay.Ping(ctx, client); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		rl = relay.NewRedis(client, relay.DefaultChannel, logger)
		logger.Info("redis relay enabled", "addr", cfg.Redis.Addr)
	}
	defer rl.Close()

	srv := server.New(db, cfg, rl, logger)
	if err := srv.Prime(ctx); err != nil {
		return err
	}

	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		if err := srv.ListenRelay(ctx); err != nil {
			logger.Error("relay stopped", "error", err)
		}
	}()

	if n := srv.Notifier(); n != nil {
		n.Start(ctx)
		defer n.Stop()
		logger.Info("push notifications enabled")
	}

	backupMgr := srv.BackupManager()
	backupMgr.Start(ctx)
	defer backupMgr.Stop()
	if backupMgr.Enabled() {
		logger.Info("archives enabled", "bucket", cfg.Backup.Bucket, "interval", cfg.Backup.Interval, "on_clear", cfg.Backup.OnClear)
	}

	// Periodic rate limiter cleanup
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("liste running", "url", cfg.Server.BaseURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}

	cancel()
	<-relayDone
	return nil
}
