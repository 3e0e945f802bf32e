package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Taolee-crypto/timelink-backend/config"
	"github.com/Taolee-crypto/timelink-backend/controller"
	"github.com/Taolee-crypto/timelink-backend/dao"
	"github.com/Taolee-crypto/timelink-backend/logic"
	"github.com/Taolee-crypto/timelink-backend/pkg"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
)

func main() {
	configFile := pflag.StringP("config", "c", "config.yaml", "path to the YAML configuration file")
	migrateOnly := pflag.Bool("migrate-only", false, "apply database migrations and exit")
	grantAdmin := pflag.String("grant-admin", "", "give the account with this email the admin role and exit")
	deactivate := pflag.String("deactivate", "", "disable the account with this email and exit")
	pflag.Parse()

	// Initialize config
	if err := config.LoadConfig(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config from %s: %v\n", *configFile, err)
		os.Exit(1)
	}
	cfg := &config.GlobalConfig
	logger := newLogger(cfg.Server.Mode)
	slog.SetDefault(logger)

	// Initialize database
	db, err := dao.Open(cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := dao.Migrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}
	if *migrateOnly {
		logger.Info("migrations applied")
		return
	}

	if *grantAdmin != "" || *deactivate != "" {
		if err := runAdminTask(context.Background(), dao.NewStore(db), cfg, logger, *grantAdmin, *deactivate); err != nil {
			logger.Error("admin task failed", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var media logic.MediaResolver = pkg.StaticMedia{}
	if cfg.Media.BaseURL != "" {
		media = pkg.NewMediaClient(cfg.Media.BaseURL, cfg.Media.APIKey, cfg.Media.Timeout)
	}

	store := dao.NewStore(db)
	svc := logic.NewServices(store, cfg, media, logger)

	// Start the ledger relay when a Nostr relay is configured
	if cfg.Nostr.RelayURL != "" {
		nostrClient, err := pkg.NewNostrClient(ctx, cfg.Nostr.RelayURL, cfg.Nostr.SecretKey, cfg.Nostr.Session)
		if err != nil {
			logger.Error("failed to initialize nostr client", "error", err)
			os.Exit(1)
		}
		defer nostrClient.Close()
		txEventLogic := logic.NewTxEventLogic(store, nostrClient, cfg.Nostr.BatchSize, logger)
		txEventCtrl := controller.NewTxEventController(txEventLogic, logger)
		go txEventCtrl.StartNostrServices(ctx, cfg.Nostr.PublishInterval)
	}

	gin.SetMode(cfg.Server.Mode)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           controller.NewRouter(svc, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("failed to run server", "error", err)
		os.Exit(1)
	}
}

func runAdminTask(ctx context.Context, store *dao.Store, cfg *config.Config, logger *slog.Logger, grantAdmin, deactivate string) error {
	users := logic.NewUserLogic(store, logic.NewLedger(), cfg.Auth, cfg.Economy)
	if grantAdmin != "" {
		user, err := users.GrantAdmin(ctx, grantAdmin)
		if err != nil {
			return fmt.Errorf("grant admin to %s: %w", grantAdmin, err)
		}
		logger.Info("admin role granted", "user_id", user.ID, "email", user.Email)
	}
	if deactivate != "" {
		user, err := users.SetActiveByEmail(ctx, deactivate, false)
		if err != nil {
			return fmt.Errorf("deactivate %s: %w", deactivate, err)
		}
		logger.Info("account deactivated", "user_id", user.ID, "email", user.Email)
	}
	return nil
}

func newLogger(mode string) *slog.Logger {
	if mode == gin.DebugMode {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
