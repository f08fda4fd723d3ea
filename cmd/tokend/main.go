package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tokenledger/config"
	"tokenledger/core/state"
	"tokenledger/core/types"
	"tokenledger/observability"
	"tokenledger/observability/logging"
	"tokenledger/storage"
)

const envVar = "TOKEND_ENV"

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	allowResetFlag := flag.Bool("allow-reset", false, "Start from an empty ledger when the stored snapshot cannot be restored")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	env := strings.TrimSpace(os.Getenv(envVar))
	if env == "" {
		env = cfg.Env
	}
	logger := logging.Setup("tokend", env, cfg.LogFile)

	if err := run(cfg, *allowResetFlag || cfg.AllowReset, logger); err != nil {
		logger.Error("tokend exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, allowReset bool, logger *slog.Logger) error {
	opts, err := cfg.StateOptions(types.Now())
	if err != nil {
		return err
	}
	metrics := observability.Ledger()
	opts.Recorder = metrics

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	store := state.NewSnapshotStore(db)
	st, report, err := restoreState(store, opts, allowReset, logger)
	if err != nil {
		return err
	}
	stats := st.Stats()
	logger.Info("ledger state ready",
		slog.String("data_dir", cfg.DataDir),
		slog.Bool("restored", report.Restored),
		slog.Int("holders", st.HolderCount()),
		slog.Int("approvals", st.AllowanceSize()),
		slog.String("symbol", stats.Symbol),
		logging.AccountField("owner", stats.Owner),
		logging.AccountField("fee_to", stats.FeeTo),
		logging.LogoField("logo", stats.Logo))

	d := newDaemon(st, store, metrics, logger, cfg.SnapshotInterval())

	server := &http.Server{
		Addr:              cfg.MetricsAddress,
		Handler:           newRouter(promhttp.Handler(), d.health),
		ReadHeaderTimeout: 5 * time.Second,
	}
	listener, err := net.Listen("tcp", cfg.MetricsAddress)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	go func() {
		logger.Info("ops endpoint listening", slog.String("address", listener.Addr().String()))
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("ops endpoint stopped", slog.Any("error", serveErr))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := d.run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", slog.Any("error", err))
	}
	if runErr != nil {
		return fmt.Errorf("final snapshot: %w", runErr)
	}
	logger.Info("tokend stopped")
	return nil
}
