package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/divmain/drydock-scaffold/internal/adapters/storage/memory"
	"github.com/divmain/drydock-scaffold/internal/infrastructure/console"
	httpapi "github.com/divmain/drydock-scaffold/internal/infrastructure/httpapi"
	obs "github.com/divmain/drydock-scaffold/internal/infrastructure/observability"
	"github.com/divmain/drydock-scaffold/internal/usecase"
	"github.com/divmain/drydock-scaffold/pkg/shared/id"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record traffic through the proxy, write mocks on Ctrl-C",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if admin, _ := cmd.Flags().GetString("admin"); admin != "" {
			cfg.AdminAddr = admin
		}
		return runRecord(cmd.Context())
	},
}

func init() {
	recordCmd.Flags().String("admin", "", "optional admin server address (health, metrics, live monitor)")
	rootCmd.AddCommand(recordCmd)
}

func runRecord(parent context.Context) error {
	logger := obs.NewLoggerTo(os.Stderr, cfg.LogLevel)
	metrics := obs.NewMetrics()
	printer := console.NewPrinter(os.Stdout, cfg.NoColor)
	monitor := httpapi.NewMonitorHub()
	svc := usecase.NewRecordingService(id.New(), memory.NewStore(), printer, monitor).WithLogger(logger)

	proxy := httpapi.NewRecordingProxy(cfg, logger, metrics, svc)
	if err := proxy.Start(cfg.ListenAddr); err != nil {
		return err
	}
	logger.Info().Str("session", svc.Session()).Str("addr", proxy.Addr()).Msg("recording started")
	printer.Println("recording on http://" + proxy.Addr() + " (Ctrl-C to stop and write mocks)")

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	if cfg.AdminAddr != "" {
		deps := &httpapi.Deps{Cfg: cfg, Logger: logger, Metrics: metrics, Svc: svc, Monitor: monitor}
		admin := &http.Server{
			Addr:              cfg.AdminAddr,
			Handler:           httpapi.NewAdminRouter(deps),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		g.Go(func() error {
			logger.Info().Str("addr", cfg.AdminAddr).Msg("admin server listening")
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return admin.Shutdown(sctx)
		})
	}
	runErr := g.Wait()

	// Recording stops before synthesis reads the transactions.
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := proxy.Stop(sctx); err != nil {
		logger.Error().Err(err).Msg("proxy shutdown error")
	}
	if runErr != nil {
		return runErr
	}
	printer.Println()
	return synthesize(logger, metrics, printer, proxy.Addr(), svc.Transactions())
}
