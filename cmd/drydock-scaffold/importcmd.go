package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/divmain/drydock-scaffold/internal/adapters/importers/cassette"
	"github.com/divmain/drydock-scaffold/internal/adapters/importers/har"
	"github.com/divmain/drydock-scaffold/internal/domain"
	"github.com/divmain/drydock-scaffold/internal/infrastructure/console"
	obs "github.com/divmain/drydock-scaffold/internal/infrastructure/observability"
	"github.com/divmain/drydock-scaffold/internal/synth"
)

var importHARCmd = &cobra.Command{
	Use:   "import-har FILE",
	Short: "Write mocks from a HAR 1.2 file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(args[0], har.Load)
	},
}

var importCassetteCmd = &cobra.Command{
	Use:   "import-cassette FILE",
	Short: "Write mocks from a YAML cassette",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(args[0], cassette.Load)
	},
}

func init() {
	rootCmd.AddCommand(importHARCmd, importCassetteCmd)
}

func runImport(path string, load func(string) ([]*domain.Transaction, error)) error {
	logger := obs.NewLoggerTo(os.Stderr, cfg.LogLevel)
	txs, err := load(path)
	if err != nil {
		return err
	}
	logger.Info().Str("file", path).Int("transactions", len(txs)).Msg("trace imported")
	return synthesize(logger, obs.NewMetrics(), console.NewPrinter(os.Stdout, cfg.NoColor), cfg.ListenAddr, txs)
}

// synthesize writes mocks for txs into the configured output directory.
func synthesize(logger *zerolog.Logger, metrics *obs.Metrics, printer *console.Printer, listenAddr string, txs []*domain.Transaction) error {
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	s := &synth.Synthesizer{
		Logger: logger,
		OnFixture: func(string) {
			metrics.FixturesWrittenTotal.Inc()
		},
	}
	if err := s.Write(listenAddr, cfg.OutDir, txs); err != nil {
		return err
	}
	abs, err := filepath.Abs(cfg.OutDir)
	if err != nil {
		abs = cfg.OutDir
	}
	printer.Println("mocks written to " + filepath.Join(abs, "mock.js") + " (run: node mock.js)")
	return nil
}
