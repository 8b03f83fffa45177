package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/divmain/drydock-scaffold/internal/infrastructure/config"
)

// cfg is resolved once per invocation: .env, then environment, then flags.
var cfg cfgpkg.Config

var rootCmd = &cobra.Command{
	Use:   "drydock-scaffold",
	Short: "Record HTTP traffic and turn it into a standalone mock server",
	Long: `drydock-scaffold is a recording HTTP proxy. Point a client at it, exercise
the API, then stop it: every recorded response becomes a fixture and a
mock.js server that replays them.

Examples:
  drydock-scaffold record --listen 127.0.0.1:8080 --out ./mocks
  drydock-scaffold import-har session.har --out ./mocks
  drydock-scaffold import-cassette api.yaml --listen 0.0.0.0:3000
  drydock-scaffold ls --admin http://127.0.0.1:9090`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = cfgpkg.Load()
		flags := cmd.Flags()
		if flags.Changed("listen") {
			cfg.ListenAddr, _ = flags.GetString("listen")
		}
		if flags.Changed("out") {
			cfg.OutDir, _ = flags.GetString("out")
		}
		if flags.Changed("log-level") {
			cfg.LogLevel, _ = flags.GetString("log-level")
		}
		if flags.Changed("no-color") {
			cfg.NoColor, _ = flags.GetBool("no-color")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("listen", "127.0.0.1:8080", "address the proxy binds to and the mock server will listen on (IP:PORT)")
	rootCmd.PersistentFlags().String("out", ".", "directory mock.js and fixtures/ are written to")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored console rows")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
