package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/divmain/drydock-scaffold/interfaces/go/client"
	"github.com/divmain/drydock-scaffold/internal/infrastructure/console"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List transactions of a running recording through its admin API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		admin, _ := cmd.Flags().GetString("admin")
		limit, _ := cmd.Flags().GetInt("limit")
		state, _ := cmd.Flags().GetString("state")
		items, total, err := client.New(admin).ListTransactions(limit, 0, state)
		if err != nil {
			return err
		}
		printer := console.NewPrinter(os.Stdout, cfg.NoColor)
		for _, tx := range items {
			switch tx.State {
			case "completed":
				printer.Response(tx.No, tx.Status, tx.Href)
			case "failed":
				printer.Error(tx.No, "forward failed "+tx.Href)
			default:
				printer.Request(tx.No, tx.Method, tx.Href)
			}
		}
		if total > len(items) {
			printer.Println("...", total-len(items), "more")
		}
		return nil
	},
}

func init() {
	lsCmd.Flags().String("admin", "http://127.0.0.1:9090", "admin API base URL of the recording")
	lsCmd.Flags().Int("limit", 50, "maximum rows to print")
	lsCmd.Flags().String("state", "", "only list completed, failed or pending transactions")
	rootCmd.AddCommand(lsCmd)
}
