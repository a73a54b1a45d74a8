package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"minance/config"
	"minance/portfolio"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show active holdings and realized P/L",
	Long: `Fetch the account snapshot from the exchange bridge, hide dust
holdings below the configured threshold, and print the active portfolio with
its total value and the realized P/L accumulated from completed buy-backs.`,
	Args: cobra.NoArgs,
	RunE: runBalance,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	creds, err := config.Credentials()
	if err != nil {
		return err
	}
	gw, err := newGateway(cfg)
	if err != nil {
		return err
	}

	snapshot, err := gw.Balance(cmd.Context(), creds)
	if err != nil {
		return fmt.Errorf("fetch balance: %w", err)
	}

	positions := portfolio.NewPositions(cfg.Portfolio.Threshold())
	held := positions.Refresh(snapshot)

	store, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	realized, err := store.RealizedPL()
	if err != nil {
		return fmt.Errorf("read realized P/L: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tAMOUNT\tPRICE\tVALUE")
	for _, p := range held {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Symbol, p.Amount, p.Price, p.Value.StringFixed(2))
	}
	w.Flush()

	fmt.Printf("\nEst. total value: %s %s\n", positions.TotalValue().StringFixed(2), cfg.Portfolio.StableAsset)
	fmt.Printf("Realized P/L:     %s %s (from completed buy-backs)\n", realized.StringFixed(2), cfg.Portfolio.StableAsset)
	return nil
}
