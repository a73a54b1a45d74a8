package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"minance/config"
	"minance/portfolio"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show sold-but-not-repurchased positions",
	Long: `List the open entries of the liquidation ledger with their sale
price, current mark valuation, and the hypothetical P/L of having sold
instead of held. Current prices come from a fresh balance snapshot when
credentials are available; without them the valuation columns are zero.

Subcommands:
  history - List executed sell and buy-back legs`,
	Args: cobra.NoArgs,
	RunE: runLedger,
}

var ledgerHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List executed sell and buy-back legs",
	Args:  cobra.NoArgs,
	RunE:  runLedgerHistory,
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerHistoryCmd)
}

func runLedger(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List()
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("The ledger is empty.")
		return nil
	}

	// Best effort: without credentials or a reachable bridge the cache just
	// stays empty and everything values at zero.
	cache := portfolio.NewPriceCache()
	if creds, err := config.Credentials(); err == nil {
		gw, err := newGateway(cfg)
		if err != nil {
			return err
		}
		if snapshot, err := gw.Balance(cmd.Context(), creds); err == nil {
			cache.Refresh(snapshot)
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tAMOUNT\tSALE PRICE\tMARK\tVALUE\tAVOIDED P/L\tSOLD AT")
	for _, e := range entries {
		mark, _ := cache.Price(e.Symbol)
		value := mark.Mul(e.Amount)
		avoided := e.SalePrice().Sub(mark).Mul(e.Amount)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Symbol, e.Amount, e.SalePrice(), mark,
			value.StringFixed(2), avoided.StringFixed(2),
			e.SoldAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	realized, err := store.RealizedPL()
	if err != nil {
		return fmt.Errorf("read realized P/L: %w", err)
	}

	fmt.Printf("\nLiquidated value:  %s %s\n", portfolio.LedgerValue(entries, cache).StringFixed(2), cfg.Portfolio.StableAsset)
	fmt.Printf("Unrealized P/L:    %s %s (if you had held instead of selling)\n", portfolio.UnrealizedPL(entries, cache).StringFixed(2), cfg.Portfolio.StableAsset)
	fmt.Printf("Realized P/L:      %s %s\n", realized.StringFixed(2), cfg.Portfolio.StableAsset)
	return nil
}

func runLedgerHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.ListHistory()
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No trades recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSIDE\tSYMBOL\tAMOUNT\tPRICE\tBATCH")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ExecutedAt.Format("2006-01-02 15:04:05"),
			r.Side, r.Symbol, r.Amount, r.Price, r.BatchID,
		)
	}
	w.Flush()
	return nil
}
