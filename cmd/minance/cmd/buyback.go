package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"minance/config"
	"minance/gateway"
	"minance/reconcile"
	"minance/selection"
)

var buybackCmd = &cobra.Command{
	Use:   "buyback [symbols...]",
	Short: "Repurchase previously sold holdings and realize P/L",
	Long: `Buy back positions recorded in the liquidation ledger at market. With
no arguments every open ledger entry is selected; passing symbols narrows the
selection. Each successful leg realizes (sale price - buy price) * amount,
adds it to the persisted P/L accumulator, and closes the ledger entry. Failed
legs stay in the ledger and can be retried.`,
	RunE: runBuyBack,
}

func init() {
	rootCmd.AddCommand(buybackCmd)
	buybackCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
}

func runBuyBack(cmd *cobra.Command, args []string) error {
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
		fmt.Println("Nothing to buy back: the ledger is empty.")
		return nil
	}

	candidates := make([]string, 0, len(entries))
	for _, e := range entries {
		candidates = append(candidates, e.Symbol)
	}

	sess := selection.NewSession(cfg.Portfolio.StableAsset)
	if err := sess.Start(candidates); err != nil {
		return err
	}
	if err := narrowSelection(sess, args); err != nil {
		return err
	}
	if err := sess.RequestConfirm(); err != nil {
		return fmt.Errorf("nothing to buy back: %w", err)
	}

	if !assumeYes && !confirm(fmt.Sprintf("About to BUY BACK %d asset(s) using your %s balance.",
		len(sess.Selected()), cfg.Portfolio.StableAsset)) {
		sess.Cancel()
		fmt.Println("Cancelled.")
		return nil
	}

	selected, err := sess.Commit()
	if err != nil {
		return err
	}

	want := make(map[string]bool, len(selected))
	for _, sym := range selected {
		want[sym] = true
	}
	items := make([]gateway.OrderItem, 0, len(selected))
	for _, e := range entries {
		if want[e.Symbol] {
			items = append(items, gateway.OrderItem{Symbol: e.Symbol, Amount: e.Amount})
		}
	}

	results, err := gw.Buy(cmd.Context(), creds, items)
	if err != nil {
		sess.Finish()
		return fmt.Errorf("buy batch: %w", err)
	}

	engine := reconcile.NewEngine(store, slog.Default())
	settlement, err := engine.SettleBuyBacks(entries, results)
	sess.Finish()
	if err != nil {
		return err
	}

	for _, e := range settlement.Settled {
		fmt.Printf("bought back  %-8s %s\n", e.Symbol, e.Amount)
	}
	for _, r := range settlement.Skipped {
		fmt.Printf("SKIP         %-8s no usable ledger match or fill\n", r.Symbol)
	}
	for _, r := range settlement.Failed {
		fmt.Printf("FAIL         %-8s %s\n", r.Symbol, r.Error)
	}

	realized, err := store.RealizedPL()
	if err != nil {
		return fmt.Errorf("read realized P/L: %w", err)
	}
	fmt.Printf("\nRealized this batch: %s %s\n", settlement.Delta.StringFixed(2), cfg.Portfolio.StableAsset)
	fmt.Printf("Realized P/L total:  %s %s\n", realized.StringFixed(2), cfg.Portfolio.StableAsset)
	return nil
}
