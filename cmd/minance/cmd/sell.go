package cmd

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"minance/config"
	"minance/portfolio"
	"minance/reconcile"
	"minance/selection"
)

var sellCmd = &cobra.Command{
	Use:   "sell [symbols...]",
	Short: "Liquidate selected holdings into the quote currency",
	Long: `Sell holdings from the active portfolio at market. With no arguments
every active holding except the stable asset is selected; passing symbols
narrows the selection to those. Sold legs are recorded in the local ledger so
they can be bought back later.

The sale is not reversible; you will be asked to confirm unless --yes is set.`,
	RunE: runSell,
}

var assumeYes bool

func init() {
	rootCmd.AddCommand(sellCmd)
	sellCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
}

func runSell(cmd *cobra.Command, args []string) error {
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

	// The ledger must be writable before anything irreversible is submitted;
	// a sale that cannot be recorded cannot be bought back.
	store, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	snapshot, err := gw.Balance(cmd.Context(), creds)
	if err != nil {
		return fmt.Errorf("fetch balance: %w", err)
	}

	positions := portfolio.NewPositions(cfg.Portfolio.Threshold())
	positions.Refresh(snapshot)

	sess := selection.NewSession(cfg.Portfolio.StableAsset)
	if err := sess.Start(positions.Symbols()); err != nil {
		return err
	}
	if err := narrowSelection(sess, args); err != nil {
		return err
	}
	if err := sess.RequestConfirm(); err != nil {
		return fmt.Errorf("nothing to sell: %w", err)
	}

	if !assumeYes && !confirm(fmt.Sprintf("About to SELL %d asset(s). This is not reversible.", len(sess.Selected()))) {
		sess.Cancel()
		fmt.Println("Cancelled.")
		return nil
	}

	selected, err := sess.Commit()
	if err != nil {
		return err
	}

	items := reconcile.PrepareSell(positions.Held(), selected)
	if len(items) == 0 {
		sess.Finish()
		fmt.Println("Nothing sellable after lot-size adjustment.")
		return nil
	}

	results, err := gw.Sell(cmd.Context(), creds, items)
	if err != nil {
		sess.Finish()
		return fmt.Errorf("sell batch: %w", err)
	}

	engine := reconcile.NewEngine(store, slog.Default())
	rep, err := engine.RecordSells(results)
	sess.Finish()
	if err != nil {
		return err
	}

	for _, e := range rep.Recorded {
		fmt.Printf("sold  %-8s %s @ %s\n", e.Symbol, e.Amount, e.SalePrice())
	}
	for _, r := range rep.Failed {
		fmt.Printf("FAIL  %-8s %s\n", r.Symbol, r.Error)
	}
	fmt.Printf("%d sold, %d failed\n", len(rep.Recorded), len(rep.Failed))
	return nil
}

// narrowSelection deselects every candidate not named in args. Args that are
// not candidates are an error rather than silently ignored.
func narrowSelection(sess *selection.Session, args []string) error {
	if len(args) == 0 {
		return nil
	}

	requested := make(map[string]bool, len(args))
	for _, sym := range args {
		requested[strings.ToUpper(sym)] = true
	}

	for _, sym := range sess.Selected() {
		if !requested[sym] {
			if err := sess.Toggle(sym); err != nil {
				return err
			}
		}
		delete(requested, sym)
	}
	for sym := range requested {
		return fmt.Errorf("%q is not available for this operation", sym)
	}
	return nil
}

func confirm(warning string) bool {
	fmt.Printf("%s Proceed? [y/N]: ", warning)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
