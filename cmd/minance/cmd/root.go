package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"minance/config"
	"minance/gateway/binance"
	"minance/ledger"
)

var rootCmd = &cobra.Command{
	Use:   "minance",
	Short: "A terminal dashboard for liquidating and buying back exchange holdings",
	Long: `Minance mirrors an exchange account, sells a chosen subset of holdings,
keeps a durable local ledger of what was sold, and buys positions back later
while tracking realized P/L across the sell/buy-back round trip.

Commands:
  balance  - Show active holdings and realized P/L
  sell     - Liquidate selected holdings into the quote currency
  buyback  - Repurchase previously sold holdings and realize P/L
  ledger   - Show sold-but-not-repurchased positions and trade history`,
	SilenceUsage: true,
}

var (
	cfgFile string
	dbPath  string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./minance.yaml if present)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "path to ledger DB (overrides config)")
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFromFile(cfgFile)
	}
	if _, err := os.Stat("minance.yaml"); err == nil {
		return config.LoadFromFile("minance.yaml")
	}
	return config.Default(), nil
}

func openLedger(cfg *config.Config) (*ledger.SQLite, error) {
	path := cfg.Ledger.DBPath
	if dbPath != "" {
		path = dbPath
	}
	store, err := ledger.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return store, nil
}

func newGateway(cfg *config.Config) (*binance.Client, error) {
	timeout, err := cfg.Gateway.ParseTimeout()
	if err != nil {
		return nil, fmt.Errorf("gateway timeout: %w", err)
	}
	return binance.NewClient(cfg.Gateway.BaseURL, timeout), nil
}
