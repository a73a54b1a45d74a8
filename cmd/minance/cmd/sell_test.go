package cmd

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSellRequiresWritableLedgerBeforeSubmitting(t *testing.T) {
	t.Setenv("MINANCE_API_KEY", "k")
	t.Setenv("MINANCE_API_SECRET", "s")

	var sold bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/balance":
			w.Write([]byte(`[{"symbol": "BTC", "amount": 1, "price": 50000, "value_usdt": 50000}]`))
		case "/sell":
			sold = true
			w.Write([]byte(`{"results": []}`))
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "minance.yaml")
	data := fmt.Sprintf(`
gateway:
  base_url: %s
ledger:
  db_path: %s
portfolio:
  stable_asset: USDT
  dust_threshold: 5
`, server.URL, filepath.Join(dir, "x.db"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(data), 0644))

	// Point --db at a file inside a directory that does not exist: opening
	// the ledger fails, and the sale must never reach the bridge.
	rootCmd.SetArgs([]string{
		"sell", "--yes",
		"--config", cfgPath,
		"--db", filepath.Join(dir, "missing", "x.db"),
	})
	err := rootCmd.Execute()

	require.Error(t, err)
	assert.False(t, sold, "an unwritable ledger must stop the sale before submission")
}
