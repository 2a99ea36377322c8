package cli

import (
	"testing"
)

func TestExecuteWrapper(t *testing.T) {
	defer resetCLI()
	// no injected store so PersistentPreRunE builds one from flags
	storeBackend = nil
	rootCmd.PersistentFlags().Set("store", "memory")
	rootCmd.PersistentFlags().Set("store-file", "")
	rootCmd.SetArgs([]string{"list"})
	if err := Execute(); err != nil {
		t.Fatalf("Execute wrapper failed: %v", err)
	}
}
