// Package bankctl implements the admin CLI over the gateway API.
package bankctl

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	gatewayURL string
	token      string
)

// Execute runs the CLI.
func Execute() {
	rootCmd := &cobra.Command{
		Use:           "bankctl",
		Short:         "bankctl administers accounts and transactions over the gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&gatewayURL, "gateway", envOr("BANKCTL_GATEWAY", "http://localhost:8080"), "gateway base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("BANKCTL_TOKEN"), "bearer access token")

	rootCmd.AddCommand(
		registerCmd(),
		loginCmd(),
		accountCmd(),
		transactionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func printJSON(v interface{}) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(encoded))

	return nil
}
