// Package cli implements the pairgate-admin command line, a thin client for
// the gateway's HTTP pairing surface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	adminID   string
	adminRole string
	adminTok  string
)

// rootCmd represents the base command when the `pairgate-admin` binary is
// called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pairgate-admin",
	Short: "A CLI tool for administering the PairGate pairing gateway.",
	Long: `pairgate-admin is a command-line interface for operating the pairing
gateway: listing pending requests and paired entities, approving or rejecting
pairings, and rotating or revoking tokens.`,
}

// Execute is the main entry point for the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://127.0.0.1:8080", "Base URL of the pairing gateway.")
	rootCmd.PersistentFlags().StringVar(&adminID, "device", os.Getenv("PAIRGATE_DEVICE"), "Operator device id used to authenticate.")
	rootCmd.PersistentFlags().StringVar(&adminRole, "role", envOr("PAIRGATE_ROLE", "admin"), "Operator role used to authenticate.")
	rootCmd.PersistentFlags().StringVar(&adminTok, "token", os.Getenv("PAIRGATE_TOKEN"), "Operator token used to authenticate.")

	rootCmd.AddCommand(newDevicesCmd())
	rootCmd.AddCommand(newNodesCmd())
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

//Personal.AI order the ending
