// Package main is the entry point for the dice bridge daemon
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/dice-bridge/cmd/bridge/client"
)

var rootCmd = &cobra.Command{
	Use:   "dice-bridge",
	Short: "Dice bridge between VTT character sheets and a 3D dice service",
	Long: `dice-bridge watches character sheets for rolls, translates them per game system
and submits them to the shared 3D dice room.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(client.ClientCmd)
}
