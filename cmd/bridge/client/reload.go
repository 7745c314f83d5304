package client

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/dice-bridge/internal/handlers/control"
)

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the dice engine",
	Long: `Drop the dice engine handle and connect again with the stored API key.
Run this after changing the API key.`,
	Args: cobra.NoArgs,
	RunE: reloadEngine,
}

func reloadEngine(_ *cobra.Command, _ []string) error {
	client, cleanup, err := createControlClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fmt.Println("Reloading dice engine...")

	resp, err := client.ReloadDiceEngine(ctx, &control.ReloadDiceEngineRequest{})
	if err != nil {
		return fmt.Errorf("failed to reload dice engine: %w", err)
	}

	printStatus(resp)
	return nil
}
