package client

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/dice-bridge/internal/handlers/control"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE:  getStatus,
}

func getStatus(_ *cobra.Command, _ []string) error {
	client, cleanup, err := createControlClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.GetStatus(ctx, &control.GetStatusRequest{})
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	printStatus(resp)
	return nil
}
