package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/dice-bridge/internal/handlers/control"
)

var preloadThemeCmd = &cobra.Command{
	Use:   "preload-theme [theme-id]",
	Short: "Warm a dice theme",
	Long: `Fetch a theme into the engine cache so the first roll renders without delay. Example:

  preload-theme dddice-bees`,
	Args: cobra.ExactArgs(1),
	RunE: preloadTheme,
}

func preloadTheme(_ *cobra.Command, args []string) error {
	client, cleanup, err := createControlClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.PreloadTheme(ctx, &control.PreloadThemeRequest{ThemeID: args[0]})
	if err != nil {
		return fmt.Errorf("failed to preload theme: %w", err)
	}

	fmt.Printf("Theme %s loaded\n", resp.Theme.ID)
	if resp.Theme.Name != "" {
		fmt.Printf("  Name: %s\n", resp.Theme.Name)
	}
	if len(resp.Theme.DieTypes) > 0 {
		fmt.Printf("  Dice: %s\n", strings.Join(resp.Theme.DieTypes, ", "))
	}
	return nil
}
