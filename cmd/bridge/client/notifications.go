package client

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/dice-bridge/internal/handlers/control"
)

var notificationLimit int

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "List recent notifications",
	Args:  cobra.NoArgs,
	RunE:  listNotifications,
}

func init() {
	notificationsCmd.Flags().IntVar(&notificationLimit, "limit", 20, "maximum notifications to show")
}

func listNotifications(_ *cobra.Command, _ []string) error {
	client, cleanup, err := createControlClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.ListNotifications(ctx, &control.ListNotificationsRequest{Limit: notificationLimit})
	if err != nil {
		return fmt.Errorf("failed to list notifications: %w", err)
	}

	if len(resp.Notifications) == 0 {
		fmt.Println("No notifications")
		return nil
	}
	for _, n := range resp.Notifications {
		fmt.Printf("%s [%s] %s\n", n.CreatedAt.Local().Format(time.Kitchen), n.Level, n.Message)
	}
	return nil
}
