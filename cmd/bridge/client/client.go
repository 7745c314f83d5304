// Package client provides commands that talk to a running bridge over the
// gRPC control service
package client

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/KirkDiggler/dice-bridge/internal/handlers/control"
)

var (
	// Connection flags
	serverAddr string
	timeout    time.Duration
)

// ClientCmd is the root command for all client commands
var ClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Control a running dice bridge",
	Long:  `Client commands send runtime messages to a running bridge over gRPC.`,
}

func init() {
	ClientCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:50051", "gRPC server address")
	ClientCmd.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "Request timeout")

	ClientCmd.AddCommand(statusCmd)
	ClientCmd.AddCommand(reloadCmd)
	ClientCmd.AddCommand(preloadThemeCmd)
	ClientCmd.AddCommand(notificationsCmd)
}

// createControlClient dials the control service
func createControlClient() (*control.Client, func(), error) {
	conn, err := grpc.NewClient(serverAddr, control.DialOptions()...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	cleanup := func() {
		_ = conn.Close() // nolint:errcheck // safe to ignore in cleanup
	}

	return control.NewClient(conn), cleanup, nil
}

func printStatus(resp *control.StatusResponse) {
	fmt.Printf("State:        %s\n", resp.State)
	fmt.Printf("Game system:  %s\n", resp.GameSystem)
	if resp.SessionID != "" {
		fmt.Printf("Session:      %s\n", resp.SessionID)
	}
	fmt.Printf("Engine ready: %t\n", resp.EngineReady)
}
