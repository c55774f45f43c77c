// Package cmd provides the CLI commands for dokita.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/askdokita/dokita/internal/agent"
	"github.com/askdokita/dokita/internal/config"
	"github.com/askdokita/dokita/internal/db"
	"github.com/askdokita/dokita/internal/debug"
	"github.com/askdokita/dokita/internal/pubsub"
	"github.com/askdokita/dokita/internal/session"
	"github.com/askdokita/dokita/internal/transport"
	"github.com/askdokita/dokita/internal/tui"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dokita",
		Short: "Chat with AskDokita, your personal health assistant",
		Long: `Dokita is a terminal client for the AskDokita health assistant.

It streams answers to health questions in real time and keeps your
chat history on this machine. Press ctrl+s inside the app to browse
past chats and ctrl+n to start a new one.`,
		RunE: runTUI,
	}

	cmd.Flags().String("server", "", "Backend server URL (overrides config)")
	cmd.Flags().Bool("debug", false, "Enable debug logging")
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Enable debug logging if requested.
	debugMode, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return fmt.Errorf("getting debug flag: %w", err)
	}
	if debugMode {
		logPath := filepath.Join(xdg.DataHome, "dokita", "debug.log")
		if debugErr := debug.Enable(logPath); debugErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to enable debug logging: %v\n", debugErr)
		} else {
			defer debug.Disable()
			fmt.Fprintf(os.Stderr, "Debug: %s\n", logPath)
		}
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		cfg = config.NewConfig()
	}
	if cfg.Options.Debug && !debug.IsEnabled() {
		logPath := filepath.Join(xdg.DataHome, "dokita", "debug.log")
		if debugErr := debug.Enable(logPath); debugErr == nil {
			defer debug.Disable()
		}
	}

	serverURL := cfg.Server()
	if flagURL, flagErr := cmd.Flags().GetString("server"); flagErr == nil && flagURL != "" {
		serverURL = flagURL
	}

	// Open the local database for chat history.
	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close() //nolint:errcheck // Best-effort close on shutdown

	hub := pubsub.NewHub()
	defer hub.Shutdown()

	store := session.NewBlobStore(database)
	sessionSvc := session.NewService(store, hub.Session)

	client := transport.NewClient(serverURL)
	ag := agent.New(client, sessionSvc, hub.Stream)

	return tui.Run(ag, sessionSvc, hub)
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
