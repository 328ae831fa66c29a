// ABOUTME: Sync commands for Charm cloud synchronization of preferences
// ABOUTME: Provides status, now, push, wipe and keys management
package commands

import (
	"fmt"

	"github.com/harper/yaan/internal/charm"
	"github.com/harper/yaan/internal/config"
	"github.com/harper/yaan/internal/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewSyncCmd creates the sync command group
func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Manage Charm cloud synchronization",
		Long: `Manage synchronization with Charm cloud.

Reminders, todos and the conversation log always stay in local SQLite.
With YAAN_PREFERENCES=charm the learned profile lives in Charm KV instead
and syncs across devices linked to the same Charm account via SSH keys.`,
	}

	cmd.AddCommand(newSyncStatusCmd())
	cmd.AddCommand(newSyncNowCmd())
	cmd.AddCommand(newSyncPushCmd())
	cmd.AddCommand(newSyncWipeCmd())
	cmd.AddCommand(newSyncKeysCmd())

	return cmd
}

// openCharm connects to Charm using the loaded configuration
func openCharm() (*charm.Client, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyLogLevel(cfg.LogLevel)

	client, err := charm.NewClient(&charm.Config{
		Host:     cfg.CharmHost,
		DBName:   cfg.CharmDBName,
		AutoSync: cfg.AutoSync,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to Charm: %w", err)
	}
	return client, cfg, nil
}

func newSyncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync status and connection info",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := openCharm()
			if err != nil {
				return err
			}
			defer client.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backend: %s\n", cfg.PreferenceBackend)

			id, err := client.ID()
			if err != nil {
				logger.Debug("charm id unavailable", zap.Error(err))
				fmt.Fprintln(out, "Status: Not connected")
				fmt.Fprintln(out, "Run 'yaan sync keys' to check your SSH keys")
				return nil
			}

			fmt.Fprintln(out, "Status: Connected")
			fmt.Fprintf(out, "User ID: %s\n", id)
			fmt.Fprintf(out, "Host: %s\n", client.Host())

			keys, err := client.ListKeys(charm.UserPrefix(cfg.UserID))
			if err == nil {
				fmt.Fprintf(out, "Synced preferences for %s: %d\n", cfg.UserID, len(keys))
			}
			return nil
		},
	}
}

func newSyncNowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Force immediate sync with Charm cloud",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := openCharm()
			if err != nil {
				return err
			}
			defer client.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Syncing...")
			if err := client.Sync(); err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Sync complete")
			return nil
		},
	}
}

func newSyncPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Copy the profile learned in local SQLite to Charm",
		Long: `Copy the learned profile from local SQLite into Charm KV.

Use this once before switching YAAN_PREFERENCES to charm so the profile
learned so far follows you.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			profile, err := s.store.Profile(cmd.Context(), s.cfg.UserID)
			if err != nil {
				return fmt.Errorf("failed to read local profile: %w", err)
			}

			client, _, err := openCharm()
			if err != nil {
				return err
			}
			defer client.Close()

			values := []struct {
				key   string
				value any
			}{
				{models.PrefUserFacts, profile.Facts},
				{models.PrefInterests, profile.Interests},
				{models.PrefCommunicationStyle, profile.Style},
				{models.PrefTotalMessages, profile.TotalMessages},
			}
			for _, v := range values {
				if err := client.SetPreference(cmd.Context(), s.cfg.UserID, v.key, v.value); err != nil {
					return fmt.Errorf("failed to push %s: %w", v.key, err)
				}
			}
			if err := client.Sync(); err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Pushed %d preferences for %s\n", len(values), s.cfg.UserID)
			}
			return nil
		},
	}
}

func newSyncWipeCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Wipe all local Charm data (nuclear option)",
		Long: `Completely wipe all local Charm data.

WARNING: This deletes the locally cached Charm KV. Your cloud data
remains intact and will be re-synced on next access. Local SQLite data
is not touched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				fmt.Fprintln(cmd.OutOrStdout(), "This will wipe ALL local Charm data!")
				fmt.Fprintln(cmd.OutOrStdout(), "Run with --confirm to proceed")
				return nil
			}

			client, _, err := openCharm()
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Reset(); err != nil {
				return fmt.Errorf("failed to wipe data: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Local Charm data wiped successfully")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm the wipe operation")

	return cmd
}

func newSyncKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List authorized SSH keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := openCharm()
			if err != nil {
				return err
			}
			defer client.Close()

			keys, err := client.GetAuthorizedKeys()
			if err != nil {
				return fmt.Errorf("failed to get authorized keys: %w", err)
			}

			if keys == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No authorized keys found")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Authorized SSH keys:")
			fmt.Fprintln(cmd.OutOrStdout(), keys)
			return nil
		},
	}
}
