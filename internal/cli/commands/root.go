package commands

import (
	"fmt"
	"os"

	"github.com/filestore/backend/internal/cli/api"
	"github.com/filestore/backend/internal/cli/config"
	"github.com/spf13/cobra"
)

var (
	flagJSON      bool
	flagServerURL string

	cfg       *config.Config
	apiClient *api.Client
)

var rootCmd = &cobra.Command{
	Use:   "filestore",
	Short: "Upload, share and manage files from the terminal",
	Long: `filestore talks to a file store server: upload files, decide exactly
who may see or download them, and fetch what others shared with you.

Get started:
  filestore login alice             Authenticate with username or email
  filestore upload report.pdf       Upload a file
  filestore share report.pdf --user bob --permission view
  filestore shared                  Files other users shared with you`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if flagServerURL != "" {
			cfg.ServerURL = flagServerURL
		}
		apiClient = api.NewClient(cfg.ServerURL, cfg.Token)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "Override server URL (default: from config or http://localhost:8080)")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func requireAuth() error {
	if cfg == nil || !cfg.HasToken() {
		return fmt.Errorf("not authenticated, run \"filestore login\" first")
	}
	return nil
}
