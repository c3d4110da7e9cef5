package commands

import (
	"fmt"

	"github.com/filestore/backend/internal/cli/config"
	"github.com/spf13/cobra"
)

var flagForget bool

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	Long: `Drop the stored token but remember the server URL.
Pass --forget to delete the whole config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagForget {
			if err := config.Clear(); err != nil {
				return fmt.Errorf("clearing config: %w", err)
			}
			fmt.Println("Logged out and removed local configuration.")
			return nil
		}

		if !cfg.HasToken() {
			fmt.Println("Not logged in.")
			return nil
		}
		cfg.Token = ""
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Println("Logged out.")
		return nil
	},
}

func init() {
	logoutCmd.Flags().BoolVar(&flagForget, "forget", false, "Also forget the server URL")
	rootCmd.AddCommand(logoutCmd)
}
