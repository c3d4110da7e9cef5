package commands

import (
	"fmt"

	"github.com/filestore/backend/internal/cli/api"
	"github.com/filestore/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user and server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[api.User]
		if err := apiClient.Get("/auth/me", nil, &resp); err != nil {
			return fmt.Errorf("fetching user: %w", err)
		}

		if flagJSON {
			output.JSON(struct {
				Server string   `json:"server"`
				User   api.User `json:"user"`
			}{Server: cfg.ServerURL, User: resp.Data})
			return nil
		}

		output.UserInfo(resp.Data)
		fmt.Printf("Server:   %s\n", cfg.ServerURL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
