package commands

import (
	"fmt"

	"github.com/filestore/backend/internal/cli/api"
	"github.com/filestore/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List files you own, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[[]api.File]
		if err := apiClient.Get("/files", nil, &resp); err != nil {
			return fmt.Errorf("listing files: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}

		output.FileTable(resp.Data)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
