package commands

import (
	"fmt"

	"github.com/filestore/backend/internal/cli/api"
	"github.com/filestore/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Summarise owned and shared files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[api.Dashboard]
		if err := apiClient.Get("/dashboard", nil, &resp); err != nil {
			return fmt.Errorf("fetching dashboard: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}

		d := resp.Data
		fmt.Print(dashboardSummary(d))
		output.FileTable(d.OwnedFiles)
		fmt.Println()
		output.SharedTable(d.SharedFiles)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func dashboardSummary(d api.Dashboard) string {
	return fmt.Sprintf("%d file(s) in total: %d owned (%s), %d shared with you.\n\n",
		d.TotalFiles, len(d.OwnedFiles), output.FormatSize(d.TotalSize), len(d.SharedFiles))
}
