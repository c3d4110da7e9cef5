package commands

import (
	"fmt"

	"github.com/filestore/backend/internal/cli/api"
	"github.com/filestore/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var (
	flagDownloadable bool
	flagSharedPerm   string
)

var sharedCmd = &cobra.Command{
	Use:   "shared",
	Short: "List files other users shared with you",
	Long: `List files shared with you, newest first.

  filestore shared
  filestore shared --downloadable          Only files you may download
  filestore shared --permission edit       Only files you may edit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[[]api.File]
		if err := apiClient.Get("/shared", nil, &resp); err != nil {
			return fmt.Errorf("listing shared files: %w", err)
		}

		files := filterShared(resp.Data, flagSharedPerm, flagDownloadable)

		if flagJSON {
			output.JSON(files)
			return nil
		}

		output.SharedTable(files)
		return nil
	},
}

func init() {
	sharedCmd.Flags().BoolVar(&flagDownloadable, "downloadable", false, "Only show files you may download")
	sharedCmd.Flags().StringVar(&flagSharedPerm, "permission", "", "Only show grants with this permission: view, edit")
	rootCmd.AddCommand(sharedCmd)
}

func filterShared(files []api.File, permission string, downloadable bool) []api.File {
	if permission == "" && !downloadable {
		return files
	}
	kept := make([]api.File, 0, len(files))
	for _, f := range files {
		if permission != "" && f.Permission != permission {
			continue
		}
		if downloadable && !f.CanDownload {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}
