package commands

import (
	"fmt"

	"github.com/filestore/backend/internal/cli/api"
	"github.com/filestore/backend/internal/cli/output"
	"github.com/filestore/backend/internal/cli/resolve"
	"github.com/spf13/cobra"
)

type fileInfo struct {
	File   api.File   `json:"file"`
	Access api.Access `json:"access"`
}

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show details and your access level for a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		fileID, err := resolve.File(apiClient, args[0], resolve.Visible)
		if err != nil {
			return err
		}

		var resp api.Response[fileInfo]
		if err := apiClient.Get("/files/"+fileID, nil, &resp); err != nil {
			return fmt.Errorf("fetching file info: %w", err)
		}

		var accessResp api.Response[api.Access]
		if err := apiClient.Get("/files/"+fileID+"/access", nil, &accessResp); err != nil {
			return fmt.Errorf("fetching access: %w", err)
		}
		resp.Data.Access = accessResp.Data

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}

		output.FileDetail(resp.Data.File, &resp.Data.Access)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
