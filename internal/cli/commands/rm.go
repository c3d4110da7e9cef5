package commands

import (
	"fmt"

	"github.com/filestore/backend/internal/cli/api"
	"github.com/filestore/backend/internal/cli/resolve"
	"github.com/spf13/cobra"
)

var flagForce bool

var rmCmd = &cobra.Command{
	Use:   "rm <file>",
	Short: "Delete a file you own",
	Long: `Delete a file from the server. Every share on it is removed too.

  filestore rm old-report.pdf
  filestore rm old-report.pdf --force          Skip confirmation`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		fileID, err := resolve.File(apiClient, args[0], resolve.Owned)
		if err != nil {
			return err
		}

		var infoResp api.Response[fileInfo]
		if err := apiClient.Get("/files/"+fileID, nil, &infoResp); err != nil {
			return fmt.Errorf("fetching file info: %w", err)
		}
		f := infoResp.Data.File

		if !flagForce && !confirm(deletePrompt(f)) {
			fmt.Println("Cancelled.")
			return nil
		}

		var resp api.Response[map[string]bool]
		if err := apiClient.Delete("/files/"+fileID, &resp); err != nil {
			return fmt.Errorf("deleting: %w", err)
		}

		fmt.Printf("Deleted: %s\n", f.Name)
		return nil
	},
}

func init() {
	rmCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Skip confirmation prompt")
	rootCmd.AddCommand(rmCmd)
}

func deletePrompt(f api.File) string {
	switch f.SharedWith {
	case 0:
		return fmt.Sprintf("Delete %q? This cannot be undone.", f.Name)
	case 1:
		return fmt.Sprintf("Delete %q and revoke its share? This cannot be undone.", f.Name)
	default:
		return fmt.Sprintf("Delete %q and revoke its %d shares? This cannot be undone.", f.Name, f.SharedWith)
	}
}
