package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/filestore/backend/internal/cli/api"
	"github.com/filestore/backend/internal/cli/output"
	"github.com/filestore/backend/internal/cli/resolve"
	"github.com/spf13/cobra"
)

var flagOutput string

var downloadCmd = &cobra.Command{
	Use:   "download <file> [local-dir]",
	Short: "Download a file you own or that was shared with you",
	Long: `Download a file to your machine. Shared files need a grant that
allows downloading.

  filestore download report.pdf
  filestore download report.pdf ./out
  filestore download <uuid> -o copy.pdf`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file path (overrides default naming)")
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
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
	f := resp.Data.File

	destDir := "."
	if len(args) > 1 {
		destDir = args[1]
	}
	dest := filepath.Join(destDir, filepath.Base(f.Name))
	if flagOutput != "" {
		dest = flagOutput
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	n, err := apiClient.Download("/files/"+f.ID+"/download", dest)
	if err != nil {
		return fmt.Errorf("downloading: %w", err)
	}

	fmt.Printf("Downloaded %s -> %s (%s)\n", f.Name, dest, output.FormatSize(n))
	return nil
}
