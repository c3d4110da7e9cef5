package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/filestore/backend/internal/cli/api"
	"github.com/filestore/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var (
	flagName        string
	flagDescription string
	flagWorkers     int
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload one or more files",
	Long: `Upload local files. Size and type are worked out by the server.

  filestore upload report.pdf
  filestore upload report.pdf --name "Q3 report" --description "final draft"
  filestore upload *.png --workers 8`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&flagName, "name", "", "Display name (single file only, defaults to the file name)")
	uploadCmd.Flags().StringVar(&flagDescription, "description", "", "Description stored with the file")
	uploadCmd.Flags().IntVarP(&flagWorkers, "workers", "w", 4, "Number of concurrent uploads")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if err := requireAuth(); err != nil {
		return err
	}
	if flagName != "" && len(args) > 1 {
		return fmt.Errorf("--name can only be used with a single file")
	}

	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}
	}

	if len(args) == 1 {
		file, err := uploadOne(args[0])
		if err != nil {
			return err
		}
		if flagJSON {
			output.JSON(file)
			return nil
		}
		fmt.Printf("Uploaded %s (%s, %s) id=%s\n", file.Name, output.FormatSize(file.Size), file.FileType, file.ID)
		return nil
	}

	return uploadMany(args)
}

func uploadOne(path string) (api.File, error) {
	extra := map[string]string{}
	if flagName != "" {
		extra["name"] = flagName
	}
	if flagDescription != "" {
		extra["description"] = flagDescription
	}

	var resp api.Response[api.File]
	if err := apiClient.Upload("/files/upload", "file", path, extra, &resp); err != nil {
		return api.File{}, fmt.Errorf("uploading %s: %w", filepath.Base(path), err)
	}
	return resp.Data, nil
}

func uploadMany(paths []string) error {
	jobs := make(chan string)
	var uploaded atomic.Int64
	var failed atomic.Int64

	workers := flagWorkers
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				file, err := uploadOne(path)
				if err != nil {
					fmt.Fprintf(os.Stderr, "  Failed: %v\n", err)
					failed.Add(1)
					continue
				}
				fmt.Printf("  Uploaded: %s (%s)\n", file.Name, output.FormatSize(file.Size))
				uploaded.Add(1)
			}
		}()
	}

	for _, path := range paths {
		jobs <- path
	}
	close(jobs)
	wg.Wait()

	fmt.Printf("\nDone: %d uploaded, %d failed\n", uploaded.Load(), failed.Load())
	if failed.Load() > 0 {
		return fmt.Errorf("%d file(s) failed to upload", failed.Load())
	}
	return nil
}
