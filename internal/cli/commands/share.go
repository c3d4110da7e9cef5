package commands

import (
	"fmt"
	"strings"

	"github.com/filestore/backend/internal/cli/api"
	"github.com/filestore/backend/internal/cli/output"
	"github.com/filestore/backend/internal/cli/resolve"
	"github.com/spf13/cobra"
)

var (
	flagShareUsers []string
	flagPermission string
	flagNoDownload bool
	flagRevokeAll  bool
)

var shareCmd = &cobra.Command{
	Use:   "share <file>",
	Short: "Set exactly who a file is shared with",
	Long: `Replace the whole share list of a file you own. Users left out of
the list lose access; an empty list needs --none.

  filestore share report.pdf --user bob --user carol@example.com
  filestore share report.pdf --user bob --permission edit --no-download
  filestore share report.pdf --none`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		if len(flagShareUsers) == 0 && !flagRevokeAll {
			return fmt.Errorf("pass at least one --user, or --none to stop sharing")
		}
		if len(flagShareUsers) > 0 && flagRevokeAll {
			return fmt.Errorf("--none cannot be combined with --user")
		}

		fileID, err := resolve.File(apiClient, args[0], resolve.Owned)
		if err != nil {
			return err
		}

		entries, err := buildShareEntries(flagShareUsers, flagPermission, !flagNoDownload)
		if err != nil {
			return err
		}

		count, err := replaceShares(fileID, entries)
		if err != nil {
			return err
		}

		if flagJSON {
			output.JSON(api.ReplaceSharesResponse{Count: count})
			return nil
		}
		if count == 0 {
			fmt.Println("No longer shared with anyone.")
			return nil
		}
		fmt.Printf("Shared with %d user(s): %s\n", count, strings.Join(flagShareUsers, ", "))
		return nil
	},
}

var sharesCmd = &cobra.Command{
	Use:   "shares <file>",
	Short: "List who a file you own is shared with",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		fileID, err := resolve.File(apiClient, args[0], resolve.Owned)
		if err != nil {
			return err
		}

		shares, err := fetchShares(fileID)
		if err != nil {
			return err
		}

		if flagJSON {
			output.JSON(shares)
			return nil
		}
		output.ShareTable(shares)
		return nil
	},
}

var unshareCmd = &cobra.Command{
	Use:   "unshare <file> <user>...",
	Short: "Remove users from a file's share list",
	Long: `Drop one or more users from the share list and keep everyone else's
grant as it is.

  filestore unshare report.pdf bob`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		fileID, err := resolve.File(apiClient, args[0], resolve.Owned)
		if err != nil {
			return err
		}

		drop := make(map[string]bool, len(args)-1)
		for _, ref := range args[1:] {
			userID, err := resolve.User(apiClient, ref)
			if err != nil {
				return err
			}
			drop[userID] = true
		}

		current, err := fetchShares(fileID)
		if err != nil {
			return err
		}

		kept := keepShares(current, drop)
		if len(kept) == len(current) {
			return fmt.Errorf("none of the given users has access to this file")
		}

		count, err := replaceShares(fileID, kept)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d user(s), %d remaining\n", len(current)-len(kept), count)
		return nil
	},
}

func init() {
	shareCmd.Flags().StringArrayVarP(&flagShareUsers, "user", "u", nil, "Username, email or user ID (repeatable)")
	shareCmd.Flags().StringVar(&flagPermission, "permission", "view", "Permission for every listed user: view, edit")
	shareCmd.Flags().BoolVar(&flagNoDownload, "no-download", false, "Let listed users view but not download")
	shareCmd.Flags().BoolVar(&flagRevokeAll, "none", false, "Remove every share")
	rootCmd.AddCommand(shareCmd, sharesCmd, unshareCmd)
}

func buildShareEntries(refs []string, permission string, canDownload bool) ([]api.ShareEntry, error) {
	if permission != "view" && permission != "edit" {
		return nil, fmt.Errorf("invalid permission %q, expected view or edit", permission)
	}

	entries := make([]api.ShareEntry, 0, len(refs))
	for _, ref := range refs {
		userID, err := resolve.User(apiClient, ref)
		if err != nil {
			return nil, err
		}
		download := canDownload
		entries = append(entries, api.ShareEntry{
			UserID:      userID,
			Permission:  permission,
			CanDownload: &download,
		})
	}
	return entries, nil
}

// keepShares converts the current grants back into entries, minus the
// users in drop.
func keepShares(current []api.Share, drop map[string]bool) []api.ShareEntry {
	kept := make([]api.ShareEntry, 0, len(current))
	for _, s := range current {
		if drop[s.UserID] {
			continue
		}
		download := s.CanDownload
		kept = append(kept, api.ShareEntry{
			UserID:      s.UserID,
			Permission:  s.Permission,
			CanDownload: &download,
		})
	}
	return kept
}

func fetchShares(fileID string) ([]api.Share, error) {
	var resp api.Response[[]api.Share]
	if err := apiClient.Get("/files/"+fileID+"/shares", nil, &resp); err != nil {
		return nil, fmt.Errorf("listing shares: %w", err)
	}
	return resp.Data, nil
}

func replaceShares(fileID string, entries []api.ShareEntry) (int, error) {
	var resp api.Response[api.ReplaceSharesResponse]
	body := api.ReplaceSharesRequest{Shares: entries}
	if err := apiClient.Put("/files/"+fileID+"/shares", body, &resp); err != nil {
		return 0, fmt.Errorf("updating shares: %w", err)
	}
	return resp.Data.Count, nil
}
