package commands

import (
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/filestore/backend/internal/cli/api"
	"github.com/filestore/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users <query>",
	Short: "Find users to share with by username or email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		params := url.Values{"q": {args[0]}}
		var resp api.Response[[]api.User]
		if err := apiClient.Get("/users/search", params, &resp); err != nil {
			return fmt.Errorf("searching users: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}

		if len(resp.Data) == 0 {
			fmt.Println("No users found.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "USERNAME\tEMAIL\tID")
		for _, u := range resp.Data {
			fmt.Fprintf(w, "%s\t%s\t%s\n", u.Username, u.Email, u.ID)
		}
		w.Flush()
		if resp.Pagination != nil && resp.Pagination.Total > int64(len(resp.Data)) {
			fmt.Printf("\nShowing %d of %d matches.\n", len(resp.Data), resp.Pagination.Total)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
}
