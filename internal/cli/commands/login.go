package commands

import (
	"errors"
	"fmt"

	"github.com/filestore/backend/internal/cli/api"
	"github.com/filestore/backend/internal/cli/config"
	"github.com/spf13/cobra"
)

var (
	flagPassword      string
	flagRegisterEmail string
)

var loginCmd = &cobra.Command{
	Use:   "login <username-or-email>",
	Short: "Authenticate with your file store server",
	Long: `Exchange a username (or email) and password for a session token.

  filestore login alice
  filestore login alice@example.com --password s3cret-pass

When --password is omitted it is read from standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(flagPassword)
		if err != nil {
			return err
		}

		client := api.NewClient(cfg.ServerURL, "")
		var resp api.Response[api.LoginResponse]
		err = client.Post("/auth/login", api.LoginRequest{Login: args[0], Password: password}, &resp)
		if err != nil {
			var apiErr *api.APIError
			if errors.As(err, &apiErr) && apiErr.Status == 401 {
				return fmt.Errorf("invalid credentials")
			}
			return fmt.Errorf("logging in: %w", err)
		}

		return storeSession(resp.Data)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagRegisterEmail == "" {
			return fmt.Errorf("--email is required")
		}
		password, err := readPassword(flagPassword)
		if err != nil {
			return err
		}

		client := api.NewClient(cfg.ServerURL, "")
		body := map[string]string{
			"username": args[0],
			"email":    flagRegisterEmail,
			"password": password,
		}
		var resp api.Response[api.LoginResponse]
		if err := client.Post("/auth/register", body, &resp); err != nil {
			return fmt.Errorf("registering: %w", err)
		}

		return storeSession(resp.Data)
	},
}

func init() {
	loginCmd.Flags().StringVar(&flagPassword, "password", "", "Password (read from stdin when omitted)")
	registerCmd.Flags().StringVar(&flagPassword, "password", "", "Password (read from stdin when omitted)")
	registerCmd.Flags().StringVar(&flagRegisterEmail, "email", "", "Email address for the new account")
	rootCmd.AddCommand(loginCmd, registerCmd)
}

func readPassword(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	password, err := ask("Password: ")
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	return password, nil
}

func storeSession(session api.LoginResponse) error {
	cfg.Token = session.Token
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Logged in as %s (%s)\n", session.User.Username, session.User.Email)
	return nil
}
