package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/quantgems/adminapi/internal/service"
)

func newHashPasswordCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password for seeding account rows",
		Long:  "Print the bcrypt hash of a password, suitable for the users.password_hash column.",
		Example: `  adminapi hash-password                    # prompts without echo
  adminapi hash-password --password secret`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHashPassword(cmd, password)
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Password to hash (prompted if omitted)")

	return cmd
}

func runHashPassword(cmd *cobra.Command, password string) error {
	if password == "" {
		fmt.Print("Password: ")
		pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()

		fmt.Print("Confirm password: ")
		confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		fmt.Println()

		if string(pwBytes) != string(confirmBytes) {
			return fmt.Errorf("passwords do not match")
		}
		password = string(pwBytes)
	}

	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
