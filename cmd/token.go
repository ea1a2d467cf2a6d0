package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/frahmantamala/expense-portal/internal/auth"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/user"
	"github.com/spf13/cobra"
)

var (
	tokenUserID string
	tokenName   string
	tokenRole   string
	tokenTTL    time.Duration
)

// tokenCmd mints a viewer session token signed with the configured secret.
// Logging in is the job of another system; this exists for local use.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a viewer session token",
	Long:  `Mint a signed session token for a viewer and print it with a URL that stores it as the session cookie.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		role, ok := user.ParseRole(tokenRole)
		if !ok {
			return fmt.Errorf("unknown role %q: want employee, manager or admin", tokenRole)
		}
		if tokenUserID == "" {
			return fmt.Errorf("--id is required")
		}

		ttl := config.Security.TokenTTL
		if tokenTTL > 0 {
			ttl = tokenTTL
		}

		issuer := auth.NewTokenIssuer(config.Security.SessionSecret, ttl)
		token, err := issuer.Issue(auth.Viewer{ID: tokenUserID, Name: tokenName, Role: role})
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}

		base := config.Server.BaseURL
		if base == "" {
			base = fmt.Sprintf("http://localhost:%d", config.Server.Port)
		}
		fmt.Fprintln(os.Stdout, token)
		fmt.Fprintf(os.Stdout, "%s/session?token=%s\n", base, token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "id", "", "Viewer user ID")
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "Viewer display name")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(user.RoleEmployee), "Viewer role: employee, manager or admin")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime, defaults to security.token_ttl")
}
