package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var (
	tokenUserID int64
	tokenRole   string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token",
	Long: `Issues a signed access token for a user id. Pass it with --token or
the FOLIO_TOKEN environment variable. Requires SECRET_KEY to be set.`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().Int64Var(&tokenUserID, "user-id", 0, "user id the token is issued to (required)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(domain.RoleUser), "role: user or admin")
	_ = tokenCmd.MarkFlagRequired("user-id")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	if err := requireService("identity provider", identityProvider); err != nil {
		return err
	}
	role := domain.Role(tokenRole)
	if !role.IsValid() {
		return fmt.Errorf("invalid role %q: must be user or admin", tokenRole)
	}
	if tokenUserID <= 0 {
		return fmt.Errorf("invalid user id %d", tokenUserID)
	}

	signed, err := identityProvider.Issue(domain.Caller{ID: tokenUserID, Role: role})
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	cmd.Println(signed)
	return nil
}
