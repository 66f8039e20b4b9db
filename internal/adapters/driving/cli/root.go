// Package cli provides the folio command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// TokenEnv is the environment variable read when --token is not given.
const TokenEnv = "FOLIO_TOKEN"

// LocalCaller is the identity used when no token is supplied.
var LocalCaller = domain.Caller{ID: 1, Role: domain.RoleUser}

var version = "dev"

var (
	verbose bool
	token   string
)

// Services driven by the commands. Nil services report a configuration error
// when a command needs them.
var (
	assistantService driving.AssistantService
	responder        driving.Responder
	settingsService  driving.SettingsService
	identityProvider driven.IdentityProvider
)

// isTerminal reports whether stdout is an interactive terminal.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// errNotConfigured is returned by commands whose services failed to initialise.
var errNotConfigured = errors.New("run 'folio config check' for details")

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Ask questions of your PDFs",
	Long: `Folio turns PDF documents into assistants that answer questions
grounded in the document, citing the pages they drew on.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "access token (default $"+TokenEnv+")")
}

// Services holds the ports the commands drive.
type Services struct {
	Assistants driving.AssistantService
	Responder  driving.Responder
	Settings   driving.SettingsService
	Identity   driven.IdentityProvider
}

// SetServices injects the services used by the commands.
func SetServices(s Services) {
	assistantService = s.Assistants
	responder = s.Responder
	settingsService = s.Settings
	identityProvider = s.Identity
}

// SetVersion sets the version reported by 'folio version'.
func SetVersion(v string) {
	version = v
}

// ExecuteContext runs the root command with ctx, writing to stdout.
func ExecuteContext(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

// resolveCaller verifies the supplied token, or falls back to LocalCaller.
func resolveCaller() (domain.Caller, error) {
	raw := strings.TrimSpace(token)
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv(TokenEnv))
	}
	if raw == "" {
		return LocalCaller, nil
	}
	if identityProvider == nil {
		return domain.Caller{}, fmt.Errorf("token given but no signing key configured: %w", errNotConfigured)
	}
	caller, err := identityProvider.Verify(raw)
	if err != nil {
		return domain.Caller{}, err
	}
	return *caller, nil
}

// requireService returns a configuration error when svc is nil.
func requireService(name string, svc any) error {
	if svc == nil {
		return fmt.Errorf("%s not configured: %w", name, errNotConfigured)
	}
	return nil
}
