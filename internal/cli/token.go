package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"timed-quiz-service/internal/auth"
	"timed-quiz-service/internal/config"
)

// NewTokenCmd mints a bearer token for a user, for local testing and tooling.
func NewTokenCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a JWT for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			a := auth.NewAuthenticator(cfg.Auth.JWTSecret, config.Duration(cfg.Auth.TokenTTL, 24*time.Hour))
			token, err := a.Issue(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
