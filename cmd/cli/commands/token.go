package commands

import (
	"errors"
	"fmt"
	"time"

	jwtPkg "GridVision/pkg/jwt"
	"github.com/spf13/cobra"
)

func NewTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the detection API",
		Long: `Issue a bearer token signed with API_TOKEN_SECRET.

Clients send it as "Authorization: Bearer <token>" to /api/v1/detect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				return errors.New("--sub is required")
			}
			if ttl <= 0 {
				return errors.New("--ttl must be positive")
			}

			token, expiresAt, err := jwtPkg.Sign(map[string]interface{}{"sub": subject}, ttl)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, token)
			fmt.Fprintf(cmd.ErrOrStderr(), "Expires at %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "sub", "", "Client name stored as the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "Token lifetime")

	return cmd
}
