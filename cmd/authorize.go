package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calinvite/calinvite/internal/config"
	"github.com/calinvite/calinvite/internal/google"
)

func newAuthorizeCmd() *cobra.Command {
	var (
		tokenDir        string
		credentialsFile string
	)

	cmd := &cobra.Command{
		Use:   "authorize <user-email>",
		Short: "Pre-authorize a user through the Google consent flow",
		Long: `Walk through the Google consent flow for a user and store the resulting
refresh token. Run this on a machine with a browser before deploying the
server somewhere headless; the server then finds the stored token and never
needs to prompt.

If the user already has a stored token this is a no-op.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userEmail := args[0]

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("token-dir") {
				cfg.TokenDir = tokenDir
			}
			if cmd.Flags().Changed("credentials-file") {
				cfg.CredentialsFile = credentialsFile
			}

			oauthConf, err := google.LoadOAuthConfig(cfg.CredentialsFile)
			if err != nil {
				return fmt.Errorf("failed to load Google credentials: %w", err)
			}

			store := google.NewTokenStore(cfg.TokenDir, nil)
			authorizer := google.NewAuthorizer(oauthConf, store, nil)

			handle, err := authorizer.Authorize(cmd.Context(), userEmail)
			if err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}

			fmt.Printf("Authorized %s; refresh token stored in %s\n", handle.UserEmail(), cfg.TokenDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&tokenDir, "token-dir", "", "Directory holding per-user refresh token files. Can also use CALINVITE_TOKEN_DIR env var.")
	cmd.Flags().StringVar(&credentialsFile, "credentials-file", "", "Path to the Google application credential file. Can also use CALINVITE_CREDENTIALS_FILE env var.")

	return cmd
}
