package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the calinvite application
var rootCmd = &cobra.Command{
	Use:   "calinvite",
	Short: "Creates Google Calendar events with Meet links and emails the invitations",
	Long: `calinvite is an HTTP service that creates Google Calendar events with an
attached Google Meet link on behalf of a user and sends each participant an
HTML invitation email through the Gmail API.

Credentials are stored per user: the first request for a user walks through
the Google consent flow once, after that the saved refresh token is reused.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "calinvite version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthorizeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
