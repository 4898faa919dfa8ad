package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time
var Version = "dev"

var (
	apiURLFlag   string
	logLevelFlag string
	assumeYes    bool
	noKeyring    bool
)

var rootCmd = &cobra.Command{
	Use:   "dfm",
	Short: "dfm - Browse and share dotfiles templates",
	Long:  `dfm is a terminal client for the dotfiles template sharing platform.`,
	Example: `  # Sign in with GitHub and browse featured templates
  dfm login
  dfm templates list --featured

  # Download every template whose name starts with "mac"
  dfm templates download --match 'mac*'

  # Review a template and invite a colleague to your organization
  dfm reviews add <template-id> --rating 4 --comment "Solid defaults"
  dfm orgs invite <org-id> alice@example.com --role admin`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "API base URL (overrides config and DFM_API_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to confirmation prompts")
	rootCmd.PersistentFlags().BoolVar(&noKeyring, "no-keyring", false, "Store the session in the credentials file instead of the OS keyring")

	rootCmd.AddGroup(
		&cobra.Group{ID: "catalog", Title: "Catalog Commands:"},
		&cobra.Group{ID: "community", Title: "Community Commands:"},
		&cobra.Group{ID: "account", Title: "Account Commands:"},
	)

	templatesCmd.GroupID = "catalog"

	reviewsCmd.GroupID = "community"
	orgsCmd.GroupID = "community"

	loginCmd.GroupID = "account"
	logoutCmd.GroupID = "account"
	whoamiCmd.GroupID = "account"
	configCmd.GroupID = "account"

	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(reviewsCmd)
	rootCmd.AddCommand(orgsCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
