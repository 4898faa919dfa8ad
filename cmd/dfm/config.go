package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dotfiles-manager/dfm/internal/config"
	"github.com/dotfiles-manager/dfm/internal/credstore"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change CLI settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Long:  `Print the effective settings after applying config.yaml and DFM_* environment variables.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting in config.yaml",
	Long: `Change a setting in config.yaml.

Examples:
  dfm config set api.url https://dotfiles.example.com
  dfm config set output.download_dir ~/dotfiles/templates
  dfm config set log.level debug`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.Keys(),
	RunE:      runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	dir, err := credstore.DefaultDir()
	if err != nil {
		return err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}

	w := newTable(cmd.OutOrStdout())
	fmt.Fprintf(w, "config file\t%s\n", filepath.Join(dir, config.FileName))
	fmt.Fprintf(w, "api.url\t%s\n", cfg.API.URL)
	fmt.Fprintf(w, "api.timeout\t%s\n", cfg.API.Timeout)
	fmt.Fprintf(w, "api.session_cookie\t%s\n", cfg.API.SessionCookie)
	fmt.Fprintf(w, "site.url\t%s\n", cfg.Site.URL)
	fmt.Fprintf(w, "log.format\t%s\n", cfg.Log.Format)
	fmt.Fprintf(w, "log.level\t%s\n", cfg.Log.Level)
	fmt.Fprintf(w, "output.download_dir\t%s\n", cfg.Output.DownloadDir)
	fmt.Fprintf(w, "output.no_browser\t%t\n", cfg.Output.NoBrowser)
	return w.Flush()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	dir, err := credstore.DefaultDir()
	if err != nil {
		return err
	}
	if err := config.Set(dir, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Set %s = %s\n", args[0], args[1])
	return nil
}
