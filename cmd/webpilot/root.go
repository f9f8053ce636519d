// Package main provides the entry point for the webpilot CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/entrhq/webpilot/pkg/config"
	"github.com/entrhq/webpilot/pkg/logging"
)

// NewRootCmd creates the root command for webpilot.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webpilot",
		Short: "MCP server for browser automation and weather lookups",
		Long: `Webpilot serves tools to MCP (Model Context Protocol) clients over stdio.

The browser server drives real browsers through Playwright: visiting pages,
clicking elements, filling forms, extracting content, and taking screenshots.
The weather server answers US weather queries via the National Weather Service.

Run 'webpilot install' once to download the Playwright driver and browsers,
then configure your MCP client to launch 'webpilot serve'.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file (default: "+config.DefaultPath()+")")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewWeatherCmd())
	cmd.AddCommand(NewInstallCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration for a command invocation.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newServerLogger creates the file logger for a server command. Logging
// never touches stdout: that stream carries the MCP JSON-RPC session.
func newServerLogger(cmd *cobra.Command, component string) *logging.Logger {
	logger, err := logging.NewLogger(component)
	if err != nil {
		// The fallback logger already reported the problem on stderr.
		return logger
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "logging to %s\n", logger.LogPath())
	}

	return logger
}
