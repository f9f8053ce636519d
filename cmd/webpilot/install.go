package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/webpilot/pkg/browser"
)

// NewInstallCmd creates the install command.
func NewInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Download the Playwright driver and browsers",
		Long: `Install downloads the Playwright driver and the browser binaries it
manages (chromium, firefox, webkit).

Run this once before the first 'webpilot serve'. The serve command does
not download anything itself: an MCP client launching the server expects
a handshake promptly, not a multi-minute browser download.`,
		Args: cobra.NoArgs,
		RunE: runInstallCmd,
	}
}

func runInstallCmd(cmd *cobra.Command, _ []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), "Downloading Playwright driver and browsers...")

	if err := browser.InstallDriver(cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("installation failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Installation complete. Run 'webpilot serve' to start the MCP server.")
	return nil
}
