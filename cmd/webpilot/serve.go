package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/entrhq/webpilot/pkg/browser"
	"github.com/entrhq/webpilot/pkg/mcp"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve browser-automation tools to an MCP client on stdio",
		Long: `Serve starts the browser-automation MCP server.

The server reads JSON-RPC requests from stdin and writes responses to
stdout, so it is meant to be launched by an MCP client rather than run
interactively. Diagnostics go to a log file under the XDG state directory.

Tools operate on named browser sessions. A shared default session is
created automatically on first use, so simple clients can ignore session
management entirely.

Example MCP client configuration:

  {
    "mcpServers": {
      "webpilot": {
        "command": "webpilot",
        "args": ["serve"]
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}
	cmd.Flags().Bool("install", false, "Install the Playwright driver and browsers before serving")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newServerLogger(cmd, "browser")
	defer logger.Close()

	if install, _ := cmd.Flags().GetBool("install"); install {
		// Installer progress goes to stderr: stdout belongs to MCP.
		if err := browser.InstallDriver(cmd.ErrOrStderr()); err != nil {
			return fmt.Errorf("installation failed: %w", err)
		}
	}

	mcp.Version = getVersion()

	server, err := mcp.NewBrowserServer(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx)
}
