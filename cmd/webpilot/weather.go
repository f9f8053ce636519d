package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/entrhq/webpilot/pkg/mcp"
)

// NewWeatherCmd creates the weather command.
func NewWeatherCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weather",
		Short: "Serve US weather tools to an MCP client on stdio",
		Long: `Weather starts the weather MCP server.

It answers current-conditions, forecast, and alert queries through the
National Weather Service API (api.weather.gov). The API is free and
requires no key, but only covers locations inside the United States.

No browser or Playwright installation is needed for this server.`,
		Args: cobra.NoArgs,
		RunE: runWeatherCmd,
	}
}

func runWeatherCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newServerLogger(cmd, "weather")
	defer logger.Close()

	mcp.Version = getVersion()

	server := mcp.NewWeatherServer(cfg, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx)
}
