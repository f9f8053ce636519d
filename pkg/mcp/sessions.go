package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/entrhq/webpilot/pkg/browser"
)

// registerSessionTools adds session lifecycle tools.
func (s *Server) registerSessionTools() {
	s.mcp.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Create a new named browser session. Sessions persist across tool calls and can be used in parallel for separate tasks."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Unique name for the browser session (e.g., 'research', 'app_test')"),
		),
		mcp.WithString("engine",
			mcp.Description("Browser engine: 'chromium' (default), 'firefox', or 'webkit'"),
		),
		mcp.WithBoolean("headless",
			mcp.Description("Run the browser without a visible window. Defaults to the configured value."),
		),
		mcp.WithNumber("width",
			mcp.Description("Viewport width in pixels. Default: 1280"),
		),
		mcp.WithNumber("height",
			mcp.Description("Viewport height in pixels. Default: 720"),
		),
	), s.handleStartSession)

	s.mcp.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List all active browser sessions with their current state and metadata."),
	), s.handleListSessions)

	s.mcp.AddTool(mcp.NewTool("close_session",
		mcp.WithDescription("Close a browser session and clean up its resources. The browser will close and the session will no longer be available."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the browser session to close"),
		),
	), s.handleCloseSession)
}

func (s *Server) handleStartSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("session name is required"), nil
	}

	opts := s.sessionOptions()

	if engine := request.GetString("engine", ""); engine != "" {
		if !validEngine(engine) {
			return mcp.NewToolResultError(fmt.Sprintf("invalid engine: %s (must be 'chromium', 'firefox', or 'webkit')", engine)), nil
		}
		opts.Engine = engine
	}

	opts.Headless = request.GetBool("headless", opts.Headless)

	if width := request.GetInt("width", 0); width != 0 {
		opts.Viewport.Width = width
	}
	if height := request.GetInt("height", 0); height != 0 {
		opts.Viewport.Height = height
	}

	if err := validateViewport(opts.Viewport); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	session, err := s.manager.StartSession(name, opts)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to start session", err), nil
	}

	s.logger.Infof("started session %q (%s, headless=%v)", name, session.Engine, session.Headless)

	mode := "headed"
	if session.Headless {
		mode = "headless"
	}

	result := fmt.Sprintf(`Browser session created successfully

Session Details:
- Name: %s
- Engine: %s
- Mode: %s
- Viewport: %dx%d pixels
- Status: Ready

The session is now active. Use visit_page, extract_content, click_component, and other browser tools with session=%q to interact with web pages.`,
		session.Name,
		session.Engine,
		mode,
		opts.Viewport.Width,
		opts.Viewport.Height,
		session.Name,
	)

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions := s.manager.ListSessions()

	if len(sessions) == 0 {
		return mcp.NewToolResultText("No active browser sessions.\n\nUse visit_page (which creates a default session) or start_session to begin."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Browser Sessions: %d\n\n", len(sessions))

	for _, info := range sessions {
		mode := "headed"
		if info.Headless {
			mode = "headless"
		}
		fmt.Fprintf(&b, "- %s (%s, %s)\n", info.Name, info.Engine, mode)
		fmt.Fprintf(&b, "  URL: %s\n", info.CurrentURL)
		fmt.Fprintf(&b, "  Created: %s\n", info.CreatedAt.Format(time.RFC3339))
		fmt.Fprintf(&b, "  Last used: %s\n", info.LastUsedAt.Format(time.RFC3339))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleCloseSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("session name is required"), nil
	}

	if err := s.manager.CloseSession(name); err != nil {
		return mcp.NewToolResultErrorFromErr("failed to close session", err), nil
	}

	s.logger.Infof("closed session %q", name)

	result := fmt.Sprintf(`Session closed successfully

Session: %s

The browser has been closed and all resources have been cleaned up. Other sessions remain available.`,
		name,
	)

	return mcp.NewToolResultText(result), nil
}

// validEngine reports whether the engine name is supported.
func validEngine(engine string) bool {
	for _, valid := range browser.ValidEngines() {
		if engine == valid {
			return true
		}
	}
	return false
}

// validateViewport checks viewport dimensions are within acceptable range.
func validateViewport(vp *browser.Viewport) error {
	if vp.Width < 100 || vp.Width > 5000 {
		return fmt.Errorf("viewport width must be between 100 and 5000 pixels")
	}
	if vp.Height < 100 || vp.Height > 5000 {
		return fmt.Errorf("viewport height must be between 100 and 5000 pixels")
	}
	return nil
}
