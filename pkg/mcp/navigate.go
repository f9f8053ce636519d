package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/entrhq/webpilot/pkg/browser"
)

// registerNavigationTools adds page navigation tools.
func (s *Server) registerNavigationTools() {
	s.mcp.AddTool(mcp.NewTool("visit_page",
		mcp.WithDescription("Visit a URL in a browser session. The browser will load the page and wait for it to be ready. Creates the default session if none exists."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL to visit (must include protocol, e.g., https://example.com)"),
		),
		mcp.WithString("session",
			mcp.Description("Name of the browser session to use. Omit for the default session."),
		),
		mcp.WithString("wait_until",
			mcp.Description("When to consider navigation complete: 'load' (default), 'domcontentloaded', or 'networkidle'"),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Navigation timeout in milliseconds. Default: 30000"),
		),
	), s.handleVisitPage)
}

// validWaitStates enumerates accepted wait_until values.
var validWaitStates = map[string]bool{
	"load":             true,
	"domcontentloaded": true,
	"networkidle":      true,
}

func (s *Server) handleVisitPage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("URL is required"), nil
	}

	waitUntil := request.GetString("wait_until", "load")
	if !validWaitStates[waitUntil] {
		return mcp.NewToolResultError(fmt.Sprintf("invalid wait_until value: %s (must be 'load', 'domcontentloaded', or 'networkidle')", waitUntil)), nil
	}

	timeout := request.GetFloat("timeout", 0)
	if timeout < 0 || timeout > 300000 {
		return mcp.NewToolResultError("timeout must be between 0 and 300000 milliseconds (5 minutes)"), nil
	}

	if err := s.policy.Check(url); err != nil {
		return mcp.NewToolResultErrorFromErr("navigation refused", err), nil
	}

	session, err := s.session(request.GetString("session", ""))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to get session", err), nil
	}

	if err := session.Navigate(url, browser.NavigateOptions{
		WaitUntil: waitUntil,
		Timeout:   timeout,
	}); err != nil {
		return mcp.NewToolResultErrorFromErr("navigation failed", err), nil
	}

	title, err := session.Page.Title()
	if err != nil {
		title = "Unknown"
	}

	s.logger.Infof("session %q visited %s", session.Name, session.URL())

	result := fmt.Sprintf(`Navigation successful

Page Details:
- URL: %s
- Title: %s
- Session: %s

The page has loaded and is ready for interaction. You can now use extract_content, click_component, enter_input, and other browser tools to interact with the page.`,
		session.URL(),
		title,
		session.Name,
	)

	return mcp.NewToolResultText(result), nil
}
