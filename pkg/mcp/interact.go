package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/entrhq/webpilot/pkg/browser"
)

// registerInteractionTools adds tools that act on page elements.
func (s *Server) registerInteractionTools() {
	s.mcp.AddTool(mcp.NewTool("click_component",
		mcp.WithDescription("Click an HTML element identified by a CSS selector, optionally scrolling it into view first and waiting for a resulting navigation."),
		mcp.WithString("selector",
			mcp.Required(),
			mcp.Description("CSS selector of the element to click (e.g., '#submit', 'a.next-page')"),
		),
		mcp.WithString("session",
			mcp.Description("Name of the browser session to use. Omit for the default session."),
		),
		mcp.WithBoolean("scroll_into_view",
			mcp.Description("Scroll the element into view before clicking. Default: true"),
		),
		mcp.WithBoolean("wait_for_navigation",
			mcp.Description("Wait for a page navigation triggered by the click. Only set this when the click is expected to load a new page. Default: false"),
		),
		mcp.WithString("button",
			mcp.Description("Mouse button to use: 'left' (default), 'right', or 'middle'"),
		),
		mcp.WithNumber("click_count",
			mcp.Description("Number of clicks (2 for double-click). Default: 1"),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Timeout in milliseconds. Default: 30000"),
		),
	), s.handleClickComponent)

	s.mcp.AddTool(mcp.NewTool("enter_input",
		mcp.WithDescription("Enter text into an input field identified by a CSS selector, replacing any existing value."),
		mcp.WithString("selector",
			mcp.Required(),
			mcp.Description("CSS selector of the input field (e.g., '#email', 'input[name=\"q\"]')"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The text to enter"),
		),
		mcp.WithString("session",
			mcp.Description("Name of the browser session to use. Omit for the default session."),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Timeout in milliseconds. Default: 30000"),
		),
	), s.handleEnterInput)

	s.mcp.AddTool(mcp.NewTool("wait_for",
		mcp.WithDescription("Wait for an element to reach a specific state. Useful for dynamic content, loading indicators, or elements appearing/disappearing."),
		mcp.WithString("selector",
			mcp.Required(),
			mcp.Description("CSS selector of the element to wait for (e.g., '.loading-spinner', '#content')"),
		),
		mcp.WithString("session",
			mcp.Description("Name of the browser session to use. Omit for the default session."),
		),
		mcp.WithString("state",
			mcp.Description("State to wait for: 'attached' (in DOM), 'detached' (removed from DOM), 'visible' (default), or 'hidden'"),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Maximum wait time in milliseconds. Default: 30000"),
		),
	), s.handleWaitFor)

	s.mcp.AddTool(mcp.NewTool("evaluate",
		mcp.WithDescription("Execute JavaScript code in the browser session. Can manipulate the DOM, extract data, or interact with page elements programmatically. Returns the result of the expression."),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("JavaScript code to execute. Can be an expression or a function body. For complex operations, wrap in an IIFE: (function() { /* code */ })();"),
		),
		mcp.WithString("session",
			mcp.Description("Name of the browser session to use. Omit for the default session."),
		),
	), s.handleEvaluate)
}

// validMouseButtons enumerates accepted button values.
var validMouseButtons = map[string]bool{
	"left":   true,
	"right":  true,
	"middle": true,
}

func (s *Server) handleClickComponent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	selector, err := request.RequireString("selector")
	if err != nil {
		return mcp.NewToolResultError("selector is required"), nil
	}

	button := request.GetString("button", "")
	if button != "" && !validMouseButtons[button] {
		return mcp.NewToolResultError(fmt.Sprintf("invalid button: %s (must be 'left', 'right', or 'middle')", button)), nil
	}

	timeout := request.GetFloat("timeout", 0)
	if timeout < 0 || timeout > 300000 {
		return mcp.NewToolResultError("timeout must be between 0 and 300000 milliseconds (5 minutes)"), nil
	}

	session, err := s.session(request.GetString("session", ""))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to get session", err), nil
	}

	opts := browser.ClickOptions{
		Selector:          selector,
		ScrollIntoView:    request.GetBool("scroll_into_view", true),
		WaitForNavigation: request.GetBool("wait_for_navigation", false),
		Button:            button,
		ClickCount:        request.GetInt("click_count", 0),
		Timeout:           timeout,
	}

	if err := session.Click(opts); err != nil {
		return mcp.NewToolResultErrorFromErr("click failed", err), nil
	}

	result := fmt.Sprintf(`Click successful

Click Details:
- Selector: %s
- Session: %s
- Current URL: %s

The element was clicked. If the click triggered navigation or dynamic content, use extract_content or wait_for to inspect the result.`,
		selector,
		session.Name,
		session.URL(),
	)

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleEnterInput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	selector, err := request.RequireString("selector")
	if err != nil {
		return mcp.NewToolResultError("selector is required"), nil
	}

	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text is required"), nil
	}

	timeout := request.GetFloat("timeout", 0)
	if timeout < 0 || timeout > 300000 {
		return mcp.NewToolResultError("timeout must be between 0 and 300000 milliseconds (5 minutes)"), nil
	}

	session, err := s.session(request.GetString("session", ""))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to get session", err), nil
	}

	if err := session.Fill(browser.FillOptions{
		Selector: selector,
		Value:    text,
		Timeout:  timeout,
	}); err != nil {
		return mcp.NewToolResultErrorFromErr("fill failed", err), nil
	}

	result := fmt.Sprintf(`Input entered successfully

Input Details:
- Selector: %s
- Characters entered: %d
- Session: %s

The input field now contains the provided text. Use click_component to submit a form, or continue filling other fields.`,
		selector,
		len(text),
		session.Name,
	)

	return mcp.NewToolResultText(result), nil
}

// validWaitForStates enumerates accepted element states.
var validWaitForStates = map[string]bool{
	"attached": true,
	"detached": true,
	"visible":  true,
	"hidden":   true,
}

func (s *Server) handleWaitFor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	selector, err := request.RequireString("selector")
	if err != nil {
		return mcp.NewToolResultError("selector is required"), nil
	}

	state := request.GetString("state", "visible")
	if !validWaitForStates[state] {
		return mcp.NewToolResultError(fmt.Sprintf("invalid state: %s (must be 'attached', 'detached', 'visible', or 'hidden')", state)), nil
	}

	timeout := request.GetFloat("timeout", 0)
	if timeout < 0 || timeout > 300000 {
		return mcp.NewToolResultError("timeout must be between 0 and 300000 milliseconds (5 minutes)"), nil
	}

	session, err := s.session(request.GetString("session", ""))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to get session", err), nil
	}

	if err := session.Wait(browser.WaitOptions{
		Selector: selector,
		State:    state,
		Timeout:  timeout,
	}); err != nil {
		return mcp.NewToolResultErrorFromErr("wait failed", err), nil
	}

	result := fmt.Sprintf(`Wait completed successfully

Wait Details:
- Selector: %s
- State: %s
- Session: %s
- Current URL: %s

The element reached the desired state. You can now proceed with extraction, clicking, or other interactions.`,
		selector,
		state,
		session.Name,
		session.URL(),
	)

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError("JavaScript code is required"), nil
	}

	session, err := s.session(request.GetString("session", ""))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to get session", err), nil
	}

	output, err := session.Evaluate(code)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("JavaScript execution failed", err), nil
	}

	result := fmt.Sprintf(`JavaScript Execution Complete

Session: %s
URL: %s

Result:
%s`,
		session.Name,
		session.URL(),
		output,
	)

	return mcp.NewToolResultText(result), nil
}
