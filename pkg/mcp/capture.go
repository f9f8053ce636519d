package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/entrhq/webpilot/pkg/browser"
)

// registerCaptureTools adds tools that write artifacts to disk.
func (s *Server) registerCaptureTools() {
	s.mcp.AddTool(mcp.NewTool("take_screenshot",
		mcp.WithDescription("Take a screenshot of the current page or a specific element. Files are written to the configured screenshot directory with a timestamped name."),
		mcp.WithString("session",
			mcp.Description("Name of the browser session to capture. Omit for the default session."),
		),
		mcp.WithString("selector",
			mcp.Description("Optional CSS selector to capture only a specific element"),
		),
		mcp.WithString("filename",
			mcp.Description("Base name for the output file (e.g., 'login-form.png'). A timestamp is appended before the extension. Default: 'screenshot.png'"),
		),
		mcp.WithBoolean("full_page",
			mcp.Description("Capture the entire scrollable page instead of just the viewport. Ignored when a selector is given. Default: false"),
		),
	), s.handleTakeScreenshot)

	s.mcp.AddTool(mcp.NewTool("export_pdf",
		mcp.WithDescription("Export the current page as a PDF document. Only supported in headless chromium sessions."),
		mcp.WithString("session",
			mcp.Description("Name of the browser session to export. Omit for the default session."),
		),
		mcp.WithString("filename",
			mcp.Description("Base name for the output file. A timestamp is appended before the extension. Default: 'page.pdf'"),
		),
	), s.handleExportPDF)
}

func (s *Server) handleTakeScreenshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.session(request.GetString("session", ""))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to get session", err), nil
	}

	selector := request.GetString("selector", "")

	path, err := session.Screenshot(s.cfg.Output.ScreenshotDir, browser.ScreenshotOptions{
		Selector: selector,
		Filename: request.GetString("filename", ""),
		FullPage: request.GetBool("full_page", false),
	})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("screenshot failed", err), nil
	}

	target := "full page"
	if selector != "" {
		target = fmt.Sprintf("element %q", selector)
	}

	s.logger.Infof("screenshot captured: session=%s path=%s", session.Name, path)

	result := fmt.Sprintf(`Screenshot captured successfully

Capture Details:
- Session: %s
- URL: %s
- Target: %s
- Saved to: %s`,
		session.Name,
		session.URL(),
		target,
		path,
	)

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleExportPDF(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.session(request.GetString("session", ""))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to get session", err), nil
	}

	path, pages, err := session.ExportPDF(s.cfg.Output.ExportDir, browser.PDFOptions{
		Filename: request.GetString("filename", ""),
	})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("PDF export failed", err), nil
	}

	s.logger.Infof("pdf exported: session=%s path=%s pages=%d", session.Name, path, pages)

	result := fmt.Sprintf(`PDF exported successfully

Export Details:
- Session: %s
- URL: %s
- Pages: %d
- Saved to: %s`,
		session.Name,
		session.URL(),
		pages,
		path,
	)

	return mcp.NewToolResultText(result), nil
}
