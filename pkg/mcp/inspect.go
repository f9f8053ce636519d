package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pkoukk/tiktoken-go"

	"github.com/entrhq/webpilot/pkg/browser"
)

// registerInspectionTools adds tools that read page content.
func (s *Server) registerInspectionTools() {
	s.mcp.AddTool(mcp.NewTool("extract_content",
		mcp.WithDescription("Extract content from the current page. Supports multiple formats: markdown (default), plain text, cleaned HTML, or structured JSON."),
		mcp.WithString("session",
			mcp.Description("Name of the browser session to extract from. Omit for the default session."),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'markdown' (default), 'text', 'html' (cleaned, with targeting attributes), or 'structured' (JSON)"),
		),
		mcp.WithString("selector",
			mcp.Description("Optional CSS selector to extract content from a specific element (e.g., 'article', '.main-content')"),
		),
		mcp.WithNumber("max_length",
			mcp.Description("Maximum content length in characters. Default: 10000"),
		),
	), s.handleExtractContent)

	s.mcp.AddTool(mcp.NewTool("search_page",
		mcp.WithDescription("Search for text in the current page content. Returns matching text with surrounding context."),
		mcp.WithString("pattern",
			mcp.Required(),
			mcp.Description("Text to search for in the page content"),
		),
		mcp.WithString("session",
			mcp.Description("Name of the browser session to search in. Omit for the default session."),
		),
		mcp.WithBoolean("case_sensitive",
			mcp.Description("Whether the search should be case-sensitive. Default: false"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results to return. Default: 10"),
		),
	), s.handleSearchPage)

	s.mcp.AddTool(mcp.NewTool("analyze_page",
		mcp.WithDescription("Analyze the structure of the current page: landmarks, headings, forms with field selectors, and interactive elements. Use this to find selectors before clicking or filling."),
		mcp.WithString("session",
			mcp.Description("Name of the browser session to analyze. Omit for the default session."),
		),
		mcp.WithNumber("max_length",
			mcp.Description("Maximum amount of page HTML to scan, in characters. Default: 50000"),
		),
	), s.handleAnalyzePage)
}

// validFormats enumerates accepted extraction formats.
var validFormats = map[string]browser.ExtractFormat{
	"markdown":   browser.FormatMarkdown,
	"text":       browser.FormatText,
	"html":       browser.FormatHTML,
	"structured": browser.FormatStructured,
}

func (s *Server) handleExtractContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formatName := request.GetString("format", "markdown")
	format, ok := validFormats[formatName]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid format: %s (must be 'markdown', 'text', 'html', or 'structured')", formatName)), nil
	}

	maxLength := request.GetInt("max_length", browser.DefaultMaxLength)
	if maxLength < 100 || maxLength > 100000 {
		return mcp.NewToolResultError("max_length must be between 100 and 100000"), nil
	}

	session, err := s.session(request.GetString("session", ""))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to get session", err), nil
	}

	selector := request.GetString("selector", "")

	content, err := session.ExtractContent(browser.ExtractOptions{
		Format:    format,
		Selector:  selector,
		MaxLength: maxLength,
	})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("extraction failed", err), nil
	}

	sourceDesc := "entire page"
	if selector != "" {
		sourceDesc = fmt.Sprintf("selector: %s", selector)
	}

	sizeDesc := fmt.Sprintf("%d characters", len(content))
	if tokens, ok := estimateTokens(content); ok {
		sizeDesc = fmt.Sprintf("%d characters (~%d tokens)", len(content), tokens)
	}

	result := fmt.Sprintf(`Content extracted successfully

Extraction Details:
- Session: %s
- URL: %s
- Format: %s
- Source: %s
- Length: %s

---

%s`,
		session.Name,
		session.URL(),
		formatName,
		sourceDesc,
		sizeDesc,
		content,
	)

	return mcp.NewToolResultText(result), nil
}

var (
	tokenEncoder     *tiktoken.Tiktoken
	tokenEncoderOnce sync.Once
)

// estimateTokens returns an approximate token count for text. Best effort:
// the encoder may need a one-time download of its BPE ranks, and failure
// just means the count is omitted from results.
func estimateTokens(text string) (int, bool) {
	tokenEncoderOnce.Do(func() {
		encoder, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			tokenEncoder = encoder
		}
	})
	if tokenEncoder == nil {
		return 0, false
	}
	return len(tokenEncoder.Encode(text, nil, nil)), true
}

func (s *Server) handleSearchPage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pattern, err := request.RequireString("pattern")
	if err != nil {
		return mcp.NewToolResultError("pattern is required"), nil
	}

	maxResults := request.GetInt("max_results", 10)
	if maxResults < 1 || maxResults > 100 {
		return mcp.NewToolResultError("max_results must be between 1 and 100"), nil
	}

	session, err := s.session(request.GetString("session", ""))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to get session", err), nil
	}

	results, err := session.Search(browser.SearchOptions{
		Pattern:       pattern,
		CaseSensitive: request.GetBool("case_sensitive", false),
		MaxResults:    maxResults,
	})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("search failed", err), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No matches found for %q on %s.", pattern, session.URL())), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d match(es) for %q on %s:\n\n", len(results), pattern, session.URL())
	for i, match := range results {
		fmt.Fprintf(&b, "%d. ...%s...\n", i+1, strings.TrimSpace(match.Context))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleAnalyzePage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	maxLength := request.GetInt("max_length", 0)
	if maxLength != 0 && (maxLength < 1000 || maxLength > 500000) {
		return mcp.NewToolResultError("max_length must be between 1000 and 500000"), nil
	}

	session, err := s.session(request.GetString("session", ""))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to get session", err), nil
	}

	outline, err := session.Outline(maxLength)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("analysis failed", err), nil
	}

	result := fmt.Sprintf(`Page Analysis Complete

URL: %s
Session: %s

%s
Use the selectors above with click_component, enter_input, and extract_content.`,
		session.URL(),
		session.Name,
		outline,
	)

	return mcp.NewToolResultText(result), nil
}
