package mcp

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/adrg/xdg"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/webpilot/pkg/config"
	"github.com/entrhq/webpilot/pkg/logging"
)

var testStateOnce sync.Once

// newTestLogger routes log files into a throwaway state directory shared
// by the whole test binary.
func newTestLogger(t *testing.T) *logging.Logger {
	t.Helper()

	testStateOnce.Do(func() {
		dir, err := os.MkdirTemp("", "webpilot-test-state")
		if err != nil {
			t.Fatalf("failed to create temp state dir: %v", err)
		}
		os.Setenv("XDG_STATE_HOME", dir)
		xdg.Reload()
	})

	logger, err := logging.NewLogger("test")
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })
	return logger
}

// newTestBrowserServer builds a browser server without starting Playwright.
// Handlers that never reach a live session can be exercised directly.
func newTestBrowserServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}

	s, err := NewBrowserServer(cfg, newTestLogger(t))
	require.NoError(t, err)
	return s
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestNewBrowserServerInvalidPolicy(t *testing.T) {
	cfg := config.Default()
	cfg.Browser.AllowedURLs = []string{"[invalid"}

	_, err := NewBrowserServer(cfg, newTestLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL policy")
}

func TestHandleStartSessionValidation(t *testing.T) {
	s := newTestBrowserServer(t, nil)

	tests := []struct {
		name    string
		args    map[string]any
		wantErr string
	}{
		{
			name:    "missing name",
			args:    map[string]any{},
			wantErr: "session name is required",
		},
		{
			name:    "invalid engine",
			args:    map[string]any{"name": "test", "engine": "safari"},
			wantErr: "invalid engine",
		},
		{
			name:    "viewport too narrow",
			args:    map[string]any{"name": "test", "width": 50},
			wantErr: "width must be between",
		},
		{
			name:    "viewport too tall",
			args:    map[string]any{"name": "test", "height": 9000},
			wantErr: "height must be between",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleStartSession(context.Background(), callRequest("start_session", tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.wantErr)
		})
	}
}

func TestHandleListSessionsEmpty(t *testing.T) {
	s := newTestBrowserServer(t, nil)

	result, err := s.handleListSessions(context.Background(), callRequest("list_sessions", nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "No active browser sessions")
}

func TestHandleCloseSessionNotFound(t *testing.T) {
	s := newTestBrowserServer(t, nil)

	result, err := s.handleCloseSession(context.Background(), callRequest("close_session", map[string]any{"name": "ghost"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "failed to close session")
}

func TestHandleVisitPageValidation(t *testing.T) {
	s := newTestBrowserServer(t, func(cfg *config.Config) {
		cfg.Browser.BlockedURLs = []string{"blocked.example.com"}
	})

	tests := []struct {
		name    string
		args    map[string]any
		wantErr string
	}{
		{
			name:    "missing url",
			args:    map[string]any{},
			wantErr: "URL is required",
		},
		{
			name:    "invalid wait_until",
			args:    map[string]any{"url": "https://example.com", "wait_until": "eventually"},
			wantErr: "invalid wait_until",
		},
		{
			name:    "timeout out of range",
			args:    map[string]any{"url": "https://example.com", "timeout": 999999.0},
			wantErr: "timeout must be between",
		},
		{
			name:    "blocked host",
			args:    map[string]any{"url": "https://blocked.example.com/login"},
			wantErr: "navigation refused",
		},
		{
			name:    "unsupported scheme",
			args:    map[string]any{"url": "file:///etc/passwd"},
			wantErr: "navigation refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleVisitPage(context.Background(), callRequest("visit_page", tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.wantErr)
		})
	}
}

func TestHandleVisitPageUnknownSession(t *testing.T) {
	s := newTestBrowserServer(t, nil)

	// A named session is never auto-created; only the default one is.
	result, err := s.handleVisitPage(context.Background(), callRequest("visit_page", map[string]any{
		"url":     "https://example.com",
		"session": "nope",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "failed to get session")
}

func TestHandleClickComponentValidation(t *testing.T) {
	s := newTestBrowserServer(t, nil)

	tests := []struct {
		name    string
		args    map[string]any
		wantErr string
	}{
		{
			name:    "missing selector",
			args:    map[string]any{},
			wantErr: "selector is required",
		},
		{
			name:    "invalid button",
			args:    map[string]any{"selector": "#go", "button": "side"},
			wantErr: "invalid button",
		},
		{
			name:    "timeout out of range",
			args:    map[string]any{"selector": "#go", "timeout": -1.0},
			wantErr: "timeout must be between",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleClickComponent(context.Background(), callRequest("click_component", tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.wantErr)
		})
	}
}

func TestHandleEnterInputValidation(t *testing.T) {
	s := newTestBrowserServer(t, nil)

	result, err := s.handleEnterInput(context.Background(), callRequest("enter_input", map[string]any{"text": "hello"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "selector is required")

	result, err = s.handleEnterInput(context.Background(), callRequest("enter_input", map[string]any{"selector": "#email"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "text is required")

	result, err = s.handleEnterInput(context.Background(), callRequest("enter_input", map[string]any{
		"selector": "#email",
		"text":     "hello",
		"timeout":  999999.0,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "timeout must be between")
}

func TestHandleWaitForValidation(t *testing.T) {
	s := newTestBrowserServer(t, nil)

	result, err := s.handleWaitFor(context.Background(), callRequest("wait_for", map[string]any{
		"selector": ".spinner",
		"state":    "gone",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "invalid state")
}

func TestHandleEvaluateValidation(t *testing.T) {
	s := newTestBrowserServer(t, nil)

	result, err := s.handleEvaluate(context.Background(), callRequest("evaluate", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "code is required")
}

func TestHandleExtractContentValidation(t *testing.T) {
	s := newTestBrowserServer(t, nil)

	tests := []struct {
		name    string
		args    map[string]any
		wantErr string
	}{
		{
			name:    "invalid format",
			args:    map[string]any{"format": "xml"},
			wantErr: "invalid format",
		},
		{
			name:    "max_length too small",
			args:    map[string]any{"max_length": 10},
			wantErr: "max_length must be between",
		},
		{
			name:    "max_length too large",
			args:    map[string]any{"max_length": 1000000},
			wantErr: "max_length must be between",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleExtractContent(context.Background(), callRequest("extract_content", tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.wantErr)
		})
	}
}

func TestHandleSearchPageValidation(t *testing.T) {
	s := newTestBrowserServer(t, nil)

	result, err := s.handleSearchPage(context.Background(), callRequest("search_page", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "pattern is required")

	result, err = s.handleSearchPage(context.Background(), callRequest("search_page", map[string]any{
		"pattern":     "login",
		"max_results": 500,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "max_results must be between")
}

func TestHandleAnalyzePageValidation(t *testing.T) {
	s := newTestBrowserServer(t, nil)

	result, err := s.handleAnalyzePage(context.Background(), callRequest("analyze_page", map[string]any{
		"max_length": 10,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "max_length must be between")
}
