package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/entrhq/webpilot/pkg/browser"
	"github.com/entrhq/webpilot/pkg/config"
	"github.com/entrhq/webpilot/pkg/logging"
	"github.com/entrhq/webpilot/pkg/policy"
	"github.com/entrhq/webpilot/pkg/weather"
)

// Version is the server version reported during the MCP handshake.
// Overridable at build time via ldflags.
var Version = "0.1.0"

// DefaultSessionName is the session used when a tool call does not name
// one. It is created on demand so single-session clients never have to
// manage sessions explicitly.
const DefaultSessionName = "default"

// Server wires webpilot components into an MCP server speaking JSON-RPC
// over stdio. The process serves one client: requests arrive on stdin and
// results leave on stdout, so all diagnostics go to the file logger.
type Server struct {
	cfg     config.Config
	logger  *logging.Logger
	manager *browser.SessionManager
	policy  *policy.URLPolicy
	mcp     *server.MCPServer

	// reapInterval controls how often idle sessions are checked.
	reapInterval time.Duration
}

// NewBrowserServer creates the browser-automation MCP server.
func NewBrowserServer(cfg config.Config, logger *logging.Logger) (*Server, error) {
	urlPolicy, err := policy.New(cfg.Browser.AllowedURLs, cfg.Browser.BlockedURLs)
	if err != nil {
		return nil, fmt.Errorf("failed to compile URL policy: %w", err)
	}

	manager := browser.NewSessionManager()
	manager.SetDriverOutput(logger.Writer())
	manager.SetMaxSessions(cfg.Browser.MaxSessions)
	manager.SetIdleTimeout(time.Duration(cfg.Browser.IdleTimeoutSeconds) * time.Second)

	s := &Server{
		cfg:          cfg,
		logger:       logger,
		manager:      manager,
		policy:       urlPolicy,
		reapInterval: time.Minute,
	}

	s.mcp = server.NewMCPServer(
		"webpilot",
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Browser automation tools backed by Playwright. "+
			"Tools operate on named sessions; omit the session argument to use a "+
			"shared default session that is created automatically. Start with "+
			"visit_page, then inspect pages with extract_content or analyze_page "+
			"before clicking or filling."),
	)

	s.registerSessionTools()
	s.registerNavigationTools()
	s.registerInteractionTools()
	s.registerInspectionTools()
	s.registerCaptureTools()

	return s, nil
}

// NewWeatherServer creates the weather MCP server.
func NewWeatherServer(cfg config.Config, logger *logging.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger,
	}

	s.mcp = server.NewMCPServer(
		"webpilot-weather",
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("US weather tools backed by the National "+
			"Weather Service API. Coordinates must be inside the United States."),
	)

	client := weather.NewClient(cfg.Weather.BaseURL, cfg.Weather.UserAgent)
	s.registerWeatherTools(client)

	return s
}

// Serve runs the server on stdio until the context is cancelled or the
// client closes stdin. For browser servers it also starts Playwright and
// the idle-session reaper.
func (s *Server) Serve(ctx context.Context) error {
	if s.manager != nil {
		if err := s.manager.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize browser: %w", err)
		}
		defer func() {
			if err := s.manager.Shutdown(); err != nil {
				s.logger.Errorf("shutdown: %v", err)
			}
		}()

		go s.reapIdleSessions(ctx)
	}

	s.logger.Infof("serving MCP on stdio")

	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(s.logger.Writer(), "", log.LstdFlags))

	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stdio server failed: %w", err)
	}

	return nil
}

// reapIdleSessions periodically closes sessions past the idle timeout.
func (s *Server) reapIdleSessions(ctx context.Context) {
	ticker := time.NewTicker(s.reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, name := range s.manager.CleanupIdleSessions() {
				s.logger.Infof("closed idle session %q", name)
			}
		}
	}
}

// sessionOptions builds session options from configured defaults.
func (s *Server) sessionOptions() browser.SessionOptions {
	return browser.SessionOptions{
		Engine:   s.cfg.Browser.Engine,
		Headless: s.cfg.Browser.Headless,
		Viewport: &browser.Viewport{
			Width:  s.cfg.Browser.ViewportWidth,
			Height: s.cfg.Browser.ViewportHeight,
		},
		Timeout: s.cfg.Browser.TimeoutMS,
	}
}

// session resolves a tool's session argument. An empty name means the
// default session, which is created on first use.
func (s *Server) session(name string) (*browser.Session, error) {
	if name == "" {
		name = DefaultSessionName
	}

	session, err := s.manager.GetSession(name)
	if err == nil {
		return session, nil
	}

	if name != DefaultSessionName {
		return nil, err
	}

	session, startErr := s.manager.StartSession(name, s.sessionOptions())
	if startErr != nil {
		// Lost a race with a concurrent call creating the default session
		if existing, getErr := s.manager.GetSession(name); getErr == nil {
			return existing, nil
		}
		return nil, startErr
	}

	s.logger.Infof("created default session (%s, headless=%v)", session.Engine, session.Headless)
	return session, nil
}
