package browser

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// SessionManager manages all active browser sessions and the shared
// Playwright driver they run on.
type SessionManager struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	playwright   *playwright.Playwright
	driverOutput io.Writer
	maxSessions  int
	idleTimeout  time.Duration
	initialized  bool
}

// NewSessionManager creates a new session manager. Driver output is
// discarded unless SetDriverOutput is called; on a stdio server the driver
// must never write to the process's own stdout.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions:     make(map[string]*Session),
		driverOutput: io.Discard,
		maxSessions:  DefaultMaxSessions,
		idleTimeout:  time.Duration(DefaultIdleTimeout) * time.Second,
	}
}

// SetDriverOutput redirects Playwright driver output, typically to a log file.
func (m *SessionManager) SetDriverOutput(w io.Writer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.driverOutput = w
}

// SetMaxSessions sets the maximum number of concurrent sessions.
func (m *SessionManager) SetMaxSessions(max int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxSessions = max
}

// SetIdleTimeout sets the idle timeout duration.
func (m *SessionManager) SetIdleTimeout(timeout time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idleTimeout = timeout
}

// InstallDriver downloads the Playwright driver and browsers. Intended for
// the install command and container builds; Initialize does not download.
func InstallDriver(output io.Writer) error {
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  output,
		Stderr:  output,
	}
	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	return nil
}

// Initialize starts the Playwright driver. It must be called before
// creating any sessions, and assumes the driver and browsers are already
// installed (see InstallDriver).
func (m *SessionManager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  m.driverOutput,
		Stderr:  m.driverOutput,
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	return nil
}

// browserType resolves an engine name to its Playwright browser type.
func (m *SessionManager) browserType(engine string) (playwright.BrowserType, error) {
	switch engine {
	case "", "chromium":
		return m.playwright.Chromium, nil
	case "firefox":
		return m.playwright.Firefox, nil
	case "webkit":
		return m.playwright.WebKit, nil
	default:
		return nil, fmt.Errorf("unknown browser engine %q (must be 'chromium', 'firefox', or 'webkit')", engine)
	}
}

// StartSession creates a new browser session with the given name and options.
func (m *SessionManager) StartSession(name string, opts SessionOptions) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name == "" {
		return nil, fmt.Errorf("session name is required")
	}

	if _, exists := m.sessions[name]; exists {
		return nil, fmt.Errorf("session %q already exists", name)
	}

	if len(m.sessions) >= m.maxSessions {
		return nil, fmt.Errorf("maximum number of sessions (%d) reached", m.maxSessions)
	}

	if !m.initialized {
		return nil, fmt.Errorf("session manager not initialized")
	}

	if opts.Engine == "" {
		opts.Engine = "chromium"
	}
	if opts.Viewport == nil {
		opts.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	bt, err := m.browserType(opts.Engine)
	if err != nil {
		return nil, err
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
	}
	browser, err := bt.Launch(launchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch %s: %w", opts.Engine, err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	}
	context, err := browser.NewContext(contextOpts)
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.SetDefaultTimeout(opts.Timeout)

	now := time.Now()
	session := &Session{
		Name:       name,
		Engine:     opts.Engine,
		Browser:    browser,
		Context:    context,
		Page:       page,
		Headless:   opts.Headless,
		CreatedAt:  now,
		lastUsedAt: now,
		currentURL: "about:blank",
	}

	m.sessions[name] = session
	return session, nil
}

// GetSession retrieves an active session by name.
func (m *SessionManager) GetSession(name string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[name]
	if !exists {
		return nil, fmt.Errorf("session %q not found", name)
	}

	if session.Page.IsClosed() {
		return nil, fmt.Errorf("session %q page has been closed; close the session and start a new one", name)
	}

	return session, nil
}

// CloseSession closes and removes a browser session.
func (m *SessionManager) CloseSession(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[name]
	if !exists {
		return fmt.Errorf("session %q not found", name)
	}

	closeSessionResources(session)
	delete(m.sessions, name)
	return nil
}

// closeSessionResources tears down Playwright resources, ignoring errors so
// cleanup always completes.
func closeSessionResources(session *Session) {
	_ = session.Page.Close()
	_ = session.Context.Close()
	_ = session.Browser.Close()
}

// ListSessions returns information about all active sessions.
func (m *SessionManager) ListSessions() []SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(m.sessions))
	for _, session := range m.sessions {
		infos = append(infos, SessionInfo{
			Name:       session.Name,
			Engine:     session.Engine,
			CurrentURL: session.URL(),
			Headless:   session.Headless,
			CreatedAt:  session.CreatedAt,
			LastUsedAt: session.LastUsed(),
		})
	}

	return infos
}

// HasSessions returns true if there are any active sessions.
func (m *SessionManager) HasSessions() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions) > 0
}

// CloseAll closes all active sessions.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeAllLocked()
}

func (m *SessionManager) closeAllLocked() {
	for name, session := range m.sessions {
		closeSessionResources(session)
		delete(m.sessions, name)
	}
}

// Shutdown closes all sessions and stops the Playwright driver.
func (m *SessionManager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeAllLocked()

	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.initialized = false
	}

	return nil
}

// CleanupIdleSessions closes sessions that have been idle for longer than
// the idle timeout. Sessions with an operation in flight are never closed.
// Returns the names of the sessions it closed.
func (m *SessionManager) CleanupIdleSessions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var closed []string

	for name, session := range m.sessions {
		if session.busy() {
			continue
		}
		if now.Sub(session.LastUsed()) > m.idleTimeout {
			closeSessionResources(session)
			delete(m.sessions, name)
			closed = append(closed, name)
		}
	}

	return closed
}

// SessionInfo contains metadata about a browser session.
type SessionInfo struct {
	Name       string
	Engine     string
	CurrentURL string
	Headless   bool
	CreatedAt  time.Time
	LastUsedAt time.Time
}
