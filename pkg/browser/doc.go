// Package browser provides web browser automation through Playwright.
//
// The package is built around two core concepts:
//
//  1. Session: a Playwright browser instance with its context and single page
//  2. SessionManager: registry of all active named sessions
//
// # Session Lifecycle
//
// Sessions follow this lifecycle:
//
//  1. Create: StartSession launches a browser and opens a page
//  2. Use: navigation, interaction, and extraction operate on the session
//  3. Close: CloseSession tears down the page, context, and browser
//  4. Timeout: CleanupIdleSessions reaps sessions past the idle threshold
//
// Every operation bumps the session's last-used timestamp, so the reaper
// only closes genuinely idle sessions.
//
// # Engines
//
// Each session picks its engine at creation: chromium (default), firefox,
// or webkit. PDF export is a chromium-only, headless-only capability.
//
// # Driver Output
//
// The Playwright driver writes progress to its stdout/stderr. The manager
// redirects that output (SetDriverOutput); callers serving MCP over stdio
// must route it to a log file so the JSON-RPC stream stays clean.
//
// # Example Usage
//
//	manager := NewSessionManager()
//	if err := manager.Initialize(); err != nil {
//		return err
//	}
//	defer manager.Shutdown()
//
//	session, err := manager.StartSession("research", SessionOptions{
//		Headless: true,
//		Viewport: &Viewport{Width: 1280, Height: 720},
//	})
//
//	err = session.Navigate("https://example.com", NavigateOptions{
//		WaitUntil: "networkidle",
//	})
//	content, err := session.ExtractContent(ExtractOptions{
//		Format:    FormatMarkdown,
//		MaxLength: 10000,
//	})
package browser
