// Package mcp implements webpilot's Model Context Protocol servers using
// the mcp-go library (github.com/mark3labs/mcp-go).
//
// Two servers are provided. The browser server exposes Playwright-backed
// page automation: visiting pages, clicking and filling elements, waiting
// for states, extracting and searching content, running JavaScript, and
// capturing screenshots or PDF exports. The weather server exposes US
// National Weather Service lookups.
//
// # Transport
//
// Both servers are typically started as a subprocess by an MCP-capable
// editor or assistant. They read JSON-RPC requests from stdin and write
// responses to stdout until EOF or termination. Because stdout carries the
// protocol, every diagnostic - including Playwright driver output - is
// routed to the file logger.
//
// # Sessions
//
// Browser tools accept an optional session argument. When omitted, a
// shared session named "default" is created on first use with the
// configured engine, headless mode, and viewport. Additional named
// sessions can be managed with start_session, list_sessions, and
// close_session. Idle sessions are reaped in the background.
//
// # Security
//
// Navigation is checked against the configured URL allow/deny globs
// before any network activity, and only http/https URLs are ever visited.
package mcp
