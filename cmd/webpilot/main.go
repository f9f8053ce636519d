// Package main provides the entry point for the webpilot CLI.
//
// Webpilot serves browser-automation and weather tools to MCP clients
// over stdio.
//
// Usage:
//
//	webpilot install
//	webpilot serve
//	webpilot weather
//
// See --help for all available options.
package main

// main is the entry point for webpilot.
func main() {
	Execute()
}
