// Package policy enforces URL allow/deny rules for browser navigation.
//
// Patterns use glob syntax. A pattern containing a slash is matched against
// the full URL (scheme stripped); otherwise it is matched against the host.
// Deny rules take precedence over allow rules, and an empty allow list
// permits everything not denied.
package policy

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// URLPolicy handles glob pattern matching for navigation control.
type URLPolicy struct {
	allowedPatterns []compiledPattern
	deniedPatterns  []compiledPattern
}

type compiledPattern struct {
	source  string
	glob    glob.Glob
	fullURL bool
}

// New compiles allow and deny pattern lists into a URLPolicy.
func New(allowed, denied []string) (*URLPolicy, error) {
	p := &URLPolicy{}

	for _, pattern := range allowed {
		cp, err := compilePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed pattern '%s': %w", pattern, err)
		}
		p.allowedPatterns = append(p.allowedPatterns, cp)
	}

	for _, pattern := range denied {
		cp, err := compilePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid blocked pattern '%s': %w", pattern, err)
		}
		p.deniedPatterns = append(p.deniedPatterns, cp)
	}

	return p, nil
}

func compilePattern(pattern string) (compiledPattern, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return compiledPattern{}, err
	}
	return compiledPattern{
		source:  pattern,
		glob:    g,
		fullURL: strings.Contains(pattern, "/"),
	}, nil
}

// Check returns an error when the URL is refused by the policy.
// Only http and https URLs are ever allowed; about:blank is exempt so a
// fresh session can always reset its page.
func (p *URLPolicy) Check(rawURL string) error {
	if rawURL == "about:blank" {
		return nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme %q is not allowed (must be http or https)", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("URL %q has no host", rawURL)
	}

	stripped := host + u.EscapedPath()

	// Denied patterns take precedence
	for _, cp := range p.deniedPatterns {
		if cp.match(host, stripped) {
			return fmt.Errorf("URL blocked by policy (pattern '%s')", cp.source)
		}
	}

	// No allowed patterns means allow all (except denied)
	if len(p.allowedPatterns) == 0 {
		return nil
	}

	for _, cp := range p.allowedPatterns {
		if cp.match(host, stripped) {
			return nil
		}
	}

	return fmt.Errorf("URL host %q does not match any allowed pattern", host)
}

func (cp compiledPattern) match(host, stripped string) bool {
	if cp.fullURL {
		return cp.glob.Match(stripped)
	}
	return cp.glob.Match(host)
}
