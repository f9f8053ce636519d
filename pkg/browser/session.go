package browser

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/playwright-community/playwright-go"
)

// beginOp marks the start of an operation: it bumps the last-used
// timestamp and raises the in-flight count so the idle reaper will not
// close the session mid-call. The returned func ends the operation.
func (s *Session) beginOp() func() {
	s.mu.Lock()
	s.inFlight++
	s.lastUsedAt = time.Now()
	s.mu.Unlock()
	return s.endOp
}

func (s *Session) endOp() {
	s.mu.Lock()
	s.inFlight--
	s.lastUsedAt = time.Now()
	s.mu.Unlock()
}

// LastUsed returns when the session last started or finished an operation.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsedAt
}

// URL returns the session's current page URL.
func (s *Session) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentURL
}

func (s *Session) setURL(url string) {
	s.mu.Lock()
	s.currentURL = url
	s.mu.Unlock()
}

// busy reports whether an operation is currently running on the session.
func (s *Session) busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

// Navigate navigates the session's page to the specified URL.
func (s *Session) Navigate(url string, opts NavigateOptions) error {
	defer s.beginOp()()

	playwrightOpts := playwright.PageGotoOptions{}

	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		playwrightOpts.WaitUntil = &waitUntil
	}

	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if _, err := s.Page.Goto(url, playwrightOpts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	s.setURL(s.Page.URL())
	return nil
}

// Click clicks an element matching the selector. When ScrollIntoView is set
// the element is scrolled into view first; when WaitForNavigation is set the
// click is wrapped in a navigation expectation so redirects settle before
// the call returns.
func (s *Session) Click(opts ClickOptions) error {
	defer s.beginOp()()

	if opts.Selector == "" {
		return fmt.Errorf("selector is required for click")
	}

	if opts.ScrollIntoView {
		element, err := s.Page.QuerySelector(opts.Selector)
		if err != nil {
			return fmt.Errorf("selector query failed: %w", err)
		}
		if element == nil {
			return fmt.Errorf("no element found matching selector: %s", opts.Selector)
		}
		scrollOpts := playwright.ElementHandleScrollIntoViewIfNeededOptions{}
		if opts.Timeout > 0 {
			scrollOpts.Timeout = &opts.Timeout
		}
		if err := element.ScrollIntoViewIfNeeded(scrollOpts); err != nil {
			return fmt.Errorf("scroll into view failed: %w", err)
		}
	}

	clickOpts := playwright.PageClickOptions{}

	if opts.Button != "" {
		button := playwright.MouseButton(opts.Button)
		clickOpts.Button = &button
	}

	if opts.ClickCount > 0 {
		clickOpts.ClickCount = &opts.ClickCount
	}

	if opts.Timeout > 0 {
		clickOpts.Timeout = &opts.Timeout
	}

	if opts.WaitForNavigation {
		navOpts := playwright.PageExpectNavigationOptions{}
		if opts.Timeout > 0 {
			navOpts.Timeout = &opts.Timeout
		}
		_, err := s.Page.ExpectNavigation(func() error {
			return s.Page.Click(opts.Selector, clickOpts)
		}, navOpts)
		if err != nil {
			return fmt.Errorf("click failed: %w", err)
		}
	} else {
		if err := s.Page.Click(opts.Selector, clickOpts); err != nil {
			return fmt.Errorf("click failed: %w", err)
		}
	}

	// Click may have caused navigation
	s.setURL(s.Page.URL())
	return nil
}

// Fill fills an input element with the specified value.
func (s *Session) Fill(opts FillOptions) error {
	defer s.beginOp()()

	if opts.Selector == "" {
		return fmt.Errorf("selector is required for fill")
	}

	playwrightOpts := playwright.PageFillOptions{}

	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if err := s.Page.Fill(opts.Selector, opts.Value, playwrightOpts); err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}

	return nil
}

// Wait waits for an element to reach a state.
func (s *Session) Wait(opts WaitOptions) error {
	defer s.beginOp()()

	if opts.Selector == "" {
		return fmt.Errorf("selector is required for wait")
	}

	playwrightOpts := playwright.PageWaitForSelectorOptions{}

	if opts.State != "" {
		state := playwright.WaitForSelectorState(opts.State)
		playwrightOpts.State = &state
	}

	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if _, err := s.Page.WaitForSelector(opts.Selector, playwrightOpts); err != nil {
		return fmt.Errorf("wait failed: %w", err)
	}

	return nil
}

// Evaluate runs JavaScript in the page and returns the result formatted as
// a string. Structured results are rendered as indented JSON.
func (s *Session) Evaluate(code string) (string, error) {
	defer s.beginOp()()

	if code == "" {
		return "", fmt.Errorf("JavaScript code is required")
	}

	result, err := s.Page.Evaluate(code)
	if err != nil {
		return "", fmt.Errorf("JavaScript execution failed: %w", err)
	}

	return formatEvaluateResult(result), nil
}

// formatEvaluateResult renders an Evaluate result for display.
func formatEvaluateResult(result interface{}) string {
	if result == nil {
		return "undefined"
	}
	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(jsonBytes)
}

// Search searches the page's text for the pattern, returning matches with
// surrounding context.
func (s *Session) Search(opts SearchOptions) ([]SearchResult, error) {
	defer s.beginOp()()

	bodyText, err := s.extractText(ExtractOptions{MaxLength: maxSearchableLength})
	if err != nil {
		return nil, fmt.Errorf("failed to get page text: %w", err)
	}

	return searchText(bodyText, opts), nil
}

// maxSearchableLength bounds how much page text search scans.
const maxSearchableLength = 1 << 20

// searchContextRadius is how many characters of context surround each match.
const searchContextRadius = 50

// searchText finds occurrences of the pattern in text. Matching works on
// runes so that multi-byte characters never split a match or its context.
func searchText(text string, opts SearchOptions) []SearchResult {
	needle := []rune(opts.Pattern)
	if len(needle) == 0 {
		return nil
	}
	haystack := []rune(text)

	var results []SearchResult
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if !matchAt(haystack, needle, i, opts.CaseSensitive) {
			continue
		}

		end := i + len(needle)
		contextStart := max(0, i-searchContextRadius)
		contextEnd := min(len(haystack), end+searchContextRadius)

		results = append(results, SearchResult{
			Text:    string(haystack[i:end]),
			Context: string(haystack[contextStart:contextEnd]),
		})

		i = end - 1

		if opts.MaxResults > 0 && len(results) >= opts.MaxResults {
			break
		}
	}

	return results
}

// matchAt reports whether needle occurs in haystack at position at.
func matchAt(haystack, needle []rune, at int, caseSensitive bool) bool {
	for j, r := range needle {
		h := haystack[at+j]
		if caseSensitive {
			if h != r {
				return false
			}
			continue
		}
		if unicode.ToLower(h) != unicode.ToLower(r) {
			return false
		}
	}
	return true
}

// ExtractContent extracts page content in the specified format.
func (s *Session) ExtractContent(opts ExtractOptions) (string, error) {
	defer s.beginOp()()

	if opts.Format == "" {
		opts.Format = FormatMarkdown
	}
	if opts.MaxLength == 0 {
		opts.MaxLength = DefaultMaxLength
	}

	switch opts.Format {
	case FormatMarkdown:
		return s.extractMarkdown(opts)
	case FormatText:
		return s.extractText(opts)
	case FormatHTML:
		return s.extractHTML(opts)
	case FormatStructured:
		return s.extractStructured(opts)
	default:
		return "", fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

// extractText extracts plain text content from the page or selector.
func (s *Session) extractText(opts ExtractOptions) (string, error) {
	selector := opts.Selector
	if selector == "" {
		selector = "body"
	}

	element, err := s.Page.QuerySelector(selector)
	if err != nil {
		return "", fmt.Errorf("selector query failed: %w", err)
	}
	if element == nil {
		return "", fmt.Errorf("no element found matching selector: %s", selector)
	}

	content, err := element.TextContent()
	if err != nil {
		return "", fmt.Errorf("text extraction failed: %w", err)
	}

	if opts.MaxLength > 0 && len(content) > opts.MaxLength {
		truncated := content[:opts.MaxLength]
		warning := fmt.Sprintf("\n\n[Content truncated: %d of %d characters shown]", opts.MaxLength, len(content))
		return truncated + warning, nil
	}

	return content, nil
}

// extractMarkdown extracts content with the page title as a heading.
func (s *Session) extractMarkdown(opts ExtractOptions) (string, error) {
	var markdown string

	title, err := s.Page.Title()
	if err == nil && title != "" {
		markdown = fmt.Sprintf("# %s\n\n", title)
	}

	text, err := s.extractText(opts)
	if err != nil {
		return "", err
	}

	return markdown + text, nil
}

// extractHTML extracts cleaned HTML preserving semantic structure and
// targeting attributes.
func (s *Session) extractHTML(opts ExtractOptions) (string, error) {
	rawHTML, err := s.pageHTML(opts.Selector)
	if err != nil {
		return "", err
	}

	cleaned, err := cleanHTML(rawHTML, opts.MaxLength)
	if err != nil {
		return "", err
	}

	return renderCleanedHTML(cleaned, opts.MaxLength), nil
}

// pageHTML returns the raw HTML of the page, or of the selector's first match.
func (s *Session) pageHTML(selector string) (string, error) {
	if selector == "" {
		content, err := s.Page.Content()
		if err != nil {
			return "", fmt.Errorf("failed to read page content: %w", err)
		}
		return content, nil
	}

	element, err := s.Page.QuerySelector(selector)
	if err != nil {
		return "", fmt.Errorf("selector query failed: %w", err)
	}
	if element == nil {
		return "", fmt.Errorf("no element found matching selector: %s", selector)
	}

	content, err := element.InnerHTML()
	if err != nil {
		return "", fmt.Errorf("failed to read element content: %w", err)
	}
	return content, nil
}

// extractStructured extracts title, headings, links, and body text as JSON.
func (s *Session) extractStructured(opts ExtractOptions) (string, error) {
	structured := StructuredContent{}

	if title, err := s.Page.Title(); err == nil {
		structured.Title = title
	}

	headings, err := s.Page.QuerySelectorAll("h1, h2, h3, h4, h5, h6")
	if err == nil {
		for _, heading := range headings {
			text, textErr := heading.TextContent()
			if textErr == nil && strings.TrimSpace(text) != "" {
				structured.Headings = append(structured.Headings, strings.TrimSpace(text))
			}
		}
	}

	links, err := s.Page.QuerySelectorAll("a[href]")
	if err == nil {
		for _, link := range links {
			text, _ := link.TextContent()
			href, _ := link.GetAttribute("href")
			if href != "" {
				structured.Links = append(structured.Links, Link{
					Text: strings.TrimSpace(text),
					Href: href,
				})
			}
		}
	}

	bodyText, err := s.extractText(opts)
	if err == nil {
		structured.Body = bodyText
	}

	jsonBytes, err := json.MarshalIndent(structured, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode structured content: %w", err)
	}

	return string(jsonBytes), nil
}

// Outline produces a structural analysis of the current page: landmarks,
// headings, forms with field selectors, and interactive elements.
func (s *Session) Outline(maxLength int) (string, error) {
	defer s.beginOp()()

	if maxLength <= 0 {
		maxLength = defaultOutlineSourceLength
	}

	rawHTML, err := s.pageHTML("")
	if err != nil {
		return "", err
	}

	return buildPageOutline(rawHTML, maxLength)
}
