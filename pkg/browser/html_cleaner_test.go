package browser

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		wantTitle string
		wantDesc  string
		wantHTML  []string // substrings that should be present
		wantNot   []string // substrings that should NOT be present
		truncated bool
	}{
		{
			name: "basic HTML with script and style removal",
			input: `<html>
				<head>
					<title>Test Page</title>
					<meta name="description" content="Test description">
					<script>alert('evil');</script>
					<style>body { color: red; }</style>
				</head>
				<body>
					<h1 id="main-title">Hello World</h1>
					<p class="intro">This is a test.</p>
				</body>
			</html>`,
			maxLength: 10000,
			wantTitle: "Test Page",
			wantDesc:  "Test description",
			wantHTML:  []string{"<h1 id=\"main-title\">", "Hello World", "<p class=\"intro\">", "This is a test"},
			wantNot:   []string{"<script>", "alert", "<style>", "color: red"},
		},
		{
			name: "preserve semantic structure",
			input: `<html><body>
				<header><nav><a href="/home">Home</a></nav></header>
				<main>
					<section id="content">
						<article><h2>Article Title</h2></article>
					</section>
				</main>
				<footer><p>Footer</p></footer>
			</body></html>`,
			maxLength: 10000,
			wantHTML:  []string{"<header>", "<nav>", "<main>", "<section id=\"content\">", "<article>", "<footer>"},
		},
		{
			name: "preserve targeting attributes",
			input: `<html><body>
				<form action="/submit" method="post">
					<input type="text" name="username" id="user-input" placeholder="Enter name" data-test="username-field">
					<button type="submit" class="btn-primary">Submit</button>
				</form>
			</body></html>`,
			maxLength: 10000,
			wantHTML: []string{
				`<form action="/submit" method="post">`,
				`type="text"`,
				`name="username"`,
				`id="user-input"`,
				`placeholder="Enter name"`,
				`data-test="username-field"`,
				`class="btn-primary"`,
			},
		},
		{
			name: "drop presentation attributes",
			input: `<html><body>
				<p style="color: blue" onclick="evil()" id="keep-me">Text</p>
			</body></html>`,
			maxLength: 10000,
			wantHTML:  []string{`<p id="keep-me">`, "Text"},
			wantNot:   []string{"style=", "onclick="},
		},
		{
			name: "remove unwanted elements",
			input: `<html><body>
				<div>Content</div>
				<script src="app.js"></script>
				<noscript>No JS</noscript>
				<iframe src="ad.html"></iframe>
				<svg><circle/></svg>
			</body></html>`,
			maxLength: 10000,
			wantHTML:  []string{"<div>", "Content"},
			wantNot:   []string{"<script>", "<noscript>", "<iframe>", "<svg>", "No JS"},
		},
		{
			name: "truncate at boundary",
			input: `<html><body>
				<p>First paragraph with some content.</p>
				<p>Second paragraph with more content.</p>
				<p>Third paragraph that should be truncated away entirely.</p>
			</body></html>`,
			maxLength: 100,
			wantHTML:  []string{"First paragraph"},
			truncated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := cleanHTML(tt.input, tt.maxLength)
			if err != nil {
				t.Fatalf("cleanHTML() error = %v", err)
			}

			if tt.wantTitle != "" && result.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", result.Title, tt.wantTitle)
			}
			if tt.wantDesc != "" && result.Description != tt.wantDesc {
				t.Errorf("Description = %q, want %q", result.Description, tt.wantDesc)
			}
			if result.Truncated != tt.truncated {
				t.Errorf("Truncated = %v, want %v", result.Truncated, tt.truncated)
			}

			for _, want := range tt.wantHTML {
				if !strings.Contains(result.HTML, want) {
					t.Errorf("HTML missing %q\nGot:\n%s", want, result.HTML)
				}
			}
			for _, notWant := range tt.wantNot {
				if strings.Contains(result.HTML, notWant) {
					t.Errorf("HTML should not contain %q\nGot:\n%s", notWant, result.HTML)
				}
			}
		})
	}
}

func TestCleanHTMLInvalidInputStillParses(t *testing.T) {
	// html.Parse is lenient; even mangled input yields a tree
	result, err := cleanHTML("<div><p>unclosed", 1000)
	if err != nil {
		t.Fatalf("cleanHTML() error = %v", err)
	}
	if !strings.Contains(result.HTML, "unclosed") {
		t.Errorf("expected text to survive, got: %s", result.HTML)
	}
}

func TestCleanHTMLLengthBudget(t *testing.T) {
	// Markup counts against the budget too, so attribute-heavy documents
	// cannot blow past maxLength by orders of magnitude.
	var doc strings.Builder
	doc.WriteString("<html><body>")
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&doc, `<p data-testid="row-%d" class="cell cell-wide">x</p>`, i)
	}
	doc.WriteString("</body></html>")

	const maxLength = 300
	result, err := cleanHTML(doc.String(), maxLength)
	if err != nil {
		t.Fatalf("cleanHTML() error = %v", err)
	}
	if !result.Truncated {
		t.Error("expected truncation")
	}
	// Allow slack for one element's worth of markup written before the
	// budget check plus the ellipsis marker.
	if len(result.HTML) > maxLength+100 {
		t.Errorf("output length %d far exceeds budget %d", len(result.HTML), maxLength)
	}
}

func TestCleanHTMLTruncatesOnRuneBoundary(t *testing.T) {
	input := "<html><body><p>" + strings.Repeat("é", 300) + "</p></body></html>"
	result, err := cleanHTML(input, 100)
	if err != nil {
		t.Fatalf("cleanHTML() error = %v", err)
	}
	if !result.Truncated {
		t.Error("expected truncation")
	}
	if !utf8.ValidString(result.HTML) {
		t.Errorf("truncated output is not valid UTF-8: %q", result.HTML)
	}
}

func TestTruncateOnRune(t *testing.T) {
	if got := truncateOnRune("héllo", 2); got != "h" {
		t.Errorf("truncateOnRune(%q, 2) = %q, want %q", "héllo", got, "h")
	}
	if got := truncateOnRune("héllo", 3); got != "hé" {
		t.Errorf("truncateOnRune(%q, 3) = %q, want %q", "héllo", got, "hé")
	}
	if got := truncateOnRune("abc", 10); got != "abc" {
		t.Errorf("truncateOnRune(%q, 10) = %q, want %q", "abc", got, "abc")
	}
	if got := truncateOnRune("abc", 0); got != "" {
		t.Errorf("truncateOnRune(%q, 0) = %q, want empty", "abc", got)
	}
}

func TestRenderCleanedHTML(t *testing.T) {
	out := renderCleanedHTML(&CleanedHTML{
		HTML:        "<h1>Hello</h1>",
		Title:       "Greetings <3",
		Description: "A friendly page",
		Truncated:   true,
	}, 500)

	for _, want := range []string{
		"<!-- title: Greetings &lt;3 -->",
		"<!-- description: A friendly page -->",
		"<h1>Hello</h1>",
		"<!-- content truncated at 500 characters -->",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\nGot:\n%s", want, out)
		}
	}

	out = renderCleanedHTML(&CleanedHTML{HTML: "<p>bare</p>"}, 500)
	if out != "<p>bare</p>" {
		t.Errorf("expected bare markup without metadata comments, got: %s", out)
	}
}
