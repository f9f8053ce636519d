package browser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// CleanedHTML holds cleaned HTML content with page metadata.
type CleanedHTML struct {
	HTML        string
	Title       string
	Description string
	Truncated   bool
}

// cleanHTML parses raw HTML and rebuilds it with scripts, styles, and other
// noise removed, keeping semantic structure and the attributes useful for
// selector targeting.
func cleanHTML(rawHTML string, maxLength int) (*CleanedHTML, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	c := &htmlCleaner{maxLength: maxLength}
	c.walk(doc, 0)

	return &CleanedHTML{
		HTML:        c.builder.String(),
		Title:       findTitle(doc),
		Description: findMetaDescription(doc),
		Truncated:   c.truncated,
	}, nil
}

// renderCleanedHTML formats a cleaned page for an MCP client: page metadata
// as leading comments, the cleaned markup, and a truncation marker when the
// content was cut at maxLength.
func renderCleanedHTML(cleaned *CleanedHTML, maxLength int) string {
	var b strings.Builder
	if cleaned.Title != "" {
		fmt.Fprintf(&b, "<!-- title: %s -->\n", html.EscapeString(cleaned.Title))
	}
	if cleaned.Description != "" {
		fmt.Fprintf(&b, "<!-- description: %s -->\n", html.EscapeString(cleaned.Description))
	}
	b.WriteString(cleaned.HTML)
	if cleaned.Truncated {
		fmt.Fprintf(&b, "\n<!-- content truncated at %d characters -->", maxLength)
	}
	return b.String()
}

// htmlCleaner accumulates cleaned output while walking the parse tree.
// The builder's own length is the budget: markup and text both count.
type htmlCleaner struct {
	builder   strings.Builder
	maxLength int
	truncated bool
}

func (c *htmlCleaner) walk(n *html.Node, depth int) {
	if c.truncated || c.builder.Len() >= c.maxLength {
		c.truncated = true
		return
	}

	switch n.Type {
	case html.CommentNode:
		return
	case html.TextNode:
		c.writeText(n.Data)
	case html.ElementNode:
		tagName := strings.ToLower(n.Data)
		if skippedTags[tagName] {
			return
		}
		c.writeElement(n, tagName, depth)
	default:
		c.walkChildren(n, depth)
	}
}

func (c *htmlCleaner) walkChildren(n *html.Node, depth int) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.walk(child, depth)
		if c.truncated {
			return
		}
	}
}

func (c *htmlCleaner) writeText(data string) {
	text := strings.TrimSpace(data)
	if text == "" {
		return
	}

	remaining := c.maxLength - c.builder.Len()
	if len(text) > remaining {
		c.builder.WriteString(truncateOnRune(text, remaining))
		c.builder.WriteString("...")
		c.truncated = true
		return
	}

	c.builder.WriteString(text)
}

// truncateOnRune shortens s to at most n bytes without splitting a rune.
func truncateOnRune(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (c *htmlCleaner) writeElement(n *html.Node, tagName string, depth int) {
	if depth > 0 && blockTags[tagName] {
		c.builder.WriteString("\n")
		c.builder.WriteString(strings.Repeat("  ", depth))
	}

	c.builder.WriteString("<")
	c.builder.WriteString(tagName)
	for _, attr := range n.Attr {
		if keepAttribute(tagName, attr.Key) {
			fmt.Fprintf(&c.builder, ` %s="%s"`, attr.Key, html.EscapeString(attr.Val))
		}
	}
	c.builder.WriteString(">")

	c.walkChildren(n, depth+1)

	if !voidTags[tagName] {
		if blockTags[tagName] {
			c.builder.WriteString("\n")
			c.builder.WriteString(strings.Repeat("  ", depth))
		}
		c.builder.WriteString("</")
		c.builder.WriteString(tagName)
		c.builder.WriteString(">")
	}
}

// skippedTags are removed entirely, children included.
var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"embed":    true,
	"object":   true,
	"svg":      true,
}

// blockTags get newline/indent formatting in the output.
var blockTags = map[string]bool{
	"div":        true,
	"p":          true,
	"section":    true,
	"article":    true,
	"header":     true,
	"footer":     true,
	"nav":        true,
	"main":       true,
	"aside":      true,
	"h1":         true,
	"h2":         true,
	"h3":         true,
	"h4":         true,
	"h5":         true,
	"h6":         true,
	"ul":         true,
	"ol":         true,
	"li":         true,
	"table":      true,
	"tr":         true,
	"td":         true,
	"th":         true,
	"form":       true,
	"fieldset":   true,
	"blockquote": true,
	"pre":        true,
}

// voidTags never take a closing tag.
var voidTags = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// globalAttributes are kept on every element.
var globalAttributes = map[string]bool{
	"id":               true,
	"class":            true,
	"role":             true,
	"aria-label":       true,
	"aria-describedby": true,
}

// keepAttribute reports whether an attribute is useful for analysis or
// selector targeting and should survive cleaning.
func keepAttribute(tagName, attrName string) bool {
	attrName = strings.ToLower(attrName)

	if globalAttributes[attrName] {
		return true
	}

	// data-* attributes are common JS/test targeting hooks
	if strings.HasPrefix(attrName, "data-") {
		return true
	}

	switch tagName {
	case "a":
		return attrName == "href" || attrName == "target"
	case "img":
		return attrName == "src" || attrName == "alt"
	case "input", "textarea", "select":
		return attrName == "name" || attrName == "type" || attrName == "placeholder" || attrName == "value"
	case "button":
		return attrName == "type" || attrName == "name"
	case "form":
		return attrName == "action" || attrName == "method"
	case "table":
		return attrName == "summary"
	}
	return false
}

// findTitle returns the page title from the parse tree.
func findTitle(doc *html.Node) string {
	node := findFirstElement(doc, "title")
	if node == nil || node.FirstChild == nil || node.FirstChild.Type != html.TextNode {
		return ""
	}
	return strings.TrimSpace(node.FirstChild.Data)
}

// findMetaDescription returns the meta description from the parse tree.
func findMetaDescription(doc *html.Node) string {
	var description string
	walkElements(doc, func(n *html.Node) bool {
		if n.Data != "meta" {
			return true
		}
		var isDescription bool
		var content string
		for _, attr := range n.Attr {
			if attr.Key == "name" && attr.Val == "description" {
				isDescription = true
			}
			if attr.Key == "content" {
				content = attr.Val
			}
		}
		if isDescription && content != "" {
			description = strings.TrimSpace(content)
			return false
		}
		return true
	})
	return description
}

// findFirstElement returns the first element with the given tag name.
func findFirstElement(root *html.Node, tagName string) *html.Node {
	var found *html.Node
	walkElements(root, func(n *html.Node) bool {
		if n.Data == tagName {
			found = n
			return false
		}
		return true
	})
	return found
}

// walkElements visits element nodes depth-first until fn returns false.
func walkElements(root *html.Node, fn func(*html.Node) bool) {
	var traverse func(*html.Node) bool
	traverse = func(n *html.Node) bool {
		if n.Type == html.ElementNode && !fn(n) {
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !traverse(c) {
				return false
			}
		}
		return true
	}
	traverse(root)
}
