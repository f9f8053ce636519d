package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// defaultOutlineSourceLength bounds how much HTML the outline scans.
const defaultOutlineSourceLength = 50000

// buildPageOutline produces a structural summary of a page: landmarks,
// headings, forms with field selectors, and interactive elements. It gives
// an MCP client enough targeting information to act without shipping the
// whole DOM across the wire.
func buildPageOutline(rawHTML string, maxLength int) (string, error) {
	if len(rawHTML) > maxLength {
		rawHTML = truncateOnRune(rawHTML, maxLength)
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	o := collectOutline(doc)

	var b strings.Builder

	if o.title != "" {
		fmt.Fprintf(&b, "Title: %s\n", o.title)
	}
	if o.description != "" {
		fmt.Fprintf(&b, "Description: %s\n", o.description)
	}

	b.WriteString("\nLANDMARKS:\n")
	if len(o.landmarks) == 0 {
		b.WriteString("- none found\n")
	}
	for _, l := range o.landmarks {
		fmt.Fprintf(&b, "- %s\n", l)
	}

	b.WriteString("\nHEADINGS:\n")
	if len(o.headings) == 0 {
		b.WriteString("- none found\n")
	}
	for _, h := range o.headings {
		fmt.Fprintf(&b, "- %s\n", h)
	}

	b.WriteString("\nFORMS:\n")
	if len(o.forms) == 0 {
		b.WriteString("- none found\n")
	}
	for i, f := range o.forms {
		fmt.Fprintf(&b, "- form %d (%s)\n", i+1, f.summary)
		for _, field := range f.fields {
			fmt.Fprintf(&b, "  - %s\n", field)
		}
	}

	b.WriteString("\nINTERACTIVE ELEMENTS:\n")
	if len(o.interactive) == 0 {
		b.WriteString("- none found\n")
	}
	for _, e := range o.interactive {
		fmt.Fprintf(&b, "- %s\n", e)
	}

	fmt.Fprintf(&b, "\nLINKS: %d total\n", o.linkCount)

	return b.String(), nil
}

type outlineForm struct {
	summary string
	fields  []string
}

type outline struct {
	title       string
	description string
	landmarks   []string
	headings    []string
	forms       []outlineForm
	interactive []string
	linkCount   int
}

// outlineLimit caps list lengths so the outline stays readable.
const outlineLimit = 25

func collectOutline(doc *html.Node) *outline {
	o := &outline{
		title:       findTitle(doc),
		description: findMetaDescription(doc),
	}

	var currentForm *outlineForm

	var traverse func(n *html.Node, inForm bool)
	traverse = func(n *html.Node, inForm bool) {
		if n.Type == html.ElementNode {
			tag := strings.ToLower(n.Data)
			switch tag {
			case "header", "nav", "main", "aside", "footer", "section", "article":
				if len(o.landmarks) < outlineLimit {
					o.landmarks = append(o.landmarks, describeElement(n, tag))
				}
			case "h1", "h2", "h3", "h4", "h5", "h6":
				text := strings.TrimSpace(nodeText(n))
				if text != "" && len(o.headings) < outlineLimit {
					o.headings = append(o.headings, fmt.Sprintf("%s: %s", tag, text))
				}
			case "form":
				form := outlineForm{summary: formSummary(n)}
				o.forms = append(o.forms, form)
				currentForm = &o.forms[len(o.forms)-1]
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					traverse(c, true)
				}
				currentForm = nil
				return
			case "input", "textarea", "select":
				desc := describeElement(n, tag)
				if inForm && currentForm != nil {
					currentForm.fields = append(currentForm.fields, desc)
				} else if len(o.interactive) < outlineLimit {
					o.interactive = append(o.interactive, desc)
				}
			case "button":
				desc := describeElement(n, tag)
				if text := strings.TrimSpace(nodeText(n)); text != "" {
					desc = fmt.Sprintf("%s %q", desc, text)
				}
				if inForm && currentForm != nil {
					currentForm.fields = append(currentForm.fields, desc)
				} else if len(o.interactive) < outlineLimit {
					o.interactive = append(o.interactive, desc)
				}
			case "a":
				o.linkCount++
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c, inForm)
		}
	}
	traverse(doc, false)

	return o
}

// describeElement renders an element as "tag (selector: ...)" using the
// most specific selector available.
func describeElement(n *html.Node, tag string) string {
	selector := suggestSelector(n, tag)
	if selector == tag {
		return tag
	}
	return fmt.Sprintf("%s (selector: %s)", tag, selector)
}

// suggestSelector builds a CSS selector for an element, preferring id, then
// name, then the first class.
func suggestSelector(n *html.Node, tag string) string {
	var id, name, class, typ string
	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "id":
			id = attr.Val
		case "name":
			name = attr.Val
		case "class":
			if fields := strings.Fields(attr.Val); len(fields) > 0 {
				class = fields[0]
			}
		case "type":
			typ = attr.Val
		}
	}

	switch {
	case id != "":
		return "#" + id
	case name != "":
		return fmt.Sprintf("%s[name=%q]", tag, name)
	case class != "":
		return fmt.Sprintf("%s.%s", tag, class)
	case typ != "":
		return fmt.Sprintf("%s[type=%q]", tag, typ)
	default:
		return tag
	}
}

// formSummary renders a form's action and method.
func formSummary(n *html.Node) string {
	action := "(no action)"
	method := "get"
	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "action":
			if attr.Val != "" {
				action = attr.Val
			}
		case "method":
			if attr.Val != "" {
				method = strings.ToLower(attr.Val)
			}
		}
	}
	selector := suggestSelector(n, "form")
	if selector != "form" {
		return fmt.Sprintf("%s %s, selector: %s", strings.ToUpper(method), action, selector)
	}
	return fmt.Sprintf("%s %s", strings.ToUpper(method), action)
}

// nodeText concatenates the text content beneath a node.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
