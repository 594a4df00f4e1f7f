package harness

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// VisibleText parses an HTML document and returns its readable text, one
// block per line. Scripts, styles and other non-rendered elements are
// dropped.
func VisibleText(rawHTML string) (string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var lines []string
	var current strings.Builder
	flush := func() {
		if line := strings.TrimSpace(current.String()); line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.CommentNode {
			return
		}
		if n.Type == html.ElementNode && isSkippedElement(n.Data) {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				if current.Len() > 0 {
					current.WriteString(" ")
				}
				current.WriteString(text)
			}
			return
		}

		block := n.Type == html.ElementNode && isBlockElement(n.Data)
		if block {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			flush()
		}
	}
	walk(doc)
	flush()

	return strings.Join(lines, "\n"), nil
}

// ElementText returns the visible text of the element with the given id.
func ElementText(rawHTML, id string) (string, bool, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", false, fmt.Errorf("failed to parse HTML: %w", err)
	}

	node := findByID(doc, id)
	if node == nil {
		return "", false, nil
	}

	var b strings.Builder
	if err := html.Render(&b, node); err != nil {
		return "", false, fmt.Errorf("failed to render element: %w", err)
	}
	text, err := VisibleText(b.String())
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key == "id" && attr.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func isSkippedElement(tag string) bool {
	switch strings.ToLower(tag) {
	case "script", "style", "noscript", "template", "svg", "head":
		return true
	}
	return false
}

func isBlockElement(tag string) bool {
	switch strings.ToLower(tag) {
	case "p", "div", "section", "article", "header", "footer", "main", "nav",
		"h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "table", "tr",
		"form", "label", "button", "br", "hr", "pre", "blockquote":
		return true
	}
	return false
}
