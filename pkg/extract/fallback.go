package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// scanMoveClasses is the generic last-resort strategy: walk the whole tree
// and collect the text of every element whose class attribute contains the
// substring "move". Deliberately loose; it runs only after every selector
// strategy came up empty.
func scanMoveClasses(rawHTML string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	var tokens []string
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && classContains(n, "move") {
			if t := strings.TrimSpace(textContent(n)); t != "" {
				tokens = append(tokens, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)
	return tokens, nil
}

func classContains(n *html.Node, substr string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" && strings.Contains(attr.Val, substr) {
			return true
		}
	}
	return false
}

// textContent concatenates all text nodes beneath n.
func textContent(n *html.Node) string {
	var b strings.Builder
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}
