package search

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Parse extracts results from a DuckDuckGo-style HTML page. Only the first
// ten ".result" blocks are considered; blocks missing a title, snippet or
// url element are skipped.
func Parse(r io.Reader) ([]Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var blocks []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if hasClass(n, "result") {
			blocks = append(blocks, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(blocks) > maxResults {
		blocks = blocks[:maxResults]
	}

	results := make([]Result, 0, len(blocks))
	for _, b := range blocks {
		title := findClass(b, "result__title")
		snippet := findClass(b, "result__snippet")
		link := findClass(b, "result__url")
		if title == nil || snippet == nil || link == nil {
			continue
		}
		results = append(results, Result{
			Title:   strings.TrimSpace(textContent(title)),
			Snippet: strings.TrimSpace(textContent(snippet)),
			Link:    attr(link, "href"),
		})
	}
	return results, nil
}

func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// findClass returns the first descendant of n carrying class.
func findClass(n *html.Node, class string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasClass(c, class) {
			return c
		}
		if found := findClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
