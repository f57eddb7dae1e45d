package view

import (
	"strings"

	"golang.org/x/net/html"
)

var blockTags = map[string]bool{
	"div": true, "p": true, "h1": true, "h3": true, "h4": true, "h5": true,
	"ul": true, "li": true, "section": true, "form": true,
}

// PlainText renders n as indented text lines for terminals. Buttons are
// omitted and list items are bulleted.
func PlainText(n *html.Node) string {
	var lines []string
	var current strings.Builder
	flush := func(prefix string) {
		line := strings.Join(strings.Fields(current.String()), " ")
		if line != "" {
			lines = append(lines, prefix+line)
		}
		current.Reset()
	}

	var walk func(n *html.Node, prefix string)
	walk = func(n *html.Node, prefix string) {
		switch {
		case n.Type == html.TextNode:
			current.WriteString(n.Data)
			return
		case n.Type == html.ElementNode && n.Data == "button":
			return
		case n.Type == html.ElementNode && n.Data == "li":
			flush(prefix)
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c, prefix)
			}
			flush(prefix + "  - ")
			return
		}

		block := n.Type == html.ElementNode && blockTags[n.Data]
		if block {
			flush(prefix)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, prefix)
		}
		if block {
			flush(prefix)
		}
	}

	if n != nil {
		walk(n, "")
		flush("")
	}
	return strings.Join(lines, "\n")
}
