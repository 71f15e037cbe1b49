package ingest

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// blockTags end a line when extracting text, so sentence-ending rules
// that look for newlines still see paragraph boundaries.
var blockTags = map[string]struct{}{
	"p": {}, "div": {}, "br": {}, "li": {}, "ul": {}, "ol": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"blockquote": {}, "pre": {}, "tr": {},
}

// Format says how submitted entry text is encoded
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// ParseFormat accepts text or html (empty means text)
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatHTML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text or html)", s)
	}
}

// Plain returns the text to analyze. Only HTML input is parsed; plain
// text is kept as written, including any '<'.
func (f Format) Plain(s string) string {
	if f == FormatHTML {
		return PlainText(s)
	}
	return strings.TrimSpace(s)
}

// PlainText returns the visible text of an HTML fragment
func PlainText(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}

	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
		if n.Type == html.ElementNode {
			if _, ok := blockTags[n.Data]; ok {
				buf.WriteString("\n")
			}
		}
	}
	extract(doc)

	lines := strings.Split(buf.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
