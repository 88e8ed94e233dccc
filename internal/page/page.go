// Package page normalizes fetched HTML into visible text and performs the
// verbatim identifier check that gates every extraction.
package page

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// skipElements are removed entirely before text extraction.
var skipElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
}

// blockElements force a line break around their content so price widgets
// stay on their own line, mirroring rendered innerText.
var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true,
	atom.Blockquote: true, atom.Br: true, atom.Dd: true, atom.Div: true,
	atom.Dl: true, atom.Dt: true, atom.Footer: true, atom.Form: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Header: true, atom.Hr: true,
	atom.Li: true, atom.Main: true, atom.Nav: true, atom.Ol: true,
	atom.P: true, atom.Section: true, atom.Table: true, atom.Td: true,
	atom.Th: true, atom.Tr: true, atom.Ul: true,
}

// Text extracts visible text from HTML with scripts, styles and noscript
// content stripped. Block-level boundaries become line breaks; lines are
// trimmed and blank lines dropped.
func Text(src string) string {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipElements[n.DataAtom] {
			return
		}
		block := n.Type == html.ElementNode && blockElements[n.DataAtom]
		if block {
			b.WriteByte('\n')
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte('\n')
		}
	}
	walk(root)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}

// Flatten collapses the normalized text of an HTML document to a single
// whitespace-separated line, the form used for exact substring matching.
func Flatten(src string) string {
	return strings.Join(strings.Fields(Text(src)), " ")
}

// JSONLDBlocks returns the raw contents of embedded
// script[type="application/ld+json"] product-metadata blocks.
func JSONLDBlocks(src string) []string {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil
	}

	var blocks []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Script {
			for _, attr := range n.Attr {
				if attr.Key == "type" && strings.EqualFold(attr.Val, "application/ld+json") {
					if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
						blocks = append(blocks, n.FirstChild.Data)
					}
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return blocks
}

// Present reports whether the identifier appears verbatim in the visible
// text, the normalized document text, or an embedded JSON-LD block. Exact
// substring match only; no fuzzy or partial-digit matching.
func Present(ean, src, visibleText string) bool {
	if ean == "" {
		return false
	}
	if strings.Contains(visibleText, ean) {
		return true
	}
	if strings.Contains(Flatten(src), ean) {
		return true
	}
	for _, block := range JSONLDBlocks(src) {
		if strings.Contains(block, ean) {
			return true
		}
	}
	return false
}
