package web

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// hidden elements contribute no text.
var hidden = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
	atom.Iframe:   true,
}

// block elements start and end a line of text.
var block = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Tr: true, atom.Td: true, atom.Th: true,
	atom.Blockquote: true, atom.Pre: true, atom.Table: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true, atom.Nav: true,
}

// page is what one walk over an HTML document yields.
type page struct {
	title string
	text  string
	hrefs []string
}

// parsePage parses content into a document tree and walks it once,
// collecting the first title, the visible text with block elements on
// their own lines, and every anchor href in document order. The parser
// repairs malformed markup and supplies implied elements, so a missing
// </head> or </p> never hides the body.
func parsePage(content string) page {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return page{}
	}

	w := &pageWalker{}
	w.walk(doc, false)
	return page{
		title: strings.Join(strings.Fields(w.title), " "),
		text:  tidy(w.text.String()),
		hrefs: w.hrefs,
	}
}

type pageWalker struct {
	text     strings.Builder
	title    string
	hasTitle bool
	hrefs    []string
}

func (w *pageWalker) walk(n *html.Node, hide bool) {
	switch n.Type {
	case html.TextNode:
		if !hide {
			w.text.WriteString(n.Data)
		}
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if n.Namespace == "" {
			switch n.DataAtom {
			case atom.Title:
				if !w.hasTitle {
					w.hasTitle = true
					w.title = nodeText(n)
				}
				return
			case atom.A:
				for _, a := range n.Attr {
					if a.Namespace == "" && a.Key == "href" {
						w.hrefs = append(w.hrefs, a.Val)
					}
				}
			}
		}
		hide = hide || hidden[n.DataAtom]
	}

	brk := n.Type == html.ElementNode && !hide && block[n.DataAtom]
	if brk {
		w.text.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, hide)
	}
	if brk {
		w.text.WriteByte('\n')
	}
}

// nodeText concatenates the text nodes below n.
func nodeText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		} else {
			b.WriteString(nodeText(c))
		}
	}
	return b.String()
}

// tidy collapses runs of spaces within each line and drops blank lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// extractTitle returns the page <title>, or the last path segment of the URL.
func extractTitle(content, rawURL string) string {
	if title := parsePage(content).title; title != "" {
		return title
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if base := path.Base(u.Path); base != "/" && base != "." {
		return base
	}
	return u.Host
}

// stripHTML returns the readable text of content.
func stripHTML(content string) string {
	return parsePage(content).text
}

// extractLinks returns the absolute http(s) URLs of the anchors in content
// whose raw href contains contains. Fragments are dropped; duplicates keep
// their first position.
func extractLinks(content string, base *url.URL, contains string) []string {
	seen := make(map[string]bool)
	links := make([]string, 0)

	for _, href := range parsePage(content).hrefs {
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			continue
		}
		if contains != "" && !strings.Contains(href, contains) {
			continue
		}

		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			continue
		}
		abs.Fragment = ""

		if link := abs.String(); !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
	}
	return links
}
