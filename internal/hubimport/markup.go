package hubimport

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// rewriteMarkup turns Hub editor constructs that have no HTML equivalent
// into plain HTML: tab menus become headed sections and icon font spans
// become unicode glyphs.
func rewriteMarkup(src string) (string, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

	nodes, err := html.ParseFragment(strings.NewReader(src), body)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}

	rewriteChildren(body)

	var b strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	return b.String(), nil
}

func rewriteChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling

		switch {
		case isMetacode(c, "tabmenu"):
			expandTabMenu(c)
		case c.Type == html.ElementNode && c.DataAtom == atom.Span:
			if name, ok := iconName(attr(c, "class")); ok {
				if glyph := iconGlyph(name); glyph != "" {
					n.InsertBefore(&html.Node{Type: html.TextNode, Data: glyph}, c)
				}
				n.RemoveChild(c)
			} else {
				rewriteChildren(c)
			}
		default:
			rewriteChildren(c)
		}

		c = next
	}
}

// expandTabMenu replaces a tab menu with an <h3> per tab followed by the
// tab body, in place.
func expandTabMenu(menu *html.Node) {
	parent := menu.Parent

	for tab := menu.FirstChild; tab != nil; tab = tab.NextSibling {
		if !isMetacode(tab, "tab") {
			continue
		}
		rewriteChildren(tab)

		if title := tabTitle(attr(tab, "data-attributes")); title != "" {
			h := &html.Node{Type: html.ElementNode, Data: "h3", DataAtom: atom.H3}
			h.AppendChild(&html.Node{Type: html.TextNode, Data: title})
			parent.InsertBefore(h, menu)
		}
		for c := tab.FirstChild; c != nil; {
			next := c.NextSibling
			tab.RemoveChild(c)
			parent.InsertBefore(c, menu)
			c = next
		}
	}

	parent.RemoveChild(menu)
}

// tabTitle decodes the base64 JSON argument list of a tab; the first
// argument is the title.
func tabTitle(encoded string) string {
	if encoded == "" {
		return ""
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return ""
		}
	}

	var args []interface{}
	if err := json.Unmarshal(raw, &args); err != nil || len(args) == 0 {
		return ""
	}
	title, _ := args[0].(string)
	return strings.TrimSpace(title)
}

func isMetacode(n *html.Node, name string) bool {
	return n.Type == html.ElementNode && n.Data == "woltlab-metacode" && attr(n, "data-name") == name
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
