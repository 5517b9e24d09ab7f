// Package htmllang trims multilingual CMS fragments down to one language.
//
// Room descriptions arrive with one block per language, each tagged with a
// lang attribute (<p lang="en">…</p><p lang="kh">…</p>). Blocks without a
// lang attribute are shared and always kept.
package htmllang

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// KeepOnly removes every element whose lang attribute names another language
// and returns the result wrapped in a single <div>.
func KeepOnly(lang, fragment string) (string, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return "", fmt.Errorf("htmllang: language is empty")
	}

	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), container)
	if err != nil {
		return "", fmt.Errorf("htmllang: parse fragment: %w", err)
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	prune(container, lang)

	var buf bytes.Buffer
	if err := html.Render(&buf, container); err != nil {
		return "", fmt.Errorf("htmllang: render: %w", err)
	}
	return buf.String(), nil
}

func prune(n *html.Node, lang string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && !matches(c, lang) {
			n.RemoveChild(c)
		} else {
			prune(c, lang)
		}
		c = next
	}
}

// matches reports whether an element may stay: no lang attribute, or a lang
// whose primary subtag equals lang ("en-GB" matches "en").
func matches(n *html.Node, lang string) bool {
	for _, a := range n.Attr {
		if strings.ToLower(a.Key) != "lang" {
			continue
		}
		v := strings.ToLower(strings.TrimSpace(a.Val))
		if v == "" {
			return true
		}
		primary := strings.SplitN(v, "-", 2)[0]
		return primary == lang
	}
	return true
}
