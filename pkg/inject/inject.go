// Package inject adds an entrypoint's assets to a server-rendered HTML page.
package inject

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/assets-writer/pkg/manifest"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// scriptBreak matches sequences that would end or re-mode a <script> element
// when they appear inside its text.
var scriptBreak = regexp.MustCompile(`(?i)</script|<!--`)

// escapeScript rewrites closing tags and comment openers so inline source
// stays inside its element. Both rewrites leave JavaScript string literals
// with the same value.
func escapeScript(src string) string {
	return scriptBreak.ReplaceAllStringFunc(src, func(m string) string {
		return m[:1] + `\` + m[1:]
	})
}

// Inject appends stylesheet links for the entrypoint's .css assets to <head>,
// then the inlined manifests and script tags for its .js assets to <body>.
func Inject(page []byte, m *manifest.AssetManifest, entry string) ([]byte, error) {
	ep, ok := m.Entrypoints.Get(entry)
	if !ok {
		return nil, fmt.Errorf("entrypoint %q not found in assets manifest", entry)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	head := doc.Find("head").First()
	body := doc.Find("body").First()

	var scripts []string
	for _, name := range ep.AssetNames() {
		switch {
		case strings.HasSuffix(name, ".css"):
			head.AppendNodes(element(atom.Link, "", html.Attribute{Key: "rel", Val: "stylesheet"}, html.Attribute{Key: "href", Val: name}))
		case strings.HasSuffix(name, ".js"):
			scripts = append(scripts, name)
		}
	}

	for _, inline := range m.Manifests {
		body.AppendNodes(element(atom.Script, escapeScript(inline.Source), html.Attribute{Key: "data-manifest", Val: inline.Name}))
	}
	for _, src := range scripts {
		body.AppendNodes(element(atom.Script, "", html.Attribute{Key: "src", Val: src}))
	}

	out, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}
	return []byte(out), nil
}

// element builds a node directly so inline script text is rendered raw
// instead of being parsed as markup.
func element(a atom.Atom, text string, attrs ...html.Attribute) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return n
}
