// Package richtext rewrites asset references inside journal HTML so they point at
// resolved, browser-loadable files.
package richtext

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"encounterport/internal/assets"
)

var (
	markdownImage  = regexp.MustCompile(`!\[([^\]]*)\]\(([^\)]+)\)`)
	styleURL       = regexp.MustCompile(`(?i)url\(([^\)]+)\)`)
	srcsetPart     = regexp.MustCompile(`^(\S+)(\s+.+)?$`)
	fallbackImgSrc = regexp.MustCompile(`(?i)(<img[^>]+src=["'])([^"']+)(["'])`)
	absoluteRef    = regexp.MustCompile(`(?i)^(data:|https?:)`)
	skipFallback   = regexp.MustCompile(`(?i)^(data:|https?:|/files/)`)
	quoteEdges     = regexp.MustCompile(`^['"]|['"]$`)
)

var lazyAttrs = []string{"src", "data-src", "data-lazy-src", "data-original"}

// parseFragment is replaced in tests to exercise the regex fallback.
var parseFragment = html.ParseFragment

type Rewriter struct {
	resolver *assets.Resolver
	urls     assets.URLBuilder
}

func New(resolver *assets.Resolver, urls assets.URLBuilder) *Rewriter {
	return &Rewriter{resolver: resolver, urls: urls}
}

// Rewrite returns content with image sources, srcset entries, and inline style
// url(...) values rewritten. Absolute and data URLs are left untouched.
func (w *Rewriter) Rewrite(content string) string {
	if content == "" {
		return ""
	}
	doc := markdownImage.ReplaceAllStringFunc(content, func(m string) string {
		sub := markdownImage.FindStringSubmatch(m)
		alt := strings.ReplaceAll(sub[1], `"`, "&quot;")
		return `<img alt="` + alt + `" src="` + strings.TrimSpace(sub[2]) + `">`
	})

	out, err := w.rewriteTree(doc)
	if err != nil {
		return w.rewriteFallback(doc)
	}
	return out
}

func (w *Rewriter) rewriteTree(doc string) (string, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := parseFragment(strings.NewReader(doc), body)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		w.walk(n)
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func (w *Rewriter) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		for i := range n.Attr {
			a := &n.Attr[i]
			switch {
			case n.DataAtom == atom.Img && isLazyAttr(a.Key):
				a.Val = w.fixURL(a.Val)
			case n.DataAtom == atom.Source && a.Key == "srcset":
				a.Val = w.fixSrcset(a.Val)
			case a.Key == "style" && strings.Contains(a.Val, "url("):
				a.Val = w.fixStyle(a.Val)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func isLazyAttr(key string) bool {
	for _, k := range lazyAttrs {
		if k == key {
			return true
		}
	}
	return false
}

func (w *Rewriter) fixURL(u string) string {
	src := strings.TrimSpace(u)
	if src == "" {
		return src
	}
	if absoluteRef.MatchString(src) {
		return src
	}
	if strings.HasPrefix(src, "/files/") || strings.HasPrefix(src, "files/") {
		return w.urls.FilesURL(src, true)
	}
	fixed, ok := w.resolver.Resolve(src, assets.KindPageImage, true)
	if !ok {
		return src
	}
	return w.urls.FilesURL(fixed, true)
}

func (w *Rewriter) fixSrcset(srcset string) string {
	var parts []string
	for _, p := range strings.Split(srcset, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		m := srcsetPart.FindStringSubmatch(p)
		if m == nil {
			parts = append(parts, p)
			continue
		}
		parts = append(parts, w.fixURL(m[1])+m[2])
	}
	return strings.Join(parts, ", ")
}

func (w *Rewriter) fixStyle(style string) string {
	return styleURL.ReplaceAllStringFunc(style, func(m string) string {
		inner := styleURL.FindStringSubmatch(m)[1]
		raw := quoteEdges.ReplaceAllString(strings.TrimSpace(inner), "")
		return "url('" + w.fixURL(raw) + "')"
	})
}

// rewriteFallback only handles <img src="..."> occurrences.
func (w *Rewriter) rewriteFallback(doc string) string {
	return fallbackImgSrc.ReplaceAllStringFunc(doc, func(m string) string {
		sub := fallbackImgSrc.FindStringSubmatch(m)
		src := sub[2]
		if skipFallback.MatchString(src) {
			return m
		}
		fixed, ok := w.resolver.Resolve(src, assets.KindPageImage, true)
		if !ok {
			return m
		}
		return sub[1] + w.urls.FilesURL(fixed, true) + sub[3]
	})
}
