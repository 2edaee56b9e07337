package engine

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const emptyDocument = "<!DOCTYPE html><html><head></head><body></body></html>"

// part is one object's markup with its settings.
type part struct {
	content string
	cfg     *config
}

type composeOptions struct {
	title     string
	grayscale bool
}

// compose merges parts into one HTML document and returns it with its
// title. Styles, stylesheet links and scripts from every head are kept;
// each body after the first starts on a new page.
func compose(parts []part, opts composeOptions) (doc, title string, err error) {
	out, err := html.Parse(strings.NewReader(emptyDocument))
	if err != nil {
		return "", "", err
	}
	head, body := find(out, atom.Head), find(out, atom.Body)

	title = opts.title
	multi := len(parts) > 1
	links := make(map[string]bool)
	var css strings.Builder

	for i, p := range parts {
		src, err := html.Parse(strings.NewReader(p.content))
		if err != nil {
			return "", "", fmt.Errorf("object %d: %w", i+1, err)
		}
		srcHead, srcBody := find(src, atom.Head), find(src, atom.Body)

		if title == "" {
			title = titleText(srcHead)
		}
		for _, n := range children(srcHead) {
			switch n.DataAtom {
			case atom.Style, atom.Script:
				move(head, n)
			case atom.Link:
				href := attr(n, "href")
				if href == "" || !links[href] {
					links[href] = true
					move(head, n)
				}
			case atom.Base, atom.Meta:
				if i == 0 && !isCharsetMeta(n) {
					move(head, n)
				}
			}
		}
		if href := p.cfg.text("web.userStyleSheet", ""); href != "" && !links[href] {
			links[href] = true
			head.AppendChild(element(atom.Link,
				html.Attribute{Key: "rel", Val: "stylesheet"},
				html.Attribute{Key: "href", Val: href}))
		}

		target, scope := body, ""
		if multi {
			section := element(atom.Section,
				html.Attribute{Key: "class", Val: "html2pdf-object"},
				html.Attribute{Key: "data-object", Val: strconv.Itoa(i + 1)})
			if i > 0 {
				section.Attr = append(section.Attr, html.Attribute{Key: "style", Val: "break-before: page;"})
			}
			body.AppendChild(section)
			target = section
			scope = fmt.Sprintf(`section[data-object="%d"] `, i+1)
		} else if srcBody != nil {
			body.Attr = srcBody.Attr
		}
		for _, n := range children(srcBody) {
			move(target, n)
		}

		if !p.cfg.flag("web.loadImages", true) {
			css.WriteString(scope + "img { visibility: hidden; }\n")
		}
	}

	if opts.grayscale {
		css.WriteString("html { filter: grayscale(100%); }\n")
	}
	if css.Len() > 0 {
		style := element(atom.Style)
		style.AppendChild(&html.Node{Type: html.TextNode, Data: css.String()})
		head.AppendChild(style)
	}

	if title != "" {
		t := element(atom.Title)
		t.AppendChild(&html.Node{Type: html.TextNode, Data: title})
		head.InsertBefore(t, head.FirstChild)
	}
	charset := "utf-8"
	if len(parts) > 0 {
		charset = parts[0].cfg.text("web.defaultEncoding", charset)
	}
	head.InsertBefore(element(atom.Meta, html.Attribute{Key: "charset", Val: charset}), head.FirstChild)

	var sb strings.Builder
	if err := html.Render(&sb, out); err != nil {
		return "", "", err
	}
	return sb.String(), title, nil
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

// find returns the first element with the given atom, depth first.
func find(n *html.Node, a atom.Atom) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, a); found != nil {
			return found
		}
	}
	return nil
}

// children snapshots n's children so they can be moved while iterating.
func children(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func move(dst, n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	dst.AppendChild(n)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func isCharsetMeta(n *html.Node) bool {
	if attr(n, "charset") != "" {
		return true
	}
	return strings.EqualFold(attr(n, "http-equiv"), "content-type")
}

func titleText(head *html.Node) string {
	t := find(head, atom.Title)
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return strings.TrimSpace(t.FirstChild.Data)
}
