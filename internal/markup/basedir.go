package markup

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// BaseDir wraps src and resolves its relative asset references against
// dir. The browser loads content from a temporary location, so relative
// paths would otherwise break.
func BaseDir(src Source, dir string) Source {
	return Func(func(ctx context.Context) (string, error) {
		content, err := src.Markup(ctx)
		if err != nil {
			return "", err
		}
		return RewriteRelativePaths(content, dir)
	})
}

// RewriteRelativePaths turns relative img[src], a[href] and link[href]
// values into absolute file:// URLs under dir. References that escape
// dir, URLs, anchors and absolute paths are left alone. An empty dir
// returns content unchanged.
func RewriteRelativePaths(content, dir string) (string, error) {
	if dir == "" {
		return content, nil
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	root, fragment, err := parse(content)
	if err != nil {
		return "", err
	}
	rewrite(root, absDir)
	return render(root, fragment)
}

// parse reads a full document, or a fragment in body context.
func parse(content string) (*html.Node, bool, error) {
	head := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, true, nil
}

func render(root *html.Node, fragment bool) (string, error) {
	var b strings.Builder
	if !fragment {
		err := html.Render(&b, root)
		return b.String(), err
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func rewrite(n *html.Node, dir string) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img:
			rewriteAttr(n, "src", dir)
		case atom.A, atom.Link:
			rewriteAttr(n, "href", dir)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewrite(c, dir)
	}
}

func rewriteAttr(n *html.Node, key, dir string) {
	for i, a := range n.Attr {
		if a.Key != key || !isRelative(a.Val) {
			continue
		}
		abs := filepath.Join(dir, a.Val)
		if !within(abs, dir) {
			continue
		}
		n.Attr[i].Val = (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	}
}

func isRelative(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return false
	}
	for _, scheme := range []string{"http://", "https://", "file://", "data:", "mailto:"} {
		if strings.HasPrefix(ref, scheme) {
			return false
		}
	}
	return !filepath.IsAbs(ref)
}

// within reports whether path lies under dir.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
