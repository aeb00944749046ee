package application

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// assetLinkTransformer points relative image sources at the section's asset
// directory.
type assetLinkTransformer struct {
	assetBase string
}

func (t *assetLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}

		dest := string(img.Destination)
		if isRelativeLink(dest) {
			img.Destination = []byte(assetURL(t.assetBase, dest))
		}

		return ast.WalkContinue, nil
	})
}

// isRelativeLink reports whether dest is relative to the document itself.
// Site-absolute paths and anything with a scheme are left alone.
func isRelativeLink(dest string) bool {
	if dest == "" || strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "#") {
		return false
	}

	if strings.HasPrefix(dest, "./") || strings.HasPrefix(dest, "../") {
		return true
	}

	if strings.Contains(dest, ":") {
		return false
	}

	return true
}

// assetURL keeps subdirectories of dest below assetBase. Paths climbing out
// of the document's directory keep only their file name.
func assetURL(assetBase, dest string) string {
	rel := path.Clean(strings.TrimPrefix(dest, "./"))
	if rel == ".." || strings.HasPrefix(rel, "../") {
		rel = path.Base(rel)
	}
	return assetBase + "/" + rel
}

type markdownRenderer struct {
	renderer goldmark.Markdown
}

// NewMarkdownRenderer renders GitHub flavoured Markdown. Relative image
// sources are rewritten to assetBase.
func NewMarkdownRenderer(assetBase string) Renderer {
	renderer := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&assetLinkTransformer{assetBase: assetBase}, 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	return &markdownRenderer{
		renderer: renderer,
	}
}

func (r *markdownRenderer) Render(source []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.renderer.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	return buf.String(), nil
}
