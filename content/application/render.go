package application

import (
	"fmt"
	"strings"
)

// Renderer converts a content body to HTML.
type Renderer interface {
	Render(source []byte) (string, error)
}

type Format string

const (
	Markdown         Format = "markdown"
	ReStructuredText Format = "rst"
	AsciiDoc         Format = "asciidoc"
)

// ParseFormat accepts the values allowed in the front matter "format" field.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return Markdown, nil
	case "rst", "restructuredtext":
		return ReStructuredText, nil
	case "asciidoc", "adoc":
		return AsciiDoc, nil
	default:
		return "", fmt.Errorf("unknown body format %q", s)
	}
}

// FormatOf picks the body format of a file. An explicit front matter value
// wins over the extension; unknown extensions are treated as Markdown.
func FormatOf(declared, ext string) (Format, error) {
	if declared != "" {
		return ParseFormat(declared)
	}

	switch strings.ToLower(ext) {
	case ".rst":
		return ReStructuredText, nil
	case ".adoc", ".asciidoc":
		return AsciiDoc, nil
	default:
		return Markdown, nil
	}
}

// Renderers creates the renderers for a content section. Relative image
// references in a section resolve to <baseURL>/<section>/assets.
type Renderers struct {
	baseURL string
}

func NewRenderers(baseURL string) *Renderers {
	return &Renderers{baseURL: strings.TrimRight(baseURL, "/")}
}

// AssetBase is the public URL prefix of a section's assets.
func (r *Renderers) AssetBase(section string) string {
	return r.baseURL + "/" + section + "/assets"
}

// Section returns the renderers bound to one section.
func (r *Renderers) Section(section string) *SectionRenderer {
	base := r.AssetBase(section)
	return &SectionRenderer{
		renderers: map[Format]Renderer{
			Markdown:         NewMarkdownRenderer(base),
			ReStructuredText: NewRSTRenderer(base),
			AsciiDoc:         NewAsciiDocRenderer(base),
		},
	}
}

type SectionRenderer struct {
	renderers map[Format]Renderer
}

func (s *SectionRenderer) Render(format Format, source []byte) (string, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return "", fmt.Errorf("no renderer for format %q", format)
	}
	return renderer.Render(source)
}
