package application

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bytesparadise/libasciidoc"
	"github.com/bytesparadise/libasciidoc/pkg/configuration"
)

type asciidocRenderer struct {
	assetBase string
}

// NewAsciiDocRenderer renders AsciiDoc bodies without the surrounding HTML
// document. Relative image targets resolve against assetBase.
func NewAsciiDocRenderer(assetBase string) Renderer {
	return &asciidocRenderer{assetBase: assetBase}
}

func (r *asciidocRenderer) Render(source []byte) (string, error) {
	config := configuration.NewConfiguration(
		configuration.WithHeaderFooter(false),
		configuration.WithAttributes(map[string]interface{}{
			"imagesdir": r.assetBase,
		}),
	)

	var buf bytes.Buffer
	if _, err := libasciidoc.Convert(bytes.NewReader(source), &buf, config); err != nil {
		return "", fmt.Errorf("failed to convert asciidoc to HTML: %w", err)
	}

	return strings.TrimSpace(buf.String()), nil
}
