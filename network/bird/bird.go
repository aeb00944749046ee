// Package bird serves the routing daemon status page that an external job
// renders to disk.
package bird

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dfryer1193/foundation-api/shared/cache"
)

const DefaultTTL = 10 * time.Minute

var errNoBody = errors.New("page has no body element")

// Updater reads the status page and keeps the inner HTML of its body.
type Updater struct {
	path string
}

func NewUpdater(path string) *Updater {
	return &Updater{path: path}
}

func (u *Updater) Update(ctx context.Context) (string, error) {
	content, err := os.ReadFile(u.path)
	if err != nil {
		return "", fmt.Errorf("failed to read bird page: %w", err)
	}
	return BodyHTML(content)
}

// BodyHTML returns the serialized children of the document's body element.
func BodyHTML(page []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse bird page: %w", err)
	}

	body := findBody(doc)
	if body == nil {
		return "", errNoBody
	}

	var sb strings.Builder
	for child := body.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&sb, child); err != nil {
			return "", fmt.Errorf("failed to render bird page: %w", err)
		}
	}
	return sb.String(), nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if body := findBody(child); body != nil {
			return body
		}
	}
	return nil
}

type Service struct {
	cache *cache.Cache[string]
}

func NewService(updater *Updater, opts ...cache.Option) *Service {
	opts = append([]cache.Option{cache.WithName("bird"), cache.WithTTL(DefaultTTL)}, opts...)
	return &Service{cache: cache.New[string](updater, opts...)}
}

func (s *Service) Content(ctx context.Context) (string, error) {
	return s.cache.Get(ctx)
}
