package application

import (
	"fmt"
	"sync/atomic"

	"github.com/dfryer1193/foundation-api/content/domain"
)

// Library is every content collection loaded from one content root.
type Library struct {
	News       *PostProvider
	Blog       *PostProvider
	Events     *Events
	Team       *Team
	Documents  *Documents
	Mirrors    *Mirrors
	TextBlocks *TextBlocks
}

func LoadLibrary(source domain.Source, renderers *Renderers) (*Library, error) {
	news, err := LoadProvider(source, NewsKind, renderers)
	if err != nil {
		return nil, fmt.Errorf("failed to load news: %w", err)
	}

	blog, err := LoadProvider(source, BlogKind, renderers)
	if err != nil {
		return nil, fmt.Errorf("failed to load blog: %w", err)
	}

	events, err := LoadEvents(source, renderers)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	team, err := LoadTeam(source)
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}

	documents, err := LoadDocuments(source)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	mirrors, err := LoadMirrors(source)
	if err != nil {
		return nil, fmt.Errorf("failed to load mirrors: %w", err)
	}

	textBlocks, err := LoadTextBlocks(source, renderers)
	if err != nil {
		return nil, fmt.Errorf("failed to load text blocks: %w", err)
	}

	return &Library{
		News:       news,
		Blog:       blog,
		Events:     events,
		Team:       team,
		Documents:  documents,
		Mirrors:    mirrors,
		TextBlocks: textBlocks,
	}, nil
}

// Snapshot is a swappable reference to an immutable value. Readers that
// called Load keep using their copy after a Store.
type Snapshot[T any] struct {
	current atomic.Pointer[T]
}

func NewSnapshot[T any](initial *T) *Snapshot[T] {
	s := &Snapshot[T]{}
	s.current.Store(initial)
	return s
}

func (s *Snapshot[T]) Load() *T {
	return s.current.Load()
}

func (s *Snapshot[T]) Store(v *T) {
	s.current.Store(v)
}

// Reloader rebuilds the library and swaps it in. A failed reload keeps the
// previous library.
type Reloader struct {
	source    domain.Source
	renderers *Renderers
	snapshot  *Snapshot[Library]
}

func NewReloader(source domain.Source, renderers *Renderers, snapshot *Snapshot[Library]) *Reloader {
	return &Reloader{source: source, renderers: renderers, snapshot: snapshot}
}

func (r *Reloader) Reload() error {
	library, err := LoadLibrary(r.source, r.renderers)
	if err != nil {
		return err
	}
	r.snapshot.Store(library)
	return nil
}
