package application

import (
	"fmt"
	"slices"
	"sort"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/dfryer1193/foundation-api/content/domain"
	"github.com/dfryer1193/foundation-api/content/persistence"
	"github.com/dfryer1193/foundation-api/shared/lang"
)

// Kind describes one collection of front matter files: where it lives and
// how its long and short items are built.
type Kind[M any, S, L domain.Entry] struct {
	// Section is the directory below the content root and the asset URL segment.
	Section string
	Long    func(h domain.Header, meta M, body string) L
	Short   func(L) S
}

// Provider serves a collection loaded from disk. It is immutable after load
// and safe for concurrent use.
type Provider[S, L domain.Entry] struct {
	long  []L
	short []S
}

type formatMeta struct {
	Format string `yaml:"format"`
}

// LoadProvider reads every file of the kind's section. Any malformed file
// fails the whole load.
func LoadProvider[M any, S, L domain.Entry](source domain.Source, kind Kind[M, S, L], renderers *Renderers) (*Provider[S, L], error) {
	files, err := source.Files(kind.Section)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind.Section, err)
	}

	renderer := renderers.Section(kind.Section)
	long := make([]L, 0, len(files))
	for _, file := range files {
		item, err := loadItem(file, kind, renderer)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s/%s: %w", kind.Section, file.Name, err)
		}
		long = append(long, item)
	}

	sort.SliceStable(long, func(i, j int) bool {
		return long[i].Identity().Index > long[j].Identity().Index
	})

	short := make([]S, len(long))
	for i, item := range long {
		short[i] = kind.Short(item)
	}

	log.Info().Str("section", kind.Section).Int("items", len(long)).Msg("Loaded content")

	return &Provider[S, L]{long: long, short: short}, nil
}

func loadItem[M any, S, L domain.Entry](file domain.File, kind Kind[M, S, L], renderer *SectionRenderer) (L, error) {
	var zero L

	header, ext, err := ParseFileName(file.Name)
	if err != nil {
		return zero, err
	}

	frontMatter, body, err := persistence.SplitFrontMatter(file.Content)
	if err != nil {
		return zero, err
	}

	var meta M
	if err := yaml.Unmarshal(frontMatter, &meta); err != nil {
		return zero, fmt.Errorf("failed to decode front matter: %w", err)
	}

	var declared formatMeta
	if err := yaml.Unmarshal(frontMatter, &declared); err != nil {
		return zero, fmt.Errorf("failed to decode front matter: %w", err)
	}

	format, err := FormatOf(declared.Format, ext)
	if err != nil {
		return zero, err
	}

	html, err := renderer.Render(format, body)
	if err != nil {
		return zero, err
	}

	return kind.Long(header, meta, html), nil
}

// ContentByLang returns the short items in language, newest first.
func (p *Provider[S, L]) ContentByLang(language lang.Language) []S {
	items := make([]S, 0)
	for _, item := range p.short {
		if item.Identity().Lang == language {
			items = append(items, item)
		}
	}
	return items
}

// ContentBySlug finds the long item identified by language and slug.
func (p *Provider[S, L]) ContentBySlug(language lang.Language, slug string) (L, bool) {
	for _, item := range p.long {
		h := item.Identity()
		if h.Lang == language && h.Slug == slug {
			return item, true
		}
	}

	var zero L
	return zero, false
}

// SearchByKeywords returns the items in language sharing at least one
// keyword with the query, followed by the remaining items whose keyword
// overlap with the query equals the number of query keywords. An empty query
// therefore matches every item.
func (p *Provider[S, L]) SearchByKeywords(language lang.Language, keywords []string) []S {
	candidates := p.ContentByLang(language)

	query := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		query[k] = struct{}{}
	}

	matched := make([]bool, len(candidates))
	result := make([]S, 0)
	for i, item := range candidates {
		if overlap(item.Tags(), query) > 0 {
			matched[i] = true
			result = append(result, item)
		}
	}

	for i, item := range candidates {
		if !matched[i] && overlap(item.Tags(), query) == len(keywords) {
			result = append(result, item)
		}
	}

	return result
}

// overlap counts the distinct tags present in query.
func overlap(tags []string, query map[string]struct{}) int {
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if _, ok := query[tag]; ok {
			seen[tag] = struct{}{}
		}
	}
	return len(seen)
}

// Keywords returns every keyword used in any language, sorted.
func (p *Provider[S, L]) Keywords() []string {
	set := make(map[string]struct{})
	for _, item := range p.short {
		for _, tag := range item.Tags() {
			set[tag] = struct{}{}
		}
	}

	keywords := make([]string, 0, len(set))
	for k := range set {
		keywords = append(keywords, k)
	}
	slices.Sort(keywords)
	return keywords
}

// Len is the number of loaded items across all languages.
func (p *Provider[S, L]) Len() int {
	return len(p.long)
}
