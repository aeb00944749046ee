package application

import (
	"fmt"
	"path"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dfryer1193/foundation-api/content/domain"
	"github.com/dfryer1193/foundation-api/shared/lang"
)

const (
	teamFile      = "team.yaml"
	documentsFile = "documents.yaml"
	mirrorsFile   = "mirrors.yaml"
	textBlocksDir = "text-blocks"
)

func decodeYAML(source domain.Source, name string, out any) error {
	content, err := source.ReadFile(name)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(content, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// Team holds every member with all translations of their description.
type Team struct {
	members []domain.TeamMember[map[lang.Language]string]
}

func LoadTeam(source domain.Source) (*Team, error) {
	var members []domain.TeamMember[map[lang.Language]string]
	if err := decodeYAML(source, teamFile, &members); err != nil {
		return nil, err
	}
	return &Team{members: members}, nil
}

// Members returns the team with descriptions in language. A missing
// translation yields an empty description.
func (t *Team) Members(language lang.Language) []domain.TeamMember[string] {
	members := make([]domain.TeamMember[string], 0, len(t.members))
	for _, m := range t.members {
		members = append(members, domain.TeamMember[string]{
			Name:        m.Name,
			Nick:        m.Nick,
			Vorstand:    m.Vorstand,
			Teams:       m.Teams,
			RipeHandle:  m.RipeHandle,
			Description: m.Description[language],
			Image:       m.Image,
			Socials:     m.Socials,
		})
	}
	return members
}

type Documents struct {
	byLang map[lang.Language][]domain.Document
}

func LoadDocuments(source domain.Source) (*Documents, error) {
	var byLang map[lang.Language][]domain.Document
	if err := decodeYAML(source, documentsFile, &byLang); err != nil {
		return nil, err
	}
	return &Documents{byLang: byLang}, nil
}

// ForLang never returns nil so the list always encodes as a JSON array.
func (d *Documents) ForLang(language lang.Language) []domain.Document {
	docs, ok := d.byLang[language]
	if !ok || docs == nil {
		return []domain.Document{}
	}
	return docs
}

type Mirrors struct {
	mirrors []domain.Mirror
}

func LoadMirrors(source domain.Source) (*Mirrors, error) {
	var mirrors []domain.Mirror
	if err := decodeYAML(source, mirrorsFile, &mirrors); err != nil {
		return nil, err
	}

	sort.SliceStable(mirrors, func(i, j int) bool { return mirrors[i].Name < mirrors[j].Name })
	if mirrors == nil {
		mirrors = []domain.Mirror{}
	}

	return &Mirrors{mirrors: mirrors}, nil
}

// All returns the mirrors sorted by name.
func (m *Mirrors) All() []domain.Mirror {
	return m.mirrors
}

// bareImageSource matches src attributes naming a file without any directory.
var bareImageSource = regexp.MustCompile(`src="([^"/:]+)"`)

type TextBlocks struct {
	blocks []*domain.TextBlock
}

// LoadTextBlocks renders every "<slug>.<lang>.md" file below text-blocks.
// Images referenced by bare file name point at the text block assets.
func LoadTextBlocks(source domain.Source, renderers *Renderers) (*TextBlocks, error) {
	files, err := source.Files(textBlocksDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", textBlocksDir, err)
	}

	assetBase := renderers.AssetBase(textBlocksDir)
	markdown := NewMarkdownRenderer(assetBase)

	blocks := make([]*domain.TextBlock, 0, len(files))
	for _, file := range files {
		slug, language, err := parseTextBlockName(file.Name)
		if err != nil {
			return nil, err
		}

		body, err := markdown.Render(file.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", path.Join(textBlocksDir, file.Name), err)
		}
		body = bareImageSource.ReplaceAllString(body, `src="`+assetBase+`/$1"`)

		blocks = append(blocks, &domain.TextBlock{Slug: slug, Lang: language, Body: body})
	}

	return &TextBlocks{blocks: blocks}, nil
}

func (t *TextBlocks) Find(language lang.Language, slug string) (*domain.TextBlock, bool) {
	for _, block := range t.blocks {
		if block.Lang == language && block.Slug == slug {
			return block, true
		}
	}
	return nil, false
}
