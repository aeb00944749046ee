package domain

import "github.com/dfryer1193/foundation-api/shared/lang"

// Entry is implemented by every item a content provider indexes.
type Entry interface {
	Identity() Header
	Tags() []string
}

// Header identifies a content item. It is derived from the file name.
type Header struct {
	Slug  string        `json:"slug"`
	Lang  lang.Language `json:"lang"`
	Index uint32        `json:"idx"`
}

func (h Header) Identity() Header { return h }

// PostMeta is the front matter of a news or blog post.
type PostMeta struct {
	Title       string   `yaml:"title"`
	Published   Date     `yaml:"published"`
	Modified    *Date    `yaml:"modified"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	Authors     []string `yaml:"authors"`
	Image       *string  `yaml:"image"`
}

// PostSummary is a post without its body, as returned by list endpoints.
type PostSummary struct {
	Header
	Title       string   `json:"title"`
	Published   Date     `json:"published"`
	Modified    *Date    `json:"modified"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Authors     []string `json:"authors"`
	Image       *string  `json:"image"`
}

func (p *PostSummary) Tags() []string { return p.Keywords }

// Post is a news or blog post with its rendered HTML body.
// Posts are immutable once loaded.
type Post struct {
	PostSummary
	Body string `json:"body"`
}

// NewPost builds a post from its file name header, front matter and body.
func NewPost(h Header, meta PostMeta, body string) *Post {
	return &Post{
		PostSummary: PostSummary{
			Header:      h,
			Title:       meta.Title,
			Published:   meta.Published,
			Modified:    meta.Modified,
			Description: meta.Description,
			Keywords:    meta.Keywords,
			Authors:     meta.Authors,
			Image:       meta.Image,
		},
		Body: body,
	}
}

// Summary drops the body.
func (p *Post) Summary() *PostSummary {
	s := p.PostSummary
	return &s
}
