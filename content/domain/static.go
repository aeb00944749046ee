package domain

import "github.com/dfryer1193/foundation-api/shared/lang"

// TextBlock is a rendered HTML snippet embedded by the website.
type TextBlock struct {
	Slug string        `json:"slug"`
	Lang lang.Language `json:"lang"`
	Body string        `json:"body"`
}

type WorkingGroup string

const (
	Technical          WorkingGroup = "Technical"
	Network            WorkingGroup = "Network"
	Service            WorkingGroup = "Service"
	DevOps             WorkingGroup = "DevOps"
	Events             WorkingGroup = "Events"
	FinancesAndLaw     WorkingGroup = "FinancesAndLaw"
	ClientsAndSponsors WorkingGroup = "ClientsAndSponsors"
	PublicRelations    WorkingGroup = "PublicRelations"
)

type Socials struct {
	Github   *string `yaml:"github" json:"github"`
	Email    *string `yaml:"email" json:"email"`
	Mastodon *string `yaml:"mastodon" json:"mastodon"`
	Website  *string `yaml:"website" json:"website"`
	Linkedin *string `yaml:"linkedin" json:"linkedin"`
}

// TeamMember is parameterized over the description so the same shape holds
// every translation on disk and a single one in responses.
type TeamMember[D any] struct {
	Name        string         `yaml:"name" json:"name"`
	Nick        *string        `yaml:"nick" json:"nick"`
	Vorstand    bool           `yaml:"vorstand" json:"vorstand"`
	Teams       []WorkingGroup `yaml:"teams" json:"teams"`
	RipeHandle  *string        `yaml:"ripe_handle" json:"ripe_handle"`
	Description D              `yaml:"description" json:"description"`
	Image       string         `yaml:"image" json:"image"`
	Socials     Socials        `yaml:"socials" json:"socials"`
}

// Document describes a downloadable file under /documents/download.
type Document struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Filename    string `yaml:"filename" json:"filename"`
}

type Mirror struct {
	Name     string `yaml:"name" json:"name"`
	URL      string `yaml:"url" json:"url"`
	Operator string `yaml:"operator" json:"operator"`
}
