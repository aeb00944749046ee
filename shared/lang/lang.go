package lang

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Language is a two-letter ISO 639-1 code. Only the values below are valid.
type Language string

const (
	English Language = "en"
	German  Language = "de"
)

// All lists every supported language.
var All = []Language{English, German}

// Parse validates a language code.
func Parse(code string) (Language, error) {
	switch Language(code) {
	case English, German:
		return Language(code), nil
	default:
		return "", fmt.Errorf("invalid language code %q", code)
	}
}

func (l Language) String() string {
	return string(l)
}

func (l Language) MarshalText() ([]byte, error) {
	return []byte(l), nil
}

func (l *Language) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// UnmarshalYAML lets languages be used as map keys in YAML documents.
func (l *Language) UnmarshalYAML(value *yaml.Node) error {
	return l.UnmarshalText([]byte(value.Value))
}
