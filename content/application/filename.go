package application

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/dfryer1193/foundation-api/content/domain"
	"github.com/dfryer1193/foundation-api/shared/lang"
)

// ParseFileName splits "<index>.<slug>.<lang>[.<ext>...]" into its header.
// The returned extension includes the leading dot and is empty when the name
// has only three fields.
func ParseFileName(name string) (domain.Header, string, error) {
	fields := strings.Split(name, ".")
	if len(fields) < 3 {
		return domain.Header{}, "", fmt.Errorf("file name %q must look like <index>.<slug>.<lang>.<ext>", name)
	}

	index, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return domain.Header{}, "", fmt.Errorf("invalid index in file name %q: %w", name, err)
	}

	if fields[1] == "" {
		return domain.Header{}, "", fmt.Errorf("missing slug in file name %q", name)
	}

	language, err := lang.Parse(fields[2])
	if err != nil {
		return domain.Header{}, "", fmt.Errorf("invalid language in file name %q: %w", name, err)
	}

	header := domain.Header{
		Slug:  fields[1],
		Lang:  language,
		Index: uint32(index),
	}

	return header, fileExtension(name, len(fields)), nil
}

// parseTextBlockName handles "<slug>.<lang>.<ext>".
func parseTextBlockName(name string) (string, lang.Language, error) {
	stem := strings.TrimSuffix(name, path.Ext(name))
	slug, code, ok := cutLast(stem, ".")
	if !ok || slug == "" {
		return "", "", fmt.Errorf("text block file name %q must look like <slug>.<lang>.md", name)
	}

	language, err := lang.Parse(code)
	if err != nil {
		return "", "", fmt.Errorf("invalid language in file name %q: %w", name, err)
	}

	return slug, language, nil
}

func fileExtension(name string, fields int) string {
	if fields <= 3 {
		return ""
	}
	return path.Ext(name)
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
