package persistence

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/dfryer1193/foundation-api/content/domain"
)

var _ domain.Source = (*FileSource)(nil)

// FileSource implements domain.Source on top of a file system, usually an
// os.DirFS rooted at the content directory.
type FileSource struct {
	fsys fs.FS
}

func NewFileSource(fsys fs.FS) *FileSource {
	return &FileSource{fsys: fsys}
}

// Files reads every regular file directly inside dir. Directory entries are
// not recursed into and drafts (names starting with "_") are skipped.
// Symbolic links count as what they point to.
func (s *FileSource) Files(dir string) ([]domain.File, error) {
	entries, err := fs.ReadDir(s.fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	files := make([]domain.File, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || isDraft(entry.Name()) {
			continue
		}
		name := path.Join(dir, entry.Name())
		switch {
		case entry.Type().IsRegular():
		case entry.Type()&fs.ModeSymlink != 0:
			target, err := fs.Stat(s.fsys, name)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve link %s: %w", name, err)
			}
			if !target.Mode().IsRegular() {
				continue
			}
		default:
			continue
		}

		content, err := s.ReadFile(name)
		if err != nil {
			return nil, err
		}
		files = append(files, domain.File{Name: entry.Name(), Content: content})
	}

	return files, nil
}

func (s *FileSource) ReadFile(name string) ([]byte, error) {
	content, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", name, err)
	}
	return content, nil
}

func isDraft(name string) bool {
	return strings.HasPrefix(name, "_")
}

const fence = "---"

// ErrMissingFrontMatter is returned when a file does not open and close a
// front matter block with "---" lines.
var ErrMissingFrontMatter = errors.New("missing front matter fence")

// SplitFrontMatter separates the YAML block between the leading and trailing
// "---" lines from the body that follows.
func SplitFrontMatter(content []byte) (frontMatter []byte, body []byte, err error) {
	text := strings.TrimLeft(string(content), " \t\r\n")

	first, rest, ok := cutLine(text)
	if !ok || strings.TrimRight(first, " \t\r") != fence {
		return nil, nil, ErrMissingFrontMatter
	}

	var meta strings.Builder
	for rest != "" {
		var line string
		line, rest, _ = cutLine(rest)
		if strings.TrimRight(line, " \t\r") == fence {
			return []byte(meta.String()), []byte(rest), nil
		}
		meta.WriteString(line)
		meta.WriteByte('\n')
	}

	return nil, nil, ErrMissingFrontMatter
}

// cutLine splits off the first line. found is false only for empty input.
func cutLine(s string) (line string, rest string, found bool) {
	if s == "" {
		return "", "", false
	}
	line, rest, _ = strings.Cut(s, "\n")
	return line, rest, true
}
