package domain

// File is a single content file read from a Source.
type File struct {
	// Name is the base name, e.g. "3.my-slug.en.md".
	Name    string
	Content []byte
}

// Source gives the application access to content files.
// This allows the application to be decoupled from where the files live.
type Source interface {
	// Files returns the regular files directly inside dir, ordered by name.
	// Subdirectories and names starting with "_" are skipped.
	Files(dir string) ([]File, error)
	// ReadFile returns the contents of a single file.
	ReadFile(path string) ([]byte, error)
}
