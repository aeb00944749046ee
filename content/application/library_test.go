package application

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/dfryer1193/foundation-api/content/persistence"
	"github.com/dfryer1193/foundation-api/shared/lang"
)

func contentRoot() fstest.MapFS {
	return fstest.MapFS{
		"news/1.hello.en.md":   newsFile("Hello", "2024-01-01", "intro"),
		"blog":                 {Mode: fs.ModeDir},
		"events":               {Mode: fs.ModeDir},
		"text-blocks/hi.en.md": {Data: []byte("Hi")},
		"team.yaml":            {Data: []byte("[]")},
		"documents.yaml":       {Data: []byte("{}")},
		"mirrors.yaml":         {Data: []byte("[]")},
	}
}

func TestLoadLibrary(t *testing.T) {
	library, err := LoadLibrary(persistence.NewFileSource(contentRoot()), NewRenderers("https://api.example.org"))
	if err != nil {
		t.Fatalf("LoadLibrary() unexpected error: %v", err)
	}

	if library.News.Len() != 1 {
		t.Errorf("News.Len() = %d, want 1", library.News.Len())
	}
	if library.Blog.Len() != 0 {
		t.Errorf("Blog.Len() = %d, want 0", library.Blog.Len())
	}
	if _, ok := library.TextBlocks.Find(lang.English, "hi"); !ok {
		t.Error("TextBlocks.Find(en, hi) not found")
	}
	if len(library.Mirrors.All()) != 0 {
		t.Errorf("Mirrors.All() = %v, want empty", library.Mirrors.All())
	}
}

func TestLoadLibrary_MissingFile(t *testing.T) {
	root := contentRoot()
	delete(root, "team.yaml")

	if _, err := LoadLibrary(persistence.NewFileSource(root), NewRenderers("https://api.example.org")); err == nil {
		t.Error("LoadLibrary() expected error without team.yaml, got nil")
	}
}

func TestReloader_Reload(t *testing.T) {
	root := contentRoot()
	renderers := NewRenderers("https://api.example.org")
	source := persistence.NewFileSource(root)

	initial, err := LoadLibrary(source, renderers)
	if err != nil {
		t.Fatalf("LoadLibrary() unexpected error: %v", err)
	}
	snapshot := NewSnapshot(initial)
	reloader := NewReloader(source, renderers, snapshot)

	root["news/2.second.en.md"] = newsFile("Second", "2024-02-01")
	if err := reloader.Reload(); err != nil {
		t.Fatalf("Reload() unexpected error: %v", err)
	}
	if got := snapshot.Load().News.Len(); got != 2 {
		t.Errorf("News.Len() after reload = %d, want 2", got)
	}
	if initial.News.Len() != 1 {
		t.Errorf("previous library changed: News.Len() = %d, want 1", initial.News.Len())
	}

	reloaded := snapshot.Load()
	root["news/bad-name.md"] = newsFile("Bad", "2024-03-01")
	if err := reloader.Reload(); err == nil {
		t.Fatal("Reload() expected error for malformed file, got nil")
	}
	if snapshot.Load() != reloaded {
		t.Error("failed reload replaced the library")
	}
}
