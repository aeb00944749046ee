// Package assets serves the static files that live next to the content:
// images referenced from rendered bodies and downloadable documents.
package assets

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Sections whose bodies may reference files under "<section>/assets".
var Sections = []string{"news", "blog", "events", "text-blocks"}

const documentsDir = "documents"

type Handler struct {
	fsys fs.FS
}

func NewHandler(fsys fs.FS) *Handler {
	return &Handler{fsys: fsys}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/{section}/assets/*", h.ServeAsset)
	r.Get("/documents/download/*", h.ServeDocument)
}

// Router returns a chi router with every asset route registered.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})
	return r
}

func (h *Handler) ServeAsset(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")
	if !slices.Contains(Sections, section) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	h.serve(w, r, path.Join(section, "assets"), chi.URLParam(r, "*"))
}

func (h *Handler) ServeDocument(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, documentsDir, chi.URLParam(r, "*"))
}

// serve writes dir/name from the content root. Directory listings and names
// escaping dir are answered with 404.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, dir, name string) {
	name = strings.TrimPrefix(name, "/")
	if name == "" || !fs.ValidPath(name) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	full := path.Join(dir, name)
	info, err := fs.Stat(h.fsys, full)
	if err != nil || info.IsDir() {
		if err != nil && !isNotExist(err) {
			log.Error().Err(err).Str("path", full).Msg("Failed to stat asset")
		}
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	http.ServeFileFS(w, r, h.fsys, full)
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid)
}
