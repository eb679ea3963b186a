package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// openStatic resolves a request path inside the static directory. Directories
// resolve to their index.html.
func openStatic(dir, urlPath string) (*os.File, os.FileInfo, bool) {
	name := path.Clean("/" + urlPath)
	full := filepath.Join(dir, filepath.FromSlash(name))

	info, err := os.Stat(full)
	if err != nil {
		return nil, nil, false
	}
	if info.IsDir() {
		full = filepath.Join(full, "index.html")
		if info, err = os.Stat(full); err != nil || info.IsDir() {
			return nil, nil, false
		}
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, nil, false
	}
	return f, info, true
}

// StaticOrNotFound serves files from the static directory verbatim and falls
// back to the JSON 404 for anything else
func (h *Handler) StaticOrNotFound(w http.ResponseWriter, r *http.Request) {
	if h.staticDir == "" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		h.NotFound(w, r)
		return
	}

	f, info, ok := openStatic(h.staticDir, r.URL.Path)
	if !ok {
		h.NotFound(w, r)
		return
	}
	defer f.Close()

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// NotFound answers unmatched routes
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, h.logger, http.StatusNotFound, "Endpoint not found")
}
