package http

import (
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kujo/pkg/domain/model"
)

const indexFile = "index.html"

// assetTypes pins the content type of files the page ships or links to. Anything else is
// left to http.ServeFileFS.
var assetTypes = map[string]string{
	".css":  "text/css; charset=utf-8",
	".csv":  "text/csv; charset=utf-8",
	".ico":  "image/x-icon",
	".js":   "application/javascript; charset=utf-8",
	".json": "application/json; charset=utf-8",
	".png":  "image/png",
	".svg":  "image/svg+xml",
}

// PageHandler serves the dashboard page. Paths with a file extension are assets and answer
// 404 as JSON when missing; every other path renders index.html, which is never cached
// because it embeds the filter defaults of the running server.
type PageHandler struct {
	files fs.FS
	index []byte
}

// NewPageHandler reads index.html up front so a broken build fails at startup.
func NewPageHandler(files fs.FS) (*PageHandler, error) {
	index, err := fs.ReadFile(files, indexFile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open index.html", goerr.V("file", indexFile))
	}

	return &PageHandler{files: files, index: index}, nil
}

func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	ext := path.Ext(name)

	if name == "" || name == indexFile || ext == "" {
		h.serveIndex(w)
		return
	}

	info, err := fs.Stat(h.files, name)
	if err != nil || info.IsDir() {
		writeError(w, r, goerr.New("no such asset",
			goerr.V("path", r.URL.Path),
			goerr.T(model.ErrTagNotFound)))
		return
	}

	if ct, ok := assetTypes[ext]; ok {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFileFS(w, r, h.files, name)
}

func (h *PageHandler) serveIndex(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.index)
}
