package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/m-mizutani/gt"
	httpCtrl "github.com/secmon-lab/kujo/pkg/controller/http"
)

func newPageFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":           {Data: []byte(`<!DOCTYPE html><html><body><div id="dashboard"></div></body></html>`)},
		"assets/chart.js":      {Data: []byte(`drawChart()`)},
		"assets/style.css":     {Data: []byte(`body { margin: 0 }`)},
		"assets/template.csv":  {Data: []byte("date,category,municipality\n")},
		"assets/municipal.svg": {Data: []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)},
		"assets/favicon.ico":   {Data: []byte{0, 0, 1, 0}},
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestPageHandler(t *testing.T) {
	handler, err := httpCtrl.NewPageHandler(newPageFS())
	gt.NoError(t, err).Required()

	t.Run("routes render index.html without caching", func(t *testing.T) {
		for _, path := range []string{"/", "/index.html", "/submit", "/assets", "/unknown/deep/path"} {
			w := get(t, handler, path)
			gt.Equal(t, w.Code, http.StatusOK)
			gt.Equal(t, w.Header().Get("Content-Type"), "text/html; charset=utf-8")
			gt.Equal(t, w.Header().Get("Cache-Control"), "no-store")
			gt.S(t, w.Body.String()).Contains(`<div id="dashboard">`)
		}
	})

	t.Run("assets are served with their content type", func(t *testing.T) {
		testCases := []struct {
			path        string
			contentType string
			body        string
		}{
			{"/assets/chart.js", "application/javascript; charset=utf-8", "drawChart"},
			{"/assets/style.css", "text/css; charset=utf-8", "margin"},
			{"/assets/template.csv", "text/csv; charset=utf-8", "date,category"},
			{"/assets/municipal.svg", "image/svg+xml", "<svg"},
			{"/assets/favicon.ico", "image/x-icon", ""},
		}

		for _, tc := range testCases {
			w := get(t, handler, tc.path)
			gt.Equal(t, w.Code, http.StatusOK)
			gt.Equal(t, w.Header().Get("Content-Type"), tc.contentType)
			gt.Equal(t, w.Header().Get("Cache-Control"), "public, max-age=3600")
			gt.S(t, w.Body.String()).Contains(tc.body)
		}
	})

	t.Run("missing assets answer 404 as JSON", func(t *testing.T) {
		for _, path := range []string{"/assets/missing.js", "/report.csv", "/assets/../../etc/passwd.txt"} {
			w := get(t, handler, path)
			gt.Equal(t, w.Code, http.StatusNotFound)
			gt.Equal(t, w.Header().Get("Content-Type"), "application/json")

			var body map[string]string
			gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			gt.S(t, body["error"]).Contains("no such asset")
		}
	})
}

func TestNewPageHandlerWithoutIndex(t *testing.T) {
	_, err := httpCtrl.NewPageHandler(fstest.MapFS{
		"assets/chart.js": {Data: []byte(`drawChart()`)},
	})
	gt.Error(t, err)
	gt.S(t, err.Error()).Contains("failed to open index.html")
}
