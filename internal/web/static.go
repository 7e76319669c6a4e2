// Package web holds the browser frontend, embedded into the binary.
package web

import (
	"embed"
	"net/http"
)

// IndexPath is where GET / redirects.
const IndexPath = "/static/index.html"

//go:embed static/*
var staticFiles embed.FS

// Handler serves everything under /static/. The index page is written
// directly because http.FileServer redirects .../index.html to the directory.
func Handler() http.Handler {
	files := http.FileServer(http.FS(staticFiles))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != IndexPath {
			files.ServeHTTP(w, r)
			return
		}
		data, err := staticFiles.ReadFile("static/index.html")
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(data)
	})
}
