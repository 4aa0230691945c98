// Package web embeds the single-page UI.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var content embed.FS

// Handler serves the embedded UI, with index.html at "/".
func Handler() http.Handler {
	root, err := fs.Sub(content, "static")
	if err != nil {
		// the embed directive guarantees the directory exists
		panic(err)
	}
	return http.FileServer(http.FS(root))
}
