package static

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var StaticFS embed.FS

// FS returns the embedded assets for serving under /static.
func FS() http.FileSystem {
	sub, err := fs.Sub(StaticFS, "static")
	if err != nil {
		// the embed pattern guarantees the directory exists
		panic(err)
	}
	return http.FS(sub)
}
