package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// MountStatic serves the generated site in dir under basePath, the same URL
// prefix the pages were built for. Directory listings are not served.
func MountStatic(r chi.Router, dir, basePath string) {
	basePath = "/" + strings.Trim(basePath, "/")
	fs := http.StripPrefix(strings.TrimSuffix(basePath, "/"), http.FileServer(noListing{http.Dir(dir)}))

	if basePath != "/" {
		r.Get(basePath, func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, basePath+"/", http.StatusMovedPermanently)
		})
		basePath += "/"
	}
	r.Get(basePath+"*", fs.ServeHTTP)
}

// noListing hides directories that have no index.html.
type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		idx, err := n.fs.Open(strings.TrimSuffix(name, "/") + "/index.html")
		if err != nil {
			f.Close()
			return nil, err
		}
		idx.Close()
	}
	return f, nil
}
