// Package content turns a raw content file into the Markdown body served to
// the renderer.
package content

import (
	"regexp"
	"strings"

	"github.com/starford/folio/internal/parser"
)

var imageRe = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)

// Transformer strips front matter and, for production builds, roots image
// paths under the site base path.
type Transformer struct {
	Production bool
	BasePath   string
}

// Transform returns the body of raw with its front matter removed.
func (t *Transformer) Transform(raw []byte) (string, error) {
	res, err := parser.Parse(raw)
	if err != nil {
		return "", err
	}
	body := string(res.Body)
	if !t.Production {
		return body, nil
	}
	return RewriteImages(body, t.BasePath), nil
}

// RewriteImages prefixes every ![alt](path) destination with basePath unless
// the path already starts with it. Each occurrence is handled on its own. The
// path is not checked for a scheme or leading slash.
func RewriteImages(body, basePath string) string {
	if basePath == "" {
		return body
	}
	matches := imageRe.FindAllStringSubmatchIndex(body, -1)
	if len(matches) == 0 {
		return body
	}

	var b strings.Builder
	b.Grow(len(body) + len(matches)*len(basePath))
	last := 0
	for _, m := range matches {
		alt := body[m[2]:m[3]]
		path := body[m[4]:m[5]]
		b.WriteString(body[last:m[0]])
		if strings.HasPrefix(path, basePath) {
			b.WriteString(body[m[0]:m[1]])
		} else {
			b.WriteString("![")
			b.WriteString(alt)
			b.WriteString("](")
			b.WriteString(basePath)
			b.WriteString(path)
			b.WriteString(")")
		}
		last = m[1]
	}
	b.WriteString(body[last:])
	return b.String()
}
