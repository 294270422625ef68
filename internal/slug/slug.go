// Package slug derives URL-safe identifiers for posts and heading anchors.
package slug

import (
	"path/filepath"
	"regexp"
	"strings"
)

// A removed code span takes one trailing space with it so that
// "Use `foo` here" reads as "use-here".
var codeSpanRe = regexp.MustCompile("`[a-z]+` ?")

// Make converts heading text into an anchor fragment.
//
// Inline code spans holding a single lowercase word are removed, the text is
// trimmed, and only ASCII letters and spaces survive. Letters are lower-cased
// and every space becomes a hyphen; runs of spaces are not collapsed.
func Make(text string) string {
	text = codeSpanRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'a' && c <= 'z':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		case c == ' ':
			b.WriteByte('-')
		}
	}
	return b.String()
}

// FromFilename returns the post slug for a content file name: the base name
// without its extension.
func FromFilename(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
