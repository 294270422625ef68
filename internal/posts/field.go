package posts

import (
	"fmt"
	"strings"

	"github.com/starford/folio/internal/apperr"
)

// Field names one selectable attribute of a Post.
type Field string

const (
	FieldSlug       Field = "slug"
	FieldTitle      Field = "title"
	FieldDate       Field = "date"
	FieldCoverImage Field = "coverImage"
	FieldAuthor     Field = "author"
	FieldExcerpt    Field = "excerpt"
	FieldContent    Field = "content"
	FieldPublish    Field = "publish"
	FieldOGImage    Field = "ogImage"
)

// AllFields lists every field in declaration order.
var AllFields = []Field{
	FieldSlug, FieldTitle, FieldDate, FieldCoverImage, FieldAuthor,
	FieldExcerpt, FieldContent, FieldPublish, FieldOGImage,
}

// bit returns the presence mask bit for f, or 0 for an unknown field.
func (f Field) bit() uint16 {
	for i, known := range AllFields {
		if known == f {
			return 1 << i
		}
	}
	return 0
}

// ParseField validates a field name.
func ParseField(name string) (Field, error) {
	f := Field(name)
	if f.bit() == 0 {
		return "", fmt.Errorf("posts: %q: %w", name, apperr.ErrUnknownField)
	}
	return f, nil
}

// ParseFieldList parses a comma-separated list such as "title,date,slug".
// Blank items are skipped.
func ParseFieldList(list string) ([]Field, error) {
	var out []Field
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		f, err := ParseField(name)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
