package posts

import (
	"encoding/json"

	"github.com/starford/folio/internal/parser"
)

// Author is the post author taken from front matter.
type Author struct {
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// OGImage is the social preview image taken from front matter.
type OGImage struct {
	URL string `json:"url"`
}

// Post is a post record holding only the fields that were requested and
// found. Has reports which ones those are.
type Post struct {
	Slug       string
	Title      string
	Date       string // ISO-8601, compared as a string
	CoverImage string
	Author     Author
	Excerpt    string
	Content    string
	Publish    bool
	OGImage    OGImage

	present uint16
}

// Has reports whether f was requested and found.
func (p *Post) Has(f Field) bool {
	b := f.bit()
	return b != 0 && p.present&b != 0
}

// Fields returns the present fields in declaration order.
func (p *Post) Fields() []Field {
	var out []Field
	for _, f := range AllFields {
		if p.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Only drops every present field not listed in fields. It is used to hide
// fields that were loaded for filtering but not asked for.
func (p *Post) Only(fields ...Field) {
	var keep uint16
	for _, f := range fields {
		keep |= f.bit()
	}
	p.present &= keep
}

func (p *Post) set(f Field) {
	p.present |= f.bit()
}

// IsPublished reports whether publish was present and true.
func (p *Post) IsPublished() bool {
	return p.Has(FieldPublish) && p.Publish
}

// MarshalJSON encodes only the present fields, keyed by field name.
func (p *Post) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 9)
	for _, f := range p.Fields() {
		m[string(f)] = p.value(f)
	}
	return json.Marshal(m)
}

func (p *Post) value(f Field) any {
	switch f {
	case FieldSlug:
		return p.Slug
	case FieldTitle:
		return p.Title
	case FieldDate:
		return p.Date
	case FieldCoverImage:
		return p.CoverImage
	case FieldAuthor:
		return p.Author
	case FieldExcerpt:
		return p.Excerpt
	case FieldContent:
		return p.Content
	case FieldPublish:
		return p.Publish
	case FieldOGImage:
		return p.OGImage
	}
	return nil
}

// fill copies f from front matter. It reports false when the key is absent
// or holds a value of the wrong shape.
func (p *Post) fill(f Field, m parser.Matter) bool {
	key := string(f)
	switch f {
	case FieldTitle:
		return setString(&p.Title, m, key)
	case FieldDate:
		return setString(&p.Date, m, key)
	case FieldCoverImage:
		return setString(&p.CoverImage, m, key)
	case FieldExcerpt:
		return setString(&p.Excerpt, m, key)
	case FieldPublish:
		v, ok := m.Bool(key)
		p.Publish = v
		return ok
	case FieldAuthor:
		if sub, ok := m.Map(key); ok {
			p.Author.Name, _ = sub.String("name")
			p.Author.Picture, _ = sub.String("picture")
			return true
		}
		return setString(&p.Author.Name, m, key)
	case FieldOGImage:
		if sub, ok := m.Map(key); ok {
			p.OGImage.URL, _ = sub.String("url")
			return true
		}
		return setString(&p.OGImage.URL, m, key)
	}
	return false
}

func setString(dst *string, m parser.Matter, key string) bool {
	v, ok := m.String(key)
	if ok {
		*dst = v
	}
	return ok
}
