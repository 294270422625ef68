// Package parser splits a content file into its front-matter metadata and
// Markdown body.
package parser

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// formats lists the accepted header blocks: YAML between --- lines and TOML
// between +++ lines.
var formats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", unmarshalYAML),
	frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
}

// Matter is the decoded front-matter mapping.
type Matter map[string]any

// Result holds the output of parsing a content file.
type Result struct {
	Matter Matter
	Body   []byte
}

// Parse separates the front-matter block from the body. A document without a
// header block yields an empty Matter and the whole input as body.
func Parse(data []byte) (*Result, error) {
	var m map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(data), &m, formats...)
	if err != nil {
		return nil, fmt.Errorf("parser: front matter: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return &Result{Matter: Matter(m), Body: body}, nil
}

// unmarshalYAML decodes YAML front matter with timestamps kept as their
// source text, so dates round-trip verbatim and keep their precision.
func unmarshalYAML(data []byte, v any) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Kind == 0 {
		return nil
	}
	keepTimestampText(&doc)
	return doc.Decode(v)
}

func keepTimestampText(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!timestamp" {
		n.Tag = "!!str"
	}
	for _, c := range n.Content {
		keepTimestampText(c)
	}
}

// Has reports whether key is present with a non-nil value.
func (m Matter) Has(key string) bool {
	v, ok := m[key]
	return ok && v != nil
}

// String returns the value of key as a string. YAML timestamps come back as
// written. TOML offset date-times, which have no source text left, are
// rendered as RFC 3339 with millisecond precision.
func (m Matter) String(key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	if t, isTime := v.(time.Time); isTime {
		return t.Format("2006-01-02T15:04:05.000Z07:00"), true
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}

// Bool returns the value of key only when it is a real boolean. Strings such
// as "true" do not count.
func (m Matter) Bool(key string) (value, ok bool) {
	b, ok := m[key].(bool)
	return b, ok
}

// Map returns a nested mapping such as author: {name: ..., picture: ...}.
func (m Matter) Map(key string) (Matter, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false
	}
	sm, err := cast.ToStringMapE(v)
	if err != nil {
		return nil, false
	}
	return Matter(sm), true
}
