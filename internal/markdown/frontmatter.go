package markdown

import (
	"bytes"
	"crypto/sha256"
	"maps"
	"time"

	"github.com/adrg/frontmatter"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

// ParseFrontMatter splits the metadata block off source. Documents without
// front matter return an empty FrontMatter and the whole source as body.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "parse frontmatter")
	}

	return interfaces.FrontMatter{
		Title:   meta.Title,
		MapZoom: meta.MapZoom,
		Custom:  cloneMap(meta.Custom),
	}, body, nil
}

// BuildDocument assembles a Document from path, raw content and modification
// time. BodyHTML is left empty so callers can render lazily.
func BuildDocument(path string, source []byte, modified time.Time) (*interfaces.Document, error) {
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "build document").
			WithMetadata(map[string]any{"path": path})
	}
	sum := sha256.Sum256(source)

	return &interfaces.Document{
		FilePath:     path,
		FrontMatter:  fm,
		Body:         body,
		Checksum:     sum[:],
		LastModified: modified,
	}, nil
}

type frontMatterEnvelope struct {
	Title   string         `yaml:"title" toml:"title" json:"title"`
	MapZoom int            `yaml:"map_zoom" toml:"map_zoom" json:"map_zoom"`
	Custom  map[string]any `yaml:",inline"`
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}
	return maps.Clone(input)
}
