package markdown

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

// LoaderConfig configures how Markdown files are discovered within a base directory.
type LoaderConfig struct {
	// BasePath is the root directory where Markdown documents live.
	BasePath string
	// Pattern limits discovered files to those matching the supplied glob (defaults to "*.md").
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// Loader turns filesystem paths into Markdown documents with metadata.
type Loader struct {
	fs        fs.FS
	basePath  string
	pattern   string
	recursive bool
}

// NewLoader constructs a Loader using the provided filesystem and configuration.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := cfg.Pattern
	if strings.TrimSpace(pattern) == "" {
		pattern = "*.md"
	}
	basePath := ""
	if strings.TrimSpace(cfg.BasePath) != "" {
		basePath = filepath.Clean(cfg.BasePath)
	}
	return &Loader{
		fs:        filesystem,
		basePath:  basePath,
		pattern:   pattern,
		recursive: cfg.Recursive,
	}
}

// LoadFile reads and parses a single Markdown document.
func (l *Loader) LoadFile(ctx context.Context, name string) (*interfaces.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, err := l.makeRelative(name)
	if err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return nil, readError(err, rel)
	}
	info, err := fs.Stat(l.fs, rel)
	if err != nil {
		return nil, readError(err, rel)
	}

	return BuildDocument(rel, data, info.ModTime())
}

// LoadDirectory discovers Markdown files under dir and returns parsed documents
// sorted by path.
func (l *Loader) LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := l.makeRelative(dir)
	if err != nil {
		return nil, err
	}

	recursive := l.recursive
	if opts.Recursive != nil {
		recursive = *opts.Recursive
	}
	pattern := l.pattern
	if strings.TrimSpace(opts.Pattern) != "" {
		pattern = opts.Pattern
	}

	var docs []*interfaces.Document
	walkErr := fs.WalkDir(l.fs, root, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if !recursive && current != root {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if match, _ := path.Match(pattern, path.Base(current)); !match {
			return nil
		}

		doc, err := l.LoadFile(ctx, current)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if walkErr != nil {
		if goerrors.IsCategory(walkErr, goerrors.CategoryNotFound) || goerrors.IsCategory(walkErr, goerrors.CategoryBadInput) {
			return nil, walkErr
		}
		return nil, readError(walkErr, root)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].FilePath < docs[j].FilePath
	})
	return docs, nil
}

func (l *Loader) makeRelative(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return ".", nil
	}
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) {
		if l.basePath == "" {
			return "", goerrors.New("absolute path "+name+" provided without base path", goerrors.CategoryBadInput)
		}
		rel, err := filepath.Rel(l.basePath, clean)
		if err != nil {
			return "", goerrors.Wrap(err, goerrors.CategoryBadInput, "make path relative").
				WithMetadata(map[string]any{"path": name})
		}
		clean = rel
	}
	clean = filepath.ToSlash(clean)
	if !fs.ValidPath(clean) {
		return "", goerrors.New("path "+name+" escapes the base directory", goerrors.CategoryBadInput)
	}
	return clean, nil
}

func readError(err error, name string) error {
	category := goerrors.CategoryInternal
	if goerrors.Is(err, fs.ErrNotExist) {
		category = goerrors.CategoryNotFound
	}
	return goerrors.Wrap(err, category, "read markdown "+name).
		WithMetadata(map[string]any{"path": name})
}
