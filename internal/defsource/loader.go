package defsource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-datatable/internal/logging"
	"github.com/goliatone/go-datatable/internal/render"
	"github.com/goliatone/go-datatable/internal/table"
	"github.com/goliatone/go-datatable/pkg/interfaces"
)

var ErrDocumentNameRequired = errors.New("defsource: document frontmatter missing name")

// LoaderOption configures a document loader.
type LoaderOption func(*Loader)

// WithMarkdown overrides the caption renderer.
func WithMarkdown(markdown *render.MarkdownRenderer) LoaderOption {
	return func(l *Loader) {
		if markdown != nil {
			l.markdown = markdown
		}
	}
}

// WithLogger injects the loader logger.
func WithLogger(logger interfaces.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loader parses table definition documents: YAML frontmatter describing the
// definition, markdown body becoming the rendered caption.
type Loader struct {
	markdown *render.MarkdownRenderer
	logger   interfaces.Logger
}

// NewLoader constructs a loader with a default markdown engine.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		markdown: render.NewMarkdownRenderer(render.MarkdownOptions{}),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Parse decodes one definition document.
func (l *Loader) Parse(docPath string, source []byte) (*Document, error) {
	var meta documentMeta
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, fmt.Errorf("defsource: parse %s: %w", docPath, err)
	}
	if strings.TrimSpace(meta.Name) == "" {
		return nil, fmt.Errorf("defsource: %s: %w", docPath, ErrDocumentNameRequired)
	}

	doc := &Document{
		Path:       docPath,
		Definition: meta.toInput(),
		Caption:    strings.TrimSpace(string(body)),
	}
	if doc.Caption != "" {
		rendered, err := l.markdown.Render([]byte(doc.Caption))
		if err != nil {
			return nil, fmt.Errorf("defsource: render caption for %s: %w", docPath, err)
		}
		doc.CaptionHTML = strings.TrimSpace(string(rendered))
	}
	return doc, nil
}

// LoadFS walks the filesystem and parses every markdown document found.
func (l *Loader) LoadFS(ctx context.Context, fsys fs.FS) ([]*Document, error) {
	var docs []*Document
	err := fs.WalkDir(fsys, ".", func(entryPath string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		ext := strings.ToLower(path.Ext(entryPath))
		if ext != ".md" && ext != ".markdown" {
			return nil
		}

		source, err := fs.ReadFile(fsys, entryPath)
		if err != nil {
			return fmt.Errorf("defsource: read %s: %w", entryPath, err)
		}
		doc, err := l.Parse(entryPath, source)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.logger.Debug("defsource.loaded", "documents", len(docs))
	return docs, nil
}

// Register parses every document under the filesystem and registers the
// definitions with the table service. Documents whose definition already
// exists are skipped.
func (l *Loader) Register(ctx context.Context, fsys fs.FS, svc table.Service) ([]*Document, error) {
	docs, err := l.LoadFS(ctx, fsys)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if _, err := svc.RegisterDefinition(ctx, doc.Definition); err != nil {
			if errors.Is(err, table.ErrDefinitionExists) {
				l.logger.Debug("defsource.skip_existing", "name", doc.Definition.Name, "path", doc.Path)
				continue
			}
			return nil, fmt.Errorf("defsource: register %s from %s: %w", doc.Definition.Name, doc.Path, err)
		}
		l.logger.Info("defsource.registered", "name", doc.Definition.Name, "path", doc.Path)
	}
	return docs, nil
}
