// Package importer turns external requirement sources into items of an
// existing document.
package importer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jcb91/doorstop/internal/item"
	"github.com/jcb91/doorstop/internal/parser"
	"github.com/jcb91/doorstop/internal/tree"
)

// Import parses the source file and creates one item in the document
// with the given prefix per flattened outline section. The created items
// are returned in order.
func Import(t *tree.Tree, prefix, path string, log *slog.Logger) ([]*item.Item, error) {
	if log == nil {
		log = slog.Default()
	}
	if t.FindDocument(prefix) == nil {
		return nil, fmt.Errorf("%w: %s", tree.ErrNoMatchingDocument, prefix)
	}

	p, err := parser.ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("import: open %s: %w", path, err)
	}
	defer f.Close()

	o, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("import: parse %s: %w", path, err)
	}

	candidates := o.Flatten()
	if len(candidates) == 0 {
		return nil, fmt.Errorf("import: no requirement candidates in %s", path)
	}
	log.Info("importing source", "path", path, "document", prefix, "candidates", len(candidates))

	items := make([]*item.Item, 0, len(candidates))
	for _, c := range candidates {
		it, err := t.AddItem(prefix)
		if err != nil {
			return items, err
		}
		if err := it.SetText(candidateText(c.Title, c.Text)); err != nil {
			return items, err
		}
		log.Debug("item imported", "id", it.ID(), "title", c.Title)
		items = append(items, it)
	}
	return items, nil
}

// candidateText joins a section title and body into requirement text.
func candidateText(title, text string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return text
	}
	return title + "\n\n" + text
}
