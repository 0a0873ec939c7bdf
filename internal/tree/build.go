package tree

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/jcb91/doorstop/internal/document"
	"github.com/jcb91/doorstop/internal/vcs"
)

// Build discovers every document under the working copy containing cwd
// and assembles them into a tree.
func Build(cwd string, log *slog.Logger) (*Tree, error) {
	if log == nil {
		log = slog.Default()
	}
	root, err := vcs.FindRoot(cwd)
	if err != nil {
		return nil, err
	}

	log.Debug("looking for documents", "root", root)
	docs, err := discover(root, log)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		log.Warn("no documents found", "root", root)
	}
	return Assemble(docs, log)
}

// discover walks root and opens every directory holding a document
// config, skipping VCS metadata and documents marked to be skipped.
func discover(root string, log *slog.Logger) ([]*document.Document, error) {
	var docs []*document.Document
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		switch d.Name() {
		case ".git", ".hg", ".svn":
			return filepath.SkipDir
		}

		doc, openErr := document.Open(path, root)
		if openErr != nil {
			return nil // not a document directory
		}
		if doc.Skip() {
			log.Debug("skipping document", "prefix", doc.Prefix(), "path", path)
			return nil
		}
		log.Debug("found document", "prefix", doc.Prefix(), "path", path)
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover documents in %s: %w", root, err)
	}
	return docs, nil
}
