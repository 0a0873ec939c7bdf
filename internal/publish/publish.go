// Package publish renders documents from an assembled tree into
// human-readable formats.
package publish

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jcb91/doorstop/internal/document"
	"github.com/jcb91/doorstop/internal/tree"
	"github.com/yuin/goldmark"
)

// Format selects a publish output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat validates a format name. Short aliases are accepted.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown publish format: %q", s)
	}
}

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	default:
		return ".txt"
	}
}

// Document renders one document to w.
func Document(w io.Writer, doc *document.Document, format Format) error {
	switch format {
	case FormatText:
		return writeText(w, doc)
	case FormatMarkdown:
		return writeMarkdown(w, doc)
	case FormatHTML:
		return writeHTML(w, doc)
	default:
		return fmt.Errorf("unknown publish format: %q", format)
	}
}

// WriteTree publishes every document in the tree to dir, one file per
// document named after its prefix. The written paths are returned.
func WriteTree(dir string, t *tree.Tree, format Format) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("publish: create %s: %w", dir, err)
	}
	var paths []string
	for _, doc := range t.Documents() {
		path := filepath.Join(dir, doc.Prefix()+format.Ext())
		f, err := os.Create(path)
		if err != nil {
			return paths, fmt.Errorf("publish: create %s: %w", path, err)
		}
		err = Document(f, doc, format)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return paths, fmt.Errorf("publish %s: %w", doc.Prefix(), err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeText(w io.Writer, doc *document.Document) error {
	items, err := doc.Items()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n%s\n", doc.Prefix(), strings.Repeat("=", len(doc.Prefix())))
	for _, it := range items {
		fmt.Fprintf(w, "\n%s\n\n", it.ID())
		for _, line := range strings.Split(strings.TrimSpace(it.Text()), "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
		if links := it.Links(); len(links) > 0 {
			fmt.Fprintf(w, "\n    Links: %s\n", strings.Join(links, ", "))
		}
	}
	return nil
}

func writeMarkdown(w io.Writer, doc *document.Document) error {
	items, err := doc.Items()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "# %s\n", doc.Prefix())
	for _, it := range items {
		fmt.Fprintf(w, "\n## %s\n\n%s\n", it.ID(), strings.TrimSpace(it.Text()))
		if links := it.Links(); len(links) > 0 {
			fmt.Fprintf(w, "\n*Links: %s*\n", strings.Join(links, ", "))
		}
	}
	return nil
}

// writeHTML renders the markdown form through goldmark and wraps it in a
// minimal page.
func writeHTML(w io.Writer, doc *document.Document) error {
	var md bytes.Buffer
	if err := writeMarkdown(&md, doc); err != nil {
		return err
	}
	var body bytes.Buffer
	if err := goldmark.Convert(md.Bytes(), &body); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>%s</title></head>\n<body>\n", doc.Prefix())
	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}
