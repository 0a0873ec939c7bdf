// Package document manages a directory of numbered requirement items.
//
// A document is any directory containing a .doorstop.yml config file. The
// config names the document's prefix, its parent document's prefix (empty
// for the root document), and the digit count used when numbering items.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jcb91/doorstop/internal/item"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFile marks a directory as a document.
	ConfigFile = ".doorstop.yml"
	// SkipFile marks a document directory that discovery should ignore.
	SkipFile = ".doorstop.skip"

	// DefaultDigits is the item-number width used when none is configured.
	DefaultDigits = 3
	maxDigits     = 10
)

// Config is the YAML layout of a document's config file.
type Config struct {
	Settings Settings `yaml:"settings"`
}

// Settings holds the per-document knobs.
type Settings struct {
	Prefix string `yaml:"prefix"`
	Parent string `yaml:"parent,omitempty"`
	Digits int    `yaml:"digits"`
}

// Document is a directory of items plus its config.
type Document struct {
	path string
	root string
	cfg  Config
}

// New creates a document directory (if needed) with a fresh config file.
func New(path, root, prefix, parent string, digits int) (*Document, error) {
	if strings.TrimSpace(prefix) == "" {
		return nil, fmt.Errorf("document: prefix is required")
	}
	if digits == 0 {
		digits = DefaultDigits
	}
	if digits < 1 || digits > maxDigits {
		return nil, fmt.Errorf("document: digits must be 1-%d, got %d", maxDigits, digits)
	}

	cfgPath := filepath.Join(path, ConfigFile)
	if _, err := os.Stat(cfgPath); err == nil {
		return nil, fmt.Errorf("document already exists: %s", path)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("document: create %s: %w", path, err)
	}

	doc := &Document{
		path: path,
		root: root,
		cfg: Config{Settings: Settings{
			Prefix: prefix,
			Parent: parent,
			Digits: digits,
		}},
	}
	if err := doc.saveConfig(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Open loads an existing document from a directory. It returns an error
// when the directory has no config file, which discovery uses to tell
// document directories apart from ordinary ones.
func Open(path, root string) (*Document, error) {
	data, err := os.ReadFile(filepath.Join(path, ConfigFile))
	if err != nil {
		return nil, fmt.Errorf("document: no config in %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("document: decode config in %s: %w", path, err)
	}
	if cfg.Settings.Digits == 0 {
		cfg.Settings.Digits = DefaultDigits
	}
	doc := &Document{path: path, root: root, cfg: cfg}
	if err := doc.checkConfig(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Prefix returns the document's prefix.
func (d *Document) Prefix() string { return d.cfg.Settings.Prefix }

// Parent returns the parent document's prefix, or "" for the root document.
func (d *Document) Parent() string { return d.cfg.Settings.Parent }

// Digits returns the configured item-number width.
func (d *Document) Digits() int { return d.cfg.Settings.Digits }

// Path returns the document's directory.
func (d *Document) Path() string { return d.path }

// Root returns the working-copy root the document belongs to.
func (d *Document) Root() string { return d.root }

// Skip reports whether discovery should ignore this document.
func (d *Document) Skip() bool {
	_, err := os.Stat(filepath.Join(d.path, SkipFile))
	return err == nil
}

// Items loads the document's items, sorted by number.
func (d *Document) Items() ([]*item.Item, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("document %s: read dir: %w", d.Prefix(), err)
	}

	var items []*item.Item
	for _, entry := range entries {
		if entry.IsDir() || !d.isItemFile(entry.Name()) {
			continue
		}
		it, err := item.Load(filepath.Join(d.path, entry.Name()), d.Prefix(), d.Digits())
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", d.Prefix(), err)
		}
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Number() < items[j].Number() })
	return items, nil
}

// Add creates the next-numbered item in the document.
func (d *Document) Add() (*item.Item, error) {
	items, err := d.Items()
	if err != nil {
		return nil, err
	}
	next := 1
	if n := len(items); n > 0 {
		next = items[n-1].Number() + 1
	}
	return item.New(d.path, d.Prefix(), next, d.Digits())
}

// Check validates the document's config and every item file. The first
// problem found is returned.
func (d *Document) Check() error {
	if err := d.checkConfig(); err != nil {
		return err
	}
	items, err := d.Items()
	if err != nil {
		return err
	}
	seen := make(map[int]string, len(items))
	for _, it := range items {
		if prev, ok := seen[it.Number()]; ok {
			return fmt.Errorf("document %s: duplicate item number %d (%s and %s)",
				d.Prefix(), it.Number(), prev, filepath.Base(it.Path()))
		}
		seen[it.Number()] = filepath.Base(it.Path())
	}
	return nil
}

// String implements fmt.Stringer.
func (d *Document) String() string { return d.Prefix() }

func (d *Document) checkConfig() error {
	s := d.cfg.Settings
	if strings.TrimSpace(s.Prefix) == "" {
		return fmt.Errorf("document %s: prefix is required", d.path)
	}
	if s.Digits < 1 || s.Digits > maxDigits {
		return fmt.Errorf("document %s: digits must be 1-%d, got %d", d.Prefix(), maxDigits, s.Digits)
	}
	return nil
}

func (d *Document) saveConfig() error {
	data, err := yaml.Marshal(d.cfg)
	if err != nil {
		return fmt.Errorf("document %s: encode config: %w", d.Prefix(), err)
	}
	if err := os.WriteFile(filepath.Join(d.path, ConfigFile), data, 0o644); err != nil {
		return fmt.Errorf("document %s: write config: %w", d.Prefix(), err)
	}
	return nil
}

// isItemFile reports whether name looks like one of this document's item
// files (prefix + number + extension).
func (d *Document) isItemFile(name string) bool {
	if !strings.HasSuffix(name, item.Extension) {
		return false
	}
	base := strings.TrimSuffix(name, item.Extension)
	prefix, _, err := item.SplitID(base)
	return err == nil && strings.EqualFold(prefix, d.Prefix())
}
