// Package item stores individual requirement records as YAML files.
//
// An item's identity is its composite ID: document prefix plus a
// zero-padded number, e.g. "REQ001". The file on disk is named after the
// ID with a .yml extension.
package item

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// ErrMalformedID reports a composite ID that cannot be split into a
// prefix and a number.
var ErrMalformedID = errors.New("malformed item ID")

// Extension is the on-disk suffix for item files.
const Extension = ".yml"

// Item is a single requirement record.
type Item struct {
	prefix string
	number int
	digits int
	path   string

	attrs Attributes
}

// Attributes is the YAML body of an item file.
type Attributes struct {
	Active    bool     `yaml:"active"`
	Derived   bool     `yaml:"derived"`
	Normative bool     `yaml:"normative"`
	Level     string   `yaml:"level"`
	Text      string   `yaml:"text"`
	Ref       string   `yaml:"ref,omitempty"`
	Links     []string `yaml:"links"`
}

// DefaultAttributes returns the attributes a freshly added item starts with.
func DefaultAttributes() Attributes {
	return Attributes{
		Active:    true,
		Normative: true,
		Level:     "1",
		Links:     []string{},
	}
}

// New creates an item file in dir and returns the loaded item.
func New(dir, prefix string, number, digits int) (*Item, error) {
	it := &Item{
		prefix: prefix,
		number: number,
		digits: digits,
		path:   filepath.Join(dir, JoinID(prefix, digits, number)+Extension),
		attrs:  DefaultAttributes(),
	}
	if _, err := os.Stat(it.path); err == nil {
		return nil, fmt.Errorf("item file already exists: %s", it.path)
	}
	if err := it.Save(); err != nil {
		return nil, err
	}
	return it, nil
}

// Load reads an existing item file. The number is taken from the filename.
func Load(path, prefix string, digits int) (*Item, error) {
	name := strings.TrimSuffix(filepath.Base(path), Extension)
	p, number, err := SplitID(name)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", path, err)
	}
	if !strings.EqualFold(p, prefix) {
		return nil, fmt.Errorf("item %s: prefix %q does not match document prefix %q", path, p, prefix)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("item: read %s: %w", path, err)
	}
	attrs := DefaultAttributes()
	if err := yaml.Unmarshal(data, &attrs); err != nil {
		return nil, fmt.Errorf("item: decode %s: %w", path, err)
	}
	if attrs.Links == nil {
		attrs.Links = []string{}
	}

	return &Item{
		prefix: prefix,
		number: number,
		digits: digits,
		path:   path,
		attrs:  attrs,
	}, nil
}

// ID returns the composite identifier, e.g. "REQ001".
func (i *Item) ID() string { return JoinID(i.prefix, i.digits, i.number) }

// Prefix returns the owning document's prefix.
func (i *Item) Prefix() string { return i.prefix }

// Number returns the item number within its document.
func (i *Item) Number() int { return i.number }

// Path returns the item's file path.
func (i *Item) Path() string { return i.path }

// Text returns the requirement text.
func (i *Item) Text() string { return i.attrs.Text }

// Links returns the outgoing link IDs, sorted.
func (i *Item) Links() []string {
	out := make([]string, len(i.attrs.Links))
	copy(out, i.attrs.Links)
	return out
}

// Attributes returns a copy of the item's YAML attributes.
func (i *Item) Attributes() Attributes {
	a := i.attrs
	a.Links = i.Links()
	return a
}

// SetText replaces the requirement text and saves the item.
func (i *Item) SetText(text string) error {
	i.attrs.Text = text
	return i.Save()
}

// AddLink records a directed link to a parent item and saves. Adding a
// link that already exists is a no-op.
func (i *Item) AddLink(parentID string) error {
	for _, l := range i.attrs.Links {
		if strings.EqualFold(l, parentID) {
			return nil
		}
	}
	i.attrs.Links = append(i.attrs.Links, parentID)
	sort.Strings(i.attrs.Links)
	return i.Save()
}

// Save writes the item's attributes back to its file.
func (i *Item) Save() error {
	data, err := yaml.Marshal(i.attrs)
	if err != nil {
		return fmt.Errorf("item %s: encode: %w", i.ID(), err)
	}
	if err := os.WriteFile(i.path, data, 0o644); err != nil {
		return fmt.Errorf("item %s: write: %w", i.ID(), err)
	}
	return nil
}

// String implements fmt.Stringer.
func (i *Item) String() string { return i.ID() }

// JoinID builds a composite ID from a prefix and number, zero-padding the
// number to the given digit count.
func JoinID(prefix string, digits, number int) string {
	return fmt.Sprintf("%s%0*d", prefix, digits, number)
}

// SplitID splits a composite ID into its prefix and number. A single
// separator ('-', '.', or ' ') between the parts is accepted:
// "REQ001", "REQ-001", and "req.1" all parse.
func SplitID(id string) (prefix string, number int, err error) {
	s := strings.TrimSpace(id)
	cut := -1
	for pos, r := range s {
		if unicode.IsDigit(r) {
			cut = pos
			break
		}
	}
	if cut <= 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedID, id)
	}

	prefix = s[:cut]
	if sep := prefix[len(prefix)-1]; sep == '-' || sep == '.' || sep == ' ' {
		prefix = prefix[:len(prefix)-1]
	}
	if prefix == "" {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedID, id)
	}

	number, convErr := strconv.Atoi(s[cut:])
	if convErr != nil || number < 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedID, id)
	}
	return prefix, number, nil
}
