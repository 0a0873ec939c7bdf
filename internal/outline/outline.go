// Package outline is the intermediate form produced by import parsers: a
// source document reduced to its heading structure and body text.
package outline

// Outline is the root of a parsed source document.
type Outline struct {
	Title    string     // Document title (from metadata or filename)
	Sections []*Section // Top-level sections
}

// Section is a recursive part of a source document.
type Section struct {
	Title    string     // Section heading (empty for plain text)
	Text     string     // Body text (may be empty for container sections)
	Page     int        // Source page (0 if N/A)
	Children []*Section // Subsections
}

// Candidate is one prospective requirement flattened out of an outline.
type Candidate struct {
	Title string
	Text  string
	Depth int // 1 for top-level sections
}

// Flatten walks the outline depth-first and returns one candidate per
// section that carries text. Container sections without text contribute
// only their children.
func (o *Outline) Flatten() []Candidate {
	var out []Candidate
	var walk func(s *Section, depth int)
	walk = func(s *Section, depth int) {
		if s.Text != "" {
			out = append(out, Candidate{Title: s.Title, Text: s.Text, Depth: depth})
		}
		for _, child := range s.Children {
			walk(child, depth+1)
		}
	}
	for _, s := range o.Sections {
		walk(s, 1)
	}
	return out
}
