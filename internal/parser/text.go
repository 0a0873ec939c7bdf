package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/jcb91/doorstop/internal/outline"
)

// TextParser handles plain text sources. Each blank-line-separated
// paragraph becomes one requirement candidate.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*outline.Outline, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	o := &outline.Outline{Title: stripExt(filename, ".txt")}
	for _, para := range paragraphs {
		o.Sections = append(o.Sections, &outline.Section{Text: para})
	}
	return o, nil
}
