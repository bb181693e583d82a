package inventory

import (
	"bufio"
	"fmt"
	"io"
)

// TextParser treats every line as a fragment.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := &Document{Name: baseName(filename)}
	line := 0
	for scanner.Scan() {
		line++
		doc.add(fmt.Sprintf("line %d", line), scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	return doc, nil
}
