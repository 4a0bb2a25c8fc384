// Package frontmatter reads the metadata block at the top of a Markdown note.
package frontmatter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Delimiter opens and closes a front-matter block.
const Delimiter = "---"

const maxLineSize = 1 << 20

// A property line is one of: "key": "value", key: "value", "key": value,
// or key: value. The value may be empty in the last two forms.
var propertyRE = regexp.MustCompile(`^(?:` +
	`\s*"([^"]+)"\s*:\s*"([^"]+)"\s*` +
	`|\s*([^":]+)\s*:\s*"([^"]+)"\s*` +
	`|\s*"([^"]+)"\s*:\s*(.*\S)?\s*` +
	`|\s*([^:]+)\s*:\s*(.*\S)?\s*` +
	`)$`)

// Property is a single key/value line in the front matter.
type Property struct {
	Key         string
	Value       string
	Line        int // 1-based line number in the file
	QuotedKey   bool
	QuotedValue bool
}

// Line is a front-matter line that is not a simple property, such as a list
// item or a blank line.
type Line struct {
	Text string
	Line int
}

// Document is the result of scanning one note.
type Document struct {
	// Fields is the block decoded as YAML; nil when there is no block or it
	// does not decode.
	Fields     map[string]any
	YAMLErr    error
	Properties []Property
	Unmatched  []Line

	// HasFrontMatter reports whether the first line opened a block.
	HasFrontMatter bool
	// Terminated reports whether a closing delimiter was found before EOF.
	Terminated bool
	// BodyLine is the 1-based line where the note body starts.
	BodyLine int
}

// ScanFile scans the note at path.
func ScanFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()

	doc, err := Scan(f)
	if err != nil {
		return Document{}, fmt.Errorf("scan %s: %w", path, err)
	}
	return doc, nil
}

// Scan reads front matter from r. A block exists only when the first line
// starts with the delimiter; it ends at the next line starting with the
// delimiter or at EOF. Lines after the block are not read.
func Scan(r io.Reader) (Document, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		doc   Document
		block []string
		n     int
	)
	for sc.Scan() {
		n++
		text := strings.TrimSuffix(sc.Text(), "\r")

		if n == 1 {
			if !strings.HasPrefix(text, Delimiter) {
				doc.BodyLine = 1
				return doc, nil
			}
			doc.HasFrontMatter = true
			continue
		}
		if strings.HasPrefix(text, Delimiter) {
			doc.Terminated = true
			break
		}

		block = append(block, text)
		if p, ok := parseProperty(text); ok {
			p.Line = n
			doc.Properties = append(doc.Properties, p)
		} else {
			doc.Unmatched = append(doc.Unmatched, Line{Line: n, Text: text})
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return Document{}, fmt.Errorf("line %d longer than %d bytes: %w", n+1, maxLineSize, err)
		}
		return Document{}, err
	}
	if !doc.HasFrontMatter {
		return doc, nil
	}

	doc.BodyLine = n + 1
	doc.Fields, doc.YAMLErr = decodeYAML(block)
	return doc, nil
}

func parseProperty(text string) (Property, bool) {
	m := propertyRE.FindStringSubmatch(text)
	if m == nil {
		return Property{}, false
	}
	switch {
	case m[1] != "":
		return Property{Key: m[1], Value: m[2], QuotedKey: true, QuotedValue: true}, true
	case m[3] != "":
		return Property{Key: strings.TrimSpace(m[3]), Value: m[4], QuotedValue: true}, true
	case m[5] != "":
		return Property{Key: m[5], Value: m[6], QuotedKey: true}, true
	default:
		return Property{Key: strings.TrimSpace(m[7]), Value: m[8]}, true
	}
}

func decodeYAML(block []string) (map[string]any, error) {
	if len(block) == 0 {
		return nil, nil
	}
	var fields map[string]any
	if err := yaml.Unmarshal([]byte(strings.Join(block, "\n")), &fields); err != nil {
		return nil, fmt.Errorf("decode front matter: %w", err)
	}
	return fields, nil
}

// Get returns the decoded value of key, if present.
func (d Document) Get(key string) (any, bool) {
	v, ok := d.Fields[key]
	return v, ok
}
