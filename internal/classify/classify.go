// Package classify maps file paths to a semantic kind used for reporting and
// for picking which files the clean command inspects. The kind never affects
// sync decisions.
package classify

import (
	"path"
	"path/filepath"
	"strings"
)

// Kind is the semantic type of a file in a notes vault.
type Kind int

const (
	Unknown Kind = iota
	Directory
	Markdown
	Jpeg
	Png
	Svg
	Canvas
	Excalidraw
	JSON
	Pdf
	Document
	Javascript
	Stylesheet
	Presentation
	Git
)

var kindNames = [...]string{
	Unknown:      "unknown",
	Directory:    "directory",
	Markdown:     "markdown",
	Jpeg:         "jpeg",
	Png:          "png",
	Svg:          "svg",
	Canvas:       "canvas",
	Excalidraw:   "excalidraw",
	JSON:         "json",
	Pdf:          "pdf",
	Document:     "document",
	Javascript:   "javascript",
	Stylesheet:   "stylesheet",
	Presentation: "presentation",
	Git:          "git",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsNote reports whether files of this kind carry note text.
func (k Kind) IsNote() bool { return k == Markdown }

// Rule maps a path to a kind when Match reports true.
type Rule struct {
	Name  string
	Match func(name, ext string) bool
	Kind  Kind
}

// NameIs matches an exact base name.
func NameIs(names ...string) func(name, ext string) bool {
	return func(name, _ string) bool {
		for _, n := range names {
			if name == n {
				return true
			}
		}
		return false
	}
}

// ExtIs matches a lower-cased extension (without the dot).
func ExtIs(exts ...string) func(name, ext string) bool {
	return func(_, ext string) bool {
		if ext == "" {
			return false
		}
		for _, e := range exts {
			if ext == e {
				return true
			}
		}
		return false
	}
}

// DefaultRules is the built-in rule table. Name rules come before extension
// rules; first match wins.
var DefaultRules = []Rule{
	{Name: "gitignore-file", Match: NameIs(".gitignore"), Kind: Git},

	{Name: "markdown", Match: ExtIs("md", "markdown"), Kind: Markdown},
	{Name: "jpeg", Match: ExtIs("jpg", "jpeg"), Kind: Jpeg},
	{Name: "png", Match: ExtIs("png"), Kind: Png},
	{Name: "svg", Match: ExtIs("svg"), Kind: Svg},
	{Name: "pdf", Match: ExtIs("pdf"), Kind: Pdf},
	{Name: "json", Match: ExtIs("json"), Kind: JSON},
	{Name: "javascript", Match: ExtIs("js"), Kind: Javascript},
	{Name: "canvas", Match: ExtIs("canvas"), Kind: Canvas},
	{Name: "excalidraw", Match: ExtIs("excalidraw"), Kind: Excalidraw},
	{Name: "presentation", Match: ExtIs("pptx", "odp"), Kind: Presentation},
	{Name: "document", Match: ExtIs("docx"), Kind: Document},
	{Name: "stylesheet", Match: ExtIs("css"), Kind: Stylesheet},
	{Name: "gitignore-ext", Match: ExtIs("gitignore"), Kind: Git},
}

// Classifier applies an ordered rule list, then an optional content
// inspection hook.
type Classifier struct {
	rules []Rule

	// Inspect is consulted when no rule matches. It receives the relative
	// path and must not mutate anything. Nil means Unknown.
	Inspect func(relPath string) Kind
}

// New creates a classifier from rules. With no rules it uses DefaultRules.
func New(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

var defaultClassifier = New()

// Classify returns the kind of relPath using the default rule table.
func Classify(relPath string) Kind {
	return defaultClassifier.Classify(relPath)
}

// Classify returns the kind of relPath. It never fails. A nil classifier
// uses the default rule table.
func (c *Classifier) Classify(relPath string) Kind {
	if c == nil {
		c = defaultClassifier
	}
	name := path.Base(filepath.ToSlash(relPath))
	ext := Ext(name)

	for _, r := range c.rules {
		if r.Match(name, ext) {
			return r.Kind
		}
	}

	if c.Inspect != nil {
		if k := c.Inspect(relPath); k != Unknown {
			return k
		}
	}
	return Unknown
}

// Ext returns the lower-cased extension of a file name without the dot.
// Dot-files without a further dot (".gitignore") have no extension.
func Ext(name string) string {
	name = path.Base(filepath.ToSlash(name))
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

