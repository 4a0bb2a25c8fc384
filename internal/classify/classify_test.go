package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDefaultTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want Kind
	}{
		{"notes/a.md", Markdown},
		{"notes/A.MD", Markdown},
		{"long.markdown", Markdown},
		{"img/photo.jpg", Jpeg},
		{"img/photo.JPEG", Jpeg},
		{"img/shot.png", Png},
		{"img/logo.svg", Svg},
		{"boards/plan.canvas", Canvas},
		{"boards/sketch.excalidraw", Excalidraw},
		{".obsidian/app.json", JSON},
		{"papers/x.pdf", Pdf},
		{"docs/report.docx", Document},
		{"talks/deck.pptx", Presentation},
		{"talks/deck.odp", Presentation},
		{"scripts/run.js", Javascript},
		{"snippets/theme.css", Stylesheet},
		{".gitignore", Git},
		{"sub/.gitignore", Git},
		{"global.gitignore", Git},
		{"README", Unknown},
		{"archive.tar.gz", Unknown},
		{"trailingdot.", Unknown},
		{".hidden", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.path))
		})
	}
}

func TestExt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "md", Ext("notes/a.MD"))
	assert.Equal(t, "gz", Ext("a.tar.gz"))
	assert.Empty(t, Ext(".gitignore"))
	assert.Empty(t, Ext("Makefile"))
	assert.Empty(t, Ext("dir.d/Makefile"))
}

func TestNameRuleWinsOverExtension(t *testing.T) {
	t.Parallel()

	c := New(
		Rule{Name: "readme", Match: NameIs("README.md"), Kind: Document},
		Rule{Name: "markdown", Match: ExtIs("md"), Kind: Markdown},
	)
	assert.Equal(t, Document, c.Classify("README.md"))
	assert.Equal(t, Markdown, c.Classify("other.md"))
}

func TestInspectHook(t *testing.T) {
	t.Parallel()

	c := New()
	assert.Equal(t, Unknown, c.Classify("blob"))

	var seen string
	c.Inspect = func(relPath string) Kind {
		seen = relPath
		return Pdf
	}
	assert.Equal(t, Pdf, c.Classify("dir/blob"))
	assert.Equal(t, "dir/blob", seen)

	// Rules still win over inspection.
	assert.Equal(t, Markdown, c.Classify("dir/x.md"))
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "markdown", Markdown.String())
	assert.Equal(t, "git", Git.String())
	assert.Equal(t, "unknown", Kind(99).String())
	assert.True(t, Markdown.IsNote())
	assert.False(t, Png.IsNote())
}

func TestNilClassifierUsesDefaults(t *testing.T) {
	t.Parallel()

	var c *Classifier
	assert.Equal(t, Markdown, c.Classify("a.md"))
}
