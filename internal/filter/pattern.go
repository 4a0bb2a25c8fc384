package filter

import (
	"regexp"
	"strings"
)

// pattern is a compiled exclude glob.
type pattern struct {
	re       *regexp.Regexp
	original string
}

// compilePattern turns a glob into a matcher over slash-separated relative
// paths:
//
//	*.tmp        base name at any depth
//	drafts       a file or directory named drafts at any depth
//	/drafts      only at the root
//	a/b/*.md     anchored to the root (any pattern containing /)
//	cache/       only directories named cache
//	**/x.md      ** crosses directory separators
//
// A pattern that names a directory also matches everything beneath it.
func compilePattern(glob string) (*pattern, error) {
	g := strings.TrimSpace(glob)
	if g == "" {
		return nil, errEmptyPattern
	}

	dirOnly := strings.HasSuffix(g, "/")
	g = strings.TrimSuffix(g, "/")

	anchored := strings.HasPrefix(g, "/") || strings.Contains(g, "/")
	g = strings.TrimPrefix(g, "/")
	if g == "" {
		return nil, errEmptyPattern
	}

	var b strings.Builder
	if anchored {
		b.WriteString("^")
	} else {
		b.WriteString("(^|/)")
	}
	b.WriteString(globToRegex(g))
	if dirOnly {
		b.WriteString("/")
	} else {
		b.WriteString("(/|$)")
	}

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, err
	}
	return &pattern{re: re, original: glob}, nil
}

func (p *pattern) match(relPath string) bool {
	return p.re.MatchString(relPath)
}

// globToRegex translates *, ** and ? and character classes; everything else
// is matched literally.
func globToRegex(glob string) string {
	var b strings.Builder
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch {
		case c == '*' && strings.HasPrefix(glob[i:], "**/"):
			b.WriteString("(.*/)?")
			i += 2
		case c == '*' && strings.HasPrefix(glob[i:], "**"):
			b.WriteString(".*")
			i++
		case c == '*':
			b.WriteString("[^/]*")
		case c == '?':
			b.WriteString("[^/]")
		case c == '[':
			end := strings.IndexByte(glob[i+1:], ']')
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			class := glob[i+1 : i+1+end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + class + "]")
			i += end + 1
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return b.String()
}
