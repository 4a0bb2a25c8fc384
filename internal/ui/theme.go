package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var colorNames = map[string]color.Attribute{
	"black":   color.FgBlack,
	"red":     color.FgRed,
	"green":   color.FgGreen,
	"yellow":  color.FgYellow,
	"blue":    color.FgBlue,
	"magenta": color.FgMagenta,
	"cyan":    color.FgCyan,
	"white":   color.FgWhite,

	"hiblack":   color.FgHiBlack,
	"hired":     color.FgHiRed,
	"higreen":   color.FgHiGreen,
	"hiyellow":  color.FgHiYellow,
	"hiblue":    color.FgHiBlue,
	"himagenta": color.FgHiMagenta,
	"hicyan":    color.FgHiCyan,
	"hiwhite":   color.FgHiWhite,
}

// Theme holds the colours of the decision trail.
type Theme struct {
	Copy   *color.Color
	Skip   *color.Color
	Delete *color.Color
	Fail   *color.Color
	Muted  *color.Color
}

// DefaultTheme returns the built-in colours.
func DefaultTheme() Theme {
	return Theme{
		Copy:   color.New(color.FgGreen),
		Skip:   color.New(color.FgHiBlack),
		Delete: color.New(color.FgYellow),
		Fail:   color.New(color.FgRed, color.Bold),
		Muted:  color.New(color.FgHiBlack),
	}
}

// ParseColor resolves a colour name such as "green" or "hiyellow".
func ParseColor(name string) (*color.Color, error) {
	attr, ok := colorNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown colour %q", name)
	}
	return color.New(attr), nil
}

// WithOverrides replaces theme colours for each non-nil name.
func (t Theme) WithOverrides(copyName, skip, del, fail *string) (Theme, error) {
	for _, o := range []struct {
		name *string
		dst  **color.Color
	}{
		{copyName, &t.Copy},
		{skip, &t.Skip},
		{del, &t.Delete},
		{fail, &t.Fail},
	} {
		if o.name == nil {
			continue
		}
		c, err := ParseColor(*o.name)
		if err != nil {
			return t, err
		}
		*o.dst = c
	}
	return t, nil
}

func paint(c *color.Color, enabled bool, s string) string {
	if !enabled || c == nil {
		return s
	}
	return c.Sprint(s)
}
