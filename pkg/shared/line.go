package shared

import "strings"

// Span styles understood by the renderers.
const (
	StyleDir    = "dir"    // directory entries in ls
	StylePrompt = "prompt" // user@host in the prompt, coloured by theme
	StylePath   = "path"   // cwd in the prompt
	StyleAccent = "accent" // highlighted labels (neofetch)
)

// Span is a run of text with an optional style name.
type Span struct {
	Text  string `json:"text"`
	Style string `json:"style,omitempty"`
}

// Line is one transcript line made of spans.
type Line struct {
	Spans []Span `json:"spans"`
}

// Plain builds an unstyled line.
func Plain(text string) Line {
	return Line{Spans: []Span{{Text: text}}}
}

// Styled builds a line holding a single styled span.
func Styled(text, style string) Line {
	return Line{Spans: []Span{{Text: text, Style: style}}}
}

// PlainLines converts strings into unstyled lines.
func PlainLines(texts ...string) []Line {
	lines := make([]Line, len(texts))
	for i, t := range texts {
		lines[i] = Plain(t)
	}
	return lines
}

// String drops styling and returns the raw text.
func (l Line) String() string {
	var b strings.Builder
	for _, s := range l.Spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Texts returns the raw text of each line.
func Texts(lines []Line) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return out
}
