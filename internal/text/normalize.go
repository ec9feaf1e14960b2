// Package text turns raw man or --help output into clean ASCII-leaning lines
// grouped into labeled sections.
package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/width"

	"github.com/MuntasirSZN/d2o/internal/source"
)

// Preamble is the heading given to text that appears before any heading.
const Preamble = "PREAMBLE"

const tabWidth = 8

// Line is one normalized line with its indentation measured in columns.
type Line struct {
	Indent int
	Text   string
}

// Blank reports whether the line carries no text.
func (l Line) Blank() bool {
	return l.Text == ""
}

// Section is a heading and the lines that follow it up to the next heading.
type Section struct {
	Heading string
	Lines   []Line
}

// Text is the normalized form of a RawDocument.
type Text struct {
	Kind     source.Kind
	Sections []Section
}

// Section returns the first section whose heading equals name.
func (t *Text) Section(name string) *Section {
	for i := range t.Sections {
		if t.Sections[i].Heading == name {
			return &t.Sections[i]
		}
	}
	return nil
}

// Normalize cleans the document text and splits it into sections. It never
// fails: text without recognizable headings ends up in a single PREAMBLE.
func Normalize(doc *source.RawDocument) *Text {
	if doc == nil {
		return &Text{Sections: []Section{{Heading: Preamble}}}
	}
	lines := CleanLines(string(doc.Text))
	return &Text{
		Kind:     doc.Kind,
		Sections: split(lines, doc.Kind),
	}
}

// CleanLines applies every character-level normalization, strips panel
// frames and returns the resulting lines with trailing whitespace removed.
func CleanLines(raw string) []Line {
	s := raw
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "?")
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = removeOverstrike(s)
	s = ansi.Strip(s)
	s = toASCII(s)

	parts := strings.Split(s, "\n")
	for len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}

	lines := make([]Line, 0, len(parts))
	for _, part := range parts {
		expanded := unframe(strings.TrimRight(expandTabs(part), " "))
		trimmed := strings.TrimLeft(expanded, " ")
		indent := len(expanded) - len(trimmed)
		if trimmed == "" {
			indent = 0
		}
		lines = append(lines, Line{Indent: indent, Text: trimmed})
	}
	return lines
}

// removeOverstrike drops nroff bold and underline sequences, keeping the
// character after each backspace: "N\bNA\bA" becomes "NA", "_\bx" becomes "x".
func removeOverstrike(s string) string {
	if !strings.ContainsRune(s, '\b') {
		return s
	}
	runes := []rune(s)
	out := make([]rune, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\b' {
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			continue
		}
		out = append(out, runes[i])
	}
	return string(out)
}

// toASCII folds full-width forms, maps box drawing and typographic
// characters and drops remaining control characters.
func toASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < utf8.RuneSelf {
			if r == '\n' || r == '\t' || !unicode.IsControl(r) {
				b.WriteRune(r)
			}
			continue
		}
		if a, ok := boxToASCII(r); ok {
			b.WriteRune(a)
			continue
		}
		if repl, ok := asciiFor[r]; ok {
			b.WriteString(repl)
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if folded := width.Narrow.String(string(r)); folded != "" {
			b.WriteString(folded)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func expandTabs(s string) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}
