package text

import (
	"strings"
	"unicode"

	"github.com/MuntasirSZN/d2o/internal/source"
)

const (
	maxHeadingWords = 10
	maxHeadingLen   = 80
)

// headingRule recognizes a heading line and returns its canonical name and,
// for inline forms like "Usage: tool [OPTIONS]", the text that follows it.
type headingRule func(l Line) (heading string, rest string, ok bool)

// rulesFor returns the heading rules to try for a source kind, most specific
// first. split falls back to the next set when a set finds no heading.
func rulesFor(kind source.Kind) [][]headingRule {
	man := []headingRule{capsHeading}
	help := []headingRule{inlineUsage, capsHeading, colonHeading}
	if kind == source.KindMan {
		return [][]headingRule{man, help}
	}
	return [][]headingRule{help, man}
}

func split(lines []Line, kind source.Kind) []Section {
	for _, rules := range rulesFor(kind) {
		if sections, found := splitWith(lines, rules); found {
			return sections
		}
	}
	return []Section{{Heading: Preamble, Lines: trimBlank(lines)}}
}

func splitWith(lines []Line, rules []headingRule) ([]Section, bool) {
	current := Section{Heading: Preamble}
	var sections []Section
	found := false

	// usage tracks the heading line of an open USAGE section.
	var (
		usageIndent int
		usageInline bool
	)

	flush := func() {
		current.Lines = trimBlank(current.Lines)
		if current.Heading != Preamble || len(current.Lines) > 0 {
			sections = append(sections, current)
		}
	}

	for _, l := range lines {
		heading, rest, ok := matchHeading(l, rules)
		if !ok {
			if current.Heading == "USAGE" && endsUsage(current.Lines, l, usageIndent, usageInline) {
				flush()
				current = Section{Heading: Preamble}
			}
			current.Lines = append(current.Lines, l)
			continue
		}
		found = true
		flush()
		current = Section{Heading: heading}
		usageIndent, usageInline = l.Indent, rest != ""
		if rest != "" {
			current.Lines = append(current.Lines, Line{Indent: l.Indent + len(l.Text) - len(rest), Text: rest})
		}
	}
	flush()
	return sections, found
}

// endsUsage reports whether l falls outside the synopsis block that started
// at a usage heading. An inline "Usage: tool ..." block ends at a blank line
// or at the first line not indented past the heading; a block under its own
// heading ends when such a line follows a blank one. Lines after the block go
// to a new PREAMBLE section.
func endsUsage(block []Line, l Line, headingIndent int, inline bool) bool {
	if l.Blank() || len(trimBlank(block)) == 0 {
		return false
	}
	afterBlank := block[len(block)-1].Blank()
	dedent := l.Indent <= headingIndent
	if inline {
		return afterBlank || dedent
	}
	return afterBlank && dedent
}

func matchHeading(l Line, rules []headingRule) (string, string, bool) {
	if l.Blank() || l.Indent > 1 {
		return "", "", false
	}
	first := rune(l.Text[0])
	if !unicode.IsLetter(first) {
		return "", "", false
	}
	for _, rule := range rules {
		if heading, rest, ok := rule(l); ok {
			return heading, rest, true
		}
	}
	return "", "", false
}

// capsHeading matches man-style headings: an all-caps word or short phrase
// with no trailing punctuation ("OPTIONS", "GLOBAL OPTIONS").
func capsHeading(l Line) (string, string, bool) {
	t := l.Text
	if len(t) > maxHeadingLen || strings.ContainsAny(t[len(t)-1:], ".,;:!?") {
		return "", "", false
	}
	if len(strings.Fields(t)) > maxHeadingWords/2 {
		return "", "", false
	}
	letters := 0
	for _, r := range t {
		switch {
		case unicode.IsLetter(r):
			if !unicode.IsUpper(r) {
				return "", "", false
			}
			letters++
		case r == ' ' || r == '-' || r == '_' || r == '/' || r == '&' || unicode.IsDigit(r):
		default:
			return "", "", false
		}
	}
	if letters < 2 {
		return "", "", false
	}
	return canonical(t), "", true
}

// colonHeading matches --help style headings: a short phrase ending in a
// colon ("Options:", "Available Commands:").
func colonHeading(l Line) (string, string, bool) {
	t := l.Text
	if !strings.HasSuffix(t, ":") || len(t) > maxHeadingLen {
		return "", "", false
	}
	if len(strings.Fields(t)) > maxHeadingWords {
		return "", "", false
	}
	return canonical(t), "", true
}

// inlineUsage matches "Usage: tool [OPTIONS]" and keeps the synopsis as the
// first line of the USAGE section.
func inlineUsage(l Line) (string, string, bool) {
	t := l.Text
	if len(t) < 7 || !strings.EqualFold(t[:6], "usage:") {
		return "", "", false
	}
	rest := strings.TrimSpace(t[6:])
	if rest == "" {
		return "USAGE", "", true
	}
	return "USAGE", rest, true
}

func canonical(heading string) string {
	heading = strings.TrimSuffix(strings.TrimSpace(heading), ":")
	return strings.ToUpper(strings.Join(strings.Fields(heading), " "))
}

func trimBlank(lines []Line) []Line {
	for len(lines) > 0 && lines[0].Blank() {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1].Blank() {
		lines = lines[:len(lines)-1]
	}
	return lines
}
