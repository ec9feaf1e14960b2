package text

import (
	"regexp"
	"strings"
)

// asciiFor maps Unicode code points that commonly appear in help output to
// their closest ASCII rendering. Box drawing (U+2500..U+257F) is handled by
// boxToASCII; this table covers the rest.
var asciiFor = map[rune]string{
	'\u00a0': " ",   // no-break space
	'\u2002': "  ",  // en space
	'\u2003': "   ", // em space
	'\u2009': " ",   // thin space
	'\u202f': " ",   // narrow no-break space
	'\u2010': "-",   // hyphen
	'\u2011': "-",   // non-breaking hyphen
	'\u2012': "-",   // figure dash
	'\u2013': "-",   // en dash
	'\u2014': "--",  // em dash
	'\u2212': "-",   // minus sign
	'\u2018': "'",
	'\u2019': "'",
	'\u201c': "\"",
	'\u201d': "\"",
	'\u2022': "*", // bullet
	'\u00b7': "*", // middle dot
	'\u25cf': "*",
	'\u25aa': "*",
	'\u2026': "...",
	'\u2190': "<-",
	'\u2192': "->",
}

// boxToASCII converts a box drawing code point: horizontal strokes become
// '-', vertical strokes '|' and every corner, tee or cross '+'.
func boxToASCII(r rune) (rune, bool) {
	if r < 0x2500 || r > 0x257f {
		return 0, false
	}
	switch r {
	case 0x2500, 0x2501, 0x2504, 0x2505, 0x2508, 0x2509, 0x254c, 0x254d, 0x2550,
		0x2574, 0x2576, 0x2578, 0x257a, 0x257c, 0x257e:
		return '-', true
	case 0x2502, 0x2503, 0x2506, 0x2507, 0x250a, 0x250b, 0x254e, 0x254f, 0x2551,
		0x2575, 0x2577, 0x2579, 0x257b, 0x257d, 0x257f:
		return '|', true
	case 0x2571:
		return '/', true
	case 0x2572:
		return '\\', true
	case 0x2573:
		return 'X', true
	default:
		return '+', true
	}
}

// panelTitlePattern matches the top border of a titled panel once box
// drawing is folded to ASCII: "+- Options -------+".
var panelTitlePattern = regexp.MustCompile(`^\+-+ (.+?) -*\+$`)

// unframe removes panel borders drawn around help sections by rich and
// typer. A titled top border becomes a "Title:" heading, a plain border
// becomes a blank line and a framed row loses its "| " and " |" edges, so
// indentation inside the panel is measured from the frame.
func unframe(s string) string {
	t := strings.TrimSpace(s)
	if len(t) < 2 {
		return s
	}
	first, last := t[0], t[len(t)-1]
	switch {
	case first == '|' && last == '|':
		inner := strings.TrimRight(t[1:len(t)-1], " ")
		return strings.TrimPrefix(inner, " ")
	case first == '+' && last == '+':
		if m := panelTitlePattern.FindStringSubmatch(t); m != nil {
			return m[1] + ":"
		}
		if strings.Trim(t, "+-") == "" {
			return ""
		}
	}
	return s
}
