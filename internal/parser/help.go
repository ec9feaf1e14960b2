package parser

import (
	"regexp"
	"strings"
)

// optionNamePattern validates a flag name once its dashes are removed.
var optionNamePattern = regexp.MustCompile(`^[A-Za-z0-9?#@][A-Za-z0-9_.+-]*$`)

// upperPlaceholderPattern matches bare value names such as FILE or WHEN.
var upperPlaceholderPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_-]*(\.\.\.)?$`)

// subcommandPattern matches a COMMANDS entry: a name, optional aliases
// separated by "," or "|", then 2+ spaces and a description.
var subcommandPattern = regexp.MustCompile(`^([A-Za-z0-9][\w.:-]*)((?:\s*[,|]\s*[A-Za-z0-9][\w.:-]*)*)(?:\s{2,}(.*))?$`)

// bareWordPattern matches lowercase positional names in ARGUMENTS sections.
var bareWordPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// versionLinePattern matches "tool 1.2.3" banners printed before help text.
var versionLinePattern = regexp.MustCompile(`^\S+ v?\d+(\.\d+)+`)

// usageKeywords are generic words in usage lines that are not positionals.
var usageKeywords = map[string]bool{
	"OPTION": true, "OPTIONS": true, "FLAG": true, "FLAGS": true,
	"COMMAND": true, "COMMANDS": true, "SUBCOMMAND": true, "SUBCOMMANDS": true,
}

// token is a field of a line together with its byte offset.
type token struct {
	text  string
	start int
}

// fields splits s at whitespace and at any of seps, but never inside
// <...>, [...] or {...}.
func fields(s, seps string) []token {
	var (
		out   []token
		depth int
		start = -1
	)
	flush := func(end int) {
		if start >= 0 && end > start {
			out = append(out, token{text: s[start:end], start: start})
		}
		start = -1
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '<' || c == '[' || c == '{':
			depth++
		case (c == '>' || c == ']' || c == '}') && depth > 0:
			depth--
		case depth == 0 && (c == ' ' || strings.IndexByte(seps, c) >= 0):
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(s))
	return out
}

// splitColumns returns the text before the first run of two or more spaces
// outside brackets and the offset where the text after it starts. The
// offset is -1 when there is no such gap.
func splitColumns(s string) (string, int) {
	depth := 0
	for i := 0; i+1 < len(s); i++ {
		switch c := s[i]; {
		case c == '<' || c == '[' || c == '{':
			depth++
		case (c == '>' || c == ']' || c == '}') && depth > 0:
			depth--
		case c == ' ' && s[i+1] == ' ' && depth == 0:
			j := i
			for j < len(s) && s[j] == ' ' {
				j++
			}
			if j == len(s) {
				return s[:i], -1
			}
			return s[:i], j
		}
	}
	return s, -1
}

// isFlagStart reports whether a line begins with a flag-prefix token. Slash
// prefixed switches ("/?", "/s") are only accepted when windows is set.
func isFlagStart(s string, windows bool) bool {
	if len(s) < 2 {
		return false
	}
	switch s[0] {
	case '-':
		if s[1] == '-' {
			return len(s) > 2 && (isAlnum(s[2]) || s[2] == '[')
		}
		return isAlnum(s[1]) || strings.IndexByte("?#@", s[1]) >= 0
	case '/':
		if !windows {
			return false
		}
		end := strings.IndexByte(s, ' ')
		if end < 0 {
			end = len(s)
		}
		return (isAlnum(s[1]) || s[1] == '?') && end <= 12 && !strings.Contains(s[1:end], "/")
	}
	return false
}

// isFlagToken is isFlagStart for a single field.
func isFlagToken(s string, windows bool) bool {
	return isFlagStart(s, windows) && s != "--"
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// isPlaceholder reports whether a field names a flag value: <file>,
// [=WHEN], {a|b}, =VALUE or an all caps word.
func isPlaceholder(s string) bool {
	if s == "" {
		return false
	}
	switch s[0] {
	case '<', '[', '{', '=':
		return true
	}
	return upperPlaceholderPattern.MatchString(s)
}

// cleanPlaceholder drops the "=" and the optional-value brackets around a
// value name: "[=WHEN]" and "=WHEN" both become "WHEN".
func cleanPlaceholder(s string) string {
	if strings.HasPrefix(s, "[=") && strings.HasSuffix(s, "]") {
		s = s[2 : len(s)-1]
	}
	return strings.TrimPrefix(s, "=")
}

// splitFlag turns one flag field into its spellings and inline value:
// "--color[=WHEN]" gives ["--color"] and "WHEN", "--[no-]edit" gives
// ["--edit", "--no-edit"], "-n<num>" gives ["-n"] and "<num>".
func splitFlag(tok string, windows bool) ([]string, string) {
	tok = strings.TrimRight(tok, ":;")
	switch {
	case strings.HasPrefix(tok, "--"):
		body := tok[2:]
		negatable := strings.HasPrefix(body, "[no-]")
		if negatable {
			body = body[len("[no-]"):]
		}
		name, value := body, ""
		if i := strings.IndexAny(body, "=[<"); i > 0 {
			name, value = body[:i], cleanPlaceholder(body[i:])
		}
		if !optionNamePattern.MatchString(name) {
			return nil, ""
		}
		names := []string{"--" + name}
		if negatable {
			names = append(names, "--no-"+name)
		}
		return names, value
	case strings.HasPrefix(tok, "-"):
		body := tok[1:]
		if len(body) == 1 {
			return []string{tok}, ""
		}
		if strings.IndexByte("=[<", body[1]) >= 0 {
			return []string{"-" + body[:1]}, cleanPlaceholder(body[1:])
		}
		if i := strings.IndexAny(body, "=[<"); i > 0 {
			body, tok = body[:i], "-"+body[:i]
		}
		if !optionNamePattern.MatchString(body) {
			return nil, ""
		}
		return []string{tok}, ""
	case windows && strings.HasPrefix(tok, "/"):
		if i := strings.IndexByte(tok, ':'); i > 1 {
			return []string{tok[:i]}, tok[i+1:]
		}
		return []string{tok}, ""
	}
	return nil, ""
}

// optionSpec is the parsed flag column of an option line.
type optionSpec struct {
	names       []string
	placeholder string
	desc        string
	// descOffset is the byte offset of desc within the line, or -1.
	descOffset int
}

// parseOptionLine parses "-o, --output <DIR>  Output directory" style lines.
// Short and long forms on the same line are merged into one spec; fields
// that are neither flags nor value names start the description.
func parseOptionLine(line string, windows bool) (optionSpec, bool) {
	head, descAt := splitColumns(line)
	spec := optionSpec{descOffset: descAt}
	if descAt >= 0 {
		spec.desc = line[descAt:]
	}

	toks := fields(head, ",|")
	prevFlag := false
	for i, tok := range toks {
		switch {
		case isFlagToken(tok.text, windows):
			names, value := splitFlag(tok.text, windows)
			if names == nil {
				return optionSpec{}, false
			}
			spec.names = append(spec.names, names...)
			if spec.placeholder == "" {
				spec.placeholder = value
			}
			prevFlag = true
			continue
		case tok.text == "..." && spec.placeholder != "":
			spec.placeholder += "..."
		case len(spec.names) > 0 && isPlaceholder(tok.text):
			if spec.placeholder == "" {
				spec.placeholder = cleanPlaceholder(tok.text)
			}
		case prevFlag && i == len(toks)-1 && bareWordPattern.MatchString(tok.text):
			// man pages render value names in italics, which is lost here
			spec.placeholder = tok.text
		default:
			if len(spec.names) == 0 {
				return optionSpec{}, false
			}
			rest := head[tok.start:]
			if spec.desc != "" {
				rest += " " + spec.desc
			}
			spec.desc = rest
			spec.descOffset = tok.start
			return spec, true
		}
		prevFlag = false
	}
	return spec, len(spec.names) > 0
}

// parsePositional parses one positional token such as "<FILE>...",
// "[PATH]" or, when bare is set, a lowercase "filename".
func parsePositional(tok string, bare bool) (name string, required, variadic bool, ok bool) {
	t := tok
	if strings.HasSuffix(t, "...") {
		variadic, t = true, strings.TrimSuffix(t, "...")
	}
	required = true
	if strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]") {
		required, t = false, t[1:len(t)-1]
	}
	if strings.HasSuffix(t, "...") {
		variadic, t = true, strings.TrimSuffix(t, "...")
	}
	switch {
	case strings.HasPrefix(t, "<") && strings.HasSuffix(t, ">"):
		name = t[1 : len(t)-1]
	case upperPlaceholderPattern.MatchString(t):
		name = t
	case bare && bareWordPattern.MatchString(t):
		name = t
	default:
		return "", false, false, false
	}
	if !optionNamePattern.MatchString(name) || strings.HasPrefix(name, "-") || usageKeywords[strings.ToUpper(name)] {
		return "", false, false, false
	}
	return name, required, variadic, true
}
