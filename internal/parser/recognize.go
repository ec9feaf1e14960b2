package parser

import (
	"fmt"
	"strings"

	"github.com/MuntasirSZN/d2o/internal/text"
)

// RecordKind tells what a recognized line contributes to the model.
type RecordKind int

const (
	RecordOption RecordKind = iota
	RecordPositional
	RecordSubcommand
	RecordContinuation
	RecordUsage
	RecordSummary
)

func (k RecordKind) String() string {
	switch k {
	case RecordOption:
		return "option"
	case RecordPositional:
		return "positional"
	case RecordSubcommand:
		return "subcommand"
	case RecordContinuation:
		return "continuation"
	case RecordUsage:
		return "usage"
	case RecordSummary:
		return "summary"
	default:
		return "unknown"
	}
}

// maxOptionShift is how far right of the section's flag baseline an option
// line may start and still open a new option.
const maxOptionShift = 6

// Record is one recognized line. Continuations belong to the closest
// preceding option, positional or subcommand record.
type Record struct {
	Kind    RecordKind
	Section string
	Indent  int

	// Names holds option spellings as typed ("-v", "--verbose"), a
	// subcommand name followed by its aliases, or a positional name.
	Names       []string
	Placeholder string
	Text        string

	Required bool
	Variadic bool
}

func (r Record) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %-10s", r.Kind, r.Section)
	if len(r.Names) > 0 {
		fmt.Fprintf(&b, " %s", strings.Join(r.Names, ","))
	}
	if r.Placeholder != "" {
		fmt.Fprintf(&b, " (%s)", r.Placeholder)
	}
	if r.Kind == RecordPositional {
		fmt.Fprintf(&b, " required=%t variadic=%t", r.Required, r.Variadic)
	}
	if r.Text != "" {
		fmt.Fprintf(&b, " %q", r.Text)
	}
	return b.String()
}

// Recognize turns normalized sections into records in document order.
func Recognize(t *text.Text) []Record {
	if t == nil {
		return nil
	}
	var recs []Record
	hasName := false
	for _, sec := range t.Sections {
		if classify(sec.Heading) == className {
			hasName = true
		}
	}
	for _, sec := range t.Sections {
		switch classify(sec.Heading) {
		case classUsage:
			recs = append(recs, usageRecords(sec)...)
		case className:
			recs = append(recs, nameRecords(sec)...)
		case classExamples:
		default:
			if sec.Heading == text.Preamble && !hasName {
				recs = append(recs, preambleSummary(sec)...)
			}
			recs = append(recs, bodyRecords(sec)...)
		}
	}
	return recs
}

func usageRecords(sec text.Section) []Record {
	var recs []Record
	first := true
	for _, l := range sec.Lines {
		if l.Blank() {
			continue
		}
		recs = append(recs, Record{Kind: RecordUsage, Section: sec.Heading, Indent: l.Indent, Text: l.Text})
		if first {
			recs = append(recs, usagePositionals(sec.Heading, l)...)
			first = false
		}
	}
	return recs
}

// usagePositionals reads positionals off a synopsis line such as
// "cp [OPTION]... SOURCE DEST". A field right after a flag is its value.
func usagePositionals(heading string, l text.Line) []Record {
	var recs []Record
	afterFlag := false
	for _, tok := range fields(l.Text, "") {
		if strings.HasPrefix(tok.text, "-") {
			afterFlag = !strings.Contains(tok.text, "=")
			continue
		}
		if afterFlag {
			afterFlag = false
			continue
		}
		name, required, variadic, ok := parsePositional(tok.text, false)
		if !ok {
			continue
		}
		recs = append(recs, Record{
			Kind:     RecordPositional,
			Section:  heading,
			Indent:   l.Indent,
			Names:    []string{name},
			Required: required,
			Variadic: variadic,
		})
	}
	return recs
}

// nameRecords reads the summary from a man page NAME line "ls - list files".
func nameRecords(sec text.Section) []Record {
	for _, l := range sec.Lines {
		if l.Blank() {
			continue
		}
		summary := l.Text
		if _, after, ok := strings.Cut(summary, " - "); ok {
			summary = after
		}
		return []Record{{Kind: RecordSummary, Section: sec.Heading, Indent: l.Indent, Text: strings.TrimSpace(summary)}}
	}
	return nil
}

// preambleSummary takes the first prose line before any heading, skipping
// version banners and option lines.
func preambleSummary(sec text.Section) []Record {
	for _, l := range sec.Lines {
		if l.Blank() || versionLinePattern.MatchString(l.Text) {
			continue
		}
		if isFlagStart(l.Text, false) {
			return nil
		}
		return []Record{{Kind: RecordSummary, Section: sec.Heading, Indent: l.Indent, Text: l.Text}}
	}
	return nil
}

// bodyRecords recognizes option lines in any section and, depending on the
// heading, subcommand or positional entries. An option line opens a new
// record when it sits near the flag baseline and left of the current
// description column; deeper lines continue the current record.
func bodyRecords(sec text.Section) []Record {
	class := classify(sec.Heading)
	windows := class == classOptions
	flagBase := flagBaseline(sec.Lines, windows)
	entryBase := -1
	switch class {
	case classCommands:
		entryBase = entryBaseline(sec.Lines, isCommandEntry)
	case classArguments:
		entryBase = entryBaseline(sec.Lines, isArgumentEntry)
	}

	var (
		recs     []Record
		open     bool
		openKind RecordKind
		openAt   int
		descCol  int
	)
	for _, l := range sec.Lines {
		if l.Blank() {
			continue
		}

		if flagBase >= 0 && l.Indent <= flagBase+maxOptionShift && isFlagStart(l.Text, windows) {
			newOption := !open || openKind != RecordOption ||
				(descCol > 0 && l.Indent < descCol) ||
				(descCol == 0 && l.Indent <= openAt)
			if newOption {
				if spec, ok := parseOptionLine(l.Text, windows); ok {
					recs = append(recs, Record{
						Kind:        RecordOption,
						Section:     sec.Heading,
						Indent:      l.Indent,
						Names:       spec.names,
						Placeholder: spec.placeholder,
						Text:        spec.desc,
					})
					open, openKind, openAt = true, RecordOption, l.Indent
					descCol = 0
					if spec.descOffset >= 0 {
						descCol = l.Indent + spec.descOffset
					}
					continue
				}
			}
		}

		if open && l.Indent > openAt {
			if openKind == RecordOption && descCol == 0 {
				descCol = l.Indent
			}
			recs = append(recs, Record{Kind: RecordContinuation, Section: sec.Heading, Indent: l.Indent, Text: l.Text})
			continue
		}
		open = false

		if entryBase < 0 || l.Indent != entryBase {
			continue
		}
		var (
			rec Record
			ok  bool
		)
		if class == classCommands {
			rec, ok = commandRecord(l)
		} else {
			rec, ok = argumentRecord(l)
		}
		if ok {
			rec.Section = sec.Heading
			recs = append(recs, rec)
			open, openKind, openAt = true, rec.Kind, l.Indent
		}
	}
	return recs
}

// flagBaseline is the smallest indent of a flag line, or -1.
func flagBaseline(lines []text.Line, windows bool) int {
	base := -1
	for _, l := range lines {
		if isFlagStart(l.Text, windows) && (base < 0 || l.Indent < base) {
			base = l.Indent
		}
	}
	return base
}

// entryBaseline is the smallest indent of an entry that has a description,
// falling back to the first entry without one.
func entryBaseline(lines []text.Line, match func(string) (bool, bool)) int {
	base, fallback := -1, -1
	for _, l := range lines {
		if l.Blank() || isFlagStart(l.Text, false) {
			continue
		}
		ok, described := match(l.Text)
		if !ok {
			continue
		}
		if described && (base < 0 || l.Indent < base) {
			base = l.Indent
		}
		if fallback < 0 {
			fallback = l.Indent
		}
	}
	if base < 0 {
		return fallback
	}
	return base
}

func isCommandEntry(s string) (bool, bool) {
	m := subcommandPattern.FindStringSubmatch(s)
	if m == nil {
		return false, false
	}
	return true, m[3] != ""
}

func isArgumentEntry(s string) (bool, bool) {
	head, descAt := splitColumns(s)
	_, _, _, ok := parsePositional(head, true)
	return ok, descAt >= 0
}

func commandRecord(l text.Line) (Record, bool) {
	m := subcommandPattern.FindStringSubmatch(l.Text)
	if m == nil {
		return Record{}, false
	}
	names := []string{m[1]}
	for _, alias := range strings.FieldsFunc(m[2], func(r rune) bool {
		return r == ',' || r == '|' || r == ' '
	}) {
		names = append(names, alias)
	}
	return Record{Kind: RecordSubcommand, Indent: l.Indent, Names: names, Text: m[3]}, true
}

func argumentRecord(l text.Line) (Record, bool) {
	head, descAt := splitColumns(l.Text)
	name, required, variadic, ok := parsePositional(head, true)
	if !ok {
		return Record{}, false
	}
	rec := Record{Kind: RecordPositional, Indent: l.Indent, Names: []string{name}, Required: required, Variadic: variadic}
	if descAt >= 0 {
		rec.Text = l.Text[descAt:]
	}
	return rec, true
}
