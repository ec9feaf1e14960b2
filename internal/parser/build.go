package parser

import (
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/MuntasirSZN/d2o/internal/model"
)

// repeatableMarkers flag options whose description says they can be given
// more than once. Matching is a case-insensitive substring search.
var repeatableMarkers = []string{
	"may be specified multiple times",
	"can be specified multiple times",
	"may be specified more than once",
	"can be specified more than once",
	"may be given multiple times",
	"can be given multiple times",
	"may be used multiple times",
	"can be used multiple times",
	"may be repeated",
	"can be repeated",
	"more than once",
	"(repeatable)",
}

var repeatableMatcher = ahocorasick.NewStringMatcher(repeatableMarkers)

func isRepeatable(desc, placeholder string) bool {
	if strings.HasSuffix(placeholder, "...") {
		return true
	}
	return len(repeatableMatcher.MatchThreadSafe([]byte(strings.ToLower(desc)))) > 0
}

// entry is a record with the text of its continuation lines.
type entry struct {
	rec  Record
	desc []string
}

func (e *entry) description() string {
	parts := make([]string, 0, 1+len(e.desc))
	if e.rec.Text != "" {
		parts = append(parts, e.rec.Text)
	}
	parts = append(parts, e.desc...)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// Build assembles records into the command's own surface. Options keep
// their order of first appearance; a later option reusing a long name is
// dropped and a reused short name is removed from the later option.
// Subcommands come back as unresolved placeholder nodes.
func Build(name string, recs []Record) *model.Command {
	cmd := model.NewCommand(name)

	var (
		entries []*entry
		last    *entry
		usage   []string
	)
	for _, r := range recs {
		switch r.Kind {
		case RecordOption, RecordPositional, RecordSubcommand:
			last = &entry{rec: r}
			entries = append(entries, last)
		case RecordContinuation:
			if last != nil {
				last.desc = append(last.desc, r.Text)
			}
		case RecordUsage:
			usage = append(usage, r.Text)
		case RecordSummary:
			if cmd.Summary == "" {
				cmd.Summary = strings.TrimSpace(r.Text)
			}
		}
	}
	cmd.Usage = strings.Join(usage, "\n")

	seenFlags := map[string]bool{}
	positionals := map[string]int{}
	for _, e := range entries {
		switch e.rec.Kind {
		case RecordOption:
			if opt, ok := buildOption(e, seenFlags); ok {
				cmd.Options = append(cmd.Options, opt)
			}
		case RecordPositional:
			addPositional(cmd, positionals, e)
		case RecordSubcommand:
			addSubcommand(cmd, e)
		}
	}
	return cmd
}

func buildOption(e *entry, seen map[string]bool) (model.Option, bool) {
	var opt model.Option
	for _, n := range e.rec.Names {
		switch {
		case strings.HasPrefix(n, "--") && opt.Long == "":
			opt.Long = n[2:]
		case len(n) == 2 && n[0] == '-' && opt.Short == "":
			opt.Short = n[1:]
		default:
			opt.Aliases = appendUnique(opt.Aliases, n)
		}
	}

	if opt.Long != "" && seen["--"+opt.Long] {
		return model.Option{}, false
	}
	if opt.Short != "" && seen["-"+opt.Short] {
		opt.Short = ""
	}
	aliases := opt.Aliases[:0]
	for _, a := range opt.Aliases {
		if !seen[a] && a != "--"+opt.Long && a != "-"+opt.Short {
			aliases = append(aliases, a)
		}
	}
	opt.Aliases = aliases
	if len(opt.Aliases) == 0 {
		opt.Aliases = nil
	}
	if opt.Short == "" && opt.Long == "" && len(opt.Aliases) == 0 {
		return model.Option{}, false
	}
	for _, n := range opt.Names() {
		seen[n] = true
	}

	opt.Placeholder = e.rec.Placeholder
	opt.Description = e.description()
	opt.TakesValue = opt.Placeholder != ""
	opt.Repeatable = isRepeatable(opt.Description, opt.Placeholder)
	return opt, true
}

// addPositional merges positionals by name. The usage line usually lists
// them first; a later ARGUMENTS entry only fills in the description.
func addPositional(cmd *model.Command, index map[string]int, e *entry) {
	name := e.rec.Names[0]
	key := strings.ToLower(name)
	desc := e.description()
	if i, ok := index[key]; ok {
		if cmd.Positionals[i].Description == "" {
			cmd.Positionals[i].Description = desc
		}
		return
	}
	index[key] = len(cmd.Positionals)
	cmd.Positionals = append(cmd.Positionals, model.Positional{
		Name:        name,
		Description: desc,
		Required:    e.rec.Required,
		Variadic:    e.rec.Variadic,
	})
}

// addSubcommand adds a placeholder node unless the name or one of its
// aliases is already listed, in which case the entries are merged.
func addSubcommand(cmd *model.Command, e *entry) {
	name := e.rec.Names[0]
	if name == cmd.Name {
		return
	}
	aliases := e.rec.Names[1:]
	desc := e.description()

	if existing := cmd.Subcommand(name); existing != nil {
		for _, a := range aliases {
			if a != existing.Name() {
				existing.Aliases = appendUnique(existing.Aliases, a)
			}
		}
		if existing.Command.Summary == "" {
			existing.Command.Summary = desc
		}
		return
	}

	sub := model.NewCommand(name)
	sub.Summary = desc
	node := &model.Node{Command: sub}
	for _, a := range aliases {
		if a != name && cmd.Subcommand(a) == nil {
			node.Aliases = appendUnique(node.Aliases, a)
		}
	}
	cmd.Subcommands = append(cmd.Subcommands, node)
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
