package generator

import (
	"fmt"
	"strings"

	"github.com/MuntasirSZN/d2o/internal/model"
)

// FishScript renders `complete` lines for every command in the tree.
// Nested commands are gated on the chain of subcommands seen so far.
func FishScript(tree *model.Node) string {
	root := tree.Name()

	var b strings.Builder
	visit(tree, func(path []string, n *model.Node) {
		cond := fishCondition(tree, path[1:])
		for _, opt := range n.Command.Options {
			if line := fishOption(root, cond, opt); line != "" {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}

		var subCond string
		if len(path) == 1 {
			subCond = "__fish_use_subcommand"
		} else {
			subCond = cond + "; and not __fish_seen_subcommand_from " + strings.Join(subcommandNames(n), " ")
		}
		for _, sub := range n.Command.Subcommands {
			desc := shortDescription(sub.Command.Summary)
			for _, name := range append([]string{sub.Name()}, sub.Aliases...) {
				fmt.Fprintf(&b, "complete -c %s -n %s -f -a %s", fishQuote(root), fishQuote(subCond), fishQuote(name))
				if desc != "" {
					fmt.Fprintf(&b, " -d %s", fishQuote(desc))
				}
				b.WriteString("\n")
			}
		}
	})
	return b.String()
}

// fishCondition gates completions on the subcommands typed after the root.
// Each step accepts the subcommand's name or any of its aliases. Subcommand
// names never contain quotes or spaces, so they go in bare.
func fishCondition(tree *model.Node, subpath []string) string {
	if len(subpath) == 0 {
		return ""
	}
	parts := make([]string, len(subpath))
	n := tree
	for i, name := range subpath {
		names := []string{name}
		if n != nil {
			n = n.Command.Subcommand(name)
		}
		if n != nil {
			names = append(names, n.Aliases...)
		}
		parts[i] = "__fish_seen_subcommand_from " + strings.Join(names, " ")
	}
	return strings.Join(parts, "; and ")
}

func fishOption(root, cond string, opt model.Option) string {
	var flags []string
	if opt.Short != "" {
		flags = append(flags, "-s "+fishQuote(opt.Short))
	}
	if opt.Long != "" {
		flags = append(flags, "-l "+fishQuote(opt.Long))
	}
	for _, alias := range opt.Aliases {
		switch {
		case strings.HasPrefix(alias, "--"):
			flags = append(flags, "-l "+fishQuote(strings.TrimPrefix(alias, "--")))
		case strings.HasPrefix(alias, "-") && len(alias) == 2:
			flags = append(flags, "-s "+fishQuote(alias[1:]))
		case strings.HasPrefix(alias, "-") && len(alias) > 2:
			flags = append(flags, "-o "+fishQuote(alias[1:]))
		}
	}
	if len(flags) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "complete -c %s", fishQuote(root))
	if cond != "" {
		fmt.Fprintf(&b, " -n %s", fishQuote(cond))
	}
	b.WriteString(" " + strings.Join(flags, " "))
	if opt.TakesValue {
		if takesPath(opt) {
			b.WriteString(" -r -F")
		} else {
			b.WriteString(" -x")
		}
	}
	if desc := shortDescription(opt.Description); desc != "" {
		fmt.Fprintf(&b, " -d %s", fishQuote(desc))
	}
	return b.String()
}

// fishQuote single-quotes s; fish only treats \ and ' specially inside.
func fishQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}
