package generator

import (
	"fmt"
	"strings"

	"github.com/MuntasirSZN/d2o/internal/model"
)

// BashScript renders a bash completion function. Words already typed walk
// the subcommand tree through a case on "<state>,<word>"; the options and
// subcommands of the reached node are offered through compgen. With compat
// set every candidate carries its description after a colon.
func BashScript(tree *model.Node, compat bool) string {
	root := tree.Name()
	fn := "_" + ident([]string{root})

	var b strings.Builder
	fmt.Fprintf(&b, "%s() {\n", fn)
	b.WriteString("    local i cur prev opts cmd\n")
	b.WriteString("    COMPREPLY=()\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"\"\n\n")

	b.WriteString("    for i in \"${COMP_WORDS[@]:0:COMP_CWORD}\"; do\n")
	b.WriteString("        case \"${cmd},${i}\" in\n")
	fmt.Fprintf(&b, "            \",$1\")\n                cmd=%s\n                ;;\n", bashQuote(ident([]string{root})))
	visit(tree, func(path []string, n *model.Node) {
		state := ident(path)
		for _, sub := range n.Command.Subcommands {
			next := ident(append(path[:len(path):len(path)], sub.Name()))
			for _, name := range append([]string{sub.Name()}, sub.Aliases...) {
				fmt.Fprintf(&b, "            %s)\n                cmd=%s\n                ;;\n", bashQuote(state+","+name), bashQuote(next))
			}
		}
	})
	b.WriteString("            *)\n                ;;\n")
	b.WriteString("        esac\n")
	b.WriteString("    done\n\n")

	b.WriteString("    case \"${cmd}\" in\n")
	visit(tree, func(path []string, n *model.Node) {
		fmt.Fprintf(&b, "        %s)\n", ident(path))
		fmt.Fprintf(&b, "            opts=%s\n", bashQuote(strings.Join(bashWords(n, compat), " ")))

		var valued []model.Option
		for _, opt := range n.Command.Options {
			if opt.TakesValue && len(optionNames(opt)) > 0 {
				valued = append(valued, opt)
			}
		}
		if len(valued) > 0 {
			b.WriteString("            case \"${prev}\" in\n")
			for _, opt := range valued {
				var patterns []string
				for _, name := range optionNames(opt) {
					patterns = append(patterns, bashQuote(name))
				}
				fmt.Fprintf(&b, "                %s)\n", strings.Join(patterns, "|"))
				if takesPath(opt) {
					b.WriteString("                    COMPREPLY=($(compgen -f -- \"${cur}\"))\n")
				} else {
					b.WriteString("                    COMPREPLY=()\n")
				}
				b.WriteString("                    return 0\n")
				b.WriteString("                    ;;\n")
			}
			b.WriteString("            esac\n")
		}
		b.WriteString("            COMPREPLY=($(compgen -W \"${opts}\" -- \"${cur}\"))\n")
		if compat {
			b.WriteString("            if type __ltrim_colon_completions &>/dev/null; then\n")
			b.WriteString("                __ltrim_colon_completions \"$cur\"\n")
			b.WriteString("            fi\n")
		}
		b.WriteString("            return 0\n")
		b.WriteString("            ;;\n")
	})
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")

	b.WriteString("if [[ \"${BASH_VERSINFO[0]}\" -eq 4 && \"${BASH_VERSINFO[1]}\" -ge 4 || \"${BASH_VERSINFO[0]}\" -gt 4 ]]; then\n")
	fmt.Fprintf(&b, "    complete -F %s -o nosort -o bashdefault -o default %s\n", fn, root)
	b.WriteString("else\n")
	fmt.Fprintf(&b, "    complete -F %s -o bashdefault -o default %s\n", fn, root)
	b.WriteString("fi\n")
	return b.String()
}

// bashWords lists the candidates of one node: options in source order, then
// subcommands and their aliases.
func bashWords(n *model.Node, compat bool) []string {
	var words []string
	seen := map[string]bool{}
	add := func(word, desc string) {
		if seen[word] {
			return
		}
		seen[word] = true
		if compat {
			if d := compatDescription(desc); d != "" {
				word += ":" + d
			}
		}
		words = append(words, word)
	}
	for _, opt := range n.Command.Options {
		for _, name := range optionNames(opt) {
			add(name, opt.Description)
		}
	}
	for _, sub := range n.Command.Subcommands {
		add(sub.Name(), sub.Command.Summary)
		for _, alias := range sub.Aliases {
			add(alias, sub.Command.Summary)
		}
	}
	return words
}

// compatDescription turns a description into a single shell word:
// whitespace and colons become underscores.
func compatDescription(desc string) string {
	d := strings.Join(strings.Fields(shortDescription(desc)), "_")
	d = strings.ReplaceAll(d, ":", "_")
	return strings.Map(func(r rune) rune {
		switch r {
		case '"', '\'', '`', '$', '\\':
			return -1
		}
		return r
	}, d)
}

// bashQuote wraps s in double quotes, escaping what bash expands there.
func bashQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")
	return `"` + r.Replace(s) + `"`
}
