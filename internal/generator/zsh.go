package generator

import (
	"fmt"
	"strings"

	"github.com/MuntasirSZN/d2o/internal/model"
)

// ZshScript renders a #compdef script with one _arguments function per
// command in the tree.
func ZshScript(tree *model.Node) string {
	root := tree.Name()

	var b strings.Builder
	fmt.Fprintf(&b, "#compdef %s\n", root)
	visit(tree, func(path []string, n *model.Node) {
		b.WriteString("\n")
		writeZshFunction(&b, path, n)
	})
	b.WriteString("\n")
	fmt.Fprintf(&b, "if [ \"$funcstack[1]\" = \"_%s\" ]; then\n", ident([]string{root}))
	fmt.Fprintf(&b, "    _%s \"$@\"\n", ident([]string{root}))
	b.WriteString("else\n")
	fmt.Fprintf(&b, "    compdef _%s %s\n", ident([]string{root}), root)
	b.WriteString("fi\n")
	return b.String()
}

func writeZshFunction(b *strings.Builder, path []string, n *model.Node) {
	fn := "_" + ident(path)
	subs := n.Command.Subcommands

	fmt.Fprintf(b, "%s() {\n", fn)
	b.WriteString("    local curcontext=\"$curcontext\" state line\n")
	b.WriteString("    typeset -A opt_args\n")
	b.WriteString("    _arguments -s -S -C \\\n")
	for _, opt := range n.Command.Options {
		for _, spec := range zshOptionSpecs(opt) {
			fmt.Fprintf(b, "        %s \\\n", spec)
		}
	}
	if len(subs) > 0 {
		fmt.Fprintf(b, "        %s \\\n", zshQuote(": :"+fn+"_commands"))
		fmt.Fprintf(b, "        %s\n", zshQuote("*::arg:->args"))
	} else {
		for _, p := range n.Command.Positionals {
			fmt.Fprintf(b, "        %s \\\n", zshPositionalSpec(p))
		}
		b.WriteString("        && return 0\n")
	}

	if len(subs) > 0 {
		b.WriteString("\n    case $state in\n")
		b.WriteString("        args)\n")
		b.WriteString("            case $line[1] in\n")
		for _, sub := range subs {
			names := append([]string{sub.Name()}, sub.Aliases...)
			fmt.Fprintf(b, "                %s)\n", strings.Join(zshPatterns(names), "|"))
			fmt.Fprintf(b, "                    _%s\n", ident(append(path[:len(path):len(path)], sub.Name())))
			b.WriteString("                    ;;\n")
		}
		b.WriteString("            esac\n")
		b.WriteString("            ;;\n")
		b.WriteString("    esac\n")
	}
	b.WriteString("}\n")

	if len(subs) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(b, "%s_commands() {\n", fn)
		b.WriteString("    local commands; commands=(\n")
		for _, sub := range subs {
			for _, name := range append([]string{sub.Name()}, sub.Aliases...) {
				fmt.Fprintf(b, "        %s\n", zshQuote(zshEscape(name)+":"+zshEscape(shortDescription(sub.Command.Summary))))
			}
		}
		b.WriteString("    )\n")
		fmt.Fprintf(b, "    _describe -t commands %s commands \"$@\"\n", zshQuote(strings.Join(path, " ")+" commands"))
		b.WriteString("}\n")
	}
}

// zshOptionSpecs returns one _arguments spec per spelling of opt.
func zshOptionSpecs(opt model.Option) []string {
	desc := zshEscape(shortDescription(opt.Description))
	value := ""
	if opt.TakesValue {
		action := " "
		if takesPath(opt) {
			action = "_files"
		}
		value = ":" + zshEscape(strings.Trim(opt.Placeholder, "<>[]")) + ":" + action
	}
	repeat := ""
	if opt.Repeatable {
		repeat = "*"
	}

	var specs []string
	for _, name := range optionNames(opt) {
		specs = append(specs, zshQuote(repeat+name+"["+desc+"]"+value))
	}
	return specs
}

func zshPositionalSpec(p model.Positional) string {
	prefix := ":"
	switch {
	case p.Variadic:
		prefix = "*:"
	case !p.Required:
		prefix = "::"
	}
	desc := p.Name
	if p.Description != "" {
		desc = shortDescription(p.Description)
	}
	return zshQuote(prefix + zshEscape(desc) + ":_files")
}

// zshEscape protects the characters _arguments treats specially.
func zshEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`, `:`, `\:`)
	return r.Replace(s)
}

func zshPatterns(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = zshQuote(n)
	}
	return out
}

// zshQuote single-quotes s for zsh.
func zshQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
