package generator

import (
	"fmt"
	"strings"

	"github.com/MuntasirSZN/d2o/internal/model"
)

// ElvishScript renders an edit:completion:arg-completer entry that walks
// the typed words and emits candidates for the reached command.
func ElvishScript(tree *model.Node) string {
	root := tree.Name()

	var b strings.Builder
	b.WriteString("use builtin;\n")
	b.WriteString("use str;\n\n")
	fmt.Fprintf(&b, "set edit:completion:arg-completer[%s] = {|@words|\n", elvQuote(root))
	b.WriteString("    fn spaces {|n|\n")
	b.WriteString("        builtin:repeat $n ' ' | str:join ''\n")
	b.WriteString("    }\n")
	b.WriteString("    fn cand {|text desc|\n")
	b.WriteString("        edit:complex-candidate $text &display=$text' '(spaces (- 14 (wcswidth $text)))$desc\n")
	b.WriteString("    }\n")
	fmt.Fprintf(&b, "    var command = %s\n", elvQuote(root))
	b.WriteString("    for word $words[1..-1] {\n")
	b.WriteString("        if (str:has-prefix $word '-') {\n")
	b.WriteString("            break\n")
	b.WriteString("        }\n")
	b.WriteString("        set command = $command';'$word\n")
	b.WriteString("    }\n")
	b.WriteString("    var completions = [\n")

	visit(tree, func(path []string, n *model.Node) {
		for _, key := range psKeys(path, n) {
			fmt.Fprintf(&b, "        &%s= {\n", elvQuote(key))
			for _, opt := range n.Command.Options {
				desc := shortDescription(opt.Description)
				for _, name := range optionNames(opt) {
					fmt.Fprintf(&b, "            cand %s %s\n", elvQuote(name), elvQuote(desc))
				}
			}
			for _, sub := range n.Command.Subcommands {
				desc := shortDescription(sub.Command.Summary)
				for _, name := range append([]string{sub.Name()}, sub.Aliases...) {
					fmt.Fprintf(&b, "            cand %s %s\n", elvQuote(name), elvQuote(desc))
				}
			}
			b.WriteString("        }\n")
		}
	})

	b.WriteString("    ]\n")
	b.WriteString("    if (has-key $completions $command) {\n")
	b.WriteString("        $completions[$command]\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")
	return b.String()
}

func elvQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
