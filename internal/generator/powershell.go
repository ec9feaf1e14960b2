package generator

import (
	"fmt"
	"strings"

	"github.com/MuntasirSZN/d2o/internal/model"
)

// PowerShellScript renders a native Register-ArgumentCompleter block. The
// words typed so far are joined with ';' and looked up in a switch whose
// arms list the completions of the reached command.
func PowerShellScript(tree *model.Node) string {
	root := tree.Name()

	var b strings.Builder
	b.WriteString("using namespace System.Management.Automation\n")
	b.WriteString("using namespace System.Management.Automation.Language\n\n")
	fmt.Fprintf(&b, "Register-ArgumentCompleter -Native -CommandName %s -ScriptBlock {\n", psQuote(root))
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	fmt.Fprintf(&b, "    $commandElements = $commandAst.CommandElements\n")
	b.WriteString("    $command = @(\n")
	fmt.Fprintf(&b, "        %s\n", psQuote(root))
	b.WriteString("        for ($i = 1; $i -lt $commandElements.Count; $i++) {\n")
	b.WriteString("            $element = $commandElements[$i]\n")
	b.WriteString("            if ($element -isnot [StringConstantExpressionAst] -or\n")
	b.WriteString("                $element.StringConstantType -ne [StringConstantType]::BareWord -or\n")
	b.WriteString("                $element.Value.StartsWith('-') -or\n")
	b.WriteString("                $element.Value -eq $wordToComplete) {\n")
	b.WriteString("                break\n")
	b.WriteString("            }\n")
	b.WriteString("            $element.Value\n")
	b.WriteString("        }) -join ';'\n\n")
	b.WriteString("    $completions = @(switch ($command) {\n")

	visit(tree, func(path []string, n *model.Node) {
		for _, key := range psKeys(path, n) {
			fmt.Fprintf(&b, "        %s {\n", psQuote(key))
			writePSCompletions(&b, n)
			b.WriteString("            break\n")
			b.WriteString("        }\n")
		}
	})

	b.WriteString("    })\n\n")
	b.WriteString("    $completions.Where{ $_.CompletionText -like \"$wordToComplete*\" }\n")
	b.WriteString("}\n")
	return b.String()
}

// psKeys returns the switch keys reaching n: its canonical path plus one
// key for each alias of n itself.
func psKeys(path []string, n *model.Node) []string {
	keys := []string{strings.Join(path, ";")}
	if len(path) > 1 {
		parent := strings.Join(path[:len(path)-1], ";")
		for _, alias := range n.Aliases {
			keys = append(keys, parent+";"+alias)
		}
	}
	return keys
}

func writePSCompletions(b *strings.Builder, n *model.Node) {
	for _, opt := range n.Command.Options {
		desc := shortDescription(opt.Description)
		for _, name := range optionNames(opt) {
			tip := psTooltip(desc, name)
			fmt.Fprintf(b, "            [CompletionResult]::new(%s, %s, [CompletionResultType]::ParameterName, %s)\n",
				psQuote(name), psQuote(name), psQuote(tip))
		}
	}
	for _, sub := range n.Command.Subcommands {
		for _, name := range append([]string{sub.Name()}, sub.Aliases...) {
			tip := psTooltip(shortDescription(sub.Command.Summary), name)
			fmt.Fprintf(b, "            [CompletionResult]::new(%s, %s, [CompletionResultType]::ParameterValue, %s)\n",
				psQuote(name), psQuote(name), psQuote(tip))
		}
	}
}

// psTooltip falls back to the completion text; CompletionResult rejects an
// empty tooltip.
func psTooltip(desc, fallback string) string {
	if desc == "" {
		return fallback
	}
	return desc
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
