package generator

import (
	"fmt"
	"strings"

	"github.com/MuntasirSZN/d2o/internal/model"
)

// NushellScript renders a module of `export extern` signatures, one per
// command path.
func NushellScript(tree *model.Node) string {
	var b strings.Builder
	b.WriteString("module completions {\n")
	visit(tree, func(path []string, n *model.Node) {
		b.WriteString("\n")
		if desc := shortDescription(n.Command.Summary); desc != "" {
			fmt.Fprintf(&b, "  # %s\n", desc)
		}
		fmt.Fprintf(&b, "  export extern %s [\n", nuQuote(strings.Join(path, " ")))
		for _, opt := range n.Command.Options {
			if sig := nuOption(opt); sig != "" {
				b.WriteString("    " + sig + "\n")
			}
		}
		if len(n.Command.Subcommands) == 0 {
			for _, sig := range nuPositionals(n.Command.Positionals) {
				b.WriteString("    " + sig + "\n")
			}
		}
		b.WriteString("  ]\n")
	})
	b.WriteString("\n}\n\n")
	b.WriteString("export use completions *\n")
	return b.String()
}

// nuOption renders a flag signature. Nushell only accepts one long and one
// single-letter short name per flag, so other spellings are dropped.
func nuOption(opt model.Option) string {
	var sig string
	switch {
	case opt.Long != "" && nuName(opt.Long):
		sig = "--" + opt.Long
		if len(opt.Short) == 1 {
			sig += "(-" + opt.Short + ")"
		}
	case len(opt.Short) == 1:
		sig = "-" + opt.Short
	default:
		return ""
	}
	if opt.TakesValue {
		if takesPath(opt) {
			sig += ": path"
		} else {
			sig += ": string"
		}
	}
	if desc := shortDescription(opt.Description); desc != "" {
		sig += " # " + desc
	}
	return sig
}

// nuPositionals renders positional parameters in an order nushell accepts:
// nothing is required after an optional parameter and the rest parameter
// comes last. Parameters after the rest parameter are dropped, as are
// repeated names.
func nuPositionals(ps []model.Positional) []string {
	var (
		sigs     []string
		optional bool
		seen     = map[string]bool{}
	)
	for _, p := range ps {
		name := strings.ReplaceAll(strings.ToLower(p.Name), "-", "_")
		name = identUnsafe.ReplaceAllString(name, "_")
		if seen[name] {
			continue
		}
		seen[name] = true

		optional = optional || !p.Required
		var sig string
		switch {
		case p.Variadic:
			sig = "..." + name + ": string"
		case optional:
			sig = name + "?: string"
		default:
			sig = name + ": string"
		}
		if desc := shortDescription(p.Description); desc != "" {
			sig += " # " + desc
		}
		sigs = append(sigs, sig)
		if p.Variadic {
			break
		}
	}
	return sigs
}

func nuName(s string) bool {
	return !strings.ContainsAny(s, " ()[]:#\"'")
}

func nuQuote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}
