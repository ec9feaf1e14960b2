package generator

import (
	"fmt"
	"strings"

	"github.com/MuntasirSZN/d2o/internal/model"
)

// NativeText renders a plain summary of each command in the tree, one
// block per command separated by a blank line.
func NativeText(tree *model.Node) string {
	var blocks []string
	visit(tree, func(path []string, n *model.Node) {
		blocks = append(blocks, nativeBlock(path, n))
	})
	return strings.Join(blocks, "\n")
}

func nativeBlock(path []string, n *model.Node) string {
	c := n.Command
	var b strings.Builder
	fmt.Fprintf(&b, "Name:  %s\n", strings.Join(path, " "))
	if c.Summary != "" {
		fmt.Fprintf(&b, "Desc:  %s\n", c.Summary)
	}
	if c.Usage != "" {
		fmt.Fprintf(&b, "Usage:\n%s\n", indentLines(c.Usage, "  "))
	}
	if n.Warning != "" {
		fmt.Fprintf(&b, "Warning: %s\n", n.Warning)
	}
	if n.Truncated {
		b.WriteString("Truncated: depth limit reached\n")
	}

	if len(c.Options) > 0 {
		b.WriteString("\n")
	}
	for _, opt := range c.Options {
		names := strings.Join(opt.Names(), ", ")
		if opt.Placeholder != "" {
			names += " " + opt.Placeholder
		}
		fmt.Fprintf(&b, "  %s\n", names)
		if opt.Description != "" {
			fmt.Fprintf(&b, "      %s\n", opt.Description)
		}
	}

	if len(c.Positionals) > 0 {
		b.WriteString("\n")
	}
	for _, p := range c.Positionals {
		name := p.Name
		if p.Variadic {
			name += "..."
		}
		if !p.Required {
			name = "[" + name + "]"
		}
		fmt.Fprintf(&b, "  Argument: %s", name)
		if p.Description != "" {
			fmt.Fprintf(&b, "  %s", p.Description)
		}
		b.WriteString("\n")
	}

	if len(c.Subcommands) > 0 {
		b.WriteString("\n")
	}
	for _, sub := range c.Subcommands {
		fmt.Fprintf(&b, "Subcommand: %s", sub.Name())
		if len(sub.Aliases) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(sub.Aliases, ", "))
		}
		if desc := shortDescription(sub.Command.Summary); desc != "" {
			fmt.Fprintf(&b, "  %s", desc)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func indentLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
