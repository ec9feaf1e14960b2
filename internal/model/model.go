// Package model defines the shared data structures used across parsers, the
// subcommand orchestrator, the cache and the generators.
package model

import "strings"

// Option is a single CLI flag with its metadata. Short and Long hold the bare
// names without dashes ("v", "verbose"); every other spelling of the same flag
// (old-style "-name", "--no-color", "/?") is kept verbatim in Aliases.
type Option struct {
	Short       string   `json:"short,omitempty"`
	Long        string   `json:"long,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
	Placeholder string   `json:"value_placeholder,omitempty"`
	Description string   `json:"description"`
	TakesValue  bool     `json:"takes_value"`
	Repeatable  bool     `json:"repeatable"`
}

// Names returns every spelling of the option as typed on a command line,
// short form first, then long form, then aliases.
func (o Option) Names() []string {
	names := make([]string, 0, 2+len(o.Aliases))
	if o.Short != "" {
		names = append(names, "-"+o.Short)
	}
	if o.Long != "" {
		names = append(names, "--"+o.Long)
	}
	return append(names, o.Aliases...)
}

// Positional is a positional argument declared by a command.
type Positional struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Variadic    bool   `json:"variadic"`
}

// Command is one command's own declared surface. Subcommands are kept in
// first-discovery order; use Subcommand for lookups by name.
type Command struct {
	Name        string       `json:"name"`
	Summary     string       `json:"summary,omitempty"`
	Usage       string       `json:"usage,omitempty"`
	Options     []Option     `json:"options"`
	Positionals []Positional `json:"positionals"`
	Subcommands []*Node      `json:"subcommands"`
}

// Node wraps a Command inside the subcommand tree.
type Node struct {
	Command *Command `json:"command"`
	Aliases []string `json:"aliases,omitempty"`

	// DepthRemaining is how many levels below this node may still be
	// discovered. It strictly decreases from parent to child.
	DepthRemaining int `json:"depth_remaining"`

	// Resolved reports whether extraction was attempted for this node.
	Resolved bool `json:"resolved"`

	// Truncated marks nodes that were not extracted because the depth bound
	// was reached.
	Truncated bool `json:"truncated,omitempty"`

	// Warning is set when extraction for this node failed or was skipped.
	Warning string `json:"warning,omitempty"`
}

// NewCommand returns an empty command with non-nil slices so that it encodes
// identically whether it came from a parser or a JSON document.
func NewCommand(name string) *Command {
	return &Command{
		Name:        name,
		Options:     []Option{},
		Positionals: []Positional{},
		Subcommands: []*Node{},
	}
}

// Name returns the name of the wrapped command.
func (n *Node) Name() string {
	if n == nil || n.Command == nil {
		return ""
	}
	return n.Command.Name
}

// Subcommand returns the child registered under name or one of its aliases.
func (c *Command) Subcommand(name string) *Node {
	for _, sub := range c.Subcommands {
		if sub.Name() == name {
			return sub
		}
		for _, alias := range sub.Aliases {
			if alias == name {
				return sub
			}
		}
	}
	return nil
}

// Option returns the option whose short, long or alias spelling equals name.
// The name is given as typed, with its dashes.
func (c *Command) Option(name string) (Option, bool) {
	for _, opt := range c.Options {
		for _, n := range opt.Names() {
			if n == name {
				return opt, true
			}
		}
	}
	return Option{}, false
}

// Walk visits n and every descendant in first-discovery order. The path
// passed to fn starts with the root command name.
func (n *Node) Walk(fn func(path []string, node *Node) bool) {
	n.walk(nil, fn)
}

func (n *Node) walk(parent []string, fn func([]string, *Node) bool) bool {
	if n == nil || n.Command == nil {
		return true
	}
	path := append(append([]string(nil), parent...), n.Command.Name)
	if !fn(path, n) {
		return false
	}
	for _, sub := range n.Command.Subcommands {
		if !sub.walk(path, fn) {
			return false
		}
	}
	return true
}

// Depth returns the maximum number of levels below n.
func (n *Node) Depth() int {
	if n == nil || n.Command == nil {
		return 0
	}
	max := 0
	for _, sub := range n.Command.Subcommands {
		if d := sub.Depth() + 1; d > max {
			max = d
		}
	}
	return max
}

// Warnings collects the warnings of n and its descendants, keyed by the
// space separated command path.
func (n *Node) Warnings() []Warning {
	var warnings []Warning
	n.Walk(func(path []string, node *Node) bool {
		if node.Warning != "" {
			warnings = append(warnings, Warning{
				Path:    strings.Join(path, " "),
				Message: node.Warning,
			})
		}
		return true
	})
	return warnings
}

// Warning is a non-fatal extraction problem attached to a command path.
type Warning struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Clone returns a deep copy of c and its subcommand tree.
func (c *Command) Clone() *Command {
	if c == nil {
		return nil
	}
	out := *c
	out.Options = make([]Option, len(c.Options))
	for i, opt := range c.Options {
		opt.Aliases = append([]string(nil), opt.Aliases...)
		out.Options[i] = opt
	}
	out.Positionals = append(make([]Positional, 0, len(c.Positionals)), c.Positionals...)
	out.Subcommands = make([]*Node, len(c.Subcommands))
	for i, sub := range c.Subcommands {
		out.Subcommands[i] = sub.Clone()
	}
	return &out
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	out.Command = n.Command.Clone()
	out.Aliases = append([]string(nil), n.Aliases...)
	return &out
}
