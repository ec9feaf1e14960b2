// Package generator renders a command tree as shell completion scripts,
// JSON or a human readable summary. Every generator is a pure function of
// the tree: options keep their source order and identical trees produce
// identical output.
package generator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/MuntasirSZN/d2o/internal/model"
)

type Format string

const (
	Bash       Format = "bash"
	Zsh        Format = "zsh"
	Fish       Format = "fish"
	PowerShell Format = "powershell"
	Elvish     Format = "elvish"
	Nushell    Format = "nushell"
	JSON       Format = "json"
	Native     Format = "native"
)

// Formats lists every supported format in the order they are documented.
var Formats = []Format{Bash, Zsh, Fish, PowerShell, Elvish, Nushell, JSON, Native}

var formatAliases = map[string]Format{
	"pwsh": PowerShell,
	"elv":  Elvish,
	"nu":   Nushell,
	"text": Native,
}

// ParseFormat validates a user-provided format name.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if f, ok := formatAliases[name]; ok {
		return f, nil
	}
	for _, f := range Formats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (supported: %s)", model.ErrUnsupportedFormat, s, formatList())
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Ext is the file extension used when writing output of this format.
func (f Format) Ext() string {
	switch f {
	case PowerShell:
		return "ps1"
	case Elvish:
		return "elv"
	case Nushell:
		return "nu"
	case Native:
		return "txt"
	default:
		return string(f)
	}
}

// Options tune generator output.
type Options struct {
	// BashCompat makes the bash script emit "name:description" candidates
	// for bash-completion's colon handling.
	BashCompat bool
}

// Generate renders tree in the requested format.
func Generate(tree *model.Node, format Format, opts Options) (string, error) {
	if tree == nil || tree.Command == nil {
		return "", fmt.Errorf("%w: empty command tree", model.ErrMalformedJSON)
	}
	switch format {
	case Bash:
		return BashScript(tree, opts.BashCompat), nil
	case Zsh:
		return ZshScript(tree), nil
	case Fish:
		return FishScript(tree), nil
	case PowerShell:
		return PowerShellScript(tree), nil
	case Elvish:
		return ElvishScript(tree), nil
	case Nushell:
		return NushellScript(tree), nil
	case JSON:
		return JSONDocument(tree)
	case Native:
		return NativeText(tree), nil
	default:
		return "", fmt.Errorf("%w: %q", model.ErrUnsupportedFormat, format)
	}
}

// pathHints mark values that are completed with file names.
var pathHints = ahocorasick.NewStringMatcher([]string{"file", "dir", "path", "archive", "folder"})

// takesPath reports whether an option's value looks like a file system path.
func takesPath(opt model.Option) bool {
	if !opt.TakesValue {
		return false
	}
	text := strings.ToLower(opt.Placeholder + " " + opt.Description)
	return len(pathHints.MatchThreadSafe([]byte(text))) > 0
}

// shortDescription keeps the first sentence of a description.
func shortDescription(desc string) string {
	desc = strings.Join(strings.Fields(desc), " ")
	if i := strings.Index(desc, ". "); i >= 0 {
		desc = desc[:i]
	}
	return strings.TrimSuffix(desc, ".")
}

var identUnsafe = regexp.MustCompile(`[^A-Za-z0-9_]`)

// ident makes a shell function name from a command path.
func ident(path []string) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = identUnsafe.ReplaceAllString(p, "_")
	}
	return strings.Join(parts, "__")
}

// visit calls fn for every node of the tree in first-discovery order.
// Nodes reachable twice through shared commands are visited once per path.
func visit(tree *model.Node, fn func(path []string, n *model.Node)) {
	tree.Walk(func(path []string, n *model.Node) bool {
		fn(path, n)
		return true
	})
}

// subcommandNames returns the names and aliases of n's children in order.
func subcommandNames(n *model.Node) []string {
	var names []string
	for _, sub := range n.Command.Subcommands {
		names = append(names, sub.Name())
		names = append(names, sub.Aliases...)
	}
	return names
}

// optionNames returns the dashed spellings a shell can complete, skipping
// Windows style switches.
func optionNames(opt model.Option) []string {
	var names []string
	for _, n := range opt.Names() {
		if strings.HasPrefix(n, "-") && n != "-" && n != "--" {
			names = append(names, n)
		}
	}
	return names
}
