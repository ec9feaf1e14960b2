package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DocumentVersion is the schema version written by Encode.
const DocumentVersion = 1

// Document is the JSON envelope for a subcommand tree. Warnings are derived
// from the tree and only carried for consumers of the output.
type Document struct {
	Version  int       `json:"version"`
	Root     *Node     `json:"root"`
	Warnings []Warning `json:"warnings"`
}

// Encode renders the tree rooted at n as an indented JSON document.
func Encode(n *Node) ([]byte, error) {
	warnings := n.Warnings()
	if warnings == nil {
		warnings = []Warning{}
	}
	doc := Document{Version: DocumentVersion, Root: n, Warnings: warnings}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses a JSON document into a tree. It accepts the envelope written
// by Encode, a bare Node, a bare Command and the legacy flat schema with
// "names" arrays. The result is validated before it is returned.
func Decode(data []byte) (*Node, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	var (
		node *Node
		err  error
	)
	switch {
	case probe["root"] != nil:
		var doc Document
		err = json.Unmarshal(data, &doc)
		node = doc.Root
	case probe["command"] != nil:
		node = &Node{}
		err = json.Unmarshal(data, node)
	case isLegacy(probe):
		node, err = decodeLegacy(data)
	default:
		cmd := &Command{}
		err = json.Unmarshal(data, cmd)
		node = &Node{Command: cmd, Resolved: true}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	if err := Validate(node); err != nil {
		return nil, err
	}
	fillEmpty(node)
	return node, nil
}

// Validate checks the structural invariants of a tree: every command is
// named, every option has at least one spelling, long forms are unique per
// command and depth never grows from parent to child.
func Validate(n *Node) error {
	if n == nil || n.Command == nil {
		return fmt.Errorf("%w: missing root command", ErrMalformedJSON)
	}
	var err error
	n.Walk(func(path []string, node *Node) bool {
		err = validateNode(path, node)
		return err == nil
	})
	return err
}

func validateNode(path []string, node *Node) error {
	at := strings.Join(path, " ")
	if strings.TrimSpace(node.Command.Name) == "" {
		return fmt.Errorf("%w: unnamed command under %q", ErrMalformedJSON, at)
	}
	longs := make(map[string]bool)
	for i, opt := range node.Command.Options {
		if len(opt.Names()) == 0 {
			return fmt.Errorf("%w: option %d of %q has no name", ErrMalformedJSON, i, at)
		}
		if opt.Long == "" {
			continue
		}
		if longs[opt.Long] {
			return fmt.Errorf("%w: duplicate option --%s in %q", ErrMalformedJSON, opt.Long, at)
		}
		longs[opt.Long] = true
	}
	for _, sub := range node.Command.Subcommands {
		if sub == nil || sub.Command == nil {
			return fmt.Errorf("%w: empty subcommand under %q", ErrMalformedJSON, at)
		}
		if sub.DepthRemaining >= node.DepthRemaining && node.DepthRemaining > 0 {
			return fmt.Errorf("%w: depth of %q does not decrease", ErrMalformedJSON, at)
		}
	}
	return nil
}

func fillEmpty(n *Node) {
	n.Walk(func(_ []string, node *Node) bool {
		c := node.Command
		if c.Options == nil {
			c.Options = []Option{}
		}
		if c.Positionals == nil {
			c.Positionals = []Positional{}
		}
		if c.Subcommands == nil {
			c.Subcommands = []*Node{}
		}
		return true
	})
}

type legacyCommand struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Usage       string           `json:"usage"`
	Options     []legacyOption   `json:"options"`
	Subcommands []*legacyCommand `json:"subcommands"`
}

type legacyOption struct {
	Names       []json.RawMessage `json:"names"`
	Argument    string            `json:"argument"`
	Description string            `json:"description"`
}

func isLegacy(probe map[string]json.RawMessage) bool {
	var opts []map[string]json.RawMessage
	if err := json.Unmarshal(probe["options"], &opts); err != nil {
		return false
	}
	for _, opt := range opts {
		if opt["names"] != nil {
			return true
		}
	}
	return false
}

func decodeLegacy(data []byte) (*Node, error) {
	var lc legacyCommand
	if err := json.Unmarshal(data, &lc); err != nil {
		return nil, err
	}
	return lc.node(), nil
}

func (lc *legacyCommand) node() *Node {
	cmd := NewCommand(lc.Name)
	cmd.Summary = lc.Description
	cmd.Usage = lc.Usage
	for _, lo := range lc.Options {
		opt := Option{
			Placeholder: lo.Argument,
			Description: lo.Description,
			TakesValue:  lo.Argument != "",
		}
		for _, raw := range lo.Names {
			addLegacyName(&opt, legacyName(raw))
		}
		cmd.Options = append(cmd.Options, opt)
	}
	for _, sub := range lc.Subcommands {
		cmd.Subcommands = append(cmd.Subcommands, sub.node())
	}
	return &Node{Command: cmd, Resolved: true}
}

// legacyName accepts both "-v" and {"raw": "-v", "type": "SHORTTYPE"}.
func legacyName(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var structured struct {
		Raw string `json:"raw"`
	}
	if err := json.Unmarshal(raw, &structured); err == nil {
		return structured.Raw
	}
	return ""
}

func addLegacyName(opt *Option, name string) {
	switch {
	case name == "" || name == "-" || name == "--":
	case strings.HasPrefix(name, "--") && opt.Long == "":
		opt.Long = name[2:]
	case len(name) == 2 && name[0] == '-' && opt.Short == "":
		opt.Short = name[1:]
	default:
		opt.Aliases = append(opt.Aliases, name)
	}
}
