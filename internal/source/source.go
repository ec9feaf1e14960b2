// Package source describes where help text comes from and provides the
// collaborators that capture it: a Fetcher for man pages and --help output
// and readers for plain files and JSON documents.
package source

//go:generate mockgen -destination=mock_source.go -package=source github.com/MuntasirSZN/d2o/internal/source Fetcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mattn/go-shellwords"
)

// Kind identifies how a RawDocument was produced.
type Kind string

const (
	KindMan  Kind = "man"
	KindHelp Kind = "help"
	KindFile Kind = "file"
	KindJSON Kind = "json"
)

// Origin says where an extraction starts. Exactly one of Path or File is set.
type Origin struct {
	// Path is the command followed by its subcommand path, e.g. ["git", "log"].
	Path []string
	// Args are extra arguments passed to the command before the help flag.
	Args []string
	// File is a help text file or, when JSON is set, a structured document.
	File string
	JSON bool
}

// CommandOrigin splits a command line such as "git log" into an Origin.
func CommandOrigin(line string, args ...string) (Origin, error) {
	words, err := shellwords.Parse(line)
	if err != nil {
		return Origin{}, fmt.Errorf("could not split command %q: %w", line, err)
	}
	if len(words) == 0 {
		return Origin{}, fmt.Errorf("empty command")
	}
	return Origin{Path: words, Args: args}, nil
}

// SubcommandOrigin parses the "command-subcommand" form, e.g. "git-log".
func SubcommandOrigin(spec string) (Origin, error) {
	cmd, sub, ok := strings.Cut(spec, "-")
	if !ok || cmd == "" || sub == "" {
		return Origin{}, fmt.Errorf("subcommand %q should look like command-subcommand (e.g. git-log)", spec)
	}
	return Origin{Path: []string{cmd, sub}}, nil
}

// FileOrigin reads help text from a file.
func FileOrigin(path string) Origin {
	return Origin{File: path}
}

// JSONOrigin loads a pre-structured command document.
func JSONOrigin(path string) Origin {
	return Origin{File: path, JSON: true}
}

// IsCommand reports whether the origin invokes an external command.
func (o Origin) IsCommand() bool {
	return len(o.Path) > 0
}

// Name is the command name an extraction from this origin is reported under.
func (o Origin) Name() string {
	switch {
	case o.IsCommand():
		return strings.Join(o.Path, "-")
	case o.File != "":
		name := filepath.Base(o.File)
		if o.JSON {
			name = strings.TrimSuffix(name, filepath.Ext(name))
		}
		return name
	default:
		return "command"
	}
}

// RawDocument is captured text plus where it came from. It is not modified
// after capture.
type RawDocument struct {
	Origin Origin
	Kind   Kind
	Text   []byte
}

// Request asks the Fetcher for the help text of a command path.
type Request struct {
	// Path is the command followed by its subcommand names.
	Path    []string
	Args    []string
	SkipMan bool
}

// Result is what the Fetcher captured. A non-zero ExitCode or empty Text is
// an extraction failure for that path.
type Result struct {
	Kind     Kind
	Text     []byte
	ExitCode int
}

// OK reports whether r holds usable help text.
func (r *Result) OK() bool {
	return r != nil && r.ExitCode == 0 && len(strings.TrimSpace(string(r.Text))) > 0
}

// Fetcher captures man page or --help text for a command path.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Result, error)
}

// FetchDocument calls f and converts a usable result into a RawDocument.
// Any failure is reported as a *model.SourceError by the caller; this
// returns a plain error describing what went wrong.
func FetchDocument(ctx context.Context, f Fetcher, origin Origin, req Request) (*RawDocument, error) {
	res, err := f.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if res == nil || len(strings.TrimSpace(string(res.Text))) == 0 {
		return nil, fmt.Errorf("no help output")
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("exit status %d", res.ExitCode)
	}
	return &RawDocument{Origin: origin, Kind: res.Kind, Text: res.Text}, nil
}
