package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuntasirSZN/d2o/internal/model"
	"github.com/MuntasirSZN/d2o/internal/source"
)

func parseHelp(t *testing.T, name, raw string) *model.Command {
	t.Helper()
	cmd := Parse(name, &source.RawDocument{Kind: source.KindHelp, Text: []byte(raw)})
	require.NotNil(t, cmd)
	return cmd
}

func TestParseVerboseOption(t *testing.T) {
	cmd := parseHelp(t, "tool", "Options:\n  -v, --verbose       Enable verbose output\n")

	require.Len(t, cmd.Options, 1)
	assert.Equal(t, model.Option{
		Short:       "v",
		Long:        "verbose",
		Description: "Enable verbose output",
	}, cmd.Options[0])
}

func TestParseDuplicateSubcommand(t *testing.T) {
	cmd := parseHelp(t, "git", "Commands:\n  log     Show commit logs\n  log     Show commit logs\n")

	require.Len(t, cmd.Subcommands, 1)
	sub := cmd.Subcommands[0]
	assert.Equal(t, "log", sub.Name())
	assert.Equal(t, "Show commit logs", sub.Command.Summary)
	assert.False(t, sub.Resolved)
}

func TestParseClapHelp(t *testing.T) {
	raw := `A fast file finder

Usage: ff [OPTIONS] <PATTERN> [PATH]...

Arguments:
  <PATTERN>  Search pattern
  [PATH]...  Directories to search

Options:
  -e, --extension <EXT>  Filter by file extension
                         Can be specified multiple times
  -H, --hidden           Include hidden files
      --color[=WHEN]     Colorize output
  -h, --help             Print help
`
	cmd := parseHelp(t, "ff", raw)

	assert.Equal(t, "A fast file finder", cmd.Summary)
	assert.Equal(t, "ff [OPTIONS] <PATTERN> [PATH]...", cmd.Usage)

	assert.Equal(t, []model.Positional{
		{Name: "PATTERN", Description: "Search pattern", Required: true},
		{Name: "PATH", Description: "Directories to search", Variadic: true},
	}, cmd.Positionals)

	require.Len(t, cmd.Options, 4)
	ext := cmd.Options[0]
	assert.Equal(t, "e", ext.Short)
	assert.Equal(t, "extension", ext.Long)
	assert.Equal(t, "<EXT>", ext.Placeholder)
	assert.Equal(t, "Filter by file extension Can be specified multiple times", ext.Description)
	assert.True(t, ext.TakesValue)
	assert.True(t, ext.Repeatable)

	hidden := cmd.Options[1]
	assert.Equal(t, "hidden", hidden.Long)
	assert.False(t, hidden.TakesValue)
	assert.False(t, hidden.Repeatable)

	color := cmd.Options[2]
	assert.Equal(t, "", color.Short)
	assert.Equal(t, "color", color.Long)
	assert.Equal(t, "WHEN", color.Placeholder)
	assert.True(t, color.TakesValue)

	assert.Equal(t, "help", cmd.Options[3].Long)
	assert.Empty(t, cmd.Subcommands)
}

func TestParseManPage(t *testing.T) {
	raw := `LS(1)                User Commands                LS(1)

NAME
       ls - list directory contents

SYNOPSIS
       ls [OPTION]... [FILE]...

DESCRIPTION
       List  information  about  the FILEs (the current directory by default).

       -a, --all
              do not ignore entries starting with .

       --color[=WHEN]
              colorize the output; WHEN can be 'always', 'auto', or 'never'

       -I, --ignore=PATTERN
              do not list implied entries matching shell PATTERN

AUTHOR
       Written by Richard M. Stallman and David MacKenzie.
`
	cmd := Parse("ls", &source.RawDocument{Kind: source.KindMan, Text: []byte(raw)})

	assert.Equal(t, "list directory contents", cmd.Summary)
	assert.Equal(t, "ls [OPTION]... [FILE]...", cmd.Usage)
	assert.Equal(t, []model.Positional{{Name: "FILE", Variadic: true}}, cmd.Positionals)

	require.Len(t, cmd.Options, 3)
	assert.Equal(t, model.Option{Short: "a", Long: "all", Description: "do not ignore entries starting with ."}, cmd.Options[0])
	assert.Equal(t, "color", cmd.Options[1].Long)
	assert.Equal(t, "WHEN", cmd.Options[1].Placeholder)
	assert.Equal(t, "I", cmd.Options[2].Short)
	assert.Equal(t, "ignore", cmd.Options[2].Long)
	assert.Equal(t, "PATTERN", cmd.Options[2].Placeholder)
}

func TestParseCobraHelp(t *testing.T) {
	raw := `Usage:
  app [command]

Available Commands:
  completion  Generate the autocompletion script for the specified shell
  help        Help about any command
  serve       Start the server
              on the given port

Flags:
      --config string   config file (default is $HOME/.app.yaml)
  -h, --help            help for app
`
	cmd := parseHelp(t, "app", raw)

	assert.Equal(t, "app [command]", cmd.Usage)
	assert.Empty(t, cmd.Positionals)

	var names []string
	for _, sub := range cmd.Subcommands {
		names = append(names, sub.Name())
	}
	assert.Equal(t, []string{"completion", "help", "serve"}, names)
	assert.Equal(t, "Start the server on the given port", cmd.Subcommands[2].Command.Summary)

	require.Len(t, cmd.Options, 2)
	assert.Equal(t, "config", cmd.Options[0].Long)
	assert.Equal(t, "string", cmd.Options[0].Placeholder)
	assert.Equal(t, "config file (default is $HOME/.app.yaml)", cmd.Options[0].Description)
}

func TestParseGitCommandGroups(t *testing.T) {
	raw := `usage: git [-v | --version] [-h | --help] <command> [<args>]

These are common Git commands used in various situations:

start a working area (see also: git help tutorial)
   clone     Clone a repository into a new directory
   init      Create an empty Git repository or reinitialize an existing one

examine the history and state (see also: git help revisions)
   log, lg   Show commit logs
   status    Show the working tree status
`
	cmd := parseHelp(t, "git", raw)

	var names []string
	for _, sub := range cmd.Subcommands {
		names = append(names, sub.Name())
	}
	assert.Equal(t, []string{"clone", "init", "log", "status"}, names)
	assert.Equal(t, []string{"lg"}, cmd.Subcommands[2].Aliases)
	assert.Equal(t, "log", cmd.Subcommand("lg").Name())
	assert.Equal(t, []model.Positional{{Name: "args"}}, cmd.Positionals)
}

func TestParseDeduplicatesOptions(t *testing.T) {
	raw := "Options:\n  -v, --verbose  Verbose\n  -v, --version  Version\n      --verbose  Again\n"
	cmd := parseHelp(t, "tool", raw)

	require.Len(t, cmd.Options, 2)
	assert.Equal(t, "v", cmd.Options[0].Short)
	assert.Equal(t, "verbose", cmd.Options[0].Long)
	assert.Equal(t, "", cmd.Options[1].Short)
	assert.Equal(t, "version", cmd.Options[1].Long)
}

func TestParseWithoutHeadings(t *testing.T) {
	cmd := parseHelp(t, "tool", "  -a  all\n  -b  bee\n")

	require.Len(t, cmd.Options, 2)
	assert.Equal(t, "a", cmd.Options[0].Short)
	assert.Equal(t, "bee", cmd.Options[1].Description)
	assert.Empty(t, cmd.Summary)
}

func TestParseWindowsSwitches(t *testing.T) {
	cmd := parseHelp(t, "dir", "Options:\n  /?  Show help\n  /S  Recurse into subdirectories\n")

	require.Len(t, cmd.Options, 2)
	assert.Equal(t, []string{"/?"}, cmd.Options[0].Aliases)
	assert.Equal(t, []string{"/S"}, cmd.Options[1].Names())
}

func TestParseEmptyDocument(t *testing.T) {
	cmd := parseHelp(t, "tool", "")

	assert.Equal(t, "tool", cmd.Name)
	assert.Empty(t, cmd.Options)
	assert.NotNil(t, cmd.Options)
	assert.NotNil(t, cmd.Subcommands)
}

func TestParseOptionLine(t *testing.T) {
	tests := []struct {
		line        string
		names       []string
		placeholder string
		desc        string
	}{
		{"-o FILE, --output FILE  Write to FILE", []string{"-o", "--output"}, "FILE", "Write to FILE"},
		{"-n<num>", []string{"-n"}, "<num>", ""},
		{"-q Quiet mode", []string{"-q"}, "", "Quiet mode"},
		{"--[no-]edit  Edit the message", []string{"--edit", "--no-edit"}, "", "Edit the message"},
		{"-name pattern", []string{"-name"}, "pattern", ""},
		{"-D <key>=<value>  Define", []string{"-D"}, "<key>=<value>", "Define"},
		{"-I, --include <DIR>...  Add DIR", []string{"-I", "--include"}, "<DIR>...", "Add DIR"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			spec, ok := parseOptionLine(tt.line, false)
			require.True(t, ok)
			assert.Equal(t, tt.names, spec.names)
			assert.Equal(t, tt.placeholder, spec.placeholder)
			assert.Equal(t, tt.desc, spec.desc)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := map[string]sectionClass{
		"OPTIONS":              classOptions,
		"GLOBAL FLAGS":         classOptions,
		"OPTIONAL ARGUMENTS":   classOptions,
		"POSITIONAL ARGUMENTS": classArguments,
		"AVAILABLE COMMANDS":   classCommands,
		"COMMAND OPTIONS":      classOptions,
		"SYNOPSIS":             classUsage,
		"EXAMPLES":             classExamples,
		"NAME":                 className,
		"FILE NAMES":           classOther,
		"DESCRIPTION":          classOther,
		"PREAMBLE":             classOther,
	}
	for heading, want := range tests {
		assert.Equal(t, want, classify(heading), heading)
	}
}

func TestRepeatable(t *testing.T) {
	assert.True(t, isRepeatable("Increase verbosity. May be specified multiple times.", ""))
	assert.True(t, isRepeatable("Use more than once for more detail", ""))
	assert.True(t, isRepeatable("", "<FILE>..."))
	assert.False(t, isRepeatable("Print help", "FILE"))
}

func TestParseGNUInlineUsage(t *testing.T) {
	raw := `Usage: ls [OPTION]... [FILE]...
List information about the FILEs (the current directory by default).
Sort entries alphabetically if none of -cftuvSUX nor --sort is specified.

Mandatory arguments to long options are mandatory for short options too.
  -a, --all                  do not ignore entries starting with .
  -A, --almost-all           do not list implied . and ..
      --block-size=SIZE      with -l, scale sizes by SIZE when printing them;
                               e.g., '--block-size=M'; see SIZE format below
  -l                         use a long listing format

The SIZE argument is an integer and optional unit (example: 10K is 10*1024).

Exit status:
 0  if OK,
 1  if minor problems (e.g., cannot access subdirectory),
 2  if serious trouble (e.g., cannot access command-line argument).
`
	cmd := parseHelp(t, "ls", raw)

	assert.Equal(t, "ls [OPTION]... [FILE]...", cmd.Usage)
	assert.Equal(t, "List information about the FILEs (the current directory by default).", cmd.Summary)
	assert.Equal(t, []model.Positional{{Name: "FILE", Variadic: true}}, cmd.Positionals)

	require.Len(t, cmd.Options, 4)
	assert.Equal(t, model.Option{Short: "a", Long: "all", Description: "do not ignore entries starting with ."}, cmd.Options[0])
	assert.Equal(t, "almost-all", cmd.Options[1].Long)

	size := cmd.Options[2]
	assert.Equal(t, "block-size", size.Long)
	assert.Equal(t, "SIZE", size.Placeholder)
	assert.True(t, size.TakesValue)
	assert.Equal(t, "with -l, scale sizes by SIZE when printing them; e.g., '--block-size=M'; see SIZE format below", size.Description)

	assert.Equal(t, model.Option{Short: "l", Description: "use a long listing format"}, cmd.Options[3])
	assert.Empty(t, cmd.Subcommands)
}

func TestParseBoxedPanels(t *testing.T) {
	raw := ` Usage: tool [OPTIONS] COMMAND [ARGS]...

 Manage the things.

╭─ Options ──────────────────────────────────────╮
│ -i, --install        Install it                │
│ --name TEXT          Name to use               │
│ --help               Show this message and     │
│                      exit.                     │
╰────────────────────────────────────────────────╯
╭─ Commands ─────────────────────────────────────╮
│ run    Run the thing                           │
│ stop   Stop the thing                          │
╰────────────────────────────────────────────────╯
`
	cmd := parseHelp(t, "tool", raw)

	assert.Equal(t, "tool [OPTIONS] COMMAND [ARGS]...", cmd.Usage)
	assert.Equal(t, "Manage the things.", cmd.Summary)

	require.Len(t, cmd.Options, 3)
	assert.Equal(t, model.Option{Short: "i", Long: "install", Description: "Install it"}, cmd.Options[0])
	assert.Equal(t, "name", cmd.Options[1].Long)
	assert.Equal(t, "TEXT", cmd.Options[1].Placeholder)
	assert.True(t, cmd.Options[1].TakesValue)
	assert.Equal(t, "Show this message and exit.", cmd.Options[2].Description)

	require.Len(t, cmd.Subcommands, 2)
	assert.Equal(t, "run", cmd.Subcommands[0].Name())
	assert.Equal(t, "Run the thing", cmd.Subcommands[0].Command.Summary)
	assert.Equal(t, "stop", cmd.Subcommands[1].Name())
}
