package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuntasirSZN/d2o/internal/model"
)

func sampleTree() *model.Node {
	add := model.NewCommand("add")
	add.Summary = "Add a remote"

	remote := model.NewCommand("remote")
	remote.Summary = "Manage remotes. Tracks other repositories."
	remote.Options = append(remote.Options, model.Option{Short: "v", Long: "verbose", Description: "Show URLs"})
	remote.Subcommands = append(remote.Subcommands, &model.Node{Command: add, Truncated: true})

	log := model.NewCommand("log")
	log.Summary = "Show commit logs"
	log.Positionals = append(log.Positionals, model.Positional{Name: "revision", Description: "Revision range"})

	git := model.NewCommand("git")
	git.Summary = "the stupid content tracker"
	git.Usage = "git [-v | --version] <command> [<args>]"
	git.Options = append(git.Options,
		model.Option{Short: "v", Long: "version", Description: "Print the version. Then exit."},
		model.Option{Short: "C", Placeholder: "<path>", TakesValue: true, Description: "Run as if started in <path>"},
		model.Option{Long: "config-env", Placeholder: "<name>=<envvar>", TakesValue: true, Repeatable: true, Description: "Set config [key]: from env"},
		model.Option{Long: "no-pager", Aliases: []string{"/np"}},
	)
	git.Subcommands = append(git.Subcommands,
		&model.Node{Command: remote, Aliases: []string{"re"}, DepthRemaining: 1, Resolved: true},
		&model.Node{Command: log, DepthRemaining: 1, Resolved: true},
	)
	return &model.Node{Command: git, DepthRemaining: 2, Resolved: true}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"bash", Bash},
		{"ZSH", Zsh},
		{" fish ", Fish},
		{"pwsh", PowerShell},
		{"powershell", PowerShell},
		{"elv", Elvish},
		{"nu", Nushell},
		{"json", JSON},
		{"text", Native},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("tcsh")
	assert.ErrorIs(t, err, model.ErrUnsupportedFormat)
}

func TestGenerateUnsupportedFormat(t *testing.T) {
	_, err := Generate(sampleTree(), Format("tcsh"), Options{})
	assert.ErrorIs(t, err, model.ErrUnsupportedFormat)

	_, err = Generate(nil, Bash, Options{})
	assert.ErrorIs(t, err, model.ErrMalformedJSON)
}

func TestGenerateIsDeterministic(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			first, err := Generate(sampleTree(), f, Options{})
			require.NoError(t, err)
			second, err := Generate(sampleTree(), f, Options{})
			require.NoError(t, err)
			assert.Equal(t, first, second)
			assert.NotEmpty(t, first)
		})
	}
}

func TestGeneratePreservesOptionOrder(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			out, err := Generate(sampleTree(), f, Options{})
			require.NoError(t, err)

			version := strings.Index(out, "version")
			configEnv := strings.Index(out, "config-env")
			noPager := strings.Index(out, "no-pager")
			require.True(t, version >= 0 && configEnv >= 0 && noPager >= 0, out)
			assert.Less(t, version, configEnv)
			assert.Less(t, configEnv, noPager)
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	tree := sampleTree()
	out, err := Generate(tree, JSON, Options{})
	require.NoError(t, err)

	back, err := model.Decode([]byte(out))
	require.NoError(t, err)
	again, err := JSONDocument(back)
	require.NoError(t, err)
	assert.Equal(t, out, again)
	assert.Equal(t, []string{"re"}, back.Command.Subcommand("remote").Aliases)
}

func TestBashScript(t *testing.T) {
	out := BashScript(sampleTree(), false)

	assert.True(t, strings.HasPrefix(out, "_git() {\n"))
	assert.Contains(t, out, `opts="-v --version -C --config-env --no-pager remote re log"`)
	assert.Contains(t, out, `"git,remote")`)
	assert.Contains(t, out, `"git,re")`)
	assert.Contains(t, out, "cmd=\"git__remote\"")
	assert.Contains(t, out, `"git__remote,add")`)
	assert.Contains(t, out, `                "-C")`+"\n"+`                    COMPREPLY=($(compgen -f -- "${cur}"))`)
	assert.Contains(t, out, `"--config-env")`+"\n"+`                    COMPREPLY=()`)
	assert.NotContains(t, out, "/np")
	assert.Contains(t, out, "complete -F _git -o nosort -o bashdefault -o default git")
	assert.NotContains(t, out, "__ltrim_colon_completions")
}

func TestBashScriptCompat(t *testing.T) {
	out := BashScript(sampleTree(), true)

	assert.Contains(t, out, "--version:Print_the_version")
	assert.Contains(t, out, "--config-env:Set_config_[key]__from_env")
	assert.Contains(t, out, " --no-pager ")
	assert.Contains(t, out, "remote:Manage_remotes")
	assert.Contains(t, out, "__ltrim_colon_completions")
}

func TestZshScript(t *testing.T) {
	out := ZshScript(sampleTree())

	assert.True(t, strings.HasPrefix(out, "#compdef git\n"))
	assert.Contains(t, out, `'-v[Print the version]'`)
	assert.Contains(t, out, `'-C[Run as if started in <path>]:path:_files'`)
	assert.Contains(t, out, `'*--config-env[Set config \[key\]\: from env]:name>=<envvar: '`)
	assert.Contains(t, out, `'remote:Manage remotes'`)
	assert.Contains(t, out, `'re:Manage remotes'`)
	assert.Contains(t, out, "_git__remote() {")
	assert.Contains(t, out, "_git__remote__add() {")
	assert.Contains(t, out, "'::Revision range:_files'")
	assert.Contains(t, out, "compdef _git git")
}

func TestFishScript(t *testing.T) {
	out := FishScript(sampleTree())
	lines := strings.Split(strings.TrimSpace(out), "\n")

	assert.Contains(t, lines, `complete -c 'git' -s 'v' -l 'version' -d 'Print the version'`)
	assert.Contains(t, lines, `complete -c 'git' -s 'C' -r -F -d 'Run as if started in <path>'`)
	assert.Contains(t, lines, `complete -c 'git' -l 'config-env' -x -d 'Set config [key]: from env'`)
	assert.Contains(t, lines, `complete -c 'git' -l 'no-pager'`)
	assert.Contains(t, lines, `complete -c 'git' -n '__fish_use_subcommand' -f -a 'remote' -d 'Manage remotes'`)
	assert.Contains(t, lines, `complete -c 'git' -n '__fish_use_subcommand' -f -a 're' -d 'Manage remotes'`)
	assert.Contains(t, lines, `complete -c 'git' -n '__fish_seen_subcommand_from remote re' -s 'v' -l 'verbose' -d 'Show URLs'`)
	assert.Contains(t, lines, `complete -c 'git' -n '__fish_seen_subcommand_from remote re; and not __fish_seen_subcommand_from add' -f -a 'add' -d 'Add a remote'`)
}

func TestFishConditionAcceptsAliases(t *testing.T) {
	tree := sampleTree()

	assert.Equal(t, "", fishCondition(tree, nil))
	assert.Equal(t, "__fish_seen_subcommand_from log", fishCondition(tree, []string{"log"}))
	assert.Equal(t,
		"__fish_seen_subcommand_from remote re; and __fish_seen_subcommand_from add",
		fishCondition(tree, []string{"remote", "add"}))
	assert.Equal(t, "__fish_seen_subcommand_from gone", fishCondition(tree, []string{"gone"}))
}

func TestFishQuote(t *testing.T) {
	assert.Equal(t, `'it\'s'`, fishQuote("it's"))
	assert.Equal(t, `'a\\b'`, fishQuote(`a\b`))
}

func TestPowerShellScript(t *testing.T) {
	out := PowerShellScript(sampleTree())

	assert.Contains(t, out, "Register-ArgumentCompleter -Native -CommandName 'git'")
	assert.Contains(t, out, "        'git' {\n")
	assert.Contains(t, out, "        'git;remote' {\n")
	assert.Contains(t, out, "        'git;re' {\n")
	assert.Contains(t, out, "        'git;remote;add' {\n")
	assert.Contains(t, out, "[CompletionResult]::new('--no-pager', '--no-pager', [CompletionResultType]::ParameterName, '--no-pager')")
	assert.Contains(t, out, "[CompletionResult]::new('remote', 'remote', [CompletionResultType]::ParameterValue, 'Manage remotes')")
	assert.NotContains(t, out, ", '')")
	assert.NotContains(t, out, "Sort-Object")
}

func TestElvishScript(t *testing.T) {
	out := ElvishScript(sampleTree())

	assert.Contains(t, out, "set edit:completion:arg-completer['git'] = {|@words|")
	assert.Contains(t, out, "&'git;remote'= {")
	assert.Contains(t, out, "cand '-C' 'Run as if started in <path>'")
	assert.Contains(t, out, "cand 'log' 'Show commit logs'")
}

func TestNushellScript(t *testing.T) {
	out := NushellScript(sampleTree())

	assert.Contains(t, out, "module completions {\n")
	assert.Contains(t, out, `  export extern "git" [`)
	assert.Contains(t, out, "    --version(-v) # Print the version\n")
	assert.Contains(t, out, "    -C: path # Run as if started in <path>\n")
	assert.Contains(t, out, "    --config-env: string # Set config [key]: from env\n")
	assert.Contains(t, out, `  export extern "git remote" [`)
	assert.Contains(t, out, "    revision?: string # Revision range\n")
	assert.True(t, strings.HasSuffix(out, "export use completions *\n"))
}

func TestNushellPositionalOrder(t *testing.T) {
	tests := []struct {
		name string
		in   []model.Positional
		want []string
	}{
		{
			name: "required after optional",
			in:   []model.Positional{{Name: "SRC"}, {Name: "DEST", Required: true}},
			want: []string{"src?: string", "dest?: string"},
		},
		{
			name: "after rest",
			in:   []model.Positional{{Name: "FILE", Required: true, Variadic: true}, {Name: "DIR", Required: true}},
			want: []string{"...file: string"},
		},
		{
			name: "required first",
			in:   []model.Positional{{Name: "PATTERN", Required: true}, {Name: "PATH", Variadic: true}},
			want: []string{"pattern: string", "...path: string"},
		},
		{
			name: "repeated name",
			in:   []model.Positional{{Name: "FILE", Required: true}, {Name: "file", Required: true}},
			want: []string{"file: string"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nuPositionals(tt.in))
		})
	}

	cmd := model.NewCommand("cp")
	cmd.Positionals = []model.Positional{{Name: "SOURCE"}, {Name: "DEST", Required: true}}
	out := NushellScript(&model.Node{Command: cmd, Resolved: true})
	assert.Contains(t, out, "    source?: string\n    dest?: string\n")
}

func TestNativeText(t *testing.T) {
	out := NativeText(sampleTree())

	assert.True(t, strings.HasPrefix(out, "Name:  git\nDesc:  the stupid content tracker\nUsage:\n  git [-v | --version] <command> [<args>]\n"))
	assert.Contains(t, out, "  -v, --version\n      Print the version. Then exit.\n")
	assert.Contains(t, out, "  -C <path>\n")
	assert.Contains(t, out, "Subcommand: remote (re)  Manage remotes\n")
	assert.Contains(t, out, "Name:  git remote add\n")
	assert.Contains(t, out, "Truncated: depth limit reached\n")
	assert.Contains(t, out, "  Argument: [revision]  Revision range\n")
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "Print the version", shortDescription("Print the\n  version. Then exit."))
	assert.Equal(t, "v1.2 release", shortDescription("v1.2 release."))
	assert.Equal(t, "git__remote__add", ident([]string{"git", "remote", "add"}))
	assert.Equal(t, "docker_compose__up", ident([]string{"docker-compose", "up"}))

	assert.True(t, takesPath(model.Option{TakesValue: true, Placeholder: "FILE"}))
	assert.True(t, takesPath(model.Option{TakesValue: true, Description: "Output directory"}))
	assert.False(t, takesPath(model.Option{TakesValue: true, Placeholder: "N"}))
	assert.False(t, takesPath(model.Option{Long: "file"}))

	assert.Equal(t, []string{"--no-pager"}, optionNames(model.Option{Long: "no-pager", Aliases: []string{"/np"}}))
}
