package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MuntasirSZN/d2o/internal/cache"
	"github.com/MuntasirSZN/d2o/internal/discover"
	"github.com/MuntasirSZN/d2o/internal/generator"
	"github.com/MuntasirSZN/d2o/internal/model"
	"github.com/MuntasirSZN/d2o/internal/parser"
	"github.com/MuntasirSZN/d2o/internal/source"
)

const toolHelp = `Usage: tool [OPTIONS] <FILE>

Options:
  -a, --all        Show all entries
  -o, --out <DIR>  Output directory

Commands:
  run    Run the thing
  help   Print help
`

func help(text string) *source.Result {
	return &source.Result{Kind: source.KindHelp, Text: []byte(text)}
}

func expectTool(fetcher *source.MockFetcher, times int) {
	fetcher.EXPECT().Fetch(gomock.Any(), source.Request{Path: []string{"tool"}}).
		Return(help(toolHelp), nil).Times(times)
	fetcher.EXPECT().Fetch(gomock.Any(), source.Request{Path: []string{"tool", "run"}}).
		Return(help("Options:\n  -f, --force  Force it\n"), nil).Times(times)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := source.NewMockFetcher(ctrl)
	expectTool(fetcher, 1)

	tree, err := New(fetcher).Extract(context.Background(), source.Origin{Path: []string{"tool"}}, 2, false)
	require.NoError(t, err)

	assert.Equal(t, "tool", tree.Name())
	assert.Equal(t, 2, tree.DepthRemaining)
	assert.Equal(t, []string{"run", "help"}, ListSubcommands(tree))

	run := tree.Command.Subcommand("run")
	require.NotNil(t, run)
	assert.True(t, run.Resolved)
	assert.Equal(t, "Run the thing", run.Command.Summary)
	require.Len(t, run.Command.Options, 1)
	assert.Equal(t, "force", run.Command.Options[0].Long)

	assert.False(t, tree.Command.Subcommand("help").Resolved)
}

func TestExtractUsesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := source.NewMockFetcher(ctrl)
	expectTool(fetcher, 1)

	x := New(fetcher, WithCache(cache.New(cache.NewMemoryStore())))
	origin := source.Origin{Path: []string{"tool"}}

	first, err := x.Extract(context.Background(), origin, 2, false)
	require.NoError(t, err)
	second, err := x.Extract(context.Background(), origin, 2, false)
	require.NoError(t, err)

	a, err := model.Encode(first)
	require.NoError(t, err)
	b, err := model.Encode(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotSame(t, first, second)
}

func TestExtractRefetchesAfterExpiry(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := source.NewMockFetcher(ctrl)
	expectTool(fetcher, 2)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := cache.New(cache.NewMemoryStore(), cache.WithTTL(time.Hour), cache.WithClock(func() time.Time { return now }))
	x := New(fetcher, WithCache(c))
	origin := source.Origin{Path: []string{"tool"}}

	_, err := x.Extract(context.Background(), origin, 2, false)
	require.NoError(t, err)
	_, err = x.Extract(context.Background(), origin, 2, false)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = x.Extract(context.Background(), origin, 2, false)
	require.NoError(t, err)
}

func TestExtractDepthIsPartOfTheKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := source.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), source.Request{Path: []string{"tool"}}).
		Return(help(toolHelp), nil).Times(2)
	fetcher.EXPECT().Fetch(gomock.Any(), source.Request{Path: []string{"tool", "run"}}).
		Return(help("Options:\n  -f, --force  Force it\n"), nil).Times(1)

	x := New(fetcher, WithCache(cache.New(cache.NewMemoryStore())))
	origin := source.Origin{Path: []string{"tool"}}

	shallow, err := x.Extract(context.Background(), origin, 1, false)
	require.NoError(t, err)
	assert.True(t, shallow.Command.Subcommand("run").Truncated)

	deep, err := x.Extract(context.Background(), origin, 2, false)
	require.NoError(t, err)
	assert.True(t, deep.Command.Subcommand("run").Resolved)
}

func TestExtractDoesNotCacheIncompleteTree(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := source.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), source.Request{Path: []string{"tool"}}).
		Return(help(toolHelp), nil).Times(2)

	// Every reading of the clock is two minutes after the last, so the
	// discovery budget is spent before the first subcommand starts.
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(2 * time.Minute)
		return now
	}
	x := New(fetcher,
		WithCache(cache.New(cache.NewMemoryStore())),
		WithDiscover(discover.WithClock(clock), discover.WithTimeout(time.Minute), discover.WithConcurrency(1)),
	)
	origin := source.Origin{Path: []string{"tool"}}

	for i := 0; i < 2; i++ {
		tree, err := x.Extract(context.Background(), origin, 2, false)
		require.NoError(t, err)
		run := tree.Command.Subcommand("run")
		require.NotNil(t, run)
		assert.False(t, run.Resolved)
		assert.NotEmpty(t, run.Warning)
	}
}

func TestExtractRootFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := source.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).
		Return(&source.Result{Kind: source.KindHelp, Text: []byte("unknown command"), ExitCode: 127}, nil)

	c := cache.New(cache.NewMemoryStore())
	_, err := New(fetcher, WithCache(c)).Extract(context.Background(), source.Origin{Path: []string{"nope"}}, 2, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrSourceUnavailable)

	var se *model.SourceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"nope"}, se.Path)

	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}

func TestExtractFile(t *testing.T) {
	path := writeFile(t, "tool", toolHelp)

	tree, err := New(nil).Extract(context.Background(), source.FileOrigin(path), 4, false)
	require.NoError(t, err)

	assert.Equal(t, "tool", tree.Name())
	assert.Len(t, tree.Command.Options, 2)
	assert.Equal(t, []string{"run", "help"}, ListSubcommands(tree))
	for _, sub := range tree.Command.Subcommands {
		assert.False(t, sub.Resolved, sub.Name())
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := New(nil).Extract(context.Background(), source.FileOrigin(filepath.Join(t.TempDir(), "missing")), 1, false)
	assert.ErrorIs(t, err, model.ErrSourceUnavailable)
}

func TestExtractJSON(t *testing.T) {
	cmd := model.NewCommand("tool")
	cmd.Options = append(cmd.Options, model.Option{Long: "all", Description: "Show all"})
	want := &model.Node{Command: cmd, Resolved: true}
	data, err := model.Encode(want)
	require.NoError(t, err)
	path := writeFile(t, "tool.json", string(data))

	tree, err := New(nil).Extract(context.Background(), source.JSONOrigin(path), 4, false)
	require.NoError(t, err)
	assert.Equal(t, want, tree)

	bad := writeFile(t, "bad.json", `{"root": {"command": {"name": ""}}}`)
	_, err = New(nil).Extract(context.Background(), source.JSONOrigin(bad), 4, false)
	assert.ErrorIs(t, err, model.ErrMalformedJSON)
}

func TestExtractEmptyOrigin(t *testing.T) {
	_, err := New(nil).Extract(context.Background(), source.Origin{}, 1, false)
	assert.ErrorIs(t, err, model.ErrSourceUnavailable)
}

func TestRecords(t *testing.T) {
	path := writeFile(t, "tool", toolHelp)

	recs, err := New(nil).Records(context.Background(), source.FileOrigin(path), false)
	require.NoError(t, err)

	var options, subcommands int
	for _, r := range recs {
		switch r.Kind {
		case parser.RecordOption:
			options++
		case parser.RecordSubcommand:
			subcommands++
		}
	}
	assert.Equal(t, 2, options)
	assert.Equal(t, 2, subcommands)
}

func TestRender(t *testing.T) {
	tree := &model.Node{Command: model.NewCommand("tool"), Resolved: true}

	out, err := Render(tree, generator.Fish, generator.Options{})
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = Render(tree, generator.Format("tcsh"), generator.Options{})
	assert.ErrorIs(t, err, model.ErrUnsupportedFormat)
}

func TestListSubcommandsIsShallow(t *testing.T) {
	inner := model.NewCommand("remote")
	inner.Subcommands = append(inner.Subcommands, &model.Node{Command: model.NewCommand("add")})
	root := model.NewCommand("git")
	root.Subcommands = append(root.Subcommands, &model.Node{Command: inner}, &model.Node{Command: model.NewCommand("log")})

	assert.Equal(t, []string{"remote", "log"}, ListSubcommands(&model.Node{Command: root}))
	assert.Nil(t, ListSubcommands(nil))
}
