package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MuntasirSZN/d2o/internal/config"
	"github.com/MuntasirSZN/d2o/internal/discover"
	"github.com/MuntasirSZN/d2o/internal/extract"
	"github.com/MuntasirSZN/d2o/internal/generator"
	"github.com/MuntasirSZN/d2o/internal/log"
	"github.com/MuntasirSZN/d2o/internal/output"
	"github.com/MuntasirSZN/d2o/internal/shell"
	"github.com/MuntasirSZN/d2o/internal/source"
)

var (
	flagCommand    string
	flagFile       string
	flagSubcommand string
	flagLoadJSON   string

	flagFormat         string
	flagJSON           bool
	flagWrite          bool
	flagBashCompat     bool
	flagListSubcommand bool

	flagSkipMan bool
	flagDepth   int
	flagDebug   bool

	flagCacheClear bool
	flagCacheStats bool
	flagCachePrune bool
	flagNoCache    bool
	flagCacheTTL   time.Duration

	flagCompletions string
	flagConfig      string
	flagVerbose     bool
	flagQuiet       bool
)

var rootCmd = &cobra.Command{
	Use:   "d2o [command [subcommand...]]",
	Short: "Turn help text into shell completions",
	Long: `d2o reads a command's man page or --help output, works out its options,
arguments and subcommands, and writes shell completion scripts or JSON.

Subcommands are discovered recursively up to --depth levels. Results for
commands are cached, so running d2o again for the same command is instant
until the cache entry expires.

Examples:
  d2o git
  d2o -c "docker compose" -o zsh
  d2o -f ./tool-help.txt -o fish
  d2o -s git-log --json
  d2o -l tool.json -o nushell --write
  d2o --cache-stats`,
	Args:          cobra.ArbitraryArgs,
	RunE:          run,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&flagCommand, "command", "c", "", "Command to extract, e.g. \"git\" or \"git log\"")
	f.StringVarP(&flagFile, "file", "f", "", "Read help text from a file")
	f.StringVarP(&flagSubcommand, "subcommand", "s", "", "Subcommand in command-subcommand form, e.g. git-log")
	f.StringVarP(&flagLoadJSON, "loadjson", "l", "", "Load a command tree from a JSON document")

	f.StringVarP(&flagFormat, "format", "o", "", "Output format: "+formatNames()+" (default: current shell, else native)")
	f.BoolVarP(&flagJSON, "json", "j", false, "Shorthand for --format json")
	f.BoolVarP(&flagWrite, "write", "w", false, "Write the output to ~/.d2o/<name>.<ext> instead of stdout")
	f.BoolVarP(&flagBashCompat, "bash-completion-compat", "b", false, "Include descriptions in bash candidates for bash-completion")
	f.BoolVarP(&flagListSubcommand, "list-subcommands", "L", false, "Print the subcommand names and exit")

	f.BoolVarP(&flagSkipMan, "skip-man", "m", false, "Skip man pages and use --help output only")
	f.IntVarP(&flagDepth, "depth", "D", 0, "How many levels of subcommands to discover (default from config, 4)")
	f.BoolVarP(&flagDebug, "debug", "d", false, "Print what the parser recognized in the help text and exit")

	f.BoolVar(&flagCacheClear, "cache-clear", false, "Delete every cache entry")
	f.BoolVar(&flagCacheStats, "cache-stats", false, "Show cache statistics")
	f.BoolVar(&flagCachePrune, "cache-prune", false, "Delete expired cache entries")
	f.BoolVar(&flagNoCache, "no-cache", false, "Neither read nor write the cache")
	f.DurationVar(&flagCacheTTL, "cache-ttl", 0, "How long new cache entries stay valid (default from config, 24h)")

	f.StringVar(&flagCompletions, "completions", "", "Print d2o's own completion script for a shell")
	f.StringVar(&flagConfig, "config", "", "Config file (default $"+config.EnvPath+" or the user config dir)")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug messages")
	f.BoolVarP(&flagQuiet, "quiet", "q", false, "Only log errors")

	rootCmd.MarkFlagsMutuallyExclusive("command", "file", "subcommand", "loadjson")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	rootCmd.MarkFlagsMutuallyExclusive("json", "format")
}

func formatNames() string {
	names := make([]string, len(generator.Formats))
	for i, f := range generator.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func run(cmd *cobra.Command, args []string) error {
	if flagCompletions != "" {
		return printCompletions(cmd, flagCompletions)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	maintenance := flagCacheClear || flagCacheStats || flagCachePrune
	if maintenance {
		if err := maintainCache(ctx, cfg, logger); err != nil {
			return err
		}
	}

	origin, ok, err := originFromFlags(args)
	if err != nil {
		return err
	}
	if !ok {
		if maintenance {
			return nil
		}
		return cmd.Usage()
	}

	fetcher := source.NewExec(cfg.CommandTimeout, logger.Named("source"))
	opts := []extract.Option{
		extract.WithLogger(logger),
		extract.WithDiscover(
			discover.WithConcurrency(cfg.Concurrency),
			discover.WithTimeout(cfg.Timeout),
			discover.WithReserved(cfg.Reserved...),
		),
	}
	if cfg.Cache.Enabled && origin.IsCommand() {
		c, err := openCache(ctx, cfg, logger)
		if err != nil {
			logger.Warn("cache disabled: %v", err)
		} else {
			defer c.Close()
			opts = append(opts, extract.WithCache(c))
		}
	}
	x := extract.New(fetcher, opts...)

	if flagDebug {
		records, err := x.Records(ctx, origin, cfg.SkipMan)
		if err != nil {
			return err
		}
		for _, r := range records {
			fmt.Println(r)
		}
		return nil
	}

	logger.Info("extracting %s", origin.Name())
	tree, err := x.Extract(ctx, origin, cfg.Depth, cfg.SkipMan)
	if err != nil {
		return err
	}

	if flagListSubcommand {
		for _, name := range extract.ListSubcommands(tree) {
			fmt.Println(name)
		}
		return nil
	}

	format, err := resolveFormat(logger)
	if err != nil {
		return err
	}
	out, err := extract.Render(tree, format, generator.Options{BashCompat: flagBashCompat})
	if err != nil {
		return err
	}

	if !flagWrite {
		fmt.Print(out)
		if !strings.HasSuffix(out, "\n") {
			fmt.Println()
		}
		return nil
	}

	dir, err := output.DefaultDir()
	if err != nil {
		return err
	}
	path, err := output.Write(dir, tree.Name(), format.Ext(), out)
	if err != nil {
		return err
	}
	fmt.Println(path)
	if sh, err := shell.Parse(string(format)); err == nil {
		if completions := shell.CompletionsDir(sh); completions != "" {
			logger.Info("to load it automatically, copy it into %s", completions)
		}
	}
	return nil
}

// loadConfig reads the config file and applies flags that were set
// explicitly on top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := flagConfig
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("depth") {
		cfg.Depth = flagDepth
	}
	if flags.Changed("skip-man") {
		cfg.SkipMan = flagSkipMan
	}
	if flags.Changed("cache-ttl") {
		cfg.Cache.TTL = flagCacheTTL
	}
	if flagNoCache {
		cfg.Cache.Enabled = false
	}
	if flagVerbose {
		cfg.Log.Level = log.Debug.String()
	}
	if flagQuiet {
		cfg.Log.Level = log.Error.String()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*log.Logger, error) {
	level, err := log.Parse(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := log.NewLogger("d2o", level, cfg.Log.File, false)
	logger.JSON = cfg.Log.JSON
	if cfg.Log.NoColor {
		logger.NoColor = true
	}
	return logger, nil
}

// originFromFlags returns where to extract from. Bare arguments are read as
// a command line. ok is false when nothing was given.
func originFromFlags(args []string) (source.Origin, bool, error) {
	var (
		origin source.Origin
		err    error
	)
	switch {
	case flagCommand != "":
		origin, err = source.CommandOrigin(flagCommand)
	case flagSubcommand != "":
		origin, err = source.SubcommandOrigin(flagSubcommand)
	case flagFile != "":
		origin = source.FileOrigin(flagFile)
	case flagLoadJSON != "":
		origin = source.JSONOrigin(flagLoadJSON)
	case len(args) > 0:
		origin = source.Origin{Path: args}
	default:
		return source.Origin{}, false, nil
	}
	if err != nil {
		return source.Origin{}, false, err
	}
	if (flagCommand != "" || flagSubcommand != "" || flagFile != "" || flagLoadJSON != "") && len(args) > 0 {
		return source.Origin{}, false, fmt.Errorf("unexpected arguments %q", args)
	}
	return origin, true, nil
}

// resolveFormat picks the output format from flags, falling back to the
// current shell and then to the native summary.
func resolveFormat(logger *log.Logger) (generator.Format, error) {
	switch {
	case flagJSON:
		return generator.JSON, nil
	case flagFormat != "":
		return generator.ParseFormat(flagFormat)
	}

	sh, err := shell.Detect()
	if err != nil {
		logger.Debug("%v; using native output", err)
		return generator.Native, nil
	}
	format, err := generator.ParseFormat(string(sh))
	if err != nil {
		return generator.Native, nil
	}
	logger.Debug("detected %s, rendering %s", sh, format)
	return format, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
