// Package extract is the entry point of the pipeline: it turns an origin
// into a command tree, consulting the cache for command origins, and
// renders trees through the generators.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/MuntasirSZN/d2o/internal/cache"
	"github.com/MuntasirSZN/d2o/internal/discover"
	"github.com/MuntasirSZN/d2o/internal/generator"
	"github.com/MuntasirSZN/d2o/internal/log"
	"github.com/MuntasirSZN/d2o/internal/model"
	"github.com/MuntasirSZN/d2o/internal/parser"
	"github.com/MuntasirSZN/d2o/internal/source"
	"github.com/MuntasirSZN/d2o/internal/text"
)

// DefaultDepth is how many subcommand levels are discovered by default.
const DefaultDepth = 4

type Extractor struct {
	fetcher  source.Fetcher
	cache    *cache.Cache
	expander *discover.Expander
	parse    discover.ParseFunc
	logger   *log.Logger

	discoverOpts []discover.Option
}

type Option func(*Extractor)

// WithCache enables read-through and write-through caching of command
// extractions. A nil cache disables it.
func WithCache(c *cache.Cache) Option {
	return func(x *Extractor) {
		x.cache = c
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(x *Extractor) {
		x.logger = logger.Named("extract")
		x.discoverOpts = append(x.discoverOpts, discover.WithLogger(logger))
	}
}

// WithDiscover passes options to the subcommand expander.
func WithDiscover(opts ...discover.Option) Option {
	return func(x *Extractor) {
		x.discoverOpts = append(x.discoverOpts, opts...)
	}
}

func New(fetcher source.Fetcher, opts ...Option) *Extractor {
	x := &Extractor{
		fetcher: fetcher,
		parse:   parser.Parse,
	}
	for _, opt := range opts {
		opt(x)
	}
	x.expander = discover.New(fetcher, append([]discover.Option{discover.WithParser(x.parse)}, x.discoverOpts...)...)
	return x
}

// Extract builds the command tree for origin. Command origins are expanded
// up to depth levels of subcommands and cached; files are parsed as a
// single command and JSON documents are decoded as they are.
func (x *Extractor) Extract(ctx context.Context, origin source.Origin, depth int, skipMan bool) (*model.Node, error) {
	switch {
	case origin.IsCommand():
		return x.extractCommand(ctx, origin, depth, skipMan)
	case origin.File != "" && origin.JSON:
		return x.extractJSON(origin)
	case origin.File != "":
		return x.extractFile(origin)
	default:
		return nil, fmt.Errorf("%w: no command or file given", model.ErrSourceUnavailable)
	}
}

func (x *Extractor) extractCommand(ctx context.Context, origin source.Origin, depth int, skipMan bool) (*model.Node, error) {
	if depth < 1 {
		depth = 1
	}
	key := cache.RequestKey(origin.Path, origin.Args, skipMan, depth)
	if x.cache != nil {
		if tree, ok := x.cache.Get(ctx, key); ok {
			x.logger.Info("using cached result for %s", strings.Join(origin.Path, " "))
			return tree, nil
		}
	}

	req := source.Request{Path: origin.Path, Args: origin.Args, SkipMan: skipMan}
	doc, err := source.FetchDocument(ctx, x.fetcher, origin, req)
	if err != nil {
		return nil, &model.SourceError{Path: origin.Path, Err: err}
	}
	x.logger.Debug("extracted %s from %s output", origin.Name(), doc.Kind)

	root := x.parse(origin.Name(), doc)
	tree, err := x.expander.Expand(ctx, root, req, depth)
	for _, w := range tree.Warnings() {
		x.logger.Warn("%s: %s", w.Path, w.Message)
	}
	if err != nil {
		x.logger.Warn("not caching %s: %v", strings.Join(origin.Path, " "), err)
		return tree, nil
	}

	if x.cache != nil {
		if err := x.cache.Put(ctx, key, tree); err != nil {
			x.logger.Warn("could not cache %s: %v", strings.Join(origin.Path, " "), err)
		}
	}
	return tree, nil
}

func (x *Extractor) extractFile(origin source.Origin) (*model.Node, error) {
	doc, err := source.ReadFile(origin)
	if err != nil {
		return nil, &model.SourceError{Path: []string{origin.File}, Err: err}
	}
	return &model.Node{Command: x.parse(origin.Name(), doc), Resolved: true}, nil
}

func (x *Extractor) extractJSON(origin source.Origin) (*model.Node, error) {
	doc, err := source.ReadFile(origin)
	if err != nil {
		return nil, &model.SourceError{Path: []string{origin.File}, Err: err}
	}
	tree, err := model.Decode(doc.Text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", origin.File, err)
	}
	return tree, nil
}

// Records returns what the recognizer found in the text of origin, without
// building a model. It is used to debug parsing.
func (x *Extractor) Records(ctx context.Context, origin source.Origin, skipMan bool) ([]parser.Record, error) {
	var (
		doc *source.RawDocument
		err error
	)
	switch {
	case origin.IsCommand():
		req := source.Request{Path: origin.Path, Args: origin.Args, SkipMan: skipMan}
		doc, err = source.FetchDocument(ctx, x.fetcher, origin, req)
		if err != nil {
			return nil, &model.SourceError{Path: origin.Path, Err: err}
		}
	case origin.File != "" && !origin.JSON:
		doc, err = source.ReadFile(origin)
		if err != nil {
			return nil, &model.SourceError{Path: []string{origin.File}, Err: err}
		}
	default:
		return nil, fmt.Errorf("%w: nothing to recognize in a JSON document", model.ErrSourceUnavailable)
	}
	return parser.Recognize(text.Normalize(doc)), nil
}

// Render renders tree in the given format.
func Render(tree *model.Node, format generator.Format, opts generator.Options) (string, error) {
	return generator.Generate(tree, format, opts)
}

// ListSubcommands returns the names of the direct subcommands of tree in
// discovery order.
func ListSubcommands(tree *model.Node) []string {
	if tree == nil || tree.Command == nil {
		return nil
	}
	names := make([]string, 0, len(tree.Command.Subcommands))
	for _, sub := range tree.Command.Subcommands {
		names = append(names, sub.Name())
	}
	return names
}
