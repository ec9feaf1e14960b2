// Package discover walks a command's subcommand tree breadth first, fetching
// help text for each subcommand through a bounded pool of workers.
package discover

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/MuntasirSZN/d2o/internal/log"
	"github.com/MuntasirSZN/d2o/internal/model"
	"github.com/MuntasirSZN/d2o/internal/parser"
	"github.com/MuntasirSZN/d2o/internal/source"
)

const (
	DefaultConcurrency = 8
	DefaultTimeout     = 60 * time.Second
)

// DefaultReserved are subcommands that are listed but never expanded.
var DefaultReserved = []string{"help", "version", "completion"}

var (
	errTimedOut   = errors.New("discovery timed out before this subcommand was fetched")
	errRepeatHelp = errors.New("subcommand printed its parent's command list; children dropped")

	// ErrIncomplete is returned by Expand when the walk stopped before every
	// node within the depth bound was visited.
	ErrIncomplete = errors.New("subcommand discovery incomplete")
)

// ParseFunc turns a fetched document into a command surface.
type ParseFunc func(name string, doc *source.RawDocument) *model.Command

// Expander resolves subcommand placeholders by fetching their help text.
// It is safe for concurrent use; identical paths requested by concurrent
// expansions are fetched once.
type Expander struct {
	fetcher     source.Fetcher
	parse       ParseFunc
	concurrency int
	timeout     time.Duration
	now         func() time.Time
	reserved    map[string]bool
	logger      *log.Logger

	flight singleflight.Group
}

type Option func(*Expander)

// WithConcurrency bounds the number of in-flight fetches.
func WithConcurrency(n int) Option {
	return func(e *Expander) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithTimeout sets the wall clock budget of one expansion. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(e *Expander) {
		e.timeout = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Expander) {
		e.now = now
	}
}

func WithParser(parse ParseFunc) Option {
	return func(e *Expander) {
		e.parse = parse
	}
}

// WithReserved replaces the list of subcommand names that are not expanded.
func WithReserved(names ...string) Option {
	return func(e *Expander) {
		e.reserved = make(map[string]bool, len(names))
		for _, n := range names {
			e.reserved[n] = true
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(e *Expander) {
		e.logger = logger.Named("discover")
	}
}

func New(fetcher source.Fetcher, opts ...Option) *Expander {
	e := &Expander{
		fetcher:     fetcher,
		parse:       parser.Parse,
		concurrency: DefaultConcurrency,
		timeout:     DefaultTimeout,
		now:         time.Now,
	}
	WithReserved(DefaultReserved...)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// task is one node waiting to be fetched.
type task struct {
	node *model.Node
	path []string
	// siblings is the parent's subcommand list.
	siblings []*model.Node
}

func (t task) key() string {
	return strings.Join(t.path, " ")
}

// Expand builds the tree under root, which was extracted from req.Path.
// The root gets maxDepth levels of budget; a node is fetched only while its
// budget is above zero, so nodes at the bound are listed by name only.
// Failures are recorded on the failing node and never abort the walk. The tree
// is always returned; err is ErrIncomplete when a deadline or cancellation
// left nodes unvisited.
func (e *Expander) Expand(ctx context.Context, root *model.Command, req source.Request, maxDepth int) (*model.Node, error) {
	if maxDepth < 1 {
		maxDepth = 1
	}
	tree := &model.Node{Command: root, DepthRemaining: maxDepth, Resolved: true}

	var deadline time.Time
	if e.timeout > 0 {
		deadline = e.now().Add(e.timeout)
	}

	var incomplete bool
	level := e.children(tree, req.Path)
	for depth := 1; len(level) > 0; depth++ {
		e.logger.Debug("expanding %d subcommands at depth %d", len(level), depth)
		resolved, skipped := e.runLevel(ctx, level, req.SkipMan, deadline)
		incomplete = incomplete || skipped

		var next []task
		for _, t := range resolved {
			next = append(next, e.children(t.node, t.path)...)
		}
		level = next
	}
	if incomplete {
		return tree, ErrIncomplete
	}
	return tree, nil
}

// children assigns depth budgets to the subcommands of n and returns the
// ones that should be fetched.
func (e *Expander) children(n *model.Node, path []string) []task {
	var tasks []task
	for _, sub := range n.Command.Subcommands {
		sub.DepthRemaining = n.DepthRemaining - 1
		if sub.Resolved {
			continue
		}
		if sub.DepthRemaining <= 0 {
			sub.DepthRemaining = 0
			sub.Truncated = true
			continue
		}
		if e.reserved[sub.Name()] {
			continue
		}
		childPath := append(append([]string(nil), path...), sub.Name())
		tasks = append(tasks, task{node: sub, path: childPath, siblings: n.Command.Subcommands})
	}
	return tasks
}

// runLevel fetches every task of one level through the worker pool and
// returns the tasks whose children should be expanded next, and whether any
// task was skipped. Duplicate paths are fetched once and the result shared.
func (e *Expander) runLevel(ctx context.Context, level []task, skipMan bool, deadline time.Time) ([]task, bool) {
	var (
		owners    []task
		byKey     = map[string]*model.Node{}
		followers = map[*model.Node]*model.Node{}
	)
	for _, t := range level {
		if owner, ok := byKey[t.key()]; ok {
			followers[t.node] = owner
			continue
		}
		byKey[t.key()] = t.node
		owners = append(owners, t)
	}

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for _, t := range owners {
		g.Go(func() error {
			// Tasks that have not started when the budget runs out are
			// skipped; fetches already running finish normally.
			if stop := e.stopReason(ctx, deadline); stop != nil {
				e.logger.Debug("skipping %s: %v", t.key(), stop)
				t.node.Warning = stop.Error()
				return nil
			}
			e.resolve(ctx, t, skipMan)
			return nil
		})
	}
	_ = g.Wait()

	for follower, owner := range followers {
		follower.Command = owner.Command
		follower.Resolved = owner.Resolved
		follower.Warning = owner.Warning
	}

	var (
		expand  []task
		skipped bool
	)
	for _, t := range owners {
		switch {
		case t.node.Resolved && t.node.Warning == "":
			expand = append(expand, t)
		case !t.node.Resolved:
			skipped = true
		}
	}
	return expand, skipped
}

func (e *Expander) stopReason(ctx context.Context, deadline time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !deadline.IsZero() && e.now().After(deadline) {
		return errTimedOut
	}
	return nil
}

// resolve fetches and parses one node. It only writes to t.node.
func (e *Expander) resolve(ctx context.Context, t task, skipMan bool) {
	listed := t.node.Command
	v, err, shared := e.flight.Do(t.key(), func() (any, error) {
		return e.fetch(ctx, t.path, skipMan)
	})
	t.node.Resolved = true
	if err != nil {
		e.logger.Warn("%v", err)
		empty := model.NewCommand(listed.Name)
		empty.Summary = listed.Summary
		t.node.Command = empty
		t.node.Warning = err.Error()
		return
	}

	cmd := v.(*model.Command)
	if shared {
		cmd = cmd.Clone()
	}
	if cmd.Summary == "" {
		cmd.Summary = listed.Summary
	}
	if repeatsListing(cmd.Subcommands, t.siblings, t.node.Name()) {
		cmd.Subcommands = []*model.Node{}
		t.node.Warning = errRepeatHelp.Error()
	}
	t.node.Command = cmd
}

func (e *Expander) fetch(ctx context.Context, path []string, skipMan bool) (*model.Command, error) {
	e.logger.Debug("fetching help for %s", strings.Join(path, " "))
	origin := source.Origin{Path: path}
	doc, err := source.FetchDocument(ctx, e.fetcher, origin, source.Request{Path: path, SkipMan: skipMan})
	if err != nil {
		return nil, &model.SourceError{Path: path, Err: err}
	}
	return e.parse(path[len(path)-1], doc), nil
}

// repeatsListing reports whether a subcommand's own listing is its parent's
// listing again. Order is ignored and the subcommand's own name is left out of
// both sides, since the parser drops a command listed under itself.
func repeatsListing(own, siblings []*model.Node, self string) bool {
	names := func(nodes []*model.Node) map[string]bool {
		set := make(map[string]bool, len(nodes))
		for _, n := range nodes {
			if n.Name() != self {
				set[n.Name()] = true
			}
		}
		return set
	}
	got, want := names(own), names(siblings)
	if len(got) == 0 || len(got) != len(want) {
		return false
	}
	for name := range got {
		if !want[name] {
			return false
		}
	}
	return true
}
