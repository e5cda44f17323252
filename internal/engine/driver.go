package engine

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/Robertorosmaninho/mlir/internal/ir"
	"github.com/Robertorosmaninho/mlir/internal/pattern"
)

// Application is the record of one applied rewrite, handed to the
// configured Recorder.
type Application struct {
	ID          string
	RuleID      string
	RootOp      string
	BindingHash string
	Seq         int64
}

// Recorder persists applied-rewrite records. Implemented by the
// journal store; a nil recorder disables journaling.
type Recorder interface {
	Record(ctx context.Context, app Application) error
}

// Driver runs rewrite passes: it pops candidate roots off a worklist,
// tries every rule applicable to the root's operator in descending
// benefit order (declaration order breaks ties), and on a match builds
// the replacement, substitutes it for the root's outputs, and requeues
// the consumers of the newly produced values.
//
// The driver assumes exclusive mutable access to the graph for the
// duration of a pass. It is single-threaded and deterministic: the
// same graph and rule set produce the same sequence of rewrites.
//
// Dead auxiliary-only subgraphs left behind by substitution are not
// collected here; dead-code elimination is the host's job.
type Driver struct {
	graph    *ir.Graph
	builder  *Builder
	rules    map[string][]*ruleEntry // keyed by root operator
	rejected map[string]bool         // rules dropped at first use
	maxApps  int
	metrics  *Metrics
	recorder Recorder
	idGen    TokenGenerator
	nextSeq  int64
	applied  int
}

type ruleEntry struct {
	compiled  *pattern.Compiled
	declIndex int
}

// Option configures a Driver.
type Option func(*Driver)

// WithMaxApplications caps the rewrites applied in one pass.
// Default: DefaultMaxApplications.
func WithMaxApplications(n int) Option {
	return func(d *Driver) { d.maxApps = n }
}

// WithMetrics attaches Prometheus metrics to the driver.
func WithMetrics(m *Metrics) Option {
	return func(d *Driver) { d.metrics = m }
}

// WithRecorder attaches an applied-rewrite recorder (the journal).
func WithRecorder(r Recorder) Option {
	return func(d *Driver) { d.recorder = r }
}

// WithIDGenerator overrides the application ID generator. Tests use
// FixedGenerator for deterministic journal rows.
func WithIDGenerator(g TokenGenerator) Option {
	return func(d *Driver) { d.idGen = g }
}

// NewDriver creates a driver over a graph, an accepted rule set (in
// declaration order), and a transform table.
func NewDriver(g *ir.Graph, rules []*pattern.Compiled, transforms *Transforms, opts ...Option) *Driver {
	d := &Driver{
		graph:    g,
		builder:  NewBuilder(g, transforms),
		rules:    make(map[string][]*ruleEntry),
		rejected: make(map[string]bool),
		maxApps:  DefaultMaxApplications,
		idGen:    UUIDv7Generator{},
	}
	for i, c := range rules {
		d.rules[c.RootOp] = append(d.rules[c.RootOp], &ruleEntry{compiled: c, declIndex: i})
	}
	// Higher benefit first; declaration order breaks ties. A rule that
	// consumed more of the graph must win, since applying a smaller
	// rule first can destroy the larger rule's match.
	for _, bucket := range d.rules {
		sort.SliceStable(bucket, func(a, b int) bool {
			if bucket[a].compiled.Benefit != bucket[b].compiled.Benefit {
				return bucket[a].compiled.Benefit > bucket[b].compiled.Benefit
			}
			return bucket[a].declIndex < bucket[b].declIndex
		})
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Applied returns the number of rewrites applied so far.
func (d *Driver) Applied() int { return d.applied }

// Run executes one full rewrite pass. seeds may narrow the initial
// candidate set; nil seeds every operation in the graph, in creation
// order.
//
// Cancellation is checked once per worklist pop; on cancellation the
// graph is left in the consistent state the last completed rewrite
// produced; there is no rollback of applied rewrites. Exceeding the
// application quota stops the pass the same way, returning
// ApplicationLimitError.
func (d *Driver) Run(ctx context.Context, seeds []*ir.Operation) error {
	wl := newWorklist()
	if seeds == nil {
		seeds = d.graph.Operations()
	}
	for _, op := range seeds {
		wl.push(op)
	}

	quota := NewApplicationQuota(d.maxApps)

	for {
		if err := ctx.Err(); err != nil {
			slog.Info("rewrite pass cancelled", "applied", d.applied)
			return err
		}

		op := wl.pop()
		if op == nil {
			slog.Debug("rewrite pass done", "applied", d.applied)
			return nil
		}
		d.metrics.setWorklistDepth(wl.len())

		if err := d.tryRoot(ctx, op, wl, quota); err != nil {
			return err
		}
	}
}

// tryRoot attempts every applicable rule against one candidate root.
// At most one rule is applied per pop: once the root's outputs are
// rewritten, remaining rules have nothing left to match. A root that
// matches nothing is discarded without modification.
func (d *Driver) tryRoot(ctx context.Context, root *ir.Operation, wl *worklist, quota *ApplicationQuota) error {
	for _, entry := range d.rules[root.Operator()] {
		c := entry.compiled
		if d.rejected[c.Rule.ID] {
			continue
		}

		d.metrics.matchAttempt(c.Rule.ID)
		env, ok := match(c, root)
		if !ok {
			continue
		}
		d.metrics.matchSuccess(c.Rule.ID)

		if err := quota.Check(); err != nil {
			slog.Error("max applications quota exceeded",
				"rule", c.Rule.ID,
				"root", root.Operator(),
				"applications", quota.Current(),
				"limit", quota.Limit(),
			)
			return err
		}

		// Hash before substitution so the hash names the matched
		// values, not their replacements.
		bindingHash, err := env.Hash()
		if err != nil {
			slog.Error("binding hash failed", "rule", c.Rule.ID, "error", err)
			bindingHash = ""
		}

		mark := d.graph.Mark()
		produced, err := d.builder.Build(c, env)
		if err != nil {
			d.graph.RollbackTo(mark)
			d.failAttempt(c, root, err)
			continue
		}

		window := produced[c.WindowStart:]
		if err := d.graph.ReplaceAllUsesAndErase(root, window); err != nil {
			// Slot widths are validated before any use edge moves, so
			// the root and its consumers are untouched; only the nodes
			// built for this attempt need erasing.
			d.graph.RollbackTo(mark)
			d.failAttempt(c, root, err)
			continue
		}

		d.applied++
		quota.Commit()
		d.metrics.rewriteApplied(c.Rule.ID)
		slog.Info("rewrite applied",
			"rule", c.Rule.ID,
			"root", root.Operator(),
			"benefit", c.Benefit,
			"binding_hash", bindingHash,
		)

		d.record(ctx, c, root, bindingHash)
		d.requeueConsumers(window, wl)
		return nil
	}
	return nil
}

// failAttempt handles a failed build or substitution. An arity
// mismatch is instance-dependent (this root's variadic widths) and
// treated as an ordinary match failure: the root is skipped and the
// rule stays active for other roots. Anything else is a rule-authoring
// error surfaced at first use, which rejects the rule.
func (d *Driver) failAttempt(c *pattern.Compiled, root *ir.Operation, cause error) {
	if errors.Is(cause, ir.ErrArityMismatch) {
		slog.Debug("rewrite attempt failed",
			"rule", c.Rule.ID,
			"root", root.Operator(),
			"error", cause,
		)
		return
	}
	d.rejectRule(c, root, cause)
}

// rejectRule drops a rule from the active set after an authoring error
// surfaced at first use, with the offending rule's identity. The
// driver continues with the remaining rules.
func (d *Driver) rejectRule(c *pattern.Compiled, root *ir.Operation, cause error) {
	d.rejected[c.Rule.ID] = true
	d.metrics.ruleRejected(c.Rule.ID)
	err := newRuleRejected(c.Rule.ID, root.Operator(), cause.Error())
	slog.Error("rule rejected from active set",
		"rule", c.Rule.ID,
		"root", root.Operator(),
		"error", err,
	)
}

// record journals one applied rewrite. Journal failures are logged and
// swallowed: the rewrite already happened, and failing the pass now
// would leave callers believing it did not.
func (d *Driver) record(ctx context.Context, c *pattern.Compiled, root *ir.Operation, bindingHash string) {
	if d.recorder == nil {
		return
	}
	d.nextSeq++
	app := Application{
		ID:          d.idGen.Generate(),
		RuleID:      c.Rule.ID,
		RootOp:      root.Operator(),
		BindingHash: bindingHash,
		Seq:         d.nextSeq,
	}
	if err := d.recorder.Record(ctx, app); err != nil {
		slog.Error("journal record failed",
			"application_id", app.ID,
			"rule", app.RuleID,
			"error", err,
		)
	}
}

// requeueConsumers pushes every consumer of the replacement values
// back onto the worklist, in use-edge order.
func (d *Driver) requeueConsumers(window []ir.ValueGroup, wl *worklist) {
	for _, group := range window {
		for _, v := range group {
			for _, u := range v.Uses() {
				wl.push(u.Consumer)
			}
		}
	}
}
