package harness

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Robertorosmaninho/mlir/internal/engine"
	"github.com/Robertorosmaninho/mlir/internal/ir"
	"github.com/Robertorosmaninho/mlir/internal/pattern"
)

// Scenario is one conformance case: a fixture graph, the rules to run
// over it, and the transforms those rules may invoke.
type Scenario struct {
	Name string

	// Registry declares the operator signatures the fixture uses.
	Registry *ir.Registry

	// Build populates the fixture graph.
	Build func(g *ir.Graph) error

	Rules      []*pattern.Rule
	Transforms *engine.Transforms

	// MaxApplications caps the pass; zero means the driver default.
	MaxApplications int
}

// Result is one scenario execution's observable outcome.
type Result struct {
	// Applied is the number of rewrites the pass performed.
	Applied int

	// Graph is the stable textual rendering of the final graph.
	Graph string

	// Applications is the applied-rewrite log in application order.
	Applications []engine.Application

	// Rejected holds per-rule compile errors for rules dropped before
	// the pass started.
	Rejected map[string][]pattern.ValidationError
}

// logRecorder captures applications in memory, standing in for the
// journal during scenario runs.
type logRecorder struct {
	apps []engine.Application
}

func (r *logRecorder) Record(_ context.Context, app engine.Application) error {
	r.apps = append(r.apps, app)
	return nil
}

// Run executes a scenario: build the fixture, compile the rules, drive
// one full rewrite pass. Rules that fail compilation are reported in
// Result.Rejected and the pass runs with the rest, mirroring the
// engine's drop-and-continue contract.
func Run(scenario *Scenario) (*Result, error) {
	if scenario.Registry == nil {
		return nil, fmt.Errorf("scenario %s: no registry", scenario.Name)
	}

	g := ir.NewGraph(scenario.Registry)
	if scenario.Build != nil {
		if err := scenario.Build(g); err != nil {
			return nil, fmt.Errorf("scenario %s: build fixture: %w", scenario.Name, err)
		}
	}

	transforms := scenario.Transforms
	if transforms == nil {
		transforms = engine.NewTransforms()
	}

	compiled, rejected := pattern.CompileAll(scenario.Rules, scenario.Registry, transforms)
	for id, errs := range rejected {
		slog.Warn("scenario rule rejected at compile", "scenario", scenario.Name, "rule", id, "errors", len(errs))
	}

	maxApps := scenario.MaxApplications
	if maxApps == 0 {
		maxApps = engine.DefaultMaxApplications
	}
	// One fixed ID per possible application keeps snapshots stable.
	ids := make([]string, maxApps)
	for i := range ids {
		ids[i] = fmt.Sprintf("app-%06d", i+1)
	}

	rec := &logRecorder{}
	d := engine.NewDriver(g, compiled, transforms,
		engine.WithMaxApplications(maxApps),
		engine.WithRecorder(rec),
		engine.WithIDGenerator(engine.NewFixedGenerator(ids...)),
	)

	if err := d.Run(context.Background(), nil); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	return &Result{
		Applied:      d.Applied(),
		Graph:        g.String(),
		Applications: rec.apps,
		Rejected:     rejected,
	}, nil
}

// sortedRejectedIDs returns the rejected rule IDs in stable order for
// rendering.
func sortedRejectedIDs(rejected map[string][]pattern.ValidationError) []string {
	ids := make([]string, 0, len(rejected))
	for id := range rejected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
