package journal

import (
	"context"
	"fmt"

	"github.com/Robertorosmaninho/mlir/internal/engine"
)

// List returns every recorded application with deterministic ordering:
// ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) when the journal is empty.
func (j *Journal) List(ctx context.Context) ([]engine.Application, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, rule_id, root_op, binding_hash, seq
		FROM applications
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	apps := []engine.Application{}
	for rows.Next() {
		var app engine.Application
		if err := rows.Scan(&app.ID, &app.RuleID, &app.RootOp, &app.BindingHash, &app.Seq); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}

	return apps, nil
}

// ListByRule returns every recorded application of one rule, in the
// same deterministic order as List.
func (j *Journal) ListByRule(ctx context.Context, ruleID string) ([]engine.Application, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, rule_id, root_op, binding_hash, seq
		FROM applications
		WHERE rule_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, ruleID)
	if err != nil {
		return nil, fmt.Errorf("query applications by rule: %w", err)
	}
	defer rows.Close()

	apps := []engine.Application{}
	for rows.Next() {
		var app engine.Application
		if err := rows.Scan(&app.ID, &app.RuleID, &app.RootOp, &app.BindingHash, &app.Seq); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}

	return apps, nil
}

// Count returns the number of recorded applications.
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return n, nil
}
