package journal

import (
	"context"
	"fmt"

	"github.com/Robertorosmaninho/mlir/internal/engine"
)

// Record inserts one applied-rewrite row. Implements engine.Recorder.
//
// Uses ON CONFLICT(rule_id, binding_hash) DO NOTHING for idempotency:
// the same rule applied to the same matched values is recorded once,
// no matter how often a pass is replayed. Other constraint violations
// (e.g. NOT NULL) still return errors.
func (j *Journal) Record(ctx context.Context, app engine.Application) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO applications
		(id, rule_id, root_op, binding_hash, seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(rule_id, binding_hash) DO NOTHING
	`,
		app.ID,
		app.RuleID,
		app.RootOp,
		app.BindingHash,
		app.Seq,
	)
	if err != nil {
		return fmt.Errorf("record application: %w", err)
	}

	return nil
}
