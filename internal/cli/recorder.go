package cli

import (
	"context"

	"github.com/Robertorosmaninho/mlir/internal/engine"
)

// captureRecorder keeps applications in memory for command output,
// forwarding each record to the journal when one is attached.
type captureRecorder struct {
	apps []engine.Application
	next engine.Recorder
}

func (r *captureRecorder) Record(ctx context.Context, app engine.Application) error {
	r.apps = append(r.apps, app)
	if r.next != nil {
		return r.next.Record(ctx, app)
	}
	return nil
}
