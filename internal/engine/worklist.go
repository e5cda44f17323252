package engine

import (
	"github.com/Robertorosmaninho/mlir/internal/ir"
)

// worklist is a FIFO of candidate root operations with membership
// dedup. The driver is single-threaded, so no locking: determinism
// comes from strict FIFO order and from requeueing consumers in use-
// edge order.
type worklist struct {
	queue  []*ir.Operation
	queued map[*ir.Operation]bool
}

func newWorklist() *worklist {
	return &worklist{
		queue:  make([]*ir.Operation, 0, 64),
		queued: make(map[*ir.Operation]bool),
	}
}

// push appends a candidate unless it is erased or already pending.
func (w *worklist) push(op *ir.Operation) {
	if op == nil || op.Erased() || w.queued[op] {
		return
	}
	w.queue = append(w.queue, op)
	w.queued[op] = true
}

// pop removes and returns the front candidate, skipping operations
// erased while they sat in the queue. Returns nil when empty.
func (w *worklist) pop() *ir.Operation {
	for len(w.queue) > 0 {
		op := w.queue[0]
		// Nil out the slot so the backing array does not retain the
		// operation once it leaves the queue.
		w.queue[0] = nil
		w.queue = w.queue[1:]
		delete(w.queued, op)
		if !op.Erased() {
			return op
		}
	}
	return nil
}

func (w *worklist) len() int {
	return len(w.queue)
}
