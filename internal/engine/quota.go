package engine

import (
	"errors"
	"fmt"
)

// DefaultMaxApplications bounds the rewrites applied in one driver
// pass. The algorithm itself has no intrinsic termination guarantee
// (a rule that reintroduces its own match target loops forever), so
// the bound is the caller-facing knob for that responsibility.
const DefaultMaxApplications = 10000

// ApplicationQuota counts applied rewrites against a limit.
//
// One quota instance serves one driver pass. Check gates each attempt
// before mutation; Commit counts a rewrite only once it has actually
// landed, so matched-but-never-applied attempts (a failed build or a
// width mismatch at substitution) consume no quota. When the quota is
// exhausted the pass stops with the graph in the consistent state the
// last applied rewrite left it in.
type ApplicationQuota struct {
	limit   int
	current int
}

// NewApplicationQuota creates a quota with the given limit.
func NewApplicationQuota(limit int) *ApplicationQuota {
	return &ApplicationQuota{limit: limit}
}

// Check validates that one more rewrite may be applied. Returns
// ApplicationLimitError once the limit is reached. Check does not
// count; the caller commits after the rewrite lands.
func (q *ApplicationQuota) Check() error {
	if q.current >= q.limit {
		return &ApplicationLimitError{
			Applications: q.current + 1,
			Limit:        q.limit,
		}
	}
	return nil
}

// Commit counts one applied rewrite against the quota.
func (q *ApplicationQuota) Commit() {
	q.current++
}

// Current returns the number of applications counted so far.
func (q *ApplicationQuota) Current() int {
	return q.current
}

// Limit returns the configured maximum.
func (q *ApplicationQuota) Limit() int {
	return q.limit
}

// ApplicationLimitError is returned when a driver pass exceeds its
// maximum rewrite applications.
type ApplicationLimitError struct {
	Applications int
	Limit        int
}

// Error implements the error interface.
func (e *ApplicationLimitError) Error() string {
	return fmt.Sprintf("rewrite pass exceeded max applications: %d > %d limit", e.Applications, e.Limit)
}

// IsApplicationLimitError returns true if the error is an
// ApplicationLimitError. Uses errors.As to handle wrapped errors.
func IsApplicationLimitError(err error) bool {
	var le *ApplicationLimitError
	return errors.As(err, &le)
}
