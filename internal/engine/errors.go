package engine

import (
	"errors"
	"fmt"
)

// RewriteError represents an error detected while building or applying
// a rewrite. Match failure is deliberately not part of this taxonomy:
// it is silent control flow, never reported.
type RewriteError struct {
	// Code identifies the error category.
	Code RewriteErrorCode

	// Message is a human-readable description.
	Message string

	// RuleID identifies the offending rule, when one is involved.
	RuleID string

	// RootOp is the operator of the matched root, when relevant.
	RootOp string
}

// RewriteErrorCode categorizes rewrite errors.
type RewriteErrorCode string

const (
	// ErrCodeArityMismatch indicates actual vs. declared counts could
	// not be reconciled during construction.
	ErrCodeArityMismatch RewriteErrorCode = "ARITY_MISMATCH"

	// ErrCodeRuleRejected indicates a rule-authoring error surfaced at
	// first use; the rule is dropped from the active set.
	ErrCodeRuleRejected RewriteErrorCode = "RULE_REJECTED"

	// ErrCodeLimitExceeded indicates the driver hit its maximum
	// application quota.
	ErrCodeLimitExceeded RewriteErrorCode = "LIMIT_EXCEEDED"

	// ErrCodeTransformFailed indicates a native transform returned an
	// error or the wrong number of groups.
	ErrCodeTransformFailed RewriteErrorCode = "TRANSFORM_FAILED"
)

// Error implements the error interface.
func (e *RewriteError) Error() string {
	if e.RuleID != "" && e.RootOp != "" {
		return fmt.Sprintf("%s: %s (rule=%s, root=%s)", e.Code, e.Message, e.RuleID, e.RootOp)
	}
	if e.RuleID != "" {
		return fmt.Sprintf("%s: %s (rule=%s)", e.Code, e.Message, e.RuleID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsRuleRejected returns true if the error marks a rule dropped from
// the active set. Uses errors.As to handle wrapped errors.
func IsRuleRejected(err error) bool {
	var re *RewriteError
	if errors.As(err, &re) {
		return re.Code == ErrCodeRuleRejected
	}
	return false
}

// IsLimitExceeded returns true if the error is an application quota
// violation. Matches both RewriteError and ApplicationLimitError.
func IsLimitExceeded(err error) bool {
	var re *RewriteError
	if errors.As(err, &re) && re.Code == ErrCodeLimitExceeded {
		return true
	}
	var le *ApplicationLimitError
	return errors.As(err, &le)
}

// newRuleRejected creates the error surfaced when a compiled rule
// still fails an authoring check at first use.
func newRuleRejected(ruleID, rootOp, reason string) *RewriteError {
	return &RewriteError{
		Code:    ErrCodeRuleRejected,
		Message: reason,
		RuleID:  ruleID,
		RootOp:  rootOp,
	}
}
