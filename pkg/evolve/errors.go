package evolve

import (
	"errors"
	"fmt"

	"github.com/zetavcs/evolve/internal/log"
	"github.com/zetavcs/evolve/modules/plumbing"
)

// ErrorKind classifies a UserError per spec.md §7. It exists so callers
// (and the demo CLI in cmd/evolve) can branch on the failure without
// string-matching messages.
type ErrorKind int8

const (
	_ ErrorKind = iota
	CycleWouldBeCreated
	CannotRebaseOntoDescendant
	CannotRebaseOntoSelf
	OperationHasNoParents
	FlagConflict
)

func (k ErrorKind) String() string {
	switch k {
	case CycleWouldBeCreated:
		return "cycle would be created"
	case CannotRebaseOntoDescendant:
		return "cannot rebase onto descendant"
	case CannotRebaseOntoSelf:
		return "cannot rebase onto self"
	case OperationHasNoParents:
		return "operation has no parents"
	case FlagConflict:
		return "flag conflict"
	default:
		return "user error"
	}
}

// UserError is a rejection the caller is expected to fix (a bad revset
// selection, a self-rebase, conflicting flags) as opposed to a BackendError
// or IndexError, which are propagated, not diagnosed. It always aborts the
// whole transaction — there is no partial application (§7).
type UserError struct {
	Kind   ErrorKind
	Commit plumbing.Hash // zero if not commit-specific
	Detail string
}

func (e *UserError) Error() string {
	if e.Commit.IsZero() {
		if e.Detail != "" {
			return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
		}
		return e.Kind.String()
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Commit.Prefix(), e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Commit.Prefix())
}

func newUserError(kind ErrorKind, commit plumbing.Hash, detail string) *UserError {
	return &UserError{Kind: kind, Commit: commit, Detail: detail}
}

// AsUserError reports whether err is (or wraps) a *UserError and returns it.
func AsUserError(err error) (*UserError, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// BackendError wraps an error surfaced by the commit store collaborator.
// Per §7 it is printed verbatim with its causal chain, never summarized.
type BackendError struct {
	Op    string
	Cause error
}

func (e *BackendError) Error() string { return fmt.Sprintf("backend error: %s: %v", e.Op, e.Cause) }
func (e *BackendError) Unwrap() error { return e.Cause }

func wrapBackend(op string, err error) error {
	if err == nil {
		return nil
	}
	log.BackendFailure(op, err)
	return &BackendError{Op: op, Cause: err}
}

// IndexError wraps an error surfaced by the ancestry/revset collaborator.
type IndexError struct {
	Op    string
	Cause error
}

func (e *IndexError) Error() string { return fmt.Sprintf("index error: %s: %v", e.Op, e.Cause) }
func (e *IndexError) Unwrap() error { return e.Cause }

func wrapIndex(op string, err error) error {
	if err == nil {
		return nil
	}
	log.IndexFailure(op, err)
	return &IndexError{Op: op, Cause: err}
}
