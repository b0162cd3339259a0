// Package evolve implements the commit-graph rewriting core: the
// destination resolver (C2), move-commits planner (C3) and rewrite
// executor (C4) of spec.md. The commit store, revset engine and
// transaction facility are consumed only through the interfaces declared
// in this file (§6); this package never walks ParentIDs by hand outside
// of Ancestry/MutableRepo calls.
package evolve

import (
	"context"

	"github.com/zetavcs/evolve/modules/commitgraph"
	"github.com/zetavcs/evolve/modules/plumbing"
)

// Ancestry answers the one query the planner cannot derive from its own
// maps: whether a already reachable from b in the *current*, pre-move DAG.
// Grounded on repo.index().is_ancestor(a, b) (§6).
type Ancestry interface {
	IsAncestor(ctx context.Context, ancestor, descendant plumbing.Hash) (bool, error)
}

// EmptyBehavior controls whether a rebase that produces an empty commit
// abandons it (§4.3).
type EmptyBehavior int8

const (
	Keep EmptyBehavior = iota
	AbandonNewlyEmpty
)

// RebaseOptions is the option bundle threaded into the commit rewriter
// (§4.3, §6).
type RebaseOptions struct {
	EmptyBehavior          EmptyBehavior
	SimplifyAncestorMerge  bool
}

// RebasedKind tags the outcome of one rebase_commit_with_options call.
type RebasedKind int8

const (
	Rewritten RebasedKind = iota
	Abandoned
)

// RebasedCommit is the tagged variant jj calls RebasedCommit (§9):
// Rewritten carries the new commit id; Abandoned carries the parent ids
// downstream consumers should resolve through instead.
type RebasedCommit struct {
	Kind      RebasedKind
	NewID     plumbing.Hash   // valid when Kind == Rewritten
	ParentIDs []plumbing.Hash // valid when Kind == Abandoned
}

// Rewriter is the commit-rewriter collaborator: given a commit and its
// planned new parent list, produce the rewritten (or abandoned) result.
// Grounded on rebase_commit_with_options(settings, rewriter, options) (§6).
type Rewriter interface {
	Rebase(ctx context.Context, c *commitgraph.Commit, newParents []plumbing.Hash, opts RebaseOptions) (RebasedCommit, error)
}

// MutableRepo is the transactional repo view the executor mutates. All of
// move-commits runs inside exactly one transaction on one MutableRepo
// (§5): planning and rewriting both read through it, and only
// UpdateRewrittenReferences is a true side effect.
type MutableRepo interface {
	Ancestry

	Backend() commitgraph.Backend

	// Children returns id's direct children in the current DAG.
	Children(ctx context.Context, id plumbing.Hash) ([]plumbing.Hash, error)

	// Descendants returns every commit reachable from heads (inclusive),
	// in no particular order. Grounded on walk_revs/descendants (§6).
	Descendants(ctx context.Context, heads []plumbing.Hash) ([]plumbing.Hash, error)

	// Connected returns ids plus every commit lying on a DAG path between
	// two members of ids — the convex hull §4.2(a) calls T*. Grounded on
	// the RevsetExpression builder `connected` (§6); this is the one
	// revset primitive the planner cannot substitute with repeated
	// Descendants/IsAncestor calls without reimplementing the revset
	// engine itself.
	Connected(ctx context.Context, ids []plumbing.Hash) ([]plumbing.Hash, error)

	// IsRewritable reports whether the store permits rewriting id (e.g.
	// it is not immutable/published).
	IsRewritable(ctx context.Context, id plumbing.Hash) (bool, error)

	// NewParents resolves ids through the rewritten-references table,
	// dropping abandoned entries and substituting rewritten ones.
	// Grounded on mut_repo.new_parents(ids) (§6).
	NewParents(ctx context.Context, ids []plumbing.Hash) ([]plumbing.Hash, error)

	// RecordRewrite stages old -> outcome in the transaction-scoped
	// rewritten-references table (§9: "confine it to the transaction
	// object's lifetime").
	RecordRewrite(old plumbing.Hash, outcome RebasedCommit)

	// UpdateRewrittenReferences propagates the rewrite table into
	// branches, the working-copy position, and other refs. Grounded on
	// mut_repo.update_rewritten_references(settings) (§6).
	UpdateRewrittenReferences(ctx context.Context) error
}
