package evolve

import (
	"context"

	"github.com/zetavcs/evolve/modules/plumbing"
)

// MoveCommitsRequest bundles the user-facing arguments of move-commits
// (§4.1, §6's CLI-surface note): a target set (already resolved from
// whichever of -b/-s/-r the caller chose), a destination selector, and
// the rebase options.
type MoveCommitsRequest struct {
	Targets       []plumbing.Hash
	Destination   []plumbing.Hash
	InsertAfter   []plumbing.Hash
	InsertBefore  []plumbing.Hash
	TargetRoots   []plumbing.Hash
	// SingleRevisions marks a "-r" style request: exact targets are
	// relocated and any hole they leave is filled by rebasing
	// descendants onto the target's own parents. It allows a target to
	// be rebased onto its own descendant; it is passed to
	// ResolveDestination as allowSelfRebase.
	SingleRevisions bool
	Options         RebaseOptions
}

// MoveCommits is the move-commits entry point: C2 (ResolveDestination) →
// C3 (buildPlan) → C4 (execute), run inside one transaction on repo
// (§5). An empty target set is a no-op: stats are all zero and nothing is
// written (§8 scenario 5).
func MoveCommits(ctx context.Context, repo MutableRepo, rewriter Rewriter, req MoveCommitsRequest) (*MoveCommitsStats, error) {
	if req.SingleRevisions && req.Options.EmptyBehavior == AbandonNewlyEmpty {
		return nil, &UserError{Kind: FlagConflict, Detail: "--skip-empty is not supported with -r"}
	}
	if len(req.Targets) == 0 {
		return &MoveCommitsStats{}, nil
	}

	newParents, newChildren, err := ResolveDestination(
		ctx, repo, req.Targets, req.Destination, req.InsertAfter, req.InsertBefore, req.SingleRevisions,
	)
	if err != nil {
		return nil, err
	}

	p, err := buildPlan(ctx, repo, PlannerInput{
		Targets:      req.Targets,
		NewParentIDs: newParents,
		NewChildren:  newChildren,
		TargetRoots:  req.TargetRoots,
	})
	if err != nil {
		return nil, err
	}

	return execute(ctx, repo, rewriter, p, req.Options)
}
