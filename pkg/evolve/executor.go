package evolve

import (
	"context"

	"github.com/zetavcs/evolve/modules/plumbing"
)

// execute is the rewrite executor (C4): it visits plan.order, resolves
// each commit's planned parents through the transaction's
// rewritten-references table, and either skips (idempotence), rewrites,
// or abandons the commit.
func execute(ctx context.Context, repo MutableRepo, rewriter Rewriter, p *plan, opts RebaseOptions) (*MoveCommitsStats, error) {
	stats := &MoveCommitsStats{}
	commits := newCommitCache(repo)

	for _, old := range p.order {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		planned := p.newParents[old]
		resolved, err := repo.NewParents(ctx, planned)
		if err != nil {
			return nil, wrapBackend("new_parents", err)
		}

		current, err := commits.get(ctx, old)
		if err != nil {
			return nil, err
		}

		if hashSliceEqual(resolved, current.ParentIDs) {
			stats.NumSkippedRebases++
			continue
		}

		outcome, err := rewriter.Rebase(ctx, current, resolved, opts)
		if err != nil {
			return nil, wrapBackend("rebase_commit_with_options", err)
		}
		repo.RecordRewrite(old, outcome)

		switch outcome.Kind {
		case Abandoned:
			stats.NumAbandoned++
		case Rewritten:
			if p.targetSet[old] {
				stats.NumRebasedTargets++
			} else {
				stats.NumRebasedDescendants++
			}
		}
	}

	if err := repo.UpdateRewrittenReferences(ctx); err != nil {
		return nil, wrapBackend("update_rewritten_references", err)
	}
	return stats, nil
}

func hashSliceEqual(a, b []plumbing.Hash) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
