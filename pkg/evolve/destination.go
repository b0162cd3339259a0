package evolve

import (
	"context"

	"github.com/zetavcs/evolve/modules/plumbing"
)

// ResolveDestination turns a caller-supplied destination/insert_after/
// insert_before into a concrete (new_parents, new_children) pair (§4.1,
// C2). destination is expected to be used on its own, while insertAfter and
// insertBefore may be given alone or together, per the caller's own
// argument-grouping (the CLI's -d/--after/--before mutual-exclusion, out of
// scope here); ResolveDestination itself just implements the four cases and
// their validation.
//
// allowSelfRebase corresponds to "unless the caller requested 'rebase
// descendants' semantics" in §4.1 case 4 — set by MoveCommitsRequest for a
// single-revision (-r) request, which legitimately relocates a target past
// its own descendant to fill the hole it leaves behind and so must skip
// both the exact self-rebase match and checkNotOntoOwnDescendant below.
// Any other request (-b/-s, where the caller has already expanded targets
// to the whole set being moved) leaves it false, so both checks run.
func ResolveDestination(
	ctx context.Context,
	repo MutableRepo,
	targets []plumbing.Hash,
	destination, insertAfter, insertBefore []plumbing.Hash,
	allowSelfRebase bool,
) (newParents, newChildren []plumbing.Hash, err error) {
	switch {
	case len(insertAfter) > 0 && len(insertBefore) > 0:
		newParents = insertAfter
		newChildren = insertBefore
	case len(insertAfter) > 0:
		newParents = insertAfter
		for _, a := range insertAfter {
			children, err := repo.Children(ctx, a)
			if err != nil {
				return nil, nil, wrapBackend("children", err)
			}
			newChildren = appendUnique(newChildren, children...)
		}
	case len(insertBefore) > 0:
		newChildren = insertBefore
		siblings, err := siblingsOf(ctx, repo, insertBefore)
		if err != nil {
			return nil, nil, err
		}
		newParents = siblings
	default:
		newParents = destination
		if !allowSelfRebase {
			targetSet := hashSet(targets)
			for _, d := range destination {
				if targetSet[d] {
					return nil, nil, newUserError(CannotRebaseOntoSelf, d, "")
				}
			}
			if err := checkNotOntoOwnDescendant(ctx, repo, targets, destination); err != nil {
				return nil, nil, err
			}
		}
	}

	for _, c := range newChildren {
		ok, err := repo.IsRewritable(ctx, c)
		if err != nil {
			return nil, nil, wrapBackend("is_rewritable", err)
		}
		if !ok {
			return nil, nil, newUserError(FlagConflict, c, "destination child is not rewritable")
		}
	}

	// Targets among the new parents/children are replaced by the planner's
	// §4.2(d) normalization, so the loop check only covers non-targets.
	targetSet := hashSet(targets)
	var loopChildren, loopParents []plumbing.Hash
	for _, c := range newChildren {
		if !targetSet[c] {
			loopChildren = append(loopChildren, c)
		}
	}
	for _, p := range newParents {
		if !targetSet[p] {
			loopParents = append(loopParents, p)
		}
	}
	if err := checkNoLoop(ctx, repo, loopChildren, loopParents); err != nil {
		return nil, nil, err
	}

	return newParents, newChildren, nil
}

// siblingsOf returns the set of commits that currently share a parent with
// any commit in before — the commits "displaced" to make room when
// inserting before them (§4.1 case 3).
func siblingsOf(ctx context.Context, repo MutableRepo, before []plumbing.Hash) ([]plumbing.Hash, error) {
	var parents []plumbing.Hash
	for _, b := range before {
		c, err := repo.Backend().Commit(ctx, b)
		if err != nil {
			return nil, wrapBackend("commit", err)
		}
		parents = appendUnique(parents, c.ParentIDs...)
	}
	var siblings []plumbing.Hash
	for _, p := range parents {
		children, err := repo.Children(ctx, p)
		if err != nil {
			return nil, wrapBackend("children", err)
		}
		siblings = appendUnique(siblings, children...)
	}
	return siblings, nil
}

// checkNoLoop rejects a destination that would create a cycle: there must
// be no path from any new_child to any new_parent in the existing DAG
// (§4.1 post-condition). Named commit in the error is the offending child.
func checkNoLoop(ctx context.Context, repo MutableRepo, newChildren, newParents []plumbing.Hash) error {
	if len(newChildren) == 0 || len(newParents) == 0 {
		return nil
	}
	for _, child := range newChildren {
		for _, parent := range newParents {
			isAncestor, err := repo.IsAncestor(ctx, child, parent)
			if err != nil {
				return wrapIndex("is_ancestor", err)
			}
			if isAncestor {
				return newUserError(CycleWouldBeCreated, child, "")
			}
		}
	}
	return nil
}

// checkNotOntoOwnDescendant rejects a destination that is a strict
// descendant of one of the targets being rebased, the companion check to
// the exact self-rebase match above: unlike CannotRebaseOntoSelf, the
// destination need not be one of the targets itself, just reachable from
// one by following parent edges forward. It only runs alongside the
// self-rebase check, i.e. when the caller has not set allowSelfRebase
// (single-revision requests, §4.1 case 4's carve-out, intentionally
// allow rebasing a target past its own descendant to fill the hole it
// left behind).
func checkNotOntoOwnDescendant(ctx context.Context, repo MutableRepo, targets, destination []plumbing.Hash) error {
	for _, t := range targets {
		for _, d := range destination {
			isAncestor, err := repo.IsAncestor(ctx, t, d)
			if err != nil {
				return wrapIndex("is_ancestor", err)
			}
			if isAncestor {
				return newUserError(CannotRebaseOntoDescendant, d, "")
			}
		}
	}
	return nil
}

func hashSet(hs []plumbing.Hash) map[plumbing.Hash]bool {
	m := make(map[plumbing.Hash]bool, len(hs))
	for _, h := range hs {
		m[h] = true
	}
	return m
}

func appendUnique(dst []plumbing.Hash, src ...plumbing.Hash) []plumbing.Hash {
	seen := hashSet(dst)
	for _, h := range src {
		if !seen[h] {
			seen[h] = true
			dst = append(dst, h)
		}
	}
	return dst
}
