package evolve

import (
	"context"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/zetavcs/evolve/modules/commitgraph"
	"github.com/zetavcs/evolve/modules/plumbing"
)

// PlannerInput is the resolved request the move-commits planner (C3) turns
// into a rewrite plan: the target set plus the (new_parents, new_children)
// pair ResolveDestination produced.
type PlannerInput struct {
	// Targets is T, in the order the caller selected them (reverse
	// topological, per §4.1's input contract); the planner only needs
	// membership, not this order.
	Targets []plumbing.Hash
	// NewParentIDs and NewChildren are the (possibly target-containing)
	// destination-resolver output, normalized by the planner in §4.2(d).
	NewParentIDs []plumbing.Hash
	NewChildren  []plumbing.Hash
	// TargetRoots overrides the derived roots of T* (§4.2(e)); leave nil
	// to let the planner derive them.
	TargetRoots []plumbing.Hash
}

// plan is the planner's output: the commit visit order (h) and, for each
// visited commit, its chosen new parent list (g). The executor (C4) walks
// order and rewrites each commit onto newParents[c].
type plan struct {
	order      []plumbing.Hash
	newParents map[plumbing.Hash][]plumbing.Hash
	targetSet  map[plumbing.Hash]bool
}

// buildPlan implements §4.2 (a)-(h) in full.
func buildPlan(ctx context.Context, repo MutableRepo, in PlannerInput) (*plan, error) {
	targetSet := hashSet(in.Targets)

	// (a) Connected target set T*.
	tstar, err := repo.Connected(ctx, in.Targets)
	if err != nil {
		return nil, wrapIndex("connected", err)
	}
	tstarSet := hashSet(tstar)

	commits := newCommitCache(repo)

	parentsWithin := func(set map[plumbing.Hash]bool) func(plumbing.Hash) []plumbing.Hash {
		return func(h plumbing.Hash) []plumbing.Hash {
			ps, err := commits.parents(ctx, h)
			if err != nil {
				return nil
			}
			var out []plumbing.Hash
			for _, p := range ps {
				if set[p] {
					out = append(out, p)
				}
			}
			return out
		}
	}

	// (b) Internal-parent map over T*, forward-topological order.
	tstarOrder, err := commitgraph.VisitOrder(tstar, parentsWithin(tstarSet))
	if err != nil {
		return nil, err
	}
	internalParents := linkedhashmap.New()
	for _, c := range tstarOrder {
		ps, err := commits.parents(ctx, c)
		if err != nil {
			return nil, err
		}
		var internal []plumbing.Hash
		for _, p := range ps {
			if !tstarSet[p] {
				continue
			}
			if targetSet[p] {
				internal = appendUnique(internal, p)
			} else if v, ok := internalParents.Get(p); ok {
				internal = appendUnique(internal, v.([]plumbing.Hash)...)
			}
		}
		internalParents.Put(c, internal)
	}

	// (c) External-parent map over T, forward-topological order.
	tOrder, err := commitgraph.VisitOrder(in.Targets, parentsWithin(targetSet))
	if err != nil {
		return nil, err
	}
	externalParents := linkedhashmap.New()
	for _, c := range tOrder {
		ps, err := commits.parents(ctx, c)
		if err != nil {
			return nil, err
		}
		var external []plumbing.Hash
		for _, p := range ps {
			if targetSet[p] {
				if v, ok := externalParents.Get(p); ok {
					external = appendUnique(external, v.([]plumbing.Hash)...)
				}
			} else {
				external = appendUnique(external, p)
			}
		}
		externalParents.Put(c, external)
	}
	extParentsOf := func(h plumbing.Hash) []plumbing.Hash {
		if v, ok := externalParents.Get(h); ok {
			return v.([]plumbing.Hash)
		}
		return nil
	}

	// External-children map over T (symmetric to (c), over the
	// descendant relation), needed by (d)'s new_children normalization.
	// Computed in reverse of tOrder so a commit's children are resolved
	// before the commit itself.
	externalChildren := linkedhashmap.New()
	for i := len(tOrder) - 1; i >= 0; i-- {
		c := tOrder[i]
		children, err := repo.Children(ctx, c)
		if err != nil {
			return nil, wrapBackend("children", err)
		}
		var external []plumbing.Hash
		for _, ch := range children {
			if targetSet[ch] {
				if v, ok := externalChildren.Get(ch); ok {
					external = appendUnique(external, v.([]plumbing.Hash)...)
				}
			} else {
				external = appendUnique(external, ch)
			}
		}
		externalChildren.Put(c, external)
	}
	extChildrenOf := func(h plumbing.Hash) []plumbing.Hash {
		if v, ok := externalChildren.Get(h); ok {
			return v.([]plumbing.Hash)
		}
		return nil
	}

	// (d) Normalizations.
	var newParentIDs []plumbing.Hash
	for _, p := range in.NewParentIDs {
		if targetSet[p] {
			newParentIDs = appendUnique(newParentIDs, extParentsOf(p)...)
		} else {
			newParentIDs = appendUnique(newParentIDs, p)
		}
	}
	var newChildren []plumbing.Hash
	for _, c := range in.NewChildren {
		if targetSet[c] {
			newChildren = appendUnique(newChildren, extChildrenOf(c)...)
		} else {
			newChildren = appendUnique(newChildren, c)
		}
	}
	newChildSet := hashSet(newChildren)

	// (e) Target roots: caller-supplied, or derived as the T* commits
	// with empty internal_parents. By construction (§4.2(a)) any member
	// of T*\T always has an internal parent, so this set is always ⊆ T.
	targetRoots := in.TargetRoots
	if len(targetRoots) == 0 {
		for _, c := range tstarOrder {
			v, _ := internalParents.Get(c)
			if len(v.([]plumbing.Hash)) == 0 && targetSet[c] {
				targetRoots = append(targetRoots, c)
			}
		}
	}
	targetRootSet := hashSet(targetRoots)

	// (f) New-children parent map.
	newChildrenParents := linkedhashmap.New()
	if len(newChildren) > 0 {
		var targetHeads []plumbing.Hash
		for _, t := range in.Targets {
			children, err := repo.Children(ctx, t)
			if err != nil {
				return nil, wrapBackend("children", err)
			}
			hasInnerChild := false
			for _, ch := range children {
				if tstarSet[ch] {
					hasInnerChild = true
					break
				}
			}
			if !hasInnerChild {
				targetHeads = appendUnique(targetHeads, t)
			}
		}
		newParentSet := hashSet(newParentIDs)
		for _, nc := range newChildren {
			curParents, err := commits.parents(ctx, nc)
			if err != nil {
				return nil, err
			}
			var parents []plumbing.Hash
			for _, p := range curParents {
				if targetSet[p] {
					parents = appendUnique(parents, extParentsOf(p)...)
				} else {
					parents = appendUnique(parents, p)
				}
			}
			var filtered []plumbing.Hash
			for _, p := range parents {
				if !newParentSet[p] {
					filtered = append(filtered, p)
				}
			}
			filtered = appendUnique(filtered, targetHeads...)
			newChildrenParents.Put(nc, filtered)
		}
	}

	// (g) Visit set: descendants(target_roots ∪ new_children).
	visitHeads := appendUnique(append([]plumbing.Hash(nil), targetRoots...), newChildren...)
	visitSet, err := repo.Descendants(ctx, visitHeads)
	if err != nil {
		return nil, wrapBackend("descendants", err)
	}

	// Commits not allowed as a surviving parent once rule 3's boundary
	// applies: descendants of any new_child (§4.2(g) rule 3's "dropped"
	// clause prevents re-introducing a cycle through the new-children
	// insertion point).
	var descOfNewChildren map[plumbing.Hash]bool
	if len(newChildren) > 0 {
		d, err := repo.Descendants(ctx, newChildren)
		if err != nil {
			return nil, wrapBackend("descendants", err)
		}
		descOfNewChildren = hashSet(d)
	}

	newParentsOf := make(map[plumbing.Hash][]plumbing.Hash, len(visitSet))
	for _, c := range visitSet {
		switch {
		case newChildSet[c]:
			v, _ := newChildrenParents.Get(c)
			newParentsOf[c] = v.([]plumbing.Hash)
		case targetSet[c] && targetRootSet[c]:
			newParentsOf[c] = newParentIDs
		case targetSet[c]:
			curParents, err := commits.parents(ctx, c)
			if err != nil {
				return nil, err
			}
			var np []plumbing.Hash
			for _, p := range curParents {
				switch {
				case targetSet[p]:
					np = appendUnique(np, p)
				default:
					if v, ok := internalParents.Get(p); ok {
						np = appendUnique(np, v.([]plumbing.Hash)...)
					} else if !descOfNewChildren[p] {
						np = appendUnique(np, p)
					}
					// else: dropped, prevents a cycle via the new-children boundary.
				}
			}
			newParentsOf[c] = np
		default:
			curParents, err := commits.parents(ctx, c)
			if err != nil {
				return nil, err
			}
			hasTargetParent := false
			for _, p := range curParents {
				if targetSet[p] {
					hasTargetParent = true
					break
				}
			}
			if !hasTargetParent {
				newParentsOf[c] = curParents
				continue
			}
			var np []plumbing.Hash
			for _, p := range curParents {
				if targetSet[p] {
					np = appendUnique(np, extParentsOf(p)...)
				} else {
					np = appendUnique(np, p)
				}
			}
			newParentsOf[c] = np
		}
	}

	// (h) Execution order: reverse-topological over the *new* parent
	// edges, tolerant of parents outside the visit set.
	order, err := commitgraph.VisitOrder(visitSet, func(h plumbing.Hash) []plumbing.Hash {
		return newParentsOf[h]
	})
	if err != nil {
		return nil, err
	}

	return &plan{order: order, newParents: newParentsOf, targetSet: targetSet}, nil
}

// commitCache memoizes Backend.Commit lookups for the duration of one
// plan/execute call, matching the teacher's preference for a flat
// id->record arena over repeatedly refetching from the store (§9).
type commitCache struct {
	repo  MutableRepo
	cache map[plumbing.Hash]*commitgraph.Commit
}

func newCommitCache(repo MutableRepo) *commitCache {
	return &commitCache{repo: repo, cache: map[plumbing.Hash]*commitgraph.Commit{}}
}

func (c *commitCache) get(ctx context.Context, h plumbing.Hash) (*commitgraph.Commit, error) {
	if cc, ok := c.cache[h]; ok {
		return cc, nil
	}
	cc, err := c.repo.Backend().Commit(ctx, h)
	if err != nil {
		return nil, wrapBackend("commit", err)
	}
	c.cache[h] = cc
	return cc, nil
}

func (c *commitCache) parents(ctx context.Context, h plumbing.Hash) ([]plumbing.Hash, error) {
	cc, err := c.get(ctx, h)
	if err != nil {
		return nil, err
	}
	return cc.ParentIDs, nil
}
