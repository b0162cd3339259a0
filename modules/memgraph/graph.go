// Package memgraph is a small, deterministic, in-process implementation of
// the commit-store, ancestry-index, and revset-builder collaborators
// (§6) that pkg/evolve and pkg/opdiff consume as interfaces. It exists for
// tests and documentation examples — not as a production object store —
// grounded on the MockBackend pattern in the teacher's
// modules/zeta/object/commit_walker_test.go, generalized with the naive
// BFS/convex-hull helpers the real revset engine would provide.
package memgraph

import (
	"context"
	"fmt"

	"github.com/zetavcs/evolve/modules/commitgraph"
	"github.com/zetavcs/evolve/modules/plumbing"
	"github.com/zetavcs/evolve/pkg/evolve"
	"github.com/zetavcs/evolve/pkg/opdiff"
)

// Graph is an in-memory commit DAG. The zero value is not usable; use New.
type Graph struct {
	commits      map[plumbing.Hash]*commitgraph.Commit
	unrewritable map[plumbing.Hash]bool
	rewrites     map[plumbing.Hash]evolve.RebasedCommit
	forcedEmpty  map[plumbing.Hash]bool
	seq          int
}

func New() *Graph {
	return &Graph{
		commits:      map[plumbing.Hash]*commitgraph.Commit{},
		unrewritable: map[plumbing.Hash]bool{},
		rewrites:     map[plumbing.Hash]evolve.RebasedCommit{},
		forcedEmpty:  map[plumbing.Hash]bool{},
	}
}

// AddCommit inserts or overwrites a commit.
func (g *Graph) AddCommit(c *commitgraph.Commit) {
	cp := *c
	cp.ParentIDs = append([]plumbing.Hash(nil), c.ParentIDs...)
	g.commits[c.Hash] = &cp
}

// MarkUnrewritable flags id as not permitted to be rewritten (used to
// exercise the destination resolver's rewritability check).
func (g *Graph) MarkUnrewritable(id plumbing.Hash) { g.unrewritable[id] = true }

// ForceEmptyAfterRebase marks id as becoming empty the next time it is
// rebased, regardless of its IsEmpty field before the rebase — a test hook
// standing in for real tree-diffing, which this package does not have.
func (g *Graph) ForceEmptyAfterRebase(id plumbing.Hash) { g.forcedEmpty[id] = true }

func (g *Graph) mustGet(id plumbing.Hash) (*commitgraph.Commit, bool) {
	c, ok := g.commits[id]
	return c, ok
}

// Commit implements commitgraph.Backend.
func (g *Graph) Commit(ctx context.Context, id plumbing.Hash) (*commitgraph.Commit, error) {
	c, ok := g.mustGet(id)
	if !ok {
		return nil, plumbing.NoSuchObject(id)
	}
	return c, nil
}

// IsAncestor implements evolve.Ancestry.
func (g *Graph) IsAncestor(ctx context.Context, ancestor, descendant plumbing.Hash) (bool, error) {
	if ancestor == descendant {
		return true, nil
	}
	seen := map[plumbing.Hash]bool{}
	var walk func(h plumbing.Hash) bool
	walk = func(h plumbing.Hash) bool {
		if seen[h] {
			return false
		}
		seen[h] = true
		c, ok := g.mustGet(h)
		if !ok {
			return false
		}
		for _, p := range c.ParentIDs {
			if p == ancestor {
				return true
			}
			if walk(p) {
				return true
			}
		}
		return false
	}
	return walk(descendant), nil
}

// Children implements evolve.MutableRepo.
func (g *Graph) Children(ctx context.Context, id plumbing.Hash) ([]plumbing.Hash, error) {
	var out []plumbing.Hash
	for h, c := range g.commits {
		for _, p := range c.ParentIDs {
			if p == id {
				out = append(out, h)
				break
			}
		}
	}
	sortHashes(out)
	return out, nil
}

func (g *Graph) descendantsSet(heads []plumbing.Hash) map[plumbing.Hash]bool {
	seen := map[plumbing.Hash]bool{}
	var stack []plumbing.Hash
	for _, h := range heads {
		if !seen[h] {
			seen[h] = true
			stack = append(stack, h)
		}
	}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		children, _ := g.Children(context.Background(), h)
		for _, ch := range children {
			if !seen[ch] {
				seen[ch] = true
				stack = append(stack, ch)
			}
		}
	}
	return seen
}

func (g *Graph) ancestorsSet(heads []plumbing.Hash) map[plumbing.Hash]bool {
	seen := map[plumbing.Hash]bool{}
	var stack []plumbing.Hash
	for _, h := range heads {
		if !seen[h] {
			seen[h] = true
			stack = append(stack, h)
		}
	}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c, ok := g.mustGet(h)
		if !ok {
			continue
		}
		for _, p := range c.ParentIDs {
			if !seen[p] {
				seen[p] = true
				stack = append(stack, p)
			}
		}
	}
	return seen
}

// Descendants implements evolve.MutableRepo.
func (g *Graph) Descendants(ctx context.Context, heads []plumbing.Hash) ([]plumbing.Hash, error) {
	set := g.descendantsSet(heads)
	out := make([]plumbing.Hash, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	sortHashes(out)
	return out, nil
}

// Connected implements evolve.MutableRepo: the convex hull of ids — every
// commit lying on a DAG path between two members of ids, inclusive of ids
// itself.
func (g *Graph) Connected(ctx context.Context, ids []plumbing.Hash) ([]plumbing.Hash, error) {
	result := map[plumbing.Hash]bool{}
	for _, h := range ids {
		result[h] = true
	}
	for _, a := range ids {
		for _, b := range ids {
			if a == b {
				continue
			}
			isAnc, err := g.IsAncestor(ctx, a, b)
			if err != nil {
				return nil, err
			}
			if !isAnc {
				continue
			}
			desc := g.descendantsSet([]plumbing.Hash{a})
			anc := g.ancestorsSet([]plumbing.Hash{b})
			anc[b] = true
			for c := range desc {
				if anc[c] {
					result[c] = true
				}
			}
		}
	}
	out := make([]plumbing.Hash, 0, len(result))
	for h := range result {
		out = append(out, h)
	}
	sortHashes(out)
	return out, nil
}

// WalkRevs implements opdiff.Index: commits reachable from heads by
// repeatedly following parent edges, excluding anything also reachable
// from roots. Grounded on walk_revs(repo, heads, roots) (§6). The result is
// in hash order, not reverse-topological order.
func (g *Graph) WalkRevs(ctx context.Context, heads, roots []plumbing.Hash) ([]plumbing.Hash, error) {
	from := g.ancestorsSet(heads)
	exclude := g.ancestorsSet(roots)
	out := make([]plumbing.Hash, 0, len(from))
	for h := range from {
		if !exclude[h] {
			out = append(out, h)
		}
	}
	sortHashes(out)
	return out, nil
}

// IsRewritable implements evolve.MutableRepo.
func (g *Graph) IsRewritable(ctx context.Context, id plumbing.Hash) (bool, error) {
	return !g.unrewritable[id], nil
}

// NewParents implements evolve.MutableRepo: resolves ids through the
// rewrite table recorded so far this transaction, dropping abandoned
// entries (substituting their own parent ids) and following rewritten
// entries to their new id.
func (g *Graph) NewParents(ctx context.Context, ids []plumbing.Hash) ([]plumbing.Hash, error) {
	var out []plumbing.Hash
	seen := map[plumbing.Hash]bool{}
	var resolve func(id plumbing.Hash, depth int) error
	resolve = func(id plumbing.Hash, depth int) error {
		if depth > len(g.commits)+len(g.rewrites)+1 {
			return fmt.Errorf("memgraph: rewrite table cycle at %s", id)
		}
		outcome, ok := g.rewrites[id]
		if !ok {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
			return nil
		}
		switch outcome.Kind {
		case evolve.Rewritten:
			if !seen[outcome.NewID] {
				seen[outcome.NewID] = true
				out = append(out, outcome.NewID)
			}
		case evolve.Abandoned:
			for _, p := range outcome.ParentIDs {
				if err := resolve(p, depth+1); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for _, id := range ids {
		if err := resolve(id, 0); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RecordRewrite implements evolve.MutableRepo.
func (g *Graph) RecordRewrite(old plumbing.Hash, outcome evolve.RebasedCommit) {
	g.rewrites[old] = outcome
}

// UpdateRewrittenReferences implements evolve.MutableRepo. memgraph has no
// reference store of its own (refmodel.RepoView snapshots are managed by
// callers directly), so propagation is a no-op here; real backends migrate
// branches/working-copy positions through the same rewrite table.
func (g *Graph) UpdateRewrittenReferences(ctx context.Context) error { return nil }

// Backend implements evolve.MutableRepo.
func (g *Graph) Backend() commitgraph.Backend { return g }

// Rebase implements evolve.Rewriter: produces a deterministic new commit
// with a fresh hash, the same ChangeID, and the given parents, unless
// AbandonNewlyEmpty applies and the commit would become empty for the
// first time.
func (g *Graph) Rebase(ctx context.Context, c *commitgraph.Commit, newParents []plumbing.Hash, opts evolve.RebaseOptions) (evolve.RebasedCommit, error) {
	becomesEmpty := c.IsEmpty || g.forcedEmpty[c.Hash]
	if opts.EmptyBehavior == evolve.AbandonNewlyEmpty && becomesEmpty && !c.IsEmpty && len(newParents) <= 1 {
		return evolve.RebasedCommit{Kind: evolve.Abandoned, ParentIDs: newParents}, nil
	}
	if opts.SimplifyAncestorMerge {
		newParents = g.simplifyAncestorMerge(ctx, newParents)
	}
	newID := g.deriveHash(c.Hash, newParents)
	g.AddCommit(&commitgraph.Commit{Hash: newID, ChangeID: c.ChangeID, ParentIDs: newParents, IsEmpty: becomesEmpty})
	return evolve.RebasedCommit{Kind: evolve.Rewritten, NewID: newID}, nil
}

// simplifyAncestorMerge drops any parent that is an ancestor of another
// parent (§4.3).
func (g *Graph) simplifyAncestorMerge(ctx context.Context, parents []plumbing.Hash) []plumbing.Hash {
	var out []plumbing.Hash
	for i, p := range parents {
		redundant := false
		for j, q := range parents {
			if i == j {
				continue
			}
			if isAnc, _ := g.IsAncestor(ctx, p, q); isAnc {
				redundant = true
				break
			}
		}
		if !redundant {
			out = append(out, p)
		}
	}
	return out
}

func (g *Graph) deriveHash(old plumbing.Hash, parents []plumbing.Hash) plumbing.Hash {
	g.seq++
	h := plumbing.NewHasher()
	_, _ = h.Write(old[:])
	for _, p := range parents {
		_, _ = h.Write(p[:])
	}
	_, _ = fmt.Fprintf(h, "#%d", g.seq)
	return h.Sum()
}

func sortHashes(hs []plumbing.Hash) { plumbing.HashesSort(hs) }

var (
	_ commitgraph.Backend = (*Graph)(nil)
	_ evolve.Ancestry     = (*Graph)(nil)
	_ evolve.MutableRepo  = (*Graph)(nil)
	_ evolve.Rewriter     = (*Graph)(nil)
	_ opdiff.Index        = (*Graph)(nil)
)
