package opdiff

import (
	"context"

	"github.com/zetavcs/evolve/modules/commitgraph"
	"github.com/zetavcs/evolve/modules/plumbing"
)

// Index is the scratch repo §4.4 step 1 merges both snapshots' commit
// indexes into: a read-only commit store plus walk_revs (§6), the
// reverse-topological reachable-minus-excluded revset primitive.
// memgraph.Graph satisfies this directly once both sides' commits have
// been added to it.
type Index interface {
	commitgraph.Backend
	WalkRevs(ctx context.Context, heads, roots []plumbing.Hash) ([]plumbing.Hash, error)
}

// Diff implements the operation-diff engine (C5) in full: index merge is
// the caller's job (populate a shared Index with both snapshots' commits
// before calling Diff); steps 2-5 happen here.
func Diff(ctx context.Context, scratch Index, from, to Snapshot) (*DiffStream, error) {
	addedIDs, err := scratch.WalkRevs(ctx, to.Heads(), from.Heads())
	if err != nil {
		return nil, err
	}
	removedIDs, err := scratch.WalkRevs(ctx, from.Heads(), to.Heads())
	if err != nil {
		return nil, err
	}
	plumbing.HashesSort(addedIDs)
	plumbing.HashesSort(removedIDs)

	changeCommit := map[plumbing.Hash]*commitgraph.Commit{}
	fetch := func(h plumbing.Hash) (*commitgraph.Commit, error) {
		if c, ok := changeCommit[h]; ok {
			return c, nil
		}
		c, err := scratch.Commit(ctx, h)
		if err != nil {
			return nil, err
		}
		changeCommit[h] = c
		return c, nil
	}

	order := []commitgraph.ChangeId{}
	seenChange := map[commitgraph.ChangeId]bool{}
	changes := map[commitgraph.ChangeId]*ModifiedChange{}
	ensure := func(id commitgraph.ChangeId) *ModifiedChange {
		if m, ok := changes[id]; ok {
			return m
		}
		m := &ModifiedChange{ChangeID: id}
		changes[id] = m
		if !seenChange[id] {
			seenChange[id] = true
			order = append(order, id)
		}
		return m
	}

	for _, h := range addedIDs {
		c, err := fetch(h)
		if err != nil {
			return nil, err
		}
		m := ensure(c.ChangeID)
		m.AddedCommits = append(m.AddedCommits, h)
	}
	for _, h := range removedIDs {
		c, err := fetch(h)
		if err != nil {
			return nil, err
		}
		m := ensure(c.ChangeID)
		m.RemovedCommits = append(m.RemovedCommits, h)
	}

	// (step 4) Parent-change derivation: only the commits already fetched
	// above (the added/removed buckets) are in changeCommit; parents
	// outside that set are ignored per §4.4 step 4.
	metaParents := map[commitgraph.ChangeId][]commitgraph.ChangeId{}
	for _, id := range order {
		m := changes[id]
		source := m.AddedCommits
		if len(source) == 0 {
			source = m.RemovedCommits
		}
		var parents []commitgraph.ChangeId
		seen := map[commitgraph.ChangeId]bool{}
		for _, h := range source {
			c, err := fetch(h)
			if err != nil {
				return nil, err
			}
			for _, p := range c.ParentIDs {
				pc, ok := changeCommit[p]
				if !ok {
					continue
				}
				pid := pc.ChangeID
				if !seen[pid] {
					seen[pid] = true
					parents = append(parents, pid)
				}
			}
		}
		metaParents[id] = parents
	}

	// (step 5) Reverse-topological meta-DAG order: VisitOrder yields
	// parents-before-children, so the reverse is children(newer)-first,
	// matching jj's op-log presentation convention.
	topo, err := changeVisitOrder(order, func(id commitgraph.ChangeId) []commitgraph.ChangeId {
		return metaParents[id]
	})
	if err != nil {
		return nil, err
	}
	entries := make([]ChangeEntry, 0, len(topo))
	for i := len(topo) - 1; i >= 0; i-- {
		id := topo[i]
		var edges []GraphEdge
		for _, p := range metaParents[id] {
			edges = append(edges, GraphEdge{Parent: p})
		}
		entries = append(entries, ChangeEntry{ChangeID: id, Edges: edges, Change: changes[id]})
	}

	return &DiffStream{Entries: entries}, nil
}

// changeVisitOrder is commitgraph.VisitOrder's algorithm over ChangeId
// instead of plumbing.Hash: a topological sort (parents before children)
// over a finite, known vertex set, tolerant of edges leaving the set.
func changeVisitOrder(visit []commitgraph.ChangeId, parentsOf func(commitgraph.ChangeId) []commitgraph.ChangeId) ([]commitgraph.ChangeId, error) {
	inVisit := make(map[commitgraph.ChangeId]bool, len(visit))
	for _, id := range visit {
		inVisit[id] = true
	}
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[commitgraph.ChangeId]int, len(visit))
	order := make([]commitgraph.ChangeId, 0, len(visit))

	var visitNode func(id commitgraph.ChangeId) error
	visitNode = func(id commitgraph.ChangeId) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			return &cycleError{id: id}
		}
		state[id] = visiting
		for _, p := range parentsOf(id) {
			if !inVisit[p] {
				continue
			}
			if err := visitNode(p); err != nil {
				return err
			}
		}
		state[id] = done
		order = append(order, id)
		return nil
	}

	for _, id := range visit {
		if err := visitNode(id); err != nil {
			return nil, err
		}
	}
	return order, nil
}

type cycleError struct{ id commitgraph.ChangeId }

func (e *cycleError) Error() string { return "opdiff: meta-DAG cycle detected at " + string(e.id) }
