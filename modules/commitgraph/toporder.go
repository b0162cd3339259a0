package commitgraph

import (
	"fmt"

	"github.com/zetavcs/evolve/modules/plumbing"
)

// VisitOrder computes a topological order over visit, a finite vertex set,
// using the edges returned by parentsOf: parentsOf(c) is c's dependency set
// (its planned new parents). Only entries of parentsOf(c) that are
// themselves in visit constrain the order; parents outside visit are
// treated as already-settled, exactly as spec.md §4.2(h) requires ("the
// order must tolerate parents that lie outside the visit set").
//
// The returned slice lists every member of visit exactly once, with each
// commit preceded by all of its in-visit parents — the order the rewrite
// executor (C4) needs so that a commit's new parents have already been
// rewritten by the time it is visited. Grounded on the in-degree/stack
// technique of commitTopoOrderIterator in the teacher's
// commit_walker_topo_order.go, adapted from an open-ended commit-timestamp
// walk over a lazily-fetched backend to a DFS over a known, finite, purely
// in-memory vertex set — the planner already has every edge in hand, so
// there is nothing left to fetch or order by time.
func VisitOrder(visit []plumbing.Hash, parentsOf func(plumbing.Hash) []plumbing.Hash) ([]plumbing.Hash, error) {
	inVisit := make(map[plumbing.Hash]bool, len(visit))
	for _, h := range visit {
		inVisit[h] = true
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[plumbing.Hash]int, len(visit))
	order := make([]plumbing.Hash, 0, len(visit))

	var visitNode func(h plumbing.Hash) error
	visitNode = func(h plumbing.Hash) error {
		switch state[h] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("commitgraph: cycle detected at %s", h)
		}
		state[h] = visiting
		for _, p := range parentsOf(h) {
			if !inVisit[p] {
				continue
			}
			if err := visitNode(p); err != nil {
				return err
			}
		}
		state[h] = done
		order = append(order, h)
		return nil
	}

	for _, h := range visit {
		if err := visitNode(h); err != nil {
			return nil, err
		}
	}
	return order, nil
}
