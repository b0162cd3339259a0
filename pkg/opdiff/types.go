// Package opdiff implements the operation-diff engine (C5) and reference
// diff (C6): given two repository snapshots it computes the set of
// changes added, removed, or modified between them, reconstructs their
// meta-DAG, and diffs the reference state. Like package evolve, it
// consumes its commit/ancestry collaborator only through an interface —
// it never assumes a particular store.
package opdiff

import (
	"github.com/zetavcs/evolve/modules/commitgraph"
	"github.com/zetavcs/evolve/modules/plumbing"
	"github.com/zetavcs/evolve/modules/refmodel"
)

// Snapshot is one side of an operation-diff comparison: the repo view
// (§4.5) plus the heads operation-diff walks ancestors from (§4.4
// step 1-3). It corresponds to what spec.md calls "operation": a
// recorded snapshot of the full reference view.
type Snapshot struct {
	View *refmodel.RepoView
}

func (s Snapshot) Heads() []plumbing.Hash { return s.View.Heads() }

// ModifiedChange is a change identity that differs between the two
// snapshots: the commits of that change present only on the "to" side
// (AddedCommits) and only on the "from" side (RemovedCommits).
// Invariant: len(AddedCommits)+len(RemovedCommits) > 0, and every entry
// shares ChangeID.
type ModifiedChange struct {
	ChangeID       commitgraph.ChangeId
	AddedCommits   []plumbing.Hash
	RemovedCommits []plumbing.Hash
}

// GraphEdge is one meta-DAG edge from a ChangeEntry to a meta-parent
// change, derived per §4.4 step 4.
type GraphEdge struct {
	Parent commitgraph.ChangeId
}

// ChangeEntry is one row of the presentation stream: a change identity,
// its meta-DAG edges, and the underlying ModifiedChange.
type ChangeEntry struct {
	ChangeID commitgraph.ChangeId
	Edges    []GraphEdge
	Change   *ModifiedChange
}

// DiffStream is the ordered operation-diff presentation boundary (§4.4
// step 5, §6): reverse-topological over the change meta-DAG, ties
// broken by reverse discovery order (later-discovered changes first).
type DiffStream struct {
	Entries []ChangeEntry
}

// DiffSelection classifies how a ModifiedChange's content diff should be
// rendered (§4.4 step 6). opdiff only classifies; actual tree/patch
// rendering is an external formatter's job.
type DiffSelection int8

const (
	// SummaryOnly: cardinality doesn't match any of the cases below.
	SummaryOnly DiffSelection = iota
	// RebaseTreeDiff: exactly one added and one removed commit — rebase
	// the removed commit's tree onto the added commit's parents and diff
	// the two trees.
	RebaseTreeDiff
	// AddedPatch: exactly one added commit, none removed.
	AddedPatch
	// RemovedPatch: exactly one removed commit, none added.
	RemovedPatch
)

// SelectDiffStrategy implements §4.4 step 6's cardinality rules.
func SelectDiffStrategy(m *ModifiedChange) DiffSelection {
	switch {
	case len(m.AddedCommits) == 1 && len(m.RemovedCommits) == 1:
		return RebaseTreeDiff
	case len(m.AddedCommits) == 1 && len(m.RemovedCommits) == 0:
		return AddedPatch
	case len(m.AddedCommits) == 0 && len(m.RemovedCommits) == 1:
		return RemovedPatch
	default:
		return SummaryOnly
	}
}
