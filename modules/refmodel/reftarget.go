// Package refmodel holds the reference-view entities consumed by the
// operation-diff engine (C5) and reference diff (C6): RefTarget, RemoteRef
// and RepoView. Grounded on the variant shape of modules/zeta/refs in the
// teacher, generalized to the conflicted, multiset-valued RefTarget that
// jj's reference model needs and a single-pointer git ref does not (see
// original_source/cli/src/commands/operation/diff.rs, which renders added
// and removed conflict legs independently).
package refmodel

import (
	"sort"

	"github.com/zetavcs/evolve/modules/plumbing"
)

// RefTarget is a possibly-conflicted pointer to commits. In normal state it
// points to exactly one commit. In conflicted state it carries multisets of
// added and removed commit ids recorded by whatever merge produced the
// conflict. A RefTarget may also be absent (the reference does not exist,
// e.g. a deleted branch).
//
// Invariant: HasConflict() iff len(Added())+len(Removed()) > 1.
type RefTarget struct {
	absent  bool
	added   []plumbing.Hash
	removed []plumbing.Hash
}

// AbsentTarget returns the target of a reference that does not exist.
func AbsentTarget() RefTarget { return RefTarget{absent: true} }

// NormalTarget returns the target of a reference pointing at a single
// commit, the common case.
func NormalTarget(id plumbing.Hash) RefTarget {
	return RefTarget{added: []plumbing.Hash{id}}
}

// ConflictTarget returns a conflicted target carrying the given added and
// removed commit ids. Per the data-model invariant, the combined legs must
// total more than one entry; callers that would otherwise produce a single
// leg should use NormalTarget or AbsentTarget instead.
func ConflictTarget(added, removed []plumbing.Hash) RefTarget {
	return RefTarget{added: append([]plumbing.Hash(nil), added...), removed: append([]plumbing.Hash(nil), removed...)}
}

func (t RefTarget) IsAbsent() bool { return t.absent }

func (t RefTarget) Added() []plumbing.Hash { return t.added }

func (t RefTarget) Removed() []plumbing.Hash { return t.removed }

func (t RefTarget) HasConflict() bool {
	return len(t.added)+len(t.removed) > 1
}

// Normal returns the single target commit id and true when the target is
// unconflicted and present; otherwise it returns the zero hash and false.
func (t RefTarget) Normal() (plumbing.Hash, bool) {
	if t.absent || t.HasConflict() || len(t.added) != 1 {
		return plumbing.ZeroHash, false
	}
	return t.added[0], true
}

// Equal reports whether two targets are the same, comparing multisets of
// added/removed commit ids irrespective of order. Two absent targets are
// always equal to each other (§4.5: "Absent entries compare equal only to
// other absent entries").
func (t RefTarget) Equal(o RefTarget) bool {
	if t.absent || o.absent {
		return t.absent == o.absent
	}
	return hashMultisetEqual(t.added, o.added) && hashMultisetEqual(t.removed, o.removed)
}

func hashMultisetEqual(a, b []plumbing.Hash) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]plumbing.Hash(nil), a...)
	bs := append([]plumbing.Hash(nil), b...)
	plumbing.HashesSort(as)
	plumbing.HashesSort(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// RemoteTrackingState is the tracking state of a RemoteRef.
type RemoteTrackingState int8

const (
	Untracked RemoteTrackingState = iota
	Tracked
)

// RemoteRef is a remote-tracking reference: a target plus whether the local
// repository tracks it (and would therefore push/pull updates to it).
type RemoteRef struct {
	Target RefTarget
	State  RemoteTrackingState
}

// LocalMirrorRemote is the reserved remote name whose remote-tracking refs
// duplicate local-branch state and so are filtered out of reference diffs
// (§4.5).
const LocalMirrorRemote = "git"

func sortedNames(m map[string]RefTarget) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
