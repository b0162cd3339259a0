package opdiff

import (
	"sort"
	"strings"

	"github.com/zetavcs/evolve/modules/plumbing"
	"github.com/zetavcs/evolve/modules/refmodel"
)

// RefKind classifies which of the three keyed reference spaces a
// RefDiffEntry belongs to (§4.5).
type RefKind int8

const (
	LocalBranch RefKind = iota
	Tag
	RemoteTracking
)

// RefDiffEntry is one reference-diff row. For an unconflicted change it
// carries the full From/To pair. For a conflicted RefTarget, each
// added/removed leg is surfaced as its own entry instead (Leg != nil).
type RefDiffEntry struct {
	Kind RefKind
	Name string
	From refmodel.RefTarget
	To   refmodel.RefTarget
	Leg  *ConflictLeg
}

// ConflictLeg tags one commit id surfaced out of a conflicted RefTarget.
type ConflictLeg struct {
	Commit plumbing.Hash
	Added  bool // true: added leg, false: removed leg
	ToSide bool // true: leg came from the "to" target, false: from the "from" target
}

// RefDiff implements the reference diff (C6): local branches, tags, and
// remote-tracking refs (skipping the local-mirror remote) that changed
// between two snapshots.
func RefDiff(from, to *refmodel.RepoView) []RefDiffEntry {
	var out []RefDiffEntry
	out = append(out, diffKeyed(LocalBranch, from.LocalBranches, to.LocalBranches)...)
	out = append(out, diffKeyed(Tag, from.Tags, to.Tags)...)
	out = append(out, diffRemoteRefs(from.RemoteRefs, to.RemoteRefs)...)
	return out
}

func diffKeyed(kind RefKind, from, to map[string]refmodel.RefTarget) []RefDiffEntry {
	names := unionKeys(from, to)
	var out []RefDiffEntry
	for _, name := range names {
		f, ok := from[name]
		if !ok {
			f = refmodel.AbsentTarget()
		}
		t, ok := to[name]
		if !ok {
			t = refmodel.AbsentTarget()
		}
		out = append(out, diffOne(kind, name, f, t)...)
	}
	return out
}

func diffRemoteRefs(from, to map[string]refmodel.RemoteRef) []RefDiffEntry {
	names := make(map[string]bool, len(from)+len(to))
	for n := range from {
		names[n] = true
	}
	for n := range to {
		names[n] = true
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		if remoteOf(n) == refmodel.LocalMirrorRemote {
			continue
		}
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	var out []RefDiffEntry
	for _, name := range sorted {
		f := from[name].Target
		if _, ok := from[name]; !ok {
			f = refmodel.AbsentTarget()
		}
		t := to[name].Target
		if _, ok := to[name]; !ok {
			t = refmodel.AbsentTarget()
		}
		out = append(out, diffOne(RemoteTracking, name, f, t)...)
	}
	return out
}

// remoteOf extracts the remote name from a "remote/branch" key.
func remoteOf(key string) string {
	if i := strings.Index(key, "/"); i >= 0 {
		return key[:i]
	}
	return key
}

func diffOne(kind RefKind, name string, from, to refmodel.RefTarget) []RefDiffEntry {
	if from.Equal(to) {
		return nil
	}
	if from.HasConflict() || to.HasConflict() {
		return conflictLegs(kind, name, from, to)
	}
	return []RefDiffEntry{{Kind: kind, Name: name, From: from, To: to}}
}

// conflictLegs surfaces each added/removed commit id of a conflicted
// RefTarget independently, per §4.5. from and to are each conflicted (or
// not) independently of one another, so the legs of every conflicted side
// are emitted (both sides when both are conflicted); an unconflicted side
// contributes no legs. This matches
// write_ref_target_summary's independent "+"/"-" rendering of to_target
// and from_target.
func conflictLegs(kind RefKind, name string, from, to refmodel.RefTarget) []RefDiffEntry {
	var out []RefDiffEntry
	emit := func(target refmodel.RefTarget, toSide bool) {
		if !target.HasConflict() {
			return
		}
		for _, h := range target.Added() {
			out = append(out, RefDiffEntry{Kind: kind, Name: name, From: from, To: to, Leg: &ConflictLeg{Commit: h, Added: true, ToSide: toSide}})
		}
		for _, h := range target.Removed() {
			out = append(out, RefDiffEntry{Kind: kind, Name: name, From: from, To: to, Leg: &ConflictLeg{Commit: h, Added: false, ToSide: toSide}})
		}
	}
	emit(from, false)
	emit(to, true)
	return out
}

func unionKeys(a, b map[string]refmodel.RefTarget) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for k := range a {
		seen[k] = true
	}
	for k := range b {
		seen[k] = true
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
