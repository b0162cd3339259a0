package refmodel

import (
	"sort"

	"github.com/zetavcs/evolve/modules/plumbing"
)

// RepoView is a read-only snapshot of a repository's full reference state:
// local branches, tags, and remote-tracking refs keyed by (remote, branch).
// It is the payload an opdiff.Snapshot carries, and the comparand of
// both the operation-diff engine (C5) and the reference diff (C6).
type RepoView struct {
	LocalBranches map[string]RefTarget
	Tags          map[string]RefTarget
	// RemoteRefs is keyed "remote/branch", matching
	// plumbing.NewRemoteReferenceName's short form.
	RemoteRefs map[string]RemoteRef
}

// NewRepoView returns an empty view with initialized maps.
func NewRepoView() *RepoView {
	return &RepoView{
		LocalBranches: map[string]RefTarget{},
		Tags:          map[string]RefTarget{},
		RemoteRefs:    map[string]RemoteRef{},
	}
}

// Heads returns the union of every commit id referenced by any non-absent
// local branch, tag, or remote ref, including every added leg of a
// conflicted target; removed legs are not included. This is the set
// operation-diff (§4.4 step 1-3) walks ancestors from.
func (v *RepoView) Heads() []plumbing.Hash {
	seen := map[plumbing.Hash]bool{}
	var heads []plumbing.Hash
	add := func(t RefTarget) {
		for _, h := range t.Added() {
			if !seen[h] {
				seen[h] = true
				heads = append(heads, h)
			}
		}
	}
	for _, name := range sortedNames(v.LocalBranches) {
		add(v.LocalBranches[name])
	}
	for _, name := range sortedNames(v.Tags) {
		add(v.Tags[name])
	}
	remoteNames := make([]string, 0, len(v.RemoteRefs))
	for n := range v.RemoteRefs {
		remoteNames = append(remoteNames, n)
	}
	sort.Strings(remoteNames)
	for _, name := range remoteNames {
		add(v.RemoteRefs[name].Target)
	}
	return heads
}
