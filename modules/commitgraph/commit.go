// Package commitgraph defines the minimal commit representation and store
// contract that the rewrite core is coded against. It intentionally omits
// trees, blobs, signatures and wire encoding: the content-addressed commit
// store is an external collaborator (§6), consumed only through Backend.
package commitgraph

import (
	"context"

	"github.com/zetavcs/evolve/modules/plumbing"
)

// ChangeId is the stable identity of a logical change. It survives
// rewrites: a commit's ChangeID never changes across a rebase, even though
// its Hash (content address) does.
type ChangeId string

func (c ChangeId) String() string { return string(c) }

// Commit is a read-only handle on one node of the commit DAG.
type Commit struct {
	Hash      plumbing.Hash   `json:"hash"`
	ChangeID  ChangeId        `json:"change_id"`
	ParentIDs []plumbing.Hash `json:"parents"`
	// IsEmpty reports whether the commit's tree equals its first parent's
	// tree (or the empty tree, for a root commit). The commit rewriter
	// needs this to implement AbandonNewlyEmpty (§4.3): a commit already
	// empty before the rebase must never be abandoned just because it is
	// still empty after.
	IsEmpty bool `json:"is_empty"`
}

// Backend is the read-only commit store contract. It is the Go shape of
// the "commit object store" collaborator named in spec.md §1 as out of
// scope: callers supply a concrete implementation (a real object store,
// or modules/memgraph for tests).
type Backend interface {
	Commit(ctx context.Context, id plumbing.Hash) (*Commit, error)
}
