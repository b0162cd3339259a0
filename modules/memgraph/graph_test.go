package memgraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zetavcs/evolve/modules/commitgraph"
	"github.com/zetavcs/evolve/modules/plumbing"
	"github.com/zetavcs/evolve/pkg/evolve"
)

func h(s string) plumbing.Hash { return plumbing.NewHash(s) }

func chain(g *Graph, hash string, change string, parents ...plumbing.Hash) plumbing.Hash {
	id := h(hash)
	g.AddCommit(&commitgraph.Commit{Hash: id, ChangeID: commitgraph.ChangeId(change), ParentIDs: parents})
	return id
}

func TestGraphAncestryAndChildren(t *testing.T) {
	ctx := context.Background()
	g := New()
	root := chain(g, "aa", "root")
	mid := chain(g, "bb", "mid", root)
	leaf := chain(g, "cc", "leaf", mid)

	isAnc, err := g.IsAncestor(ctx, root, leaf)
	require.NoError(t, err)
	assert.True(t, isAnc)

	isAnc, err = g.IsAncestor(ctx, leaf, root)
	require.NoError(t, err)
	assert.False(t, isAnc)

	children, err := g.Children(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, []plumbing.Hash{mid}, children)
}

func TestGraphConnectedIsConvexHull(t *testing.T) {
	ctx := context.Background()
	g := New()
	root := chain(g, "aa", "root")
	a := chain(g, "bb", "a", root)
	b := chain(g, "cc", "b", a)
	sibling := chain(g, "dd", "sibling", root)

	hull, err := g.Connected(ctx, []plumbing.Hash{root, b})
	require.NoError(t, err)
	assert.ElementsMatch(t, []plumbing.Hash{root, a, b}, hull)
	assert.NotContains(t, hull, sibling)
}

func TestGraphNewParentsFollowsRewriteTable(t *testing.T) {
	ctx := context.Background()
	g := New()
	old := h("aa")
	rewritten := h("bb")
	g.RecordRewrite(old, evolve.RebasedCommit{Kind: evolve.Rewritten, NewID: rewritten})

	resolved, err := g.NewParents(ctx, []plumbing.Hash{old})
	require.NoError(t, err)
	assert.Equal(t, []plumbing.Hash{rewritten}, resolved)
}
