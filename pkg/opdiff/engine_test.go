package opdiff_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zetavcs/evolve/modules/commitgraph"
	"github.com/zetavcs/evolve/modules/memgraph"
	"github.com/zetavcs/evolve/modules/plumbing"
	"github.com/zetavcs/evolve/modules/refmodel"
	"github.com/zetavcs/evolve/pkg/opdiff"
)

func dh(s string) plumbing.Hash { return plumbing.NewHash(s) }

func dput(g *memgraph.Graph, id, change string, parents ...plumbing.Hash) plumbing.Hash {
	h := dh(id)
	g.AddCommit(&commitgraph.Commit{Hash: h, ChangeID: commitgraph.ChangeId(change), ParentIDs: parents})
	return h
}

// TestDiffRebaseReplacesOneChange models §8 scenario 6: the second
// operation abandons commit X of change c and adds Y of the same
// change, onto the same base.
func TestDiffRebaseReplacesOneChange(t *testing.T) {
	ctx := context.Background()
	g := memgraph.New()
	base := dput(g, "10", "base")
	x := dput(g, "11", "c", base)
	y := dput(g, "12", "c", base)

	from := opdiff.Snapshot{View: viewWithHead(x)}
	to := opdiff.Snapshot{View: viewWithHead(y)}

	stream, err := opdiff.Diff(ctx, g, from, to)
	require.NoError(t, err)
	require.Len(t, stream.Entries, 1)
	entry := stream.Entries[0]
	assert.Equal(t, commitgraph.ChangeId("c"), entry.ChangeID)
	assert.Equal(t, []plumbing.Hash{y}, entry.Change.AddedCommits)
	assert.Equal(t, []plumbing.Hash{x}, entry.Change.RemovedCommits)
	assert.Empty(t, entry.Edges) // base lies outside the diff's change set
	assert.Equal(t, opdiff.RebaseTreeDiff, opdiff.SelectDiffStrategy(entry.Change))
}

// TestDiffMetaDAGOrdersParentsFirst checks that a two-change diff (an
// added commit stacked on another added commit) produces a meta-DAG
// whose reverse-topological order lists the newer change first, and
// records the edge between them.
func TestDiffMetaDAGOrdersChildrenFirst(t *testing.T) {
	ctx := context.Background()
	g := memgraph.New()
	base := dput(g, "10", "base")
	p := dput(g, "11", "p", base)
	q := dput(g, "12", "q", p)

	from := opdiff.Snapshot{View: viewWithHead(base)}
	to := opdiff.Snapshot{View: viewWithHead(q)}

	stream, err := opdiff.Diff(ctx, g, from, to)
	require.NoError(t, err)
	require.Len(t, stream.Entries, 2)
	assert.Equal(t, commitgraph.ChangeId("q"), stream.Entries[0].ChangeID)
	assert.Equal(t, commitgraph.ChangeId("p"), stream.Entries[1].ChangeID)
	require.Len(t, stream.Entries[0].Edges, 1)
	assert.Equal(t, commitgraph.ChangeId("p"), stream.Entries[0].Edges[0].Parent)
}

func viewWithHead(heads ...plumbing.Hash) *refmodel.RepoView {
	v := refmodel.NewRepoView()
	for i, h := range heads {
		v.LocalBranches[hashBranchName(i)] = refmodel.NormalTarget(h)
	}
	return v
}

func hashBranchName(i int) string {
	names := []string{"main", "feature", "extra"}
	if i < len(names) {
		return names[i]
	}
	return "branch"
}
