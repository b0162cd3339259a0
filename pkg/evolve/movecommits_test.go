package evolve_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zetavcs/evolve/modules/commitgraph"
	"github.com/zetavcs/evolve/modules/memgraph"
	"github.com/zetavcs/evolve/modules/plumbing"
	"github.com/zetavcs/evolve/pkg/evolve"
)

func hh(s string) plumbing.Hash { return plumbing.NewHash(s) }

func put(g *memgraph.Graph, id, change string, parents ...plumbing.Hash) plumbing.Hash {
	h := hh(id)
	g.AddCommit(&commitgraph.Commit{Hash: h, ChangeID: commitgraph.ChangeId(change), ParentIDs: parents})
	return h
}

// buildLine constructs O <- K <- L <- M <- N, the five-commit chain §8's
// scenarios rebase pieces of.
func buildLine(g *memgraph.Graph) (o, k, l, m, n plumbing.Hash) {
	o = put(g, "10", "O")
	k = put(g, "11", "K", o)
	l = put(g, "12", "L", k)
	m = put(g, "13", "M", l)
	n = put(g, "14", "N", m)
	return
}

// TestLinearRebase covers "jj rebase -s M -d O": M and N move onto O, K and
// L are left untouched.
func TestLinearRebase(t *testing.T) {
	ctx := context.Background()
	g := memgraph.New()
	o, _, _, m, n := buildLine(g)

	stats, err := evolve.MoveCommits(ctx, g, g, evolve.MoveCommitsRequest{
		Targets:     []plumbing.Hash{m, n},
		Destination: []plumbing.Hash{o},
	})
	require.NoError(t, err)
	assert.Equal(t, &evolve.MoveCommitsStats{NumRebasedTargets: 2}, stats)

	// m's rewritten copy should now carry o as its sole parent.
	newM, err := g.NewParents(ctx, []plumbing.Hash{m})
	require.NoError(t, err)
	require.Len(t, newM, 1)
	mc, err := g.Commit(ctx, newM[0])
	require.NoError(t, err)
	assert.Equal(t, []plumbing.Hash{o}, mc.ParentIDs)
}

// TestBranchRebase covers "jj rebase -b L -d P" with P a new sibling of K on
// O: the whole branch containing L (K, L, M, N) relocates onto P.
func TestBranchRebase(t *testing.T) {
	ctx := context.Background()
	g := memgraph.New()
	o, k, l, m, n := buildLine(g)
	p := put(g, "15", "P", o)

	stats, err := evolve.MoveCommits(ctx, g, g, evolve.MoveCommitsRequest{
		Targets:     []plumbing.Hash{k, l, m, n},
		Destination: []plumbing.Hash{p},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, stats.NumRebasedTargets)

	newK, err := g.NewParents(ctx, []plumbing.Hash{k})
	require.NoError(t, err)
	require.Len(t, newK, 1)
	kc, err := g.Commit(ctx, newK[0])
	require.NoError(t, err)
	assert.Equal(t, []plumbing.Hash{p}, kc.ParentIDs)
}

// TestSingleRevisionRebase covers "jj rebase -r K -d L": K alone moves onto
// L, and the hole it leaves (L's parent) is filled by rebasing L onto K's
// old parent, O. M and N follow L's new id, so three descendants are
// rebased and K's copy sits on L's copy.
func TestSingleRevisionRebase(t *testing.T) {
	ctx := context.Background()
	g := memgraph.New()
	o, k, l, _, _ := buildLine(g)

	stats, err := evolve.MoveCommits(ctx, g, g, evolve.MoveCommitsRequest{
		Targets:         []plumbing.Hash{k},
		Destination:     []plumbing.Hash{l},
		SingleRevisions: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NumRebasedTargets)
	assert.Equal(t, 3, stats.NumRebasedDescendants)

	// l's rewritten copy should now carry o as its sole parent.
	newLParents, err := g.NewParents(ctx, []plumbing.Hash{l})
	require.NoError(t, err)
	require.Len(t, newLParents, 1)
	lc, err := g.Commit(ctx, newLParents[0])
	require.NoError(t, err)
	assert.Equal(t, []plumbing.Hash{o}, lc.ParentIDs)

	// k's rewritten copy should sit on l's rewritten copy.
	newK, err := g.NewParents(ctx, []plumbing.Hash{k})
	require.NoError(t, err)
	require.Len(t, newK, 1)
	kc, err := g.Commit(ctx, newK[0])
	require.NoError(t, err)
	assert.Equal(t, newLParents, kc.ParentIDs)
}

// TestInsertBeforeNoopIsSkipped covers "jj rebase -r A --before A": A is
// already where it would be moved to, so nothing is rewritten.
func TestInsertBeforeNoopIsSkipped(t *testing.T) {
	ctx := context.Background()
	g := memgraph.New()
	root := put(g, "10", "root")
	a := put(g, "11", "A", root)

	stats, err := evolve.MoveCommits(ctx, g, g, evolve.MoveCommitsRequest{
		Targets:         []plumbing.Hash{a},
		InsertBefore:    []plumbing.Hash{a},
		SingleRevisions: true,
	})
	require.NoError(t, err)
	assert.Equal(t, &evolve.MoveCommitsStats{NumSkippedRebases: 1}, stats)
}

// TestEmptyTargetSetIsNoop covers §8 scenario 5: an empty target set does
// nothing and returns zeroed stats.
func TestEmptyTargetSetIsNoop(t *testing.T) {
	ctx := context.Background()
	g := memgraph.New()
	o := put(g, "10", "O")

	stats, err := evolve.MoveCommits(ctx, g, g, evolve.MoveCommitsRequest{
		Targets:     nil,
		Destination: []plumbing.Hash{o},
	})
	require.NoError(t, err)
	assert.Equal(t, &evolve.MoveCommitsStats{}, stats)
}

// TestIdempotentSecondRun exercises the idempotence property implied by
// MoveCommitsStats's doc comment: running the identical request again
// should skip every commit it touches.
func TestIdempotentSecondRun(t *testing.T) {
	ctx := context.Background()
	g := memgraph.New()
	o, _, _, m, n := buildLine(g)

	req := evolve.MoveCommitsRequest{
		Targets:     []plumbing.Hash{m, n},
		Destination: []plumbing.Hash{o},
	}
	_, err := evolve.MoveCommits(ctx, g, g, req)
	require.NoError(t, err)

	// Re-resolve the (now-rewritten) target ids before retrying, since the
	// caller is expected to re-evaluate its revset between transactions.
	newTargets, err := g.NewParents(ctx, []plumbing.Hash{m, n})
	require.NoError(t, err)
	req2 := req
	req2.Targets = newTargets
	req2.Destination = []plumbing.Hash{o}
	stats, err := evolve.MoveCommits(ctx, g, g, req2)
	require.NoError(t, err)
	assert.Equal(t, len(newTargets), stats.NumSkippedRebases)
	assert.Equal(t, 0, stats.NumRebasedTargets)
}

// TestCycleIsRejected covers the acyclicity guarantee: rebasing a commit
// onto itself without allowSelfRebase must fail with
// CannotRebaseOntoSelf, and rebasing a descendant onto its ancestor via
// --before must fail with CycleWouldBeCreated.
func TestCycleIsRejected(t *testing.T) {
	ctx := context.Background()
	g := memgraph.New()
	_, k, l, _, _ := buildLine(g)

	_, err := evolve.MoveCommits(ctx, g, g, evolve.MoveCommitsRequest{
		Targets:     []plumbing.Hash{l},
		Destination: []plumbing.Hash{l},
	})
	require.Error(t, err)
	uerr, ok := evolve.AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, evolve.CannotRebaseOntoSelf, uerr.Kind)

	_, err = evolve.MoveCommits(ctx, g, g, evolve.MoveCommitsRequest{
		Targets:      []plumbing.Hash{l},
		InsertBefore: []plumbing.Hash{k},
	})
	require.Error(t, err)
	uerr, ok = evolve.AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, evolve.CycleWouldBeCreated, uerr.Kind)
}

// TestRebaseOntoOwnDescendantIsRejected covers rebasing targets K and L onto
// M, a descendant of both: distinct from the exact self-rebase match
// (CannotRebaseOntoSelf), rebasing K and L onto a commit reachable from
// them can never be satisfied without a cycle.
func TestRebaseOntoOwnDescendantIsRejected(t *testing.T) {
	ctx := context.Background()
	g := memgraph.New()
	_, k, l, m, _ := buildLine(g)

	_, err := evolve.MoveCommits(ctx, g, g, evolve.MoveCommitsRequest{
		Targets:     []plumbing.Hash{k, l},
		Destination: []plumbing.Hash{m},
	})
	require.Error(t, err)
	uerr, ok := evolve.AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, evolve.CannotRebaseOntoDescendant, uerr.Kind)
}

// TestSingleRevisionOntoOwnDescendantIsAllowed covers "jj rebase -r K -d M":
// the single-revision form is exempt from checkNotOntoOwnDescendant so that
// a target can be relocated past its own child, per TestSingleRevisionRebase.
// This test pins the negative: the same move across a non-adjacent
// descendant (M, two generations down) must also succeed.
func TestSingleRevisionOntoOwnDescendantIsAllowed(t *testing.T) {
	ctx := context.Background()
	g := memgraph.New()
	_, k, _, m, _ := buildLine(g)

	stats, err := evolve.MoveCommits(ctx, g, g, evolve.MoveCommitsRequest{
		Targets:         []plumbing.Hash{k},
		Destination:     []plumbing.Hash{m},
		SingleRevisions: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NumRebasedTargets)
}

// TestAbandonNewlyEmpty covers --skip-empty: a target (K, moved onto P, a
// new sibling on O) that becomes empty only as a result of the rebase is
// dropped, and its descendant L inherits its old parent O; M and N follow
// L's new id, so three descendants are rebased.
func TestAbandonNewlyEmpty(t *testing.T) {
	ctx := context.Background()
	g := memgraph.New()
	o, k, l, _, _ := buildLine(g)
	p := put(g, "15", "P", o)
	g.ForceEmptyAfterRebase(k)

	stats, err := evolve.MoveCommits(ctx, g, g, evolve.MoveCommitsRequest{
		Targets:     []plumbing.Hash{k},
		Destination: []plumbing.Hash{p},
		Options:     evolve.RebaseOptions{EmptyBehavior: evolve.AbandonNewlyEmpty},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NumAbandoned)
	assert.Equal(t, 3, stats.NumRebasedDescendants)

	newL, err := g.NewParents(ctx, []plumbing.Hash{l})
	require.NoError(t, err)
	require.Len(t, newL, 1)
	lc, err := g.Commit(ctx, newL[0])
	require.NoError(t, err)
	assert.Equal(t, []plumbing.Hash{o}, lc.ParentIDs)
}

// TestSkipEmptyConflictsWithSingleRevisions covers the flag-conflict guard:
// -r and --skip-empty together are rejected up front.
func TestSkipEmptyConflictsWithSingleRevisions(t *testing.T) {
	ctx := context.Background()
	g := memgraph.New()
	_, k, l, _, _ := buildLine(g)

	_, err := evolve.MoveCommits(ctx, g, g, evolve.MoveCommitsRequest{
		Targets:         []plumbing.Hash{k},
		Destination:     []plumbing.Hash{l},
		SingleRevisions: true,
		Options:         evolve.RebaseOptions{EmptyBehavior: evolve.AbandonNewlyEmpty},
	})
	require.Error(t, err)
	uerr, ok := evolve.AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, evolve.FlagConflict, uerr.Kind)
}
