package opdiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zetavcs/evolve/modules/plumbing"
	"github.com/zetavcs/evolve/modules/refmodel"
	"github.com/zetavcs/evolve/pkg/opdiff"
)

func TestRefDiffReportsChangedBranch(t *testing.T) {
	from := refmodel.NewRepoView()
	to := refmodel.NewRepoView()
	old, new_ := dh("21"), dh("22")
	from.LocalBranches["main"] = refmodel.NormalTarget(old)
	to.LocalBranches["main"] = refmodel.NormalTarget(new_)
	from.LocalBranches["stable"] = refmodel.NormalTarget(old)
	to.LocalBranches["stable"] = refmodel.NormalTarget(old)

	entries := opdiff.RefDiff(from, to)
	require.Len(t, entries, 1)
	assert.Equal(t, "main", entries[0].Name)
	assert.Equal(t, opdiff.LocalBranch, entries[0].Kind)
}

func TestRefDiffFiltersLocalMirrorRemote(t *testing.T) {
	from := refmodel.NewRepoView()
	to := refmodel.NewRepoView()
	from.RemoteRefs["git/main"] = refmodel.RemoteRef{Target: refmodel.NormalTarget(dh("21"))}
	to.RemoteRefs["git/main"] = refmodel.RemoteRef{Target: refmodel.NormalTarget(dh("22"))}
	from.RemoteRefs["origin/main"] = refmodel.RemoteRef{Target: refmodel.NormalTarget(dh("21"))}
	to.RemoteRefs["origin/main"] = refmodel.RemoteRef{Target: refmodel.NormalTarget(dh("22"))}

	entries := opdiff.RefDiff(from, to)
	require.Len(t, entries, 1)
	assert.Equal(t, "origin/main", entries[0].Name)
}

func TestRefDiffSurfacesConflictLegsIndependently(t *testing.T) {
	from := refmodel.NewRepoView()
	to := refmodel.NewRepoView()
	a, b, c := dh("21"), dh("22"), dh("23")
	from.Tags["v1"] = refmodel.NormalTarget(a)
	to.Tags["v1"] = refmodel.ConflictTarget([]plumbing.Hash{b, c}, []plumbing.Hash{a})

	entries := opdiff.RefDiff(from, to)
	require.Len(t, entries, 3)
	for _, e := range entries {
		require.NotNil(t, e.Leg)
	}
}

func TestRefDiffSurfacesConflictLegsOnBothSidesIndependently(t *testing.T) {
	from := refmodel.NewRepoView()
	to := refmodel.NewRepoView()
	a, b, c, d := dh("21"), dh("22"), dh("23"), dh("24")
	from.Tags["v1"] = refmodel.ConflictTarget([]plumbing.Hash{a}, []plumbing.Hash{b})
	to.Tags["v1"] = refmodel.ConflictTarget([]plumbing.Hash{c}, []plumbing.Hash{d})

	entries := opdiff.RefDiff(from, to)
	require.Len(t, entries, 4)

	var fromLegs, toLegs []plumbing.Hash
	for _, e := range entries {
		require.NotNil(t, e.Leg)
		if e.Leg.ToSide {
			toLegs = append(toLegs, e.Leg.Commit)
		} else {
			fromLegs = append(fromLegs, e.Leg.Commit)
		}
	}
	assert.ElementsMatch(t, []plumbing.Hash{a, b}, fromLegs)
	assert.ElementsMatch(t, []plumbing.Hash{c, d}, toLegs)
}

func TestRefDiffAbsentEqualsAbsent(t *testing.T) {
	from := refmodel.NewRepoView()
	to := refmodel.NewRepoView()
	// "gone" is absent on both sides; it should not appear in the diff at all.
	from.LocalBranches["gone"] = refmodel.AbsentTarget()
	to.LocalBranches["gone"] = refmodel.AbsentTarget()
	entries := opdiff.RefDiff(from, to)
	assert.Empty(t, entries)
}
