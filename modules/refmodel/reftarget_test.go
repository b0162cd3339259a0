package refmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zetavcs/evolve/modules/plumbing"
)

func TestRefTargetConflictInvariant(t *testing.T) {
	a := plumbing.NewHash("aa")
	b := plumbing.NewHash("bb")
	normal := NormalTarget(a)
	assert.False(t, normal.HasConflict())

	conflict := ConflictTarget([]plumbing.Hash{a, b}, nil)
	assert.True(t, conflict.HasConflict())
	_, ok := conflict.Normal()
	assert.False(t, ok)
}

func TestRefTargetAbsentEquality(t *testing.T) {
	a := AbsentTarget()
	b := AbsentTarget()
	assert.True(t, a.Equal(b))

	present := NormalTarget(plumbing.NewHash("aa"))
	assert.False(t, a.Equal(present))
}

func TestRepoViewHeadsDedupesAcrossKinds(t *testing.T) {
	h := plumbing.NewHash("aa")
	v := NewRepoView()
	v.LocalBranches["main"] = NormalTarget(h)
	v.Tags["v1"] = NormalTarget(h)
	heads := v.Heads()
	assert.Len(t, heads, 1)
	assert.Equal(t, h, heads[0])
}
