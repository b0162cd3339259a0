package main

import (
	"github.com/BurntSushi/toml"

	"github.com/zetavcs/evolve/modules/commitgraph"
	"github.com/zetavcs/evolve/modules/memgraph"
	"github.com/zetavcs/evolve/modules/plumbing"
)

// fixtureCommit is one [[commit]] table of a demo fixture file, round-
// tripped through plumbing.Hash's TOML text marshaling the same way the
// teacher's RebaseMD does (worktree_rebase.go).
type fixtureCommit struct {
	Hash    plumbing.Hash   `toml:"hash"`
	Change  string          `toml:"change"`
	Parents []plumbing.Hash `toml:"parents"`
	Empty   bool            `toml:"empty"`
}

type fixtureFile struct {
	Commits []fixtureCommit `toml:"commit"`
}

func loadFixture(path string) (*memgraph.Graph, error) {
	var f fixtureFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, err
	}
	g := memgraph.New()
	for _, c := range f.Commits {
		g.AddCommit(&commitgraph.Commit{
			Hash:      c.Hash,
			ChangeID:  commitgraph.ChangeId(c.Change),
			ParentIDs: c.Parents,
			IsEmpty:   c.Empty,
		})
	}
	return g, nil
}
