// Command evolve is a thin demonstration front-end (C10) wiring
// memgraph.Graph, pkg/evolve and pkg/opdiff behind a deliberately
// reduced command surface: it accepts pre-resolved commit-id lists
// rather than implementing the real -b/-s/-r revset grammar, which
// stays a collaborator contract out of scope per the library's own
// design.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/zetavcs/evolve/modules/memgraph"
	"github.com/zetavcs/evolve/modules/plumbing"
	"github.com/zetavcs/evolve/modules/refmodel"
	"github.com/zetavcs/evolve/modules/trace"
	"github.com/zetavcs/evolve/pkg/evolve"
	"github.com/zetavcs/evolve/pkg/opdiff"
)

type rebaseCmd struct {
	Commits    string `help:"Comma-separated commit hex ids to rebase (the target set)." required:""`
	Dest       string `help:"Comma-separated destination commit hex ids." required:""`
	SkipEmpty  bool   `help:"Abandon a target that becomes empty as a result of the rebase."`
	Simplify   bool   `help:"Drop a parent that is an ancestor of another parent after rewriting." name:"simplify-ancestor-merge"`
	SingleRevs bool   `help:"Rebase exactly the given commits (-r), filling the hole left behind." name:"exact"`
}

func (c *rebaseCmd) Run(g *fixtureGraph) error {
	opts := evolve.RebaseOptions{SimplifyAncestorMerge: c.Simplify}
	if c.SkipEmpty {
		opts.EmptyBehavior = evolve.AbandonNewlyEmpty
	}
	stats, err := evolve.MoveCommits(context.Background(), g.graph, g.graph, evolve.MoveCommitsRequest{
		Targets:         parseHashes(c.Commits),
		Destination:     parseHashes(c.Dest),
		SingleRevisions: c.SingleRevs,
		Options:         opts,
	})
	if err != nil {
		return dieError(err)
	}
	fmt.Printf("rebased %d target(s), %d descendant(s); skipped %d, abandoned %d\n",
		stats.NumRebasedTargets, stats.NumRebasedDescendants, stats.NumSkippedRebases, stats.NumAbandoned)
	return nil
}

type opDiffCmd struct {
	From string `help:"Comma-separated commit hex ids naming the 'from' snapshot's heads." required:""`
	To   string `help:"Comma-separated commit hex ids naming the 'to' snapshot's heads." required:""`
}

func (c *opDiffCmd) Run(g *fixtureGraph) error {
	from := opdiff.Snapshot{View: viewOf(parseHashes(c.From))}
	to := opdiff.Snapshot{View: viewOf(parseHashes(c.To))}
	stream, err := opdiff.Diff(context.Background(), g.graph, from, to)
	if err != nil {
		return dieError(err)
	}
	for _, entry := range stream.Entries {
		fmt.Printf("change %s: +%d -%d\n", entry.ChangeID, len(entry.Change.AddedCommits), len(entry.Change.RemovedCommits))
		for _, e := range entry.Edges {
			fmt.Printf("  parent change %s\n", e.Parent)
		}
	}
	return nil
}

// fixtureGraph is the demo's commit store: a memgraph.Graph seeded from the
// TOML file named by --fixture (empty when no file is given), standing in
// for a real commit backend. The
// demo exists to exercise the ambient stack end-to-end, not to read a
// real repository.
type fixtureGraph struct {
	graph *memgraph.Graph
}

func viewOf(heads []plumbing.Hash) *refmodel.RepoView {
	v := refmodel.NewRepoView()
	for i, h := range heads {
		v.LocalBranches[fmt.Sprintf("head-%d", i)] = refmodel.NormalTarget(h)
	}
	return v
}

func parseHashes(csv string) []plumbing.Hash {
	var out []plumbing.Hash
	for _, s := range strings.Split(csv, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, plumbing.NewHash(s))
	}
	return out
}

// dieError prints err to stderr the way pkg/zeta/misc.go's die_error does,
// colorized through trace.ColorEnabled rather than a second terminal check,
// and also routes it through trace.Errorf so it gets the same fn:line
// call-site tagging as the rest of the program's logged failures.
func dieError(err error) error {
	_ = trace.Errorf("%v", err)
	var b bytes.Buffer
	if trace.ColorEnabled() {
		b.WriteString("\x1b[31m")
	}
	b.WriteString("error: ")
	fmt.Fprintf(&b, "%v", err)
	if trace.ColorEnabled() {
		b.WriteString("\x1b[0m")
	}
	b.WriteByte('\n')
	_, _ = os.Stderr.Write(b.Bytes())
	return err
}

var cli struct {
	Fixture string    `help:"TOML file describing the demo commit graph to load."`
	Rebase  rebaseCmd `cmd:"" help:"Move commits onto a new destination."`
	OpDiff  opDiffCmd `cmd:"" name:"op-diff" help:"Diff two reference snapshots."`
}

func main() {
	ctx := kong.Parse(&cli, kong.Name("evolve"), kong.Description("changeset-evolution commit graph rewriting demo"))
	g := &fixtureGraph{graph: memgraph.New()}
	if cli.Fixture != "" {
		graph, err := loadFixture(cli.Fixture)
		ctx.FatalIfErrorf(err)
		g.graph = graph
	}
	if err := ctx.Run(g); err != nil {
		os.Exit(1)
	}
}
