/*
Copyright SUSE LLC.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package solver

import (
	"sort"

	"github.com/rancher-sandbox/depsolver/internal/pkg"
)

// CommandOp is the operation of a command.
type CommandOp string

const (
	InstallOp CommandOp = "+"
	RemoveOp  CommandOp = "-"
)

// Command installs or removes one package: "+name=version" or
// "-name=version".
type Command struct {
	Op  CommandOp
	Pkg *pkg.Pkg
}

func (c *Command) String() string {
	return string(c.Op) + c.Pkg.GetFingerPrint()
}

// MarshalText makes commands serialize as their string form.
func (c *Command) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Sequence returns the commands that take the initial configuration to the
// target one: all removals first, dependents before their dependencies, then
// all installs, dependencies before their dependents. Packages that depend
// on each other in a cycle are installed contiguously, in ID order.
//
// Dependencies of packages that stay installed may be unmet between the
// removal of a version and the install of its replacement.
func Sequence(initial, target []*pkg.Pkg) ([]*Command, error) {
	inInitial := idSet(initial)
	inTarget := idSet(target)

	var survivors, toRemove, toInstall []*pkg.Pkg
	for _, p := range initial {
		if inTarget[p.ID] {
			survivors = append(survivors, p)
		} else {
			toRemove = append(toRemove, p)
		}
	}
	for _, p := range target {
		if !inInitial[p.ID] {
			toInstall = append(toInstall, p)
		}
	}
	sortByID(toRemove)
	sortByID(toInstall)

	cmds := []*Command{}
	removeBatches := orderBatches(toRemove, dependencyEdges(toRemove, survivors))
	for i := len(removeBatches) - 1; i >= 0; i-- {
		for _, p := range removeBatches[i] {
			cmds = append(cmds, &Command{Op: RemoveOp, Pkg: p})
		}
	}
	for _, batch := range orderBatches(toInstall, dependencyEdges(toInstall, survivors)) {
		for _, p := range batch {
			cmds = append(cmds, &Command{Op: InstallOp, Pkg: p})
		}
	}

	if err := Validate(initial, target, cmds); err != nil {
		return nil, err
	}
	return cmds, nil
}

// dependencyEdges links each node to, for every conjunct of its dependency
// formula that the survivors do not satisfy, the first other node that does.
func dependencyEdges(nodes, survivors []*pkg.Pkg) map[int][]*pkg.Pkg {
	edges := map[int][]*pkg.Pkg{}
	for _, p := range nodes {
		for _, conjunct := range p.DependsRel {
			if satisfiedByAny(conjunct, survivors) {
				continue
			}
			for _, q := range nodes {
				if satisfiesAny(conjunct, q) {
					if q.ID != p.ID {
						edges[p.ID] = append(edges[p.ID], q)
					}
					break
				}
			}
		}
	}
	return edges
}

// orderBatches groups nodes into strongly connected components, each
// ordered by ID, in an order where a component comes after every component
// it has edges to.
func orderBatches(nodes []*pkg.Pkg, edges map[int][]*pkg.Pkg) [][]*pkg.Pkg {
	t := &tarjan{
		edges:   edges,
		index:   map[int]int{},
		low:     map[int]int{},
		onStack: map[int]bool{},
	}
	for _, p := range nodes {
		if _, seen := t.index[p.ID]; !seen {
			t.visit(p)
		}
	}
	return t.batches
}

type tarjan struct {
	edges   map[int][]*pkg.Pkg
	index   map[int]int
	low     map[int]int
	onStack map[int]bool
	stack   []*pkg.Pkg
	counter int
	batches [][]*pkg.Pkg
}

func (t *tarjan) visit(p *pkg.Pkg) {
	t.index[p.ID] = t.counter
	t.low[p.ID] = t.counter
	t.counter++
	t.stack = append(t.stack, p)
	t.onStack[p.ID] = true

	for _, q := range t.edges[p.ID] {
		if _, seen := t.index[q.ID]; !seen {
			t.visit(q)
			t.low[p.ID] = min(t.low[p.ID], t.low[q.ID])
		} else if t.onStack[q.ID] {
			t.low[p.ID] = min(t.low[p.ID], t.index[q.ID])
		}
	}

	if t.low[p.ID] != t.index[p.ID] {
		return
	}
	batch := []*pkg.Pkg{}
	for {
		q := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[q.ID] = false
		batch = append(batch, q)
		if q.ID == p.ID {
			break
		}
	}
	sortByID(batch)
	t.batches = append(t.batches, batch)
}

// Validate replays cmds from the initial configuration and checks that
// at most one version of a name is ever installed and that no install
// brings in a conflict. Every installed package must have its dependencies
// met right after its own install, unless a package installed later in the
// same run meets them and depends back on it; the members of such a cycle
// are installed with nothing else in between. The final configuration must
// be the target, and valid.
func Validate(initial, target []*pkg.Pkg, cmds []*Command) error {
	state := map[int]*pkg.Pkg{}
	names := map[string]int{}
	for _, p := range initial {
		state[p.ID] = p
		names[p.Name]++
	}

	pending := []*pkg.Pkg{}
	for i, c := range cmds {
		p := c.Pkg
		switch c.Op {
		case RemoveOp:
			if len(pending) > 0 {
				return sequencingErrorf("%s: %s removed before the dependencies of %s are met", c, p.GetFingerPrint(), pending[0].GetFingerPrint())
			}
			if _, ok := state[p.ID]; !ok {
				return sequencingErrorf("%s: %s is not installed", c, p.GetFingerPrint())
			}
			delete(state, p.ID)
			names[p.Name]--
		case InstallOp:
			if _, ok := state[p.ID]; ok {
				return sequencingErrorf("%s: %s is already installed", c, p.GetFingerPrint())
			}
			if names[p.Name] > 0 {
				return sequencingErrorf("%s: another version of %s is installed", c, p.Name)
			}
			if q := conflictWith(p, state); q != nil {
				return sequencingErrorf("%s: %s conflicts with %s", c, p.GetFingerPrint(), q.GetFingerPrint())
			}
			state[p.ID] = p
			names[p.Name]++

			run, later := installRun(cmds, i)
			for _, q := range pending {
				if !reaches(run, p, q) || !reaches(run, q, p) {
					return sequencingErrorf("%s: installed before the dependencies of %s are met", c, q.GetFingerPrint())
				}
			}
			for _, conjunct := range p.DependsRel {
				if !satisfiedByState(conjunct, state) && !metLaterInCycle(run, later, p, conjunct) {
					return sequencingErrorf("%s: dependencies of %s are not met", c, p.GetFingerPrint())
				}
			}
			pending = append(pending, p)
		default:
			return sequencingErrorf("command %d: unknown operation %q", i, c.Op)
		}
		pending = unmet(pending, state)
	}
	if len(pending) > 0 {
		return sequencingErrorf("dependencies of %s are never met", pending[0].GetFingerPrint())
	}

	if len(state) != len(target) {
		return sequencingErrorf("%d packages installed at the end, %d expected", len(state), len(target))
	}
	for _, p := range target {
		if _, ok := state[p.ID]; !ok {
			return sequencingErrorf("%s is not installed at the end", p.GetFingerPrint())
		}
		if len(unmet([]*pkg.Pkg{p}, state)) > 0 {
			return sequencingErrorf("dependencies of %s are not met at the end", p.GetFingerPrint())
		}
		if q := conflictWith(p, state); q != nil {
			return sequencingErrorf("%s conflicts with %s at the end", p.GetFingerPrint(), q.GetFingerPrint())
		}
	}
	return nil
}

// installRun returns the packages of the contiguous install commands
// around cmds[i], and those of them installed after it.
func installRun(cmds []*Command, i int) (run, later []*pkg.Pkg) {
	start, end := i, i+1
	for start > 0 && cmds[start-1].Op == InstallOp {
		start--
	}
	for end < len(cmds) && cmds[end].Op == InstallOp {
		end++
	}
	for j := start; j < end; j++ {
		run = append(run, cmds[j].Pkg)
		if j > i {
			later = append(later, cmds[j].Pkg)
		}
	}
	return run, later
}

// metLaterInCycle is true when a package of later satisfies conjunct and
// depends, through members of run, on p.
func metLaterInCycle(run, later []*pkg.Pkg, p *pkg.Pkg, conjunct []*pkg.PkgRel) bool {
	for _, q := range later {
		if satisfiesAny(conjunct, q) && reaches(run, q, p) {
			return true
		}
	}
	return false
}

// reaches is true when from depends on to, directly or through members of
// run.
func reaches(run []*pkg.Pkg, from, to *pkg.Pkg) bool {
	seen := map[int]bool{from.ID: true}
	queue := []*pkg.Pkg{from}
	for len(queue) > 0 {
		x := queue[0]
		queue = queue[1:]
		for _, conjunct := range x.DependsRel {
			for _, y := range run {
				if seen[y.ID] || !satisfiesAny(conjunct, y) {
					continue
				}
				if y.ID == to.ID {
					return true
				}
				seen[y.ID] = true
				queue = append(queue, y)
			}
		}
	}
	return false
}

// unmet returns the packages whose dependency formula state does not
// satisfy.
func unmet(pkgs []*pkg.Pkg, state map[int]*pkg.Pkg) []*pkg.Pkg {
	left := []*pkg.Pkg{}
	for _, p := range pkgs {
		for _, conjunct := range p.DependsRel {
			if !satisfiedByState(conjunct, state) {
				left = append(left, p)
				break
			}
		}
	}
	return left
}

// conflictWith returns an installed package that conflicts with p, either
// way round.
func conflictWith(p *pkg.Pkg, state map[int]*pkg.Pkg) *pkg.Pkg {
	for _, q := range state {
		if q.ID == p.ID {
			continue
		}
		for _, rel := range p.ConflictsRel {
			if rel.SatisfiedBy(q) {
				return q
			}
		}
		for _, rel := range q.ConflictsRel {
			if rel.SatisfiedBy(p) {
				return q
			}
		}
	}
	return nil
}

func satisfiesAny(conjunct []*pkg.PkgRel, p *pkg.Pkg) bool {
	for _, rel := range conjunct {
		if rel.SatisfiedBy(p) {
			return true
		}
	}
	return false
}

func satisfiedByAny(conjunct []*pkg.PkgRel, pkgs []*pkg.Pkg) bool {
	for _, p := range pkgs {
		if satisfiesAny(conjunct, p) {
			return true
		}
	}
	return false
}

func satisfiedByState(conjunct []*pkg.PkgRel, state map[int]*pkg.Pkg) bool {
	for _, p := range state {
		if satisfiesAny(conjunct, p) {
			return true
		}
	}
	return false
}

func idSet(pkgs []*pkg.Pkg) map[int]bool {
	set := make(map[int]bool, len(pkgs))
	for _, p := range pkgs {
		set[p.ID] = true
	}
	return set
}

func sortByID(pkgs []*pkg.Pkg) {
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].ID < pkgs[j].ID })
}
