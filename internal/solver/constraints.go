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
	"fmt"
	"strings"

	"github.com/rancher-sandbox/depsolver/internal/pkg"
)

// Up to this many versions of a name, at-most-one is encoded with pairwise
// exclusions; above it, with a sequential counter.
const pairwiseLimit = 8

// addHard appends a hard clause, dropping repeated literals. Tautologies are
// dropped altogether. An empty clause is kept: it makes the problem unsat.
func (s *Solver) addHard(lits ...int) {
	seen := make(map[int]bool, len(lits))
	clause := make([]int, 0, len(lits))
	for _, l := range lits {
		if seen[-l] {
			return
		}
		if !seen[l] {
			seen[l] = true
			clause = append(clause, l)
		}
	}
	s.formula.AddHard(clause...)
}

func (s *Solver) newAuxVar() int {
	s.nextVar++
	return s.nextVar
}

func (s *Solver) addInconsistency(format string, v ...interface{}) {
	s.PkgResultSet.Inconsistencies = append(s.PkgResultSet.Inconsistencies, fmt.Sprintf(format, v...))
}

// buildConstraintRelations encodes the dependency formula of p.
func (s *Solver) buildConstraintRelations(p *pkg.Pkg) {
	// E.g: A depends on (B>=2 or C) and D, with B=1, B=2, B=3, C=1 and
	// D=1 known.
	// Clauses:
	//     not(A) or B=2 or B=3 or C=1
	//     not(A) or D=1
	// A conjunct nothing satisfies leaves not(A) alone: A cannot be
	// installed.
	for _, conjunct := range p.DependsRel {
		matches := s.PkgDB.MatchAny(conjunct)
		if len(matches) == 0 {
			s.addInconsistency("%s depends on %s, but nothing satisfies it",
				p.GetFingerPrint(), formatAlternatives(conjunct))
		}
		lits := make([]int, 0, len(matches)+1)
		lits = append(lits, -p.ID)
		for _, m := range matches {
			lits = append(lits, m.ID)
		}
		s.addHard(lits...)
	}
}

// buildConstraintConflicts forbids p together with any package its
// conflicts match. Packages never conflict with themselves.
func (s *Solver) buildConstraintConflicts(p *pkg.Pkg) {
	for _, rel := range p.ConflictsRel {
		for _, q := range s.PkgDB.Match(rel) {
			if q.ID == p.ID {
				continue
			}
			pair := [2]int{p.ID, q.ID}
			if q.ID < p.ID {
				pair = [2]int{q.ID, p.ID}
			}
			if s.conflictPairs[pair] {
				continue
			}
			s.conflictPairs[pair] = true
			s.addHard(-p.ID, -q.ID)
		}
	}
}

// buildConstraintAtMost1 allows at most one installed version of name.
func (s *Solver) buildConstraintAtMost1(name string) {
	versions := s.PkgDB.GetOrderedPackagesThatDifferOnVersion(name)
	k := len(versions)
	if k < 2 {
		return
	}
	if k <= pairwiseLimit {
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				s.addHard(-versions[i].ID, -versions[j].ID)
			}
		}
		return
	}

	// Sinz's sequential counter: r_i is true when one of x_1..x_i is.
	//     x_1 -> r_1
	//     x_i -> r_i, r_(i-1) -> r_i, x_i -> not(r_(i-1))   for 1 < i < k
	//     x_k -> not(r_(k-1))
	r := make([]int, k-1)
	for i := range r {
		r[i] = s.newAuxVar()
	}
	s.addHard(-versions[0].ID, r[0])
	for i := 1; i < k-1; i++ {
		x := versions[i].ID
		s.addHard(-x, r[i])
		s.addHard(-r[i-1], r[i])
		s.addHard(-x, -r[i-1])
	}
	s.addHard(-versions[k-1].ID, -r[k-2])
}

// buildConstraintToModify encodes one request directive.
func (s *Solver) buildConstraintToModify(d *pkg.Directive) {
	switch d.Kind {
	case pkg.Install:
		// at least one of the matching packages
		matches := s.PkgDB.MatchAny(d.Rels)
		if len(matches) == 0 {
			s.addInconsistency("%s: nothing satisfies it", d)
		}
		lits := make([]int, 0, len(matches))
		for _, m := range matches {
			lits = append(lits, m.ID)
		}
		s.addHard(lits...)
	case pkg.Remove:
		for _, m := range s.PkgDB.Match(d.Rels[0]) {
			s.addHard(-m.ID)
		}
	case pkg.Keep:
		for _, m := range s.PkgDB.Match(d.Rels[0]) {
			if m.CurrentState == pkg.Present {
				s.addHard(m.ID)
			}
		}
	}
}

// checkRequest finds directives that contradict each other regardless of
// the repository's relations.
func (s *Solver) checkRequest() error {
	directives := s.world.Request.Directives

	removedBy := map[int]*pkg.Directive{}
	for _, d := range directives {
		if d.Kind != pkg.Remove {
			continue
		}
		for _, m := range s.PkgDB.Match(d.Rels[0]) {
			if _, ok := removedBy[m.ID]; !ok {
				removedBy[m.ID] = d
			}
		}
	}

	type pin struct {
		version pkg.Version
		d       *pkg.Directive
	}
	pinned := map[string]pin{}

	for _, d := range directives {
		switch d.Kind {
		case pkg.Install:
			matches := s.PkgDB.MatchAny(d.Rels)
			if len(matches) > 0 && allRemoved(matches, removedBy) {
				return &RequestConflict{
					Directives: []string{d.String(), removedBy[matches[0].ID].String()},
					Reason:     "every package the install directive accepts is removed",
				}
			}
			if len(d.Rels) != 1 || !d.Rels[0].Concrete() || !allNamed(matches, d.Rels[0].Name) {
				continue
			}
			rel := d.Rels[0]
			if other, ok := pinned[rel.Name]; ok && !other.version.Equal(rel.Version) {
				return &RequestConflict{
					Directives: []string{other.d.String(), d.String()},
					Reason:     "two versions of " + rel.Name + " are requested",
				}
			}
			pinned[rel.Name] = pin{version: rel.Version, d: d}
		case pkg.Keep:
			for _, m := range s.PkgDB.Match(d.Rels[0]) {
				if m.CurrentState != pkg.Present {
					continue
				}
				if rm, ok := removedBy[m.ID]; ok {
					return &RequestConflict{
						Directives: []string{d.String(), rm.String()},
						Reason:     m.GetFingerPrint() + " is both kept and removed",
					}
				}
			}
		}
	}
	return nil
}

func allRemoved(pkgs []*pkg.Pkg, removedBy map[int]*pkg.Directive) bool {
	for _, p := range pkgs {
		if _, ok := removedBy[p.ID]; !ok {
			return false
		}
	}
	return true
}

func allNamed(pkgs []*pkg.Pkg, name string) bool {
	for _, p := range pkgs {
		if p.Name != name {
			return false
		}
	}
	return len(pkgs) > 0
}

func formatAlternatives(rels []*pkg.PkgRel) string {
	alts := make([]string, 0, len(rels))
	for _, r := range rels {
		alts = append(alts, r.String())
	}
	return strings.Join(alts, "|")
}
