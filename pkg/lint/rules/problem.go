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

package rules

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/rancher-sandbox/depsolver/internal/pkg"
	"github.com/rancher-sandbox/depsolver/internal/solver"
	"github.com/rancher-sandbox/depsolver/pkg/lint/support"
	"github.com/rancher-sandbox/depsolver/pkg/repo"
)

// Dependencies runs the checks on package dependencies.
func Dependencies(linter *support.Linter, w *pkg.World, db *solver.PkgDB) {
	for _, p := range w.Packages {
		for _, conjunct := range p.DependsRel {
			linter.RunLinterRule(support.WarningSev, repo.RepositoryFile, validateConjunct(db, p, conjunct))
		}
	}
}

// Conflicts runs the checks on package conflicts.
func Conflicts(linter *support.Linter, w *pkg.World, db *solver.PkgDB) {
	for _, p := range w.Packages {
		for _, rel := range p.ConflictsRel {
			linter.RunLinterRule(support.InfoSev, repo.RepositoryFile, validateConflict(db, p, rel))
		}
	}
}

// Provides runs the checks on virtual packages.
func Provides(linter *support.Linter, w *pkg.World, db *solver.PkgDB) {
	for _, p := range w.Packages {
		for _, pr := range p.Provides {
			linter.RunLinterRule(support.InfoSev, repo.RepositoryFile, validateProvide(db, p, pr))
		}
	}
}

// Initial checks that the initial configuration is itself consistent.
func Initial(linter *support.Linter, w *pkg.World) {
	for _, p := range w.Initial {
		linter.RunLinterRule(support.WarningSev, repo.InitialFile, validateInitialDepends(w.Initial, p))
		linter.RunLinterRule(support.WarningSev, repo.InitialFile, validateInitialConflicts(w.Initial, p))
	}
}

// Request runs the checks on request directives.
func Request(linter *support.Linter, w *pkg.World, db *solver.PkgDB) {
	for _, d := range w.Request.Directives {
		switch d.Kind {
		case pkg.Install:
			linter.RunLinterRule(support.ErrorSev, repo.ConstraintsFile, validateInstall(db, d))
		default:
			linter.RunLinterRule(support.InfoSev, repo.ConstraintsFile, validateInstalledMatch(db, d))
		}
	}
}

func validateConjunct(db *solver.PkgDB, p *pkg.Pkg, conjunct []*pkg.PkgRel) error {
	if len(db.MatchAny(conjunct)) == 0 {
		return errors.Errorf("%s depends on %s, but nothing satisfies it: %s can never be installed",
			p.GetFingerPrint(), formatAlternatives(conjunct), p.GetFingerPrint())
	}
	return nil
}

func validateConflict(db *solver.PkgDB, p *pkg.Pkg, rel *pkg.PkgRel) error {
	if !db.Known(rel.Name) {
		return errors.Errorf("%s conflicts with %s, which is not in the repository", p.GetFingerPrint(), rel)
	}
	matches := db.Match(rel)
	if len(matches) == 1 && matches[0] == p {
		return errors.Errorf("%s conflicts with %s, which only matches itself and is ignored", p.GetFingerPrint(), rel)
	}
	return nil
}

func validateProvide(db *solver.PkgDB, p *pkg.Pkg, pr *pkg.Provide) error {
	if pr.Name == p.Name {
		return errors.Errorf("%s provides its own name", p.GetFingerPrint())
	}
	if len(db.GetOrderedPackagesThatDifferOnVersion(pr.Name)) > 0 {
		return errors.Errorf("%s provides %s, which is also a real package", p.GetFingerPrint(), pr)
	}
	return nil
}

func validateInitialDepends(initial []*pkg.Pkg, p *pkg.Pkg) error {
	for _, conjunct := range p.DependsRel {
		if !satisfiedByAny(conjunct, initial) {
			return errors.Errorf("installed %s depends on %s, which is not installed", p.GetFingerPrint(), formatAlternatives(conjunct))
		}
	}
	return nil
}

func validateInitialConflicts(initial []*pkg.Pkg, p *pkg.Pkg) error {
	for _, rel := range p.ConflictsRel {
		for _, q := range initial {
			if q != p && rel.SatisfiedBy(q) {
				return errors.Errorf("installed %s conflicts with installed %s", p.GetFingerPrint(), q.GetFingerPrint())
			}
		}
	}
	return nil
}

func validateInstall(db *solver.PkgDB, d *pkg.Directive) error {
	if len(db.MatchAny(d.Rels)) == 0 {
		return errors.Errorf("%s: nothing in the repository satisfies it", d)
	}
	return nil
}

func validateInstalledMatch(db *solver.PkgDB, d *pkg.Directive) error {
	for _, m := range db.Match(d.Rels[0]) {
		if m.CurrentState == pkg.Present {
			return nil
		}
	}
	return errors.Errorf("%s: no installed package matches it, the directive has no effect", d)
}

func satisfiedByAny(conjunct []*pkg.PkgRel, pkgs []*pkg.Pkg) bool {
	for _, rel := range conjunct {
		for _, q := range pkgs {
			if rel.SatisfiedBy(q) {
				return true
			}
		}
	}
	return false
}

func formatAlternatives(rels []*pkg.PkgRel) string {
	alts := make([]string, 0, len(rels))
	for _, r := range rels {
		alts = append(alts, r.String())
	}
	return strings.Join(alts, "|")
}
