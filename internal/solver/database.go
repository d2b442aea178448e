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

	"github.com/Masterminds/log-go"

	"github.com/rancher-sandbox/depsolver/internal/pkg"
)

// PkgDB implements a database of 2 keys (ID, fingerprint) and 1 value
// (*pkg.Pkg). Each package name also has a table of the packages that only
// differ in the version, and each virtual name a table of the packages
// providing it.
//
// The ID key starts at 1, as SAT variables cannot be 0.
//
// Packages are added first, then AssignIDs numbers them all at once in
// (name, version) order, so that the same packages always get the same
// IDs regardless of the order they were added in.
type PkgDB struct {
	pkgs                []*pkg.Pkg // by ID-1, once IDs are assigned
	mapFingerprintToPkg map[string]*pkg.Pkg
	// map: name -> packages of that name, ordered by version
	mapNameToVersions map[string][]*pkg.Pkg
	// map: virtual name -> packages providing it, ordered by ID
	mapNameToProviders map[string][]*pkg.Pkg
}

func NewPkgDB() *PkgDB {
	return &PkgDB{
		mapFingerprintToPkg: make(map[string]*pkg.Pkg),
		mapNameToVersions:   make(map[string][]*pkg.Pkg),
		mapNameToProviders:  make(map[string][]*pkg.Pkg),
	}
}

// LoadPkgDB returns a numbered database holding pkgs.
func LoadPkgDB(pkgs []*pkg.Pkg) (*PkgDB, error) {
	pkgdb := NewPkgDB()
	for _, p := range pkgs {
		if err := pkgdb.Add(p); err != nil {
			return nil, err
		}
	}
	pkgdb.AssignIDs()
	return pkgdb, nil
}

// Add adds a package to the database. Adding two packages with the same
// name and equal versions, however they are spelled, is a ModelError.
func (pkgdb *PkgDB) Add(p *pkg.Pkg) error {
	fp := p.GetFingerPrint()
	if _, ok := pkgdb.mapFingerprintToPkg[fp]; ok {
		return pkg.NewModelError("duplicate package %s", fp)
	}
	for _, q := range pkgdb.mapNameToVersions[p.Name] {
		if q.Version.Equal(p.Version) {
			return pkg.NewModelError("duplicate package %s: same version as %s", fp, q.GetFingerPrint())
		}
	}
	pkgdb.mapFingerprintToPkg[fp] = p
	// unordered until AssignIDs
	pkgdb.mapNameToVersions[p.Name] = append(pkgdb.mapNameToVersions[p.Name], p)
	pkgdb.pkgs = append(pkgdb.pkgs, p)
	return nil
}

// AssignIDs numbers all packages from 1, ordered by name then version, and
// builds the version and provides tables.
func (pkgdb *PkgDB) AssignIDs() {
	sort.SliceStable(pkgdb.pkgs, func(i, j int) bool {
		return lessPkg(pkgdb.pkgs[i], pkgdb.pkgs[j])
	})

	pkgdb.mapNameToVersions = make(map[string][]*pkg.Pkg)
	pkgdb.mapNameToProviders = make(map[string][]*pkg.Pkg)
	for i, p := range pkgdb.pkgs {
		p.ID = i + 1
		bfp := p.GetBaseFingerPrint()
		pkgdb.mapNameToVersions[bfp] = append(pkgdb.mapNameToVersions[bfp], p)

		seen := map[string]bool{}
		for _, pr := range p.Provides {
			if seen[pr.Name] {
				continue
			}
			seen[pr.Name] = true
			pkgdb.mapNameToProviders[pr.Name] = append(pkgdb.mapNameToProviders[pr.Name], p)
		}
	}
}

func lessPkg(a, b *pkg.Pkg) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	if c := a.Version.Compare(b.Version); c != 0 {
		return c < 0
	}
	// equal versions spelled differently, e.g. 1.0.0 and 1.0.0+build
	return a.Version.String() < b.Version.String()
}

// Size returns the number of packages, which is also the highest ID.
func (pkgdb *PkgDB) Size() int {
	return len(pkgdb.pkgs)
}

// Packages returns all packages ordered by ID.
func (pkgdb *PkgDB) Packages() []*pkg.Pkg {
	return pkgdb.pkgs
}

func (pkgdb *PkgDB) GetPackageByPbID(id int) *pkg.Pkg {
	if id < 1 || id > len(pkgdb.pkgs) {
		return nil
	}
	return pkgdb.pkgs[id-1]
}

func (pkgdb *PkgDB) GetPackageByFingerprint(fp string) *pkg.Pkg {
	p, ok := pkgdb.mapFingerprintToPkg[fp]
	if !ok {
		return nil
	}
	return p
}

// GetOrderedPackagesThatDifferOnVersion returns all versions of a package
// name, oldest first.
func (pkgdb *PkgDB) GetOrderedPackagesThatDifferOnVersion(name string) []*pkg.Pkg {
	return pkgdb.mapNameToVersions[name]
}

// Names returns all real package names, sorted.
func (pkgdb *PkgDB) Names() []string {
	names := make([]string, 0, len(pkgdb.mapNameToVersions))
	for name := range pkgdb.mapNameToVersions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Known is true if name is the name of a package, or a virtual name some
// package provides.
func (pkgdb *PkgDB) Known(name string) bool {
	_, isReal := pkgdb.mapNameToVersions[name]
	_, isVirtual := pkgdb.mapNameToProviders[name]
	return isReal || isVirtual
}

// IsNewest is true when no package of the same name has a higher version.
func (pkgdb *PkgDB) IsNewest(p *pkg.Pkg) bool {
	versions := pkgdb.mapNameToVersions[p.Name]
	return len(versions) > 0 && versions[len(versions)-1].Version.Compare(p.Version) == 0
}

// Match returns the packages satisfying an atom, real or through provides,
// ordered by ID.
func (pkgdb *PkgDB) Match(rel *pkg.PkgRel) []*pkg.Pkg {
	matches := []*pkg.Pkg{}
	for _, p := range pkgdb.mapNameToVersions[rel.Name] {
		if rel.SatisfiedBy(p) {
			matches = append(matches, p)
		}
	}
	providers := pkgdb.mapNameToProviders[rel.Name]
	if len(providers) == 0 {
		return matches
	}
	seen := make(map[int]bool, len(matches))
	for _, p := range matches {
		seen[p.ID] = true
	}
	for _, p := range providers {
		if !seen[p.ID] && rel.SatisfiedBy(p) {
			matches = append(matches, p)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches
}

// MatchAny returns the packages satisfying at least one of the atoms,
// ordered by ID.
func (pkgdb *PkgDB) MatchAny(rels []*pkg.PkgRel) []*pkg.Pkg {
	if len(rels) == 1 {
		return pkgdb.Match(rels[0])
	}
	seen := map[int]bool{}
	matches := []*pkg.Pkg{}
	for _, rel := range rels {
		for _, p := range pkgdb.Match(rel) {
			if !seen[p.ID] {
				seen[p.ID] = true
				matches = append(matches, p)
			}
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches
}

func (pkgdb *PkgDB) DebugPrintDB(logger log.Logger) {
	logger.Debugf("Printing DB")
	for _, p := range pkgdb.pkgs {
		logger.Debug(p.String())
	}
}
