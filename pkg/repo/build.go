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

package repo

import (
	"fmt"

	"github.com/Masterminds/log-go"

	"github.com/rancher-sandbox/depsolver/internal/pkg"
)

// Build validates a problem and turns it into the World of a run. When
// criteria is not empty it replaces the criteria of the constraints file.
//
// Initial packages the repository lacks are added to it, with no relations,
// so that they can be removed.
func Build(p *Problem, criteria string, logger log.Logger) (*pkg.World, error) {
	if logger == nil {
		logger = log.Current
	}

	pkgs := make([]*pkg.Pkg, 0, len(p.Repository))
	byName := map[string][]*pkg.Pkg{}
	known := map[string]bool{}
	for i, r := range p.Repository {
		np, err := buildPkg(r)
		if err != nil {
			return nil, pkg.NewModelError("repository entry %d: %s", i, unwrapModel(err))
		}
		if dup := findVersion(byName[np.Name], np.Version); dup != nil {
			if dup.Version.String() == np.Version.String() {
				return nil, pkg.NewModelError("duplicate package %s", np.GetFingerPrint())
			}
			return nil, pkg.NewModelError("duplicate package %s: same version as %s", np.GetFingerPrint(), dup.GetFingerPrint())
		}
		byName[np.Name] = append(byName[np.Name], np)
		pkgs = append(pkgs, np)
		known[np.Name] = true
		for _, pr := range np.Provides {
			known[pr.Name] = true
		}
	}

	initialVersion := map[string]pkg.Version{}
	for _, entry := range p.Initial {
		rel, err := pkg.ParsePkgRel(entry)
		if err != nil {
			return nil, pkg.NewModelError("initial entry %q: %s", entry, unwrapModel(err))
		}
		if rel.Op != pkg.OpEq {
			return nil, pkg.NewModelError("initial entry %q must be of the form name=version", entry)
		}
		if v, ok := initialVersion[rel.Name]; ok {
			if v.Equal(rel.Version) {
				continue
			}
			return nil, pkg.NewModelError("initial configuration holds two versions of %s: %s and %s", rel.Name, v, rel.Version)
		}
		initialVersion[rel.Name] = rel.Version

		ip := findVersion(byName[rel.Name], rel.Version)
		if ip == nil {
			logger.Warnf("initial package %s is not in the repository, adding it", pkg.CreateFingerPrint(rel.Name, rel.Version.String()))
			ip = pkg.NewPkg(rel.Name, rel.Version, 0)
			byName[rel.Name] = append(byName[rel.Name], ip)
			pkgs = append(pkgs, ip)
			known[ip.Name] = true
		}
		ip.CurrentState = pkg.Present
	}
	for _, np := range pkgs {
		if np.CurrentState != pkg.Present {
			np.CurrentState = pkg.Absent
		}
	}

	request, err := buildRequest(p.Constraints, criteria)
	if err != nil {
		return nil, err
	}
	for _, d := range request.Directives {
		for _, rel := range d.Rels {
			if !known[rel.Name] {
				return nil, pkg.NewModelError("directive %s names no package of the repository", d)
			}
		}
	}

	w := pkg.NewWorld(pkgs, request)
	logger.Debugw("Built world", log.Fields{
		"problem":    p.Name,
		"digest":     fmt.Sprintf("%016x", p.Digest),
		"packages":   len(w.Packages),
		"initial":    len(w.Initial),
		"directives": len(request.Directives),
		"criteria":   fmt.Sprint(request.Criteria),
	})
	return w, nil
}

// findVersion returns the package of pkgs whose version equals v.
func findVersion(pkgs []*pkg.Pkg, v pkg.Version) *pkg.Pkg {
	for _, p := range pkgs {
		if p.Version.Equal(v) {
			return p
		}
	}
	return nil
}

func buildPkg(r *Record) (*pkg.Pkg, error) {
	if r.Name == "" {
		return nil, pkg.NewModelError("package without name")
	}
	if _, err := pkg.ParsePkgRel(r.Name); err != nil {
		return nil, pkg.NewModelError("invalid package name %q", r.Name)
	}
	v, err := pkg.ParseVersion(r.Version)
	if err != nil {
		return nil, pkg.NewModelError("%s: %s", r.Name, unwrapModel(err))
	}
	if r.Size < 0 {
		return nil, pkg.NewModelError("%s: negative size %d", r.Name, r.Size)
	}

	p := pkg.NewPkg(r.Name, v, r.Size)
	for _, conjunct := range r.Depends {
		if len(conjunct) == 0 {
			return nil, pkg.NewModelError("%s: empty dependency", p.GetFingerPrint())
		}
		rels := make([]*pkg.PkgRel, 0, len(conjunct))
		for _, atom := range conjunct {
			rel, err := pkg.ParsePkgRel(atom)
			if err != nil {
				return nil, pkg.NewModelError("%s: %s", p.GetFingerPrint(), unwrapModel(err))
			}
			rels = append(rels, rel)
		}
		p.DependsRel = append(p.DependsRel, rels)
	}
	for _, atom := range r.Conflicts {
		rel, err := pkg.ParsePkgRel(atom)
		if err != nil {
			return nil, pkg.NewModelError("%s: %s", p.GetFingerPrint(), unwrapModel(err))
		}
		p.ConflictsRel = append(p.ConflictsRel, rel)
	}
	for _, s := range r.Provides {
		pr, err := pkg.ParseProvide(s)
		if err != nil {
			return nil, pkg.NewModelError("%s: %s", p.GetFingerPrint(), unwrapModel(err))
		}
		p.Provides = append(p.Provides, pr)
	}
	return p, nil
}

func buildRequest(c *Constraints, criteria string) (*pkg.Request, error) {
	if criteria == "" && c != nil {
		criteria = c.Criteria
	}
	request := &pkg.Request{Directives: []*pkg.Directive{}}
	var err error
	if request.Criteria, err = pkg.ParseCriteria(criteria); err != nil {
		return nil, err
	}
	if c == nil {
		return request, nil
	}
	for _, s := range c.Directives {
		d, err := pkg.ParseDirective(s)
		if err != nil {
			return nil, err
		}
		request.Directives = append(request.Directives, d)
	}
	return request, nil
}

// unwrapModel strips the ModelError prefix so that messages don't repeat
// it when nested.
func unwrapModel(err error) string {
	if me, ok := err.(*pkg.ModelError); ok {
		return me.Msg()
	}
	return err.Error()
}
