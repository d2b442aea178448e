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

package pkg

import (
	"strings"
)

// DirectiveKind is what a request directive asks for.
type DirectiveKind string

const (
	// Install asks for at least one package matching any of the atoms.
	Install DirectiveKind = "+"
	// Remove asks for every package matching the atom to be absent.
	Remove DirectiveKind = "-"
	// Keep asks for every initially installed package matching the atom
	// to stay installed.
	Keep DirectiveKind = "^"
)

// Directive is one line of a request, e.g. "+A|B>=2" or "-C=1".
type Directive struct {
	Kind DirectiveKind
	Rels []*PkgRel // alternatives, only Install takes more than one
}

func (d *Directive) String() string {
	alts := make([]string, 0, len(d.Rels))
	for _, r := range d.Rels {
		alts = append(alts, r.String())
	}
	return string(d.Kind) + strings.Join(alts, "|")
}

// ParseDirective parses a directive string.
func ParseDirective(s string) (*Directive, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, NewModelError("empty directive")
	}
	d := &Directive{Kind: DirectiveKind(s[:1])}
	switch d.Kind {
	case Install, Remove, Keep:
	default:
		return nil, NewModelError("directive %q must start with '+', '-' or '^'", s)
	}
	for _, alt := range strings.Split(s[1:], "|") {
		rel, err := ParsePkgRel(alt)
		if err != nil {
			return nil, err
		}
		d.Rels = append(d.Rels, rel)
	}
	if d.Kind != Install && len(d.Rels) > 1 {
		return nil, NewModelError("directive %q: alternatives are only allowed when installing", s)
	}
	return d, nil
}

// CriterionKind names a quantity counted over the target configuration.
type CriterionKind string

const (
	// Removed counts initially installed packages that are not kept.
	Removed CriterionKind = "removed"
	// New counts installed packages that were not initially installed.
	New CriterionKind = "new"
	// Changed counts packages whose installed state differs from the
	// initial configuration.
	Changed CriterionKind = "changed"
	// NotUpToDate counts installed packages that are not the newest
	// version of their name.
	NotUpToDate CriterionKind = "notuptodate"
	// Size sums the size of newly installed packages.
	Size CriterionKind = "size"
)

// Criterion is one signed term of the lexicographic objective.
type Criterion struct {
	Kind     CriterionKind
	Maximize bool
}

func (c Criterion) String() string {
	if c.Maximize {
		return "+" + string(c.Kind)
	}
	return "-" + string(c.Kind)
}

// DefaultCriteria minimizes removals first, then new installs.
var DefaultCriteria = []Criterion{{Kind: Removed}, {Kind: New}}

// ParseCriteria parses a comma separated list like "-removed,+new". The
// word "none" yields an empty list, which asks for any feasible solution.
func ParseCriteria(s string) ([]Criterion, error) {
	s = strings.TrimSpace(s)
	if s == "none" {
		return []Criterion{}, nil
	}
	if s == "" {
		return DefaultCriteria, nil
	}
	criteria := []Criterion{}
	seen := map[CriterionKind]bool{}
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if len(field) < 2 || (field[0] != '+' && field[0] != '-') {
			return nil, NewModelError("criterion %q must start with '+' or '-'", field)
		}
		c := Criterion{Kind: CriterionKind(field[1:]), Maximize: field[0] == '+'}
		switch c.Kind {
		case Removed, New, Changed, NotUpToDate, Size:
		default:
			return nil, NewModelError("unknown criterion %q", field)
		}
		if seen[c.Kind] {
			return nil, NewModelError("criterion %q given twice", c.Kind)
		}
		seen[c.Kind] = true
		criteria = append(criteria, c)
	}
	return criteria, nil
}

// Request is the list of directives the target configuration must jointly
// satisfy, plus the lexicographic optimization criteria.
type Request struct {
	Directives []*Directive
	Criteria   []Criterion
}

// Optimize is false when the request only asks for feasibility.
func (r *Request) Optimize() bool {
	return len(r.Criteria) > 0
}

// World is the immutable input of one resolution run: the repository, the
// initial configuration and the request.
type World struct {
	Packages []*Pkg // the repository, plus initial packages it lacks
	Initial  []*Pkg // subset of Packages with CurrentState Present
	Request  *Request
}

// NewWorld returns a World whose initial configuration is made of the
// packages marked Present.
func NewWorld(pkgs []*Pkg, request *Request) *World {
	w := &World{Packages: pkgs, Initial: []*Pkg{}, Request: request}
	for _, p := range pkgs {
		if p.CurrentState == Present {
			w.Initial = append(w.Initial, p)
		}
	}
	return w
}

// NewRequestMock parses criteria and directives, and panics on error.
// Useful for testing.
func NewRequestMock(criteria string, directives ...string) *Request {
	r := &Request{Directives: []*Directive{}}
	var err error
	if r.Criteria, err = ParseCriteria(criteria); err != nil {
		panic(err)
	}
	for _, s := range directives {
		d, err := ParseDirective(s)
		if err != nil {
			panic(err)
		}
		r.Directives = append(r.Directives, d)
	}
	return r
}
