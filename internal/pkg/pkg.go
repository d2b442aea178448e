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
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

type tristate int

const (
	Unknown tristate = iota
	Present
	Absent
)

func (t tristate) String() string {
	switch t {
	case Present:
		return "present"
	case Absent:
		return "absent"
	default:
		return "unknown"
	}
}

// Op is the version relation of a dependency atom.
type Op string

const (
	OpAny Op = ""
	OpEq  Op = "="
	OpLt  Op = "<"
	OpLe  Op = "<="
	OpGt  Op = ">"
	OpGe  Op = ">="
)

var relRegex = regexp.MustCompile(`^([.+a-zA-Z0-9_-]+)(?:(<=|>=|=|<|>)(.+))?$`)

// Pkg is the minimum object the solver reasons about: a (name, version)
// pair of the repository, together with its dependency formula, its
// conflicts and the virtual packages it provides.
// Note that each package is unique. The same name with a different version
// is a different package. E.g: foo=1.2.0 and foo=1.3.0 are different
// packages, and at most one of them can be installed at a time.
type Pkg struct {
	ID           int         `json:"-" yaml:"-"` // ID, position on the solver model
	Name         string      `json:"name" yaml:"name"`
	Version      Version     `json:"version" yaml:"version"`
	Size         int64       `json:"size,omitempty" yaml:"size,omitempty"`
	DependsRel   [][]*PkgRel `json:"-" yaml:"-"` // conjunction of disjunctions of atoms
	ConflictsRel []*PkgRel   `json:"-" yaml:"-"`
	Provides     []*Provide  `json:"-" yaml:"-"`
	CurrentState tristate    `json:"-" yaml:"-"` // Present if part of the initial configuration
}

// PkgRel is a dependency atom: a package name and an optional version
// relation. It is satisfied by any package (real, or virtual through
// provides) whose name matches and whose version satisfies the relation.
type PkgRel struct {
	Name    string
	Op      Op
	Version Version
}

// Provide is a virtual (name, version) a package satisfies as an alias. A
// provide without version only satisfies atoms without version relation.
type Provide struct {
	Name    string
	Version Version
}

func NewPkg(name string, version Version, size int64) *Pkg {
	return &Pkg{
		ID:           -1,
		Name:         name,
		Version:      version,
		Size:         size,
		DependsRel:   [][]*PkgRel{},
		ConflictsRel: []*PkgRel{},
		Provides:     []*Provide{},
		CurrentState: Unknown,
	}
}

// NewPkgMock creates a new package from plain strings, with no relations.
// Useful for testing.
func NewPkgMock(name, version string, currentState tristate) *Pkg {
	p := NewPkg(name, MustParseVersion(version), 0)
	p.CurrentState = currentState
	return p
}

// Depends appends a conjunct made of the given atoms (a disjunction) and
// returns p. Useful for testing.
func (p *Pkg) Depends(atoms ...string) *Pkg {
	conjunct := []*PkgRel{}
	for _, a := range atoms {
		conjunct = append(conjunct, MustParsePkgRel(a))
	}
	p.DependsRel = append(p.DependsRel, conjunct)
	return p
}

// Conflicts appends conflict atoms and returns p. Useful for testing.
func (p *Pkg) Conflicts(atoms ...string) *Pkg {
	for _, a := range atoms {
		p.ConflictsRel = append(p.ConflictsRel, MustParsePkgRel(a))
	}
	return p
}

// Provide appends virtual packages and returns p. Useful for testing.
func (p *Pkg) Provide(provides ...string) *Pkg {
	for _, s := range provides {
		pr, err := ParseProvide(s)
		if err != nil {
			panic(err)
		}
		p.Provides = append(p.Provides, pr)
	}
	return p
}

// JSON serializes package p into JSON, returning a []byte
func (p *Pkg) JSON() ([]byte, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	err := encoder.Encode(p)
	return buffer.Bytes(), err
}

// GetFingerPrint returns a unique id of the package, in the name=version
// form used by commands.
func (p *Pkg) GetFingerPrint() string {
	return CreateFingerPrint(p.Name, p.Version.String())
}

func CreateFingerPrint(name, version string) string {
	return fmt.Sprintf("%s=%s", name, version)
}

// GetBaseFingerPrint returns a unique id of the package minus version.
// This helps when filtering packages to find those that are similar and differ
// only in the version.
func (p *Pkg) GetBaseFingerPrint() string {
	return p.Name
}

func (p *Pkg) String() string {
	return fmt.Sprintf("%s (id %d, %s)", p.GetFingerPrint(), p.ID, p.CurrentState)
}

// ParsePkgRel parses an atom: "name" or "name<op>version".
func ParsePkgRel(s string) (*PkgRel, error) {
	m := relRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil, NewModelError("invalid atom %q", s)
	}
	rel := &PkgRel{Name: m[1], Op: Op(m[2])}
	if rel.Op != OpAny {
		v, err := ParseVersion(m[3])
		if err != nil {
			return nil, NewModelError("atom %q: unknown version syntax %q", s, m[3])
		}
		rel.Version = v
	}
	return rel, nil
}

// MustParsePkgRel is like ParsePkgRel but panics on error.
// Useful for testing.
func MustParsePkgRel(s string) *PkgRel {
	rel, err := ParsePkgRel(s)
	if err != nil {
		panic(err)
	}
	return rel
}

// ParseProvide parses "vname" or "vname=version".
func ParseProvide(s string) (*Provide, error) {
	rel, err := ParsePkgRel(s)
	if err != nil {
		return nil, err
	}
	if rel.Op != OpAny && rel.Op != OpEq {
		return nil, NewModelError("provide %q: only '=' may be used", s)
	}
	return &Provide{Name: rel.Name, Version: rel.Version}, nil
}

func (r *PkgRel) String() string {
	if r.Op == OpAny {
		return r.Name
	}
	return r.Name + string(r.Op) + r.Version.String()
}

// Concrete is true when the atom pins a single version.
func (r *PkgRel) Concrete() bool {
	return r.Op == OpEq
}

// SatisfiedByVersion reports whether a package named like the atom at
// version v satisfies the atom's relation.
func (r *PkgRel) SatisfiedByVersion(v Version) bool {
	if r.Op == OpAny {
		return true
	}
	c := v.Compare(r.Version)
	switch r.Op {
	case OpEq:
		return c == 0
	case OpLt:
		return c < 0
	case OpLe:
		return c <= 0
	case OpGt:
		return c > 0
	case OpGe:
		return c >= 0
	}
	return false
}

// SatisfiedBy reports whether p satisfies the atom, either by its own name
// and version or through one of its provides.
func (r *PkgRel) SatisfiedBy(p *Pkg) bool {
	if p.Name == r.Name && r.SatisfiedByVersion(p.Version) {
		return true
	}
	for _, pr := range p.Provides {
		if pr.Name != r.Name {
			continue
		}
		if r.Op == OpAny {
			return true
		}
		if !pr.Version.IsZero() && r.SatisfiedByVersion(pr.Version) {
			return true
		}
	}
	return false
}

func (pr *Provide) String() string {
	if pr.Version.IsZero() {
		return pr.Name
	}
	return pr.Name + "=" + pr.Version.String()
}
