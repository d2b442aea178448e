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
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/log-go"
	"github.com/cespare/xxhash/v2"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/rancher-sandbox/depsolver/internal/pkg"
	"github.com/rancher-sandbox/depsolver/internal/sat"
	"github.com/rancher-sandbox/depsolver/pkg/dimacs"
)

// Statuses of a PkgResultSet.
const (
	StatusUnsat   = "UNSAT"
	StatusSat     = "SAT"
	StatusOptimal = "OPTIMAL"
)

// Solver resolves one World. It is not reusable: build a new one per run.
type Solver struct {
	PkgDB        *PkgDB       // DB containing packages
	PkgResultSet PkgResultSet // outcome of sat solving

	backend       sat.Backend
	logger        log.Logger
	world         *pkg.World
	formula       *dimacs.Formula
	nextVar       int
	conflictPairs map[[2]int]bool
}

// PkgResultSet contains the status outcome of solving, and the different sets of
// packages derived from the outcome.
// It will be marshalled into Yaml and Json.
type PkgResultSet struct {
	Status           string     `json:"status" yaml:"status"`
	Cost             int64      `json:"cost" yaml:"cost"`
	Commands         []*Command `json:"commands" yaml:"commands"`
	ToInstall        []*pkg.Pkg `json:"toInstall" yaml:"toInstall"`
	ToRemove         []*pkg.Pkg `json:"toRemove" yaml:"toRemove"`
	PresentUnchanged []*pkg.Pkg `json:"presentUnchanged" yaml:"presentUnchanged"`
	Inconsistencies  []string   `json:"inconsistencies" yaml:"inconsistencies"`
}

type OutputMode int

const (
	Commands OutputMode = iota
	JSON
	YAML
	Table
)

func (m OutputMode) String() string {
	switch m {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case Table:
		return "table"
	}
	return "commands"
}

// ParseOutputMode maps a --output value to an OutputMode.
func ParseOutputMode(s string) (OutputMode, error) {
	switch s {
	case "", "commands":
		return Commands, nil
	case "json":
		return JSON, nil
	case "yaml":
		return YAML, nil
	case "table":
		return Table, nil
	}
	return Commands, errors.Errorf("unknown output format %q, use commands, json, yaml or table", s)
}

// New creates a new Solver that decides problems with backend.
func New(backend sat.Backend, logger log.Logger) (s *Solver) {
	s = &Solver{
		PkgDB:         NewPkgDB(),
		PkgResultSet:  PkgResultSet{},
		backend:       backend,
		logger:        logger,
		conflictPairs: map[[2]int]bool{},
	}
	s.PkgResultSet.Commands = []*Command{}
	s.PkgResultSet.ToInstall = []*pkg.Pkg{}
	s.PkgResultSet.ToRemove = []*pkg.Pkg{}
	s.PkgResultSet.PresentUnchanged = []*pkg.Pkg{}
	s.PkgResultSet.Inconsistencies = []string{}
	return s
}

// BuildWorld fills the database with the world's packages and numbers them.
func (s *Solver) BuildWorld(w *pkg.World) error {
	pkgdb, err := LoadPkgDB(w.Packages)
	if err != nil {
		return err
	}
	s.PkgDB = pkgdb

	for _, d := range w.Request.Directives {
		for _, rel := range d.Rels {
			if !s.PkgDB.Known(rel.Name) {
				return pkg.NewModelError("directive %s names no package of the repository", d)
			}
		}
	}
	s.world = w
	return nil
}

// BuildConstraints encodes the world into a formula: hard clauses for
// relations, the single version per name invariant and the request, soft
// clauses for the criteria.
func (s *Solver) BuildConstraints() (*dimacs.Formula, error) {
	if s.world == nil {
		return nil, errors.New("no world to encode, call BuildWorld first")
	}
	if s.formula != nil {
		return s.formula, nil
	}
	if err := s.checkRequest(); err != nil {
		return nil, err
	}

	s.formula = &dimacs.Formula{NbVars: s.PkgDB.Size()}
	s.nextVar = s.PkgDB.Size()
	for _, p := range s.PkgDB.Packages() {
		s.buildConstraintRelations(p)
		s.buildConstraintConflicts(p)
	}
	for _, name := range s.PkgDB.Names() {
		s.buildConstraintAtMost1(name)
	}
	for _, d := range s.world.Request.Directives {
		s.buildConstraintToModify(d)
	}
	if err := s.buildCriteria(); err != nil {
		s.formula = nil
		return nil, err
	}

	digest := xxhash.New()
	_ = s.formula.Write(digest)
	s.logger.Debugw("encoded problem", log.Fields{
		"packages":  s.PkgDB.Size(),
		"variables": s.formula.NbVars,
		"hard":      len(s.formula.Hard),
		"soft":      len(s.formula.Soft),
		"criteria":  fmt.Sprint(s.Criteria()),
		"digest":    fmt.Sprintf("%016x", digest.Sum64()),
	})
	return s.formula, nil
}

// Solve encodes the world, decides it with the backend and, if a
// configuration exists, computes the commands leading to it. An
// unsatisfiable problem is not an error: the result set says UNSAT.
func (s *Solver) Solve(ctx context.Context) error {
	f, err := s.BuildConstraints()
	if err != nil {
		return err
	}

	answer, err := s.backend.Solve(ctx, f)
	if err != nil {
		return errors.Wrap(err, "solving")
	}

	switch answer.Outcome {
	case sat.Unsat:
		s.PkgResultSet.Status = StatusUnsat
		s.logger.Debugf("no configuration satisfies the request")
		return nil
	case sat.Sat:
		s.PkgResultSet.Status = StatusSat
	case sat.Optimal:
		s.PkgResultSet.Status = StatusOptimal
		s.PkgResultSet.Cost = answer.Cost
	}

	s.GeneratePkgSets(answer.Model)

	target := make([]*pkg.Pkg, 0, len(s.PkgResultSet.PresentUnchanged)+len(s.PkgResultSet.ToInstall))
	target = append(target, s.PkgResultSet.PresentUnchanged...)
	target = append(target, s.PkgResultSet.ToInstall...)
	cmds, err := Sequence(s.world.Initial, target)
	if err != nil {
		return err
	}
	s.PkgResultSet.Commands = cmds
	s.logger.Debugw("sequenced commands", log.Fields{
		"install": len(s.PkgResultSet.ToInstall),
		"remove":  len(s.PkgResultSet.ToRemove),
		"cost":    s.PkgResultSet.Cost,
	})
	return nil
}

func (s *Solver) IsSAT() bool {
	return s.PkgResultSet.Status == StatusSat || s.PkgResultSet.Status == StatusOptimal
}

// GeneratePkgSets obtains back the sets of packages from IDs. Variables
// above the last package ID are auxiliary and ignored.
func (s *Solver) GeneratePkgSets(model []bool) {

	s.PkgResultSet.ToInstall = []*pkg.Pkg{}
	s.PkgResultSet.ToRemove = []*pkg.Pkg{}
	s.PkgResultSet.PresentUnchanged = []*pkg.Pkg{}

	// iterate through the db, in ID order:
	for _, p := range s.PkgDB.Packages() {
		// obtain pkgResult from model:
		pkgResult := p.ID <= len(model) && model[p.ID-1]

		// segregate packages into PkgResultSet:
		if pkgResult && p.CurrentState == pkg.Present {
			s.PkgResultSet.PresentUnchanged = append(s.PkgResultSet.PresentUnchanged, p)
		} else if pkgResult && p.CurrentState != pkg.Present {
			s.PkgResultSet.ToInstall = append(s.PkgResultSet.ToInstall, p)
		} else if !pkgResult && p.CurrentState == pkg.Present {
			s.PkgResultSet.ToRemove = append(s.PkgResultSet.ToRemove, p)
		}
	}
}

// CommandStrings returns the commands in their "+name=version" form.
func (s *Solver) CommandStrings() []string {
	cmds := make([]string, 0, len(s.PkgResultSet.Commands))
	for _, c := range s.PkgResultSet.Commands {
		cmds = append(cmds, c.String())
	}
	return cmds
}

func (s *Solver) FormatOutput(t OutputMode) (string, error) {
	switch t {
	case Table:
		return s.FormatTable(nil), nil
	case YAML:
		o, err := yaml.Marshal(s.PkgResultSet)
		if err != nil {
			return "", errors.Wrap(err, "marshalling result to yaml")
		}
		return string(o), nil
	case JSON:
		return marshalJSON(s.PkgResultSet, "  ")
	default:
		return marshalJSON(s.CommandStrings(), "")
	}
}

// FormatTable renders the result set as a table. paint, when not nil,
// decorates the operation column.
func (s *Solver) FormatTable(paint func(op string) string) string {
	if paint == nil {
		paint = func(op string) string { return op }
	}
	table := uitable.New()
	table.AddRow("STATUS:", s.PkgResultSet.Status)
	if !s.IsSAT() {
		for _, incons := range s.PkgResultSet.Inconsistencies {
			table.AddRow("", incons)
		}
		return table.String() + "\n"
	}
	if s.PkgResultSet.Status == StatusOptimal {
		table.AddRow("COST:", s.PkgResultSet.Cost)
	}
	table.AddRow("")
	table.AddRow("STEP", "OP", "NAME", "VERSION")
	for i, c := range s.PkgResultSet.Commands {
		table.AddRow(i+1, paint(string(c.Op)), c.Pkg.Name, c.Pkg.Version)
	}
	table.AddRow("")
	table.AddRow("UNCHANGED", "", "NAME", "VERSION")
	for _, p := range s.PkgResultSet.PresentUnchanged {
		table.AddRow("", "", p.Name, p.Version)
	}
	return table.String() + "\n"
}

func marshalJSON(v interface{}, indent string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return "", errors.Wrap(err, "marshalling result to json")
	}
	return buf.String(), nil
}
