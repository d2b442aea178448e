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

package sat

import (
	"bytes"
	"context"

	"github.com/pkg/errors"

	"github.com/rancher-sandbox/depsolver/pkg/dimacs"
)

// Outcome is the verdict on a problem.
type Outcome int

const (
	// Unsat means no assignment satisfies the hard clauses.
	Unsat Outcome = iota
	// Sat means Model satisfies the hard clauses; nothing was optimized.
	Sat
	// Optimal means Model satisfies the hard clauses and minimizes the
	// weight of the violated soft clauses, which is Cost.
	Optimal
)

func (o Outcome) String() string {
	switch o {
	case Sat:
		return "SAT"
	case Optimal:
		return "OPTIMAL"
	default:
		return "UNSAT"
	}
}

// Answer is what a Backend returns for a problem.
type Answer struct {
	Outcome Outcome
	Model   []bool // Model[v-1] is the value of variable v
	Cost    int64
}

// Backend solves encoded problems. Implementations must be safe to call from
// several goroutines, each call owning its own solver instance.
type Backend interface {
	Solve(ctx context.Context, f *dimacs.Formula) (*Answer, error)
}

// readAnswer turns a result stream into an Answer for f, checking the model
// against the hard clauses and the reported cost against the soft ones.
func readAnswer(f *dimacs.Formula, out []byte) (*Answer, error) {
	v, err := dimacs.ParseVerdict(bytes.NewReader(out), f.NbVars)
	if err != nil {
		return nil, failure(Malformed, err, "parsing solver answer")
	}

	switch v.Status {
	case dimacs.Unknown:
		return nil, failure(Indeterminate, nil, "solver answered UNKNOWN")
	case dimacs.Unsatisfiable:
		return &Answer{Outcome: Unsat}, nil
	case dimacs.Satisfiable:
		if f.Weighted() {
			return nil, failure(Indeterminate, nil, "solver found a solution without proving it optimal")
		}
	}

	if err := f.Check(v.Model); err != nil {
		return nil, failure(Malformed, err, "solver model is not a solution")
	}
	if !f.Weighted() {
		return &Answer{Outcome: Sat, Model: v.Model}, nil
	}

	cost := f.Cost(v.Model)
	if v.HasCost && v.Cost != cost {
		return nil, failure(Malformed, errors.Errorf("reported %d, model costs %d", v.Cost, cost), "solver cost mismatch")
	}
	return &Answer{Outcome: Optimal, Model: v.Model, Cost: cost}, nil
}
