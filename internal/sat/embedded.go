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
	"io"
	"strconv"

	"github.com/crillab/gophersat/maxsat"
	"github.com/crillab/gophersat/solver"

	"github.com/rancher-sandbox/depsolver/pkg/dimacs"
)

// Embedded solves problems with gophersat, in process. Problems still go
// through the wire format in both directions, so that what it answers is
// exactly what the Process backend would answer with depsolver's own worker.
type Embedded struct{}

// Solve implements Backend. Gophersat cannot be interrupted: on
// cancellation Solve returns immediately and the search finishes in the
// background.
func (e *Embedded) Solve(ctx context.Context, f *dimacs.Formula) (*Answer, error) {
	var in bytes.Buffer
	if err := f.Write(&in); err != nil {
		return nil, failure(Malformed, err, "writing problem")
	}

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		var out bytes.Buffer
		err := serve(&in, &out)
		done <- result{out: out.Bytes(), err: err}
	}()

	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, failure(ResourceLimit, ctx.Err(), "wall-clock limit")
		}
		return nil, failure(Cancelled, ctx.Err(), "")
	case r := <-done:
		if r.err != nil {
			return nil, failure(Crash, r.err, "embedded solver")
		}
		return readAnswer(f, r.out)
	}
}

// ServeWorker is the body of the built-in solver process: it sets its own
// resource ceilings, reads one problem from r and writes the verdict to w.
func ServeWorker(r io.Reader, w io.Writer, limits Limits) error {
	if err := SetOwnLimits(limits); err != nil {
		return err
	}
	return serve(r, w)
}

// serve reads a problem from r and writes gophersat's verdict on it to w.
func serve(r io.Reader, w io.Writer) error {
	f, err := dimacs.Parse(r)
	if err != nil {
		return err
	}
	return solveFormula(f).Write(w)
}

func solveFormula(f *dimacs.Formula) *dimacs.Verdict {
	for _, c := range f.Hard {
		if len(c) == 0 {
			return &dimacs.Verdict{Status: dimacs.Unsatisfiable}
		}
	}
	if !f.Weighted() {
		return solveSAT(f)
	}
	return solveMaxSAT(f)
}

func solveSAT(f *dimacs.Formula) *dimacs.Verdict {
	clauses := make([][]int, len(f.Hard))
	for i, c := range f.Hard {
		clauses[i] = c
	}
	s := solver.New(solver.ParseSlice(clauses))
	if s.Solve() != solver.Sat {
		return &dimacs.Verdict{Status: dimacs.Unsatisfiable}
	}
	model := make([]bool, f.NbVars)
	copy(model, s.Model())
	return &dimacs.Verdict{Status: dimacs.Satisfiable, Model: model}
}

func solveMaxSAT(f *dimacs.Formula) *dimacs.Verdict {
	constrs := make([]maxsat.Constr, 0, len(f.Hard)+len(f.Soft))
	for _, c := range f.Hard {
		constrs = append(constrs, maxsat.HardClause(toLits(c)...))
	}
	// an empty soft clause is always violated, gophersat has no use for it
	var fixed int64
	for _, s := range f.Soft {
		if len(s.Lits) == 0 {
			fixed += s.Weight
			continue
		}
		constrs = append(constrs, maxsat.WeightedClause(toLits(s.Lits), int(s.Weight)))
	}

	assignment, cost := maxsat.New(constrs...).Solve()
	if assignment == nil {
		return &dimacs.Verdict{Status: dimacs.Unsatisfiable}
	}
	model := make([]bool, f.NbVars)
	for v := 1; v <= f.NbVars; v++ {
		model[v-1] = assignment[varName(v)]
	}
	return &dimacs.Verdict{
		Status:  dimacs.OptimumFound,
		Cost:    int64(cost) + fixed,
		HasCost: true,
		Model:   model,
	}
}

func toLits(c dimacs.Clause) []maxsat.Lit {
	lits := make([]maxsat.Lit, len(c))
	for i, l := range c {
		if l < 0 {
			lits[i] = maxsat.Not(varName(-l))
		} else {
			lits[i] = maxsat.Var(varName(l))
		}
	}
	return lits
}

func varName(v int) string {
	return "x" + strconv.Itoa(v)
}
