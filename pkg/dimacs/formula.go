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

package dimacs

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformed is the cause of every parse error in this package.
var ErrMalformed = errors.New("malformed dimacs")

// A Clause is a disjunction of literals. Variables start at 1, a negative
// literal is the negation of its variable.
type Clause []int

// SoftClause is a clause that may be violated at the cost of its weight.
type SoftClause struct {
	Weight int64
	Lits   Clause
}

// Formula is a conjunction of hard clauses, plus optional soft clauses whose
// violated weight is to be minimized.
type Formula struct {
	NbVars int
	Hard   []Clause
	Soft   []SoftClause
}

// AddHard appends a hard clause.
func (f *Formula) AddHard(lits ...int) {
	f.Hard = append(f.Hard, Clause(lits))
	f.grow(lits)
}

// AddSoft appends a soft clause. Non-positive weights are ignored.
func (f *Formula) AddSoft(weight int64, lits ...int) {
	if weight <= 0 {
		return
	}
	f.Soft = append(f.Soft, SoftClause{Weight: weight, Lits: Clause(lits)})
	f.grow(lits)
}

func (f *Formula) grow(lits []int) {
	for _, l := range lits {
		if l < 0 {
			l = -l
		}
		if l > f.NbVars {
			f.NbVars = l
		}
	}
}

// Weighted is true when the formula has soft clauses, i.e. is an
// optimization problem.
func (f *Formula) Weighted() bool {
	return len(f.Soft) > 0
}

// Top returns the weight of hard clauses in the wcnf format: one more than
// the sum of all soft weights.
func (f *Formula) Top() (int64, error) {
	var sum int64
	for _, s := range f.Soft {
		if sum > math.MaxInt64-s.Weight-1 {
			return 0, errors.New("sum of soft clause weights overflows")
		}
		sum += s.Weight
	}
	return sum + 1, nil
}

// Check returns an error naming the first hard clause the model falsifies.
func (f *Formula) Check(model []bool) error {
	for i, c := range f.Hard {
		if !c.Satisfied(model) {
			return errors.Errorf("hard clause %d %v is falsified", i+1, []int(c))
		}
	}
	return nil
}

// Cost returns the sum of the weights of the soft clauses the model falsifies.
func (f *Formula) Cost(model []bool) int64 {
	var cost int64
	for _, s := range f.Soft {
		if !s.Lits.Satisfied(model) {
			cost += s.Weight
		}
	}
	return cost
}

// Satisfied is true when one literal of c is true in model. Variables beyond
// the model are false.
func (c Clause) Satisfied(model []bool) bool {
	for _, l := range c {
		v, want := l, true
		if l < 0 {
			v, want = -l, false
		}
		val := v <= len(model) && model[v-1]
		if val == want {
			return true
		}
	}
	return false
}

// Write serializes the formula, as "p cnf" if it has no soft clauses and as
// "p wcnf" otherwise.
func (f *Formula) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if !f.Weighted() {
		fmt.Fprintf(bw, "p cnf %d %d\n", f.NbVars, len(f.Hard))
		for _, c := range f.Hard {
			writeLits(bw, "", c)
		}
		return bw.Flush()
	}

	top, err := f.Top()
	if err != nil {
		return err
	}
	prefix := strconv.FormatInt(top, 10)
	fmt.Fprintf(bw, "p wcnf %d %d %d\n", f.NbVars, len(f.Hard)+len(f.Soft), top)
	for _, c := range f.Hard {
		writeLits(bw, prefix, c)
	}
	for _, s := range f.Soft {
		writeLits(bw, strconv.FormatInt(s.Weight, 10), s.Lits)
	}
	return bw.Flush()
}

func writeLits(bw *bufio.Writer, prefix string, c Clause) {
	if prefix != "" {
		bw.WriteString(prefix)
		bw.WriteByte(' ')
	}
	for _, l := range c {
		bw.WriteString(strconv.Itoa(l))
		bw.WriteByte(' ')
	}
	bw.WriteString("0\n")
}

// Parse reads a "p cnf" or "p wcnf" problem. Clauses may span lines.
func Parse(r io.Reader) (*Formula, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)

	f := &Formula{}
	var (
		header   bool
		weighted bool
		top      int64
		declared int
		pending  []int64
	)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == 'c' || text[0] == '%' {
			continue
		}
		if text[0] == 'p' {
			if header {
				return nil, errors.Wrapf(ErrMalformed, "line %d: second problem line", line)
			}
			fields := strings.Fields(text)
			switch {
			case len(fields) == 4 && fields[1] == "cnf":
			case len(fields) == 5 && fields[1] == "wcnf":
				weighted = true
				t, err := strconv.ParseInt(fields[4], 10, 64)
				if err != nil {
					return nil, errors.Wrapf(ErrMalformed, "line %d: top weight %q", line, fields[4])
				}
				top = t
			default:
				return nil, errors.Wrapf(ErrMalformed, "line %d: bad problem line %q", line, text)
			}
			nbVars, err1 := strconv.Atoi(fields[2])
			nbClauses, err2 := strconv.Atoi(fields[3])
			if err1 != nil || err2 != nil || nbVars < 0 || nbClauses < 0 {
				return nil, errors.Wrapf(ErrMalformed, "line %d: bad problem line %q", line, text)
			}
			f.NbVars, declared = nbVars, nbClauses
			header = true
			continue
		}
		if !header {
			return nil, errors.Wrapf(ErrMalformed, "line %d: clause before problem line", line)
		}
		for _, tok := range strings.Fields(text) {
			n, err := strconv.ParseInt(tok, 10, 64)
			if err != nil {
				return nil, errors.Wrapf(ErrMalformed, "line %d: %q is not a number", line, tok)
			}
			if n != 0 || (weighted && len(pending) == 0) {
				pending = append(pending, n)
				continue
			}
			if err := f.addParsed(pending, weighted, top); err != nil {
				return nil, errors.Wrapf(err, "line %d", line)
			}
			pending = pending[:0]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading problem")
	}
	if !header {
		return nil, errors.Wrap(ErrMalformed, "missing problem line")
	}
	if len(pending) != 0 {
		return nil, errors.Wrap(ErrMalformed, "last clause is not terminated by 0")
	}
	if got := len(f.Hard) + len(f.Soft); got != declared {
		return nil, errors.Wrapf(ErrMalformed, "problem line declares %d clauses, found %d", declared, got)
	}
	return f, nil
}

func (f *Formula) addParsed(tokens []int64, weighted bool, top int64) error {
	var weight int64
	if weighted {
		if len(tokens) == 0 || tokens[0] <= 0 {
			return errors.Wrap(ErrMalformed, "missing clause weight")
		}
		weight, tokens = tokens[0], tokens[1:]
	}
	lits := make([]int, 0, len(tokens))
	for _, t := range tokens {
		v := t
		if v < 0 {
			v = -v
		}
		if v > int64(f.NbVars) {
			return errors.Wrapf(ErrMalformed, "literal %d beyond %d variables", t, f.NbVars)
		}
		lits = append(lits, int(t))
	}
	if !weighted || weight >= top {
		f.Hard = append(f.Hard, Clause(lits))
		return nil
	}
	f.Soft = append(f.Soft, SoftClause{Weight: weight, Lits: Clause(lits)})
	return nil
}
