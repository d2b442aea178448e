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
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Status is the "s" line of a solver answer.
type Status int

const (
	Unknown Status = iota
	Satisfiable
	Unsatisfiable
	OptimumFound
)

func (s Status) String() string {
	switch s {
	case Satisfiable:
		return "SATISFIABLE"
	case Unsatisfiable:
		return "UNSATISFIABLE"
	case OptimumFound:
		return "OPTIMUM FOUND"
	default:
		return "UNKNOWN"
	}
}

func parseStatus(s string) (Status, bool) {
	for _, st := range []Status{Unknown, Satisfiable, Unsatisfiable, OptimumFound} {
		if st.String() == s {
			return st, true
		}
	}
	return Unknown, false
}

// Verdict is a parsed solver answer.
type Verdict struct {
	Status  Status
	Cost    int64 // last "o" line, if HasCost
	HasCost bool
	Model   []bool // Model[v-1] is the value of variable v
}

// Write serializes the verdict as a result stream.
func (v *Verdict) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if v.HasCost {
		fmt.Fprintf(bw, "o %d\n", v.Cost)
	}
	fmt.Fprintf(bw, "s %s\n", v.Status)
	if v.Status == Satisfiable || v.Status == OptimumFound {
		bw.WriteString("v")
		for i, val := range v.Model {
			lit := i + 1
			if !val {
				lit = -lit
			}
			// keep lines readable for huge models
			if i > 0 && i%20 == 0 {
				bw.WriteString("\nv")
			}
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(lit))
		}
		bw.WriteString(" 0\n")
	}
	return bw.Flush()
}

// ParseVerdict reads a result stream for a problem of nbVars variables.
func ParseVerdict(r io.Reader, nbVars int) (*Verdict, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)

	v := &Verdict{Model: make([]bool, nbVars)}
	var sawStatus, sawValues bool
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		kind, rest := text[0], strings.TrimSpace(text[1:])
		switch kind {
		case 'c':
		case 'o':
			cost, err := strconv.ParseInt(rest, 10, 64)
			if err != nil || cost < 0 {
				return nil, errors.Wrapf(ErrMalformed, "line %d: bad cost %q", line, rest)
			}
			v.Cost, v.HasCost = cost, true
		case 's':
			if sawStatus {
				return nil, errors.Wrapf(ErrMalformed, "line %d: second status line", line)
			}
			st, ok := parseStatus(rest)
			if !ok {
				return nil, errors.Wrapf(ErrMalformed, "line %d: unknown status %q", line, rest)
			}
			v.Status, sawStatus = st, true
		case 'v':
			if err := v.parseValues(strings.Fields(rest)); err != nil {
				return nil, errors.Wrapf(err, "line %d", line)
			}
			sawValues = true
		default:
			return nil, errors.Wrapf(ErrMalformed, "line %d: unexpected %q", line, text)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading solver answer")
	}
	if !sawStatus {
		return nil, errors.Wrap(ErrMalformed, "missing status line")
	}
	if (v.Status == Satisfiable || v.Status == OptimumFound) && nbVars > 0 && !sawValues {
		return nil, errors.Wrap(ErrMalformed, "missing values for a satisfiable answer")
	}
	return v, nil
}

func (v *Verdict) parseValues(tokens []string) error {
	nbVars := len(v.Model)
	if len(tokens) == 1 && nbVars > 1 && len(tokens[0]) == nbVars && strings.Trim(tokens[0], "01") == "" {
		for i, c := range tokens[0] {
			v.Model[i] = c == '1'
		}
		return nil
	}
	for _, tok := range tokens {
		lit, err := strconv.Atoi(tok)
		if err != nil {
			return errors.Wrapf(ErrMalformed, "%q is not a literal", tok)
		}
		if lit == 0 {
			continue
		}
		idx := lit
		if idx < 0 {
			idx = -idx
		}
		if idx > nbVars {
			return errors.Wrapf(ErrMalformed, "literal %d beyond %d variables", lit, nbVars)
		}
		v.Model[idx-1] = lit > 0
	}
	return nil
}
