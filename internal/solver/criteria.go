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
	"math"
	"sort"

	"github.com/rancher-sandbox/depsolver/internal/pkg"
)

// term is a soft unit clause: lit should be true, or weight is paid.
type term struct {
	lit    int
	weight int64
}

// Criteria returns the criteria the objective is built from: the request's,
// plus a last "-changed" tie-break unless the request only asks for
// feasibility or already counts changes.
func (s *Solver) Criteria() []pkg.Criterion {
	requested := s.world.Request.Criteria
	if len(requested) == 0 {
		return requested
	}
	for _, c := range requested {
		if c.Kind == pkg.Changed {
			return requested
		}
	}
	criteria := make([]pkg.Criterion, 0, len(requested)+1)
	criteria = append(criteria, requested...)
	return append(criteria, pkg.Criterion{Kind: pkg.Changed})
}

// criterionTerms counts a criterion over all package variables. Minimizing
// a count means every counted package is a violated soft literal; maximizing
// flips the literal.
func (s *Solver) criterionTerms(c pkg.Criterion) []term {
	terms := []term{}
	add := func(p *pkg.Pkg, countedWhenInstalled bool, weight int64) {
		if weight <= 0 {
			return
		}
		// soft literal that holds when the package is not counted
		lit := p.ID
		if countedWhenInstalled {
			lit = -lit
		}
		if c.Maximize {
			lit = -lit
		}
		terms = append(terms, term{lit: lit, weight: weight})
	}

	for _, p := range s.PkgDB.Packages() {
		initial := p.CurrentState == pkg.Present
		switch c.Kind {
		case pkg.Removed:
			if initial {
				add(p, false, 1)
			}
		case pkg.New:
			if !initial {
				add(p, true, 1)
			}
		case pkg.Changed:
			add(p, !initial, 1)
		case pkg.NotUpToDate:
			if !s.PkgDB.IsNewest(p) {
				add(p, true, 1)
			}
		case pkg.Size:
			if !initial {
				add(p, true, p.Size)
			}
		}
	}
	return terms
}

// buildCriteria turns the lexicographic criteria into weighted soft unit
// clauses. Tiers are weighted from the last one up: each tier's unit weight
// is one more than the total weight of all the tiers below it, so a single
// violation in a tier outweighs every violation below.
func (s *Solver) buildCriteria() error {
	criteria := s.Criteria()
	weights := map[int]int64{}

	var lower int64
	for i := len(criteria) - 1; i >= 0; i-- {
		mult, ok := addInt64(lower, 1)
		if !ok {
			return pkg.NewModelError("optimization weights overflow at criterion %s", criteria[i])
		}
		var tier int64
		for _, t := range s.criterionTerms(criteria[i]) {
			w, ok := mulInt64(t.weight, mult)
			if ok {
				weights[t.lit], ok = addInt64(weights[t.lit], w)
			}
			if ok {
				tier, ok = addInt64(tier, w)
			}
			if !ok {
				return pkg.NewModelError("optimization weights overflow at criterion %s", criteria[i])
			}
		}
		if lower, ok = addInt64(lower, tier); !ok || lower == math.MaxInt64 {
			return pkg.NewModelError("optimization weights overflow at criterion %s", criteria[i])
		}
	}

	lits := make([]int, 0, len(weights))
	for lit := range weights {
		lits = append(lits, lit)
	}
	sort.Slice(lits, func(i, j int) bool {
		a, b := abs(lits[i]), abs(lits[j])
		if a != b {
			return a < b
		}
		return lits[i] > lits[j]
	})
	for _, lit := range lits {
		s.formula.AddSoft(weights[lit], lit)
	}
	return nil
}

func addInt64(a, b int64) (int64, bool) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}

func mulInt64(a, b int64) (int64, bool) {
	if a != 0 && b > math.MaxInt64/a {
		return 0, false
	}
	return a * b, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
