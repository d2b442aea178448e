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

package action

import (
	"context"

	"github.com/Masterminds/log-go"

	"github.com/rancher-sandbox/depsolver/internal/sat"
	"github.com/rancher-sandbox/depsolver/internal/solver"
	"github.com/rancher-sandbox/depsolver/pkg/dimacs"
	"github.com/rancher-sandbox/depsolver/pkg/repo"
)

// Resolve is the action computing the commands that take the initial
// configuration of a problem to one satisfying its request.
//
// It provides the implementation of 'depsolver solve' and 'depsolver encode'.
type Resolve struct {
	Config *Configuration
	// Criteria, when set, replaces the criteria of the constraints.
	Criteria string
}

// NewResolve creates a new Resolve object with the given configuration.
func NewResolve(cfg *Configuration) *Resolve {
	return &Resolve{
		Config:   cfg,
		Criteria: cfg.Settings.Criteria,
	}
}

// Run builds the world of the problem, encodes it, solves it and sequences
// the commands. The returned solver holds the result set, which says UNSAT
// when no configuration satisfies the request.
func (r *Resolve) Run(ctx context.Context, p *repo.Problem) (*solver.Solver, error) {
	logger := r.Config.logger()
	backend, err := r.Config.NewBackend()
	if err != nil {
		return nil, err
	}
	s, err := r.build(p, backend, logger)
	if err != nil {
		return nil, err
	}
	if err := s.Solve(ctx); err != nil {
		return nil, err
	}
	logger.Debugw("resolved", log.Fields{
		"problem":  p.Name,
		"status":   s.PkgResultSet.Status,
		"commands": len(s.PkgResultSet.Commands),
	})
	return s, nil
}

// Encode returns the formula Run would hand to the solver.
func (r *Resolve) Encode(p *repo.Problem) (*dimacs.Formula, error) {
	s, err := r.build(p, nil, r.Config.logger())
	if err != nil {
		return nil, err
	}
	return s.BuildConstraints()
}

func (r *Resolve) build(p *repo.Problem, backend sat.Backend, logger log.Logger) (*solver.Solver, error) {
	w, err := repo.Build(p, r.Criteria, logger)
	if err != nil {
		return nil, err
	}
	s := solver.New(backend, logger)
	if err := s.BuildWorld(w); err != nil {
		return nil, err
	}
	if r.Config.Settings.Debug {
		s.PkgDB.DebugPrintDB(logger)
	}
	return s, nil
}
