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

	"golang.org/x/sync/errgroup"

	"github.com/rancher-sandbox/depsolver/internal/solver"
	"github.com/rancher-sandbox/depsolver/pkg/repo"
)

// Batch resolves independent problem directories concurrently, each with
// its own solver.
//
// It provides the implementation of 'depsolver batch'.
type Batch struct {
	Config *Configuration
	// Jobs bounds the number of runs in flight.
	Jobs int
	// Criteria, when set, replaces the criteria of every problem.
	Criteria string
}

// BatchResult is the outcome of one problem of a batch. Exactly one of
// Solver and Err is set.
type BatchResult struct {
	Dir    string
	Solver *solver.Solver
	Err    error
}

// NewBatch creates a new Batch object with the given configuration.
func NewBatch(cfg *Configuration) *Batch {
	return &Batch{
		Config:   cfg,
		Jobs:     cfg.Settings.Jobs,
		Criteria: cfg.Settings.Criteria,
	}
}

// Run resolves every directory and returns the results in the order of
// dirs. A failing problem does not stop the others; cancelling ctx does.
func (b *Batch) Run(ctx context.Context, dirs []string) []*BatchResult {
	results := make([]*BatchResult, len(dirs))
	jobs := b.Jobs
	if jobs < 1 {
		jobs = 1
	}

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, dir := range dirs {
		i, dir := i, dir
		g.Go(func() error {
			results[i] = b.resolve(ctx, dir)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (b *Batch) resolve(ctx context.Context, dir string) *BatchResult {
	res := &BatchResult{Dir: dir}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	p, err := repo.LoadDir(dir)
	if err != nil {
		res.Err = err
		return res
	}
	r := &Resolve{Config: b.Config, Criteria: b.Criteria}
	res.Solver, res.Err = r.Run(ctx, p)
	return res
}
