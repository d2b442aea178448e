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

package lint

import (
	"github.com/Masterminds/log-go"

	"github.com/rancher-sandbox/depsolver/internal/solver"
	"github.com/rancher-sandbox/depsolver/pkg/lint/rules"
	"github.com/rancher-sandbox/depsolver/pkg/lint/support"
	"github.com/rancher-sandbox/depsolver/pkg/repo"
)

// All runs all of the available linters on the given problem. A problem
// that does not build into a model yields a single error message.
func All(p *repo.Problem, logger log.Logger) support.Linter {
	linter := support.Linter{Problem: p.Name}

	w, err := repo.Build(p, "", logger)
	if !linter.RunLinterRule(support.ErrorSev, p.Name, err) {
		return linter
	}
	db, err := solver.LoadPkgDB(w.Packages)
	if !linter.RunLinterRule(support.ErrorSev, p.Name, err) {
		return linter
	}

	rules.Dependencies(&linter, w, db)
	rules.Conflicts(&linter, w, db)
	rules.Provides(&linter, w, db)
	rules.Initial(&linter, w)
	rules.Request(&linter, w, db)
	return linter
}
