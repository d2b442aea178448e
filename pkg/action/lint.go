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
	"github.com/rancher-sandbox/depsolver/pkg/lint"
	"github.com/rancher-sandbox/depsolver/pkg/lint/support"
	"github.com/rancher-sandbox/depsolver/pkg/repo"
)

// Lint checks problem directories for data that is valid but likely wrong,
// such as dependencies nothing satisfies.
//
// It provides the implementation of 'depsolver lint'.
type Lint struct {
	Config *Configuration
	// Strict makes warnings fail the lint.
	Strict bool
}

// LintResult is the result of Lint
type LintResult struct {
	TotalProblemsLinted int
	Messages            []support.Message
	Errors              []error
}

// NewLint creates a new Lint object with the given configuration.
func NewLint(cfg *Configuration) *Lint {
	return &Lint{Config: cfg}
}

// Run lints every directory. Directories that can't be read are reported
// in Errors and not counted as linted.
func (l *Lint) Run(dirs []string) *LintResult {
	lowestTolerance := support.ErrorSev
	if l.Strict {
		lowestTolerance = support.WarningSev
	}

	result := &LintResult{}
	for _, dir := range dirs {
		p, err := repo.LoadDir(dir)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}

		linter := lint.All(p, l.Config.logger())
		result.Messages = append(result.Messages, linter.Messages...)
		result.TotalProblemsLinted++
		for _, msg := range linter.Messages {
			if msg.Severity >= lowestTolerance {
				result.Errors = append(result.Errors, msg.Err)
			}
		}
	}
	return result
}
