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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rancher-sandbox/depsolver/pkg/lint/support"
)

func TestLint(t *testing.T) {
	cfg := actionConfigFixture(t)

	client := NewLint(cfg)
	result := client.Run([]string{"testdata/conflict", "testdata/unsat"})
	assert.Equal(t, 2, result.TotalProblemsLinted)
	if assert.Len(t, result.Messages, 1) {
		assert.Equal(t, support.WarningSev, result.Messages[0].Severity)
		assert.Equal(t, "A=1 depends on X, but nothing satisfies it: A=1 can never be installed", result.Messages[0].Err.Error())
	}
	assert.Empty(t, result.Errors)

	client.Strict = true
	result = client.Run([]string{"testdata/conflict", "testdata/unsat"})
	assert.Len(t, result.Errors, 1)
}

func TestLintErrors(t *testing.T) {
	client := NewLint(actionConfigFixture(t))
	result := client.Run([]string{"testdata/broken", "testdata/nonexistent"})

	assert.Equal(t, 1, result.TotalProblemsLinted)
	if assert.Len(t, result.Messages, 1) {
		assert.Equal(t, support.ErrorSev, result.Messages[0].Severity)
	}
	assert.Len(t, result.Errors, 2)
}
