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

package main

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rancher-sandbox/depsolver/internal/pkg"
	"github.com/rancher-sandbox/depsolver/internal/sat"
	"github.com/rancher-sandbox/depsolver/internal/solver"
	"github.com/rancher-sandbox/depsolver/internal/version"
)

func TestSolveCmd(t *testing.T) {
	tests := []cmdTestCase{
		{
			name:   "solve a problem directory",
			cmd:    "solve testdata/conflict",
			golden: "output/solve-conflict.txt",
			repeat: 2,
		},
		{
			name:   "solve problem files",
			cmd:    "solve testdata/conflict/repository.json testdata/conflict/initial.json testdata/conflict/constraints.json",
			golden: "output/solve-conflict.txt",
		},
		{
			name:      "solve, nothing satisfies the request",
			cmd:       "solve testdata/unsat",
			wantError: true,
			code:      exitUnsat,
		},
		{
			name:      "solve, invalid repository",
			cmd:       "solve testdata/broken",
			wantError: true,
			code:      exitInput,
		},
		{
			name:      "solve, solver crashes",
			cmd:       "solve testdata/conflict --solver false",
			wantError: true,
			code:      exitSolver,
		},
		{
			name:      "solve, missing files",
			cmd:       "solve testdata/nothing-here",
			wantError: true,
			code:      exitFailure,
		},
		{
			name:      "solve, invalid settings",
			cmd:       "solve testdata/conflict --log-format xml",
			wantError: true,
			code:      exitFailure,
		},
		{
			name:      "solve, invalid output format",
			cmd:       "solve testdata/conflict -o xml",
			wantError: true,
			code:      exitFailure,
		},
		{
			name:      "solve, too many arguments",
			cmd:       "solve a b c d",
			wantError: true,
			code:      exitFailure,
		},
	}
	runTestCmd(t, tests)
}

func TestSolveOutputFormats(t *testing.T) {
	resetEnv(t)
	_, out, err := executeCommandStdinC("solve testdata/conflict -o json", "")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "OPTIMAL"`)
	assert.Contains(t, out, `"commands": [
    "-C=1",
    "+B=1",
    "+A=1"
  ]`)

	resetEnv(t)
	_, out, err = executeCommandStdinC("solve testdata/conflict -o table --criteria none", "")
	require.NoError(t, err)
	assert.Contains(t, out, "STATUS:")
	assert.Regexp(t, `\d\s+\+\s+A\s+1`, out)

	resetEnv(t)
	_, out, err = executeCommandStdinC("solve testdata/unsat -o yaml", "")
	assert.Equal(t, exitUnsat, exitCode(err))
	assert.Contains(t, out, "status: UNSAT")
	assert.Contains(t, err.Error(), "A=1 depends on X, but nothing satisfies it")
}

func TestEncodeCmd(t *testing.T) {
	resetEnv(t)
	_, out, err := executeCommandStdinC("encode testdata/conflict", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "p wcnf 3 "), out)

	resetEnv(t)
	_, out, err = executeCommandStdinC("encode testdata/conflict --criteria none", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "p cnf 3 "), out)
}

func TestBatchCmd(t *testing.T) {
	tests := []cmdTestCase{
		{
			name:      "batch with failures",
			cmd:       "batch testdata/conflict testdata/unsat testdata/broken -j 2",
			golden:    "output/batch.txt",
			wantError: true,
			code:      exitUnsat,
		},
		{
			name: "batch",
			cmd:  "batch testdata/conflict testdata/conflict",
		},
		{
			name:      "batch without directories",
			cmd:       "batch",
			wantError: true,
			code:      exitFailure,
		},
	}
	runTestCmd(t, tests)

	resetEnv(t)
	_, out, err := executeCommandStdinC("batch testdata/conflict testdata/broken -o json", "")
	assert.Equal(t, exitInput, exitCode(err))
	assert.Contains(t, out, `"problem": "testdata/conflict"`)
	assert.Contains(t, out, `"error": "invalid model: repository entry 0`)
}

func TestLintCmd(t *testing.T) {
	tests := []cmdTestCase{
		{
			name:   "lint problems with warnings",
			cmd:    "lint testdata/conflict testdata/unsat",
			golden: "output/lint.txt",
		},
		{
			name:      "lint with strict fails on warnings",
			cmd:       "lint --strict testdata/unsat",
			golden:    "output/lint-strict.txt",
			wantError: true,
			code:      exitFailure,
		},
		{
			name:      "lint a problem that does not build",
			cmd:       "lint testdata/broken",
			golden:    "output/lint-broken.txt",
			wantError: true,
			code:      exitFailure,
		},
		{
			name:      "lint a missing directory",
			cmd:       "lint testdata/nonexistent",
			wantError: true,
			code:      exitFailure,
		},
	}
	runTestCmd(t, tests)
}

func TestSearchCmd(t *testing.T) {
	tests := []cmdTestCase{
		{
			name:   "search everything",
			cmd:    "search testdata/conflict -o commands",
			golden: "output/search-all.txt",
		},
		{
			name:   "search a repository file",
			cmd:    "search testdata/conflict/repository.json --regexp '^[A-C]$' -o commands",
			golden: "output/search-all.txt",
		},
		{
			name:   "search installed package as yaml",
			cmd:    "search testdata/conflict c --output yaml",
			golden: "output/search-yaml.txt",
		},
		{
			name:      "search with a bad regexp",
			cmd:       "search testdata/conflict 'A[' --regexp",
			wantError: true,
			code:      exitFailure,
		},
		{
			name:      "search a broken repository",
			cmd:       "search testdata/broken",
			wantError: true,
			code:      exitInput,
		},
	}
	runTestCmd(t, tests)
}

func TestMaxSATCmd(t *testing.T) {
	resetEnv(t)
	_, out, err := executeCommandStdinC("maxsat", "p cnf 1 1\n1 0\n")
	require.NoError(t, err)
	assert.Equal(t, "s SATISFIABLE\nv 1 0\n", out)

	resetEnv(t)
	_, _, err = executeCommandStdinC("maxsat", "p knf\n")
	assert.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	resetEnv(t)
	_, out, err := executeCommandStdinC("version --short", "")
	require.NoError(t, err)
	assert.Regexp(t, `^v0\.1`, out)

	resetEnv(t)
	_, out, err = executeCommandStdinC("version", "")
	require.NoError(t, err)
	assert.Regexp(t, `VERSION:\s+v0\.1`, out)
	assert.Contains(t, out, "GO:")

	resetEnv(t)
	_, out, err = executeCommandStdinC("version -o json", "")
	require.NoError(t, err)
	assert.Contains(t, out, `"version": "v0.1"`)

	resetEnv(t)
	_, out, err = executeCommandStdinC("version -o yaml", "")
	require.NoError(t, err)
	assert.Contains(t, out, "version: v0.1")

	resetEnv(t)
	_, _, err = executeCommandStdinC("version -o xml", "")
	assert.Error(t, err)
}

func TestShortVersion(t *testing.T) {
	assert.Equal(t, "v0.1", shortVersion(version.BuildInfo{Version: "v0.1", GitCommit: "1a2b"}))
	assert.Equal(t, "v0.1+g1a2b3c4", shortVersion(version.BuildInfo{Version: "v0.1", GitCommit: "1a2b3c4d5e"}))
}

func TestExitCode(t *testing.T) {
	for _, tcase := range []struct {
		err  error
		code int
	}{
		{nil, 0},
		{errors.New("boom"), exitFailure},
		{&unsatError{}, exitUnsat},
		{errors.Wrap(&sat.SolverFailure{Reason: sat.ResourceLimit}, "solving"), exitSolver},
		{errors.Wrap(&sat.SolverFailure{Reason: sat.Cancelled, Err: context.Canceled}, "solving"), exitSolver},
		{pkg.NewModelError("bad"), exitInput},
		{errors.Wrap(&solver.RequestConflict{Reason: "both"}, "p"), exitInput},
		{&solver.SequencingError{Msg: "bug"}, exitFailure},
	} {
		assert.Equal(t, tcase.code, exitCode(tcase.err), "%v", tcase.err)
	}
}
