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
	"context"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/Masterminds/log-go"
	logcli "github.com/Masterminds/log-go/impl/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rancher-sandbox/depsolver/pkg/dimacs"
)

const workerEnv = "DEPSOLVER_TEST_WORKER"

// TestMain doubles as a fake solver when re-executed with workerEnv set.
func TestMain(m *testing.M) {
	mode := os.Getenv(workerEnv)
	if mode == "" {
		os.Exit(m.Run())
	}
	os.Exit(fakeSolver(mode))
}

func fakeSolver(mode string) int {
	switch mode {
	case "serve":
		if err := ServeWorker(os.Stdin, os.Stdout, Limits{}); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 30
	case "crash":
		fmt.Fprintln(os.Stderr, "segmentation fault")
		return 3
	case "garbage":
		fmt.Println("hello world")
		return 0
	case "unknown":
		fmt.Println("s UNKNOWN")
		return 0
	case "liar":
		_, _ = io.Copy(io.Discard, os.Stdin)
		fmt.Println("s SATISFIABLE")
		fmt.Println("v -1 -2 0")
		return 10
	case "oom":
		fmt.Fprintln(os.Stderr, "fatal error: runtime: out of memory")
		return 2
	case "sleep":
		time.Sleep(time.Minute)
		return 0
	}
	return 1
}

func testLogger() log.Logger {
	logger := logcli.NewStandard()
	logger.InfoOut = io.Discard
	logger.WarnOut = io.Discard
	logger.ErrorOut = io.Discard
	logger.DebugOut = io.Discard
	return logger
}

func fakeProcess(mode string, limits Limits) *Process {
	return &Process{
		Command: []string{os.Args[0]},
		Env:     []string{workerEnv + "=" + mode},
		Limits:  limits,
		Logger:  testLogger(),
	}
}

// optimisation problem with a unique optimum: x1 false, x2 true, cost 1.
func weightedFormula() *dimacs.Formula {
	f := &dimacs.Formula{}
	f.AddHard(1, 2)
	f.AddSoft(3, -1)
	f.AddSoft(1, -2)
	return f
}

func satFormula() *dimacs.Formula {
	f := &dimacs.Formula{}
	f.AddHard(1, 2)
	f.AddHard(-1)
	return f
}

func TestEmbedded(t *testing.T) {
	ctx := context.Background()
	e := &Embedded{}

	ans, err := e.Solve(ctx, satFormula())
	require.NoError(t, err)
	assert.Equal(t, Sat, ans.Outcome)
	assert.Equal(t, []bool{false, true}, ans.Model)

	ans, err = e.Solve(ctx, weightedFormula())
	require.NoError(t, err)
	assert.Equal(t, Optimal, ans.Outcome)
	assert.Equal(t, int64(1), ans.Cost)
	assert.Equal(t, []bool{false, true}, ans.Model)

	unsat := &dimacs.Formula{}
	unsat.AddHard(1)
	unsat.AddHard(-1)
	ans, err = e.Solve(ctx, unsat)
	require.NoError(t, err)
	assert.Equal(t, Unsat, ans.Outcome)

	empty := &dimacs.Formula{NbVars: 2}
	empty.AddHard()
	ans, err = e.Solve(ctx, empty)
	require.NoError(t, err)
	assert.Equal(t, Unsat, ans.Outcome)
}

// choiceFormula requires x1, which needs x2 or x3; each variable is
// penalised when set.
func choiceFormula(w1, w2, w3 int64, exclusive bool) *dimacs.Formula {
	f := &dimacs.Formula{}
	f.AddHard(-1, 2, 3)
	f.AddHard(1)
	if exclusive {
		f.AddHard(-2, -3)
	}
	f.AddSoft(w1, -1)
	f.AddSoft(w2, -2)
	f.AddSoft(w3, -3)
	return f
}

func TestEmbeddedOptimisationChoice(t *testing.T) {
	for _, tcase := range []struct {
		name    string
		formula *dimacs.Formula
		cost    int64
		model   []bool
	}{
		{"cheaper third", choiceFormula(65, 105, 85, false), 150, []bool{true, false, true}},
		{"cheaper second", choiceFormula(1, 2, 3, false), 3, []bool{true, true, false}},
		{"equal weights", choiceFormula(5, 5, 5, false), 10, nil},
		{"exclusive alternatives", choiceFormula(65, 105, 85, true), 150, []bool{true, false, true}},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			ans, err := (&Embedded{}).Solve(ctx, tcase.formula)
			require.NoError(t, err)
			assert.Equal(t, Optimal, ans.Outcome)
			assert.Equal(t, tcase.cost, ans.Cost)
			if tcase.model != nil {
				assert.Equal(t, tcase.model, ans.Model)
			}
		})
	}
}

func TestEmbeddedUnsatOptimisation(t *testing.T) {
	f := weightedFormula()
	f.AddHard(-2)
	f.AddHard(-1)
	ans, err := (&Embedded{}).Solve(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, Unsat, ans.Outcome)
}

func TestReadAnswer(t *testing.T) {
	for _, tcase := range []struct {
		name    string
		formula *dimacs.Formula
		out     string
		reason  Reason
	}{
		{"garbage", satFormula(), "hello\n", Malformed},
		{"unknown", satFormula(), "s UNKNOWN\n", Indeterminate},
		{"falsified hard clause", satFormula(), "s SATISFIABLE\nv 1 2 0\n", Malformed},
		{"no proof of optimality", weightedFormula(), "s SATISFIABLE\nv -1 2 0\n", Indeterminate},
		{"wrong cost", weightedFormula(), "o 0\ns OPTIMUM FOUND\nv -1 2 0\n", Malformed},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			_, err := readAnswer(tcase.formula, []byte(tcase.out))
			var sf *SolverFailure
			require.ErrorAs(t, err, &sf)
			assert.Equal(t, tcase.reason, sf.Reason)
		})
	}

	ans, err := readAnswer(weightedFormula(), []byte("c fine\no 3\no 1\ns OPTIMUM FOUND\nv 01\n"))
	require.NoError(t, err)
	assert.Equal(t, &Answer{Outcome: Optimal, Model: []bool{false, true}, Cost: 1}, ans)
}

func TestProcess(t *testing.T) {
	ans, err := fakeProcess("serve", Limits{Timeout: time.Minute}).Solve(context.Background(), weightedFormula())
	require.NoError(t, err)
	assert.Equal(t, Optimal, ans.Outcome)
	assert.Equal(t, int64(1), ans.Cost)
	assert.Equal(t, []bool{false, true}, ans.Model)

	ans, err = fakeProcess("serve", Limits{}).Solve(context.Background(), satFormula())
	require.NoError(t, err)
	assert.Equal(t, Sat, ans.Outcome)
}

func TestProcessFailures(t *testing.T) {
	for _, tcase := range []struct {
		mode   string
		limits Limits
		reason Reason
	}{
		{"crash", Limits{}, Crash},
		{"garbage", Limits{}, Malformed},
		{"unknown", Limits{}, Indeterminate},
		{"liar", Limits{}, Malformed},
		{"oom", Limits{MaxMemory: 8 << 30}, ResourceLimit},
		{"oom", Limits{}, Crash},
		{"sleep", Limits{Timeout: 200 * time.Millisecond}, ResourceLimit},
	} {
		t.Run(tcase.mode, func(t *testing.T) {
			_, err := fakeProcess(tcase.mode, tcase.limits).Solve(context.Background(), satFormula())
			var sf *SolverFailure
			require.ErrorAs(t, err, &sf)
			assert.Equal(t, tcase.reason, sf.Reason, sf.Error())
		})
	}
}

func TestProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	start := time.Now()
	_, err := fakeProcess("sleep", Limits{}).Solve(ctx, satFormula())
	var sf *SolverFailure
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, Cancelled, sf.Reason)
	assert.Less(t, time.Since(start), 30*time.Second)

	_, err = fakeProcess("serve", Limits{}).Solve(ctx, satFormula())
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, Cancelled, sf.Reason)
}

func TestNewProcess(t *testing.T) {
	p, err := NewProcess(`open-wbo -cpu-lim=10 "some arg"`, Limits{}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"open-wbo", "-cpu-lim=10", "some arg"}, p.Command)

	_, err = NewProcess("", Limits{}, testLogger())
	assert.Error(t, err)

	_, err = NewProcess("missing-solver-binary-xyz", Limits{}, testLogger())
	require.NoError(t, err)
}

func TestLimitsString(t *testing.T) {
	assert.Equal(t, "unlimited", Limits{}.String())
	assert.Equal(t, "timeout=10s,memory=512MiB", Limits{Timeout: 10 * time.Second, MaxMemory: 512 << 20}.String())
}

func TestTailWriter(t *testing.T) {
	w := &tailWriter{max: 4}
	fmt.Fprint(w, "abc")
	fmt.Fprint(w, "defg")
	assert.Equal(t, "defg", w.String())
}
