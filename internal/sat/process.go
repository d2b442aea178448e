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
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/Masterminds/log-go"
	"github.com/cespare/xxhash/v2"
	units "github.com/docker/go-units"
	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"

	"github.com/rancher-sandbox/depsolver/pkg/dimacs"
)

// stderrTail is how much of the solver's stderr is kept for diagnostics.
const stderrTail = 4 * 1024

// Limits are the resource ceilings of one solver run. Zero means unlimited.
type Limits struct {
	Timeout   time.Duration // wall clock
	CPUTime   time.Duration
	MaxMemory int64 // bytes of address space
}

func (l Limits) String() string {
	var parts []string
	if l.Timeout > 0 {
		parts = append(parts, "timeout="+l.Timeout.String())
	}
	if l.CPUTime > 0 {
		parts = append(parts, "cpu="+l.CPUTime.String())
	}
	if l.MaxMemory > 0 {
		parts = append(parts, "memory="+units.BytesSize(float64(l.MaxMemory)))
	}
	if len(parts) == 0 {
		return "unlimited"
	}
	return strings.Join(parts, ",")
}

// Process runs an external solver as a subordinate process, one process per
// Solve call. The problem is written to the solver's stdin and the result
// stream is read from its stdout.
type Process struct {
	Command []string
	Env     []string // added to the current environment
	Limits  Limits
	Logger  log.Logger
}

// NewProcess returns a Process running command, a shell-like command line.
func NewProcess(command string, limits Limits, logger log.Logger) (*Process, error) {
	argv, err := shellwords.Parse(command)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing solver command %q", command)
	}
	if len(argv) == 0 {
		return nil, errors.New("empty solver command")
	}
	return &Process{Command: argv, Limits: limits, Logger: logger}, nil
}

// Solve implements Backend. Whatever happens, the solver's process group is
// gone when Solve returns.
func (p *Process) Solve(ctx context.Context, f *dimacs.Formula) (*Answer, error) {
	if len(p.Command) == 0 {
		return nil, failure(Crash, nil, "no solver command")
	}
	if err := ctx.Err(); err != nil {
		return nil, failure(Cancelled, err, "before start")
	}

	var in bytes.Buffer
	if err := f.Write(&in); err != nil {
		return nil, failure(Malformed, err, "writing problem")
	}
	digest := xxhash.Sum64(in.Bytes())

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if p.Limits.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, p.Limits.Timeout)
	}
	defer cancel()

	var stdout bytes.Buffer
	stderr := &tailWriter{max: stderrTail}
	cmd := exec.CommandContext(runCtx, p.Command[0], p.Command[1:]...)
	cmd.Stdin = &in
	cmd.Stdout = &stdout
	cmd.Stderr = stderr
	if len(p.Env) > 0 {
		cmd.Env = append(os.Environ(), p.Env...)
	}
	setProcessGroup(cmd)
	cmd.WaitDelay = time.Second

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, failure(Crash, err, "starting %s", p.Command[0])
	}
	if err := applyLimits(cmd.Process.Pid, p.Limits); err != nil {
		_ = cmd.Cancel()
		_ = cmd.Wait()
		return nil, failure(Crash, err, "applying resource limits")
	}
	waitErr := cmd.Wait()
	killGroup(cmd)

	logger := p.Logger
	if logger == nil {
		logger = log.Current
	}
	logger.Debugw("solver finished", log.Fields{
		"command": strings.Join(p.Command, " "),
		"problem": digest,
		"limits":  p.Limits.String(),
		"elapsed": time.Since(start).String(),
		"output":  stdout.Len(),
	})

	if ctx.Err() != nil {
		return nil, &SolverFailure{Reason: Cancelled, Err: ctx.Err(), Stderr: stderr.String()}
	}
	if runCtx.Err() != nil {
		return nil, &SolverFailure{Reason: ResourceLimit, Detail: "wall-clock limit of " + p.Limits.Timeout.String(), Stderr: stderr.String()}
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, &SolverFailure{Reason: Crash, Err: waitErr, Stderr: stderr.String()}
		}
		if detail, ok := limitExceeded(exitErr, p.Limits, stderr.String()); ok {
			return nil, &SolverFailure{Reason: ResourceLimit, Detail: detail, Err: waitErr, Stderr: stderr.String()}
		}
		if !acceptedExitCode(exitErr.ExitCode()) {
			return nil, &SolverFailure{Reason: Crash, Err: waitErr, Stderr: stderr.String()}
		}
	}

	ans, err := readAnswer(f, stdout.Bytes())
	if err != nil {
		var sf *SolverFailure
		if errors.As(err, &sf) {
			sf.Stderr = stderr.String()
		}
		return nil, err
	}
	return ans, nil
}

// acceptedExitCode tells whether code is one the SAT and MaxSAT competition
// solvers use for a normal answer.
func acceptedExitCode(code int) bool {
	switch code {
	case 0, 10, 20, 30:
		return true
	}
	return false
}

var oomMarkers = []string{
	"out of memory",
	"cannot allocate memory",
	"std::bad_alloc",
	"memory limit",
}

func limitExceeded(exitErr *exec.ExitError, limits Limits, stderr string) (string, bool) {
	if sig, ok := limitSignal(exitErr); ok && (limits.CPUTime > 0 || limits.MaxMemory > 0) {
		if limits.CPUTime > 0 {
			return "cpu-time limit of " + limits.CPUTime.String() + " (" + sig + ")", true
		}
		return "killed by " + sig, true
	}
	if limits.MaxMemory > 0 {
		lower := strings.ToLower(stderr)
		for _, m := range oomMarkers {
			if strings.Contains(lower, m) {
				return "memory limit of " + units.BytesSize(float64(limits.MaxMemory)), true
			}
		}
	}
	return "", false
}

// tailWriter keeps the last max bytes written to it.
type tailWriter struct {
	max int
	buf []byte
}

func (t *tailWriter) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailWriter) String() string {
	return string(t.buf)
}
