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
	"os"
	"strconv"

	"github.com/Masterminds/log-go"
	"github.com/pkg/errors"

	"github.com/rancher-sandbox/depsolver/internal/sat"
	"github.com/rancher-sandbox/depsolver/pkg/cli"
)

// WorkerCommand is the subcommand of the depsolver binary that runs the
// built-in solver.
const WorkerCommand = "maxsat"

// Configuration injects the dependencies that all actions share.
type Configuration struct {
	Settings *cli.EnvSettings
	Log      log.Logger

	// NewBackend returns the solver backend of one run. Every run gets its
	// own, so that concurrent runs never share a solver process.
	NewBackend func() (sat.Backend, error)
}

// NewConfiguration returns a Configuration solving with the solver the
// settings name, or with the built-in one.
func NewConfiguration(settings *cli.EnvSettings, logger log.Logger) *Configuration {
	cfg := &Configuration{Settings: settings, Log: logger}
	cfg.NewBackend = cfg.processBackend
	return cfg
}

func (c *Configuration) processBackend() (sat.Backend, error) {
	limits := c.Settings.Limits()
	if c.Settings.Solver != "" {
		return sat.NewProcess(c.Settings.Solver, limits, c.Log)
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, errors.Wrap(err, "locating the built-in solver")
	}
	return &sat.Process{
		Command: builtinCommand(exe, limits),
		Limits:  limits,
		Logger:  c.Log,
	}, nil
}

// builtinCommand runs exe as the built-in solver. The worker also sets the
// ceilings on itself, for systems where they can't be set from outside.
func builtinCommand(exe string, limits sat.Limits) []string {
	argv := []string{exe, WorkerCommand}
	if limits.CPUTime > 0 {
		argv = append(argv, "--cpu-time="+limits.CPUTime.String())
	}
	if limits.MaxMemory > 0 {
		argv = append(argv, "--max-memory="+strconv.FormatInt(limits.MaxMemory, 10))
	}
	return argv
}

func (c *Configuration) logger() log.Logger {
	if c.Log == nil {
		return log.Current
	}
	return c.Log
}
