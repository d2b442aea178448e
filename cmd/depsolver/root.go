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
	"io"
	"os"

	"github.com/Masterminds/log-go"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rancher-sandbox/depsolver/pkg/action"
	"github.com/rancher-sandbox/depsolver/pkg/eyecandy"
)

var globalUsage = `Usage: depsolver command

Computes the install and remove commands that take a set of installed
packages to one satisfying a request, under dependency and conflict
relations, optimising lexicographic criteria with a MaxSAT solver.

Environment variables:

| Name                  | Description                                            |
|-----------------------|--------------------------------------------------------|
| $DEPSOLVER_CONFIG     | set the TOML configuration file                        |
| $DEPSOLVER_DEBUG      | set to true to enable verbose output                   |
| $DEPSOLVER_NO_COLOR   | set to true to disable colors                          |
| $DEPSOLVER_NO_EMOJI   | set to true to disable emojis                          |
| $DEPSOLVER_SOLVER     | set the command line of an external MaxSAT solver      |
| $DEPSOLVER_TIMEOUT    | set the wall clock limit of a solver run               |
| $DEPSOLVER_CPU_TIME   | set the CPU time limit of a solver run                 |
| $DEPSOLVER_MAX_MEMORY | set the memory limit of a solver run                   |
| $DEPSOLVER_CRITERIA   | set the optimisation criteria                          |
| $DEPSOLVER_LOG_FORMAT | set the log format, text or json                       |
| $DEPSOLVER_JOBS       | set the number of problems batch solves concurrently   |

A .env file in the working directory can set these variables too.
`

func newRootCmd(out io.Writer, args []string) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:           "depsolver",
		Short:         "A package dependency solver built on MaxSAT",
		Long:          globalUsage,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	settings.AddFlags(flags)

	// parse the global flags early, the logger depends on them
	flags.ParseErrorsWhitelist.UnknownFlags = true
	err := flags.Parse(args)
	if err != nil && !errors.Is(err, pflag.ErrHelp) {
		return nil, errors.Wrapf(err, "failed while parsing flags for %s", args)
	}

	if settings.NoColors || !eyecandy.IsTerminal(out) {
		color.NoColor = true // disable colorized output
	}

	logger := newLogger(out, os.Stderr)
	log.Current = logger
	cfg := action.NewConfiguration(settings, logger)

	cmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		return settings.Validate()
	}
	cmd.AddCommand(
		newSolveCmd(cfg, out),
		newEncodeCmd(cfg, out),
		newBatchCmd(cfg, out),
		newLintCmd(cfg, out),
		newSearchCmd(cfg, out),
		newMaxSATCmd(out),
		newVersionCmd(logger),
	)

	return cmd, nil
}
