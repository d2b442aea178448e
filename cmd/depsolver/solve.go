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
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/depsolver/internal/solver"
	"github.com/rancher-sandbox/depsolver/pkg/action"
	"github.com/rancher-sandbox/depsolver/pkg/eyecandy"
	"github.com/rancher-sandbox/depsolver/pkg/repo"
)

const solveDesc = `
Compute the commands that take the initial configuration to one satisfying
the constraints.

The problem is either a directory holding repository.json, initial.json and
constraints.json, or the paths of these files. Initial and constraints are
optional; when missing, nothing is installed and nothing is requested.

The default output is a JSON list of commands, like ["-C=1","+B=1","+A=1"],
to be run in order. When no configuration satisfies the request, the reasons
found are printed and the exit code is 2.
`

func newSolveCmd(cfg *action.Configuration, out io.Writer) *cobra.Command {
	client := action.NewResolve(cfg)
	var outfmt solver.OutputMode

	cmd := &cobra.Command{
		Use:   "solve [DIR | REPOSITORY [INITIAL [CONSTRAINTS]]]",
		Short: "compute the commands satisfying a request",
		Long:  solveDesc,
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProblem(args)
			if err != nil {
				return err
			}
			client.Criteria = settings.Criteria

			s, err := client.Run(commandContext(cmd), p)
			if err != nil {
				return err
			}
			if err := writeResult(out, s, outfmt); err != nil {
				return err
			}
			if !s.IsSAT() {
				return &unsatError{inconsistencies: s.PkgResultSet.Inconsistencies}
			}
			cfg.Log.Debugf("%d commands", len(s.PkgResultSet.Commands))
			return nil
		},
	}
	bindOutputFlag(cmd, &outfmt, solver.Commands)

	return cmd
}

// loadProblem reads a problem directory, or the problem files.
func loadProblem(args []string) (*repo.Problem, error) {
	if len(args) == 1 {
		if fi, err := os.Stat(args[0]); err == nil && fi.IsDir() {
			return repo.LoadDir(args[0])
		}
	}
	files := make([]string, 3)
	copy(files, args)
	return repo.LoadFiles(files[0], files[1], files[2])
}

func writeResult(out io.Writer, s *solver.Solver, mode solver.OutputMode) error {
	var text string
	if mode == solver.Table {
		text = s.FormatTable(paintOp)
	} else {
		var err error
		if text, err = s.FormatOutput(mode); err != nil {
			return err
		}
	}
	_, err := io.WriteString(out, text)
	return err
}

func paintOp(op string) string {
	return eyecandy.ColorCommand(color.NoColor, op)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
