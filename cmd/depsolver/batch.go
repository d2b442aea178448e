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
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/rancher-sandbox/depsolver/internal/solver"
	"github.com/rancher-sandbox/depsolver/pkg/action"
)

const batchDesc = `
Solve several problem directories concurrently, each with its own solver
process. Each directory holds repository.json, and optionally initial.json
and constraints.json.

A failing problem does not stop the others. The exit code is the one the
first failing problem would give with solve.
`

// batchEntry is the result of one problem in json and yaml output.
type batchEntry struct {
	Problem string               `json:"problem" yaml:"problem"`
	Result  *solver.PkgResultSet `json:"result,omitempty" yaml:"result,omitempty"`
	Error   string               `json:"error,omitempty" yaml:"error,omitempty"`
}

func newBatchCmd(cfg *action.Configuration, out io.Writer) *cobra.Command {
	var outfmt solver.OutputMode

	cmd := &cobra.Command{
		Use:   "batch DIR...",
		Short: "solve many problems concurrently",
		Long:  batchDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := action.NewBatch(cfg)
			results := client.Run(commandContext(cmd), args)
			if err := writeBatch(out, results, outfmt); err != nil {
				return err
			}

			failed := 0
			var first error
			for _, res := range results {
				err := res.Err
				if err == nil && !res.Solver.IsSAT() {
					err = &unsatError{inconsistencies: res.Solver.PkgResultSet.Inconsistencies}
				}
				if err != nil {
					failed++
					if first == nil {
						first = errors.Wrap(err, res.Dir)
					}
				}
			}
			if failed > 0 {
				return errors.Wrapf(first, "%d of %d problems without solution", failed, len(results))
			}
			return nil
		},
	}
	bindOutputFlag(cmd, &outfmt, solver.Commands)

	return cmd
}

func writeBatch(out io.Writer, results []*action.BatchResult, mode solver.OutputMode) error {
	switch mode {
	case solver.JSON, solver.YAML:
		entries := make([]*batchEntry, 0, len(results))
		for _, res := range results {
			e := &batchEntry{Problem: res.Dir}
			if res.Err != nil {
				e.Error = res.Err.Error()
			} else {
				e.Result = &res.Solver.PkgResultSet
			}
			entries = append(entries, e)
		}
		if mode == solver.YAML {
			b, err := yaml.Marshal(entries)
			if err != nil {
				return errors.Wrap(err, "marshalling results to yaml")
			}
			_, err = out.Write(b)
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)

	case solver.Table:
		table := uitable.New()
		table.Wrap = true
		table.AddRow("PROBLEM", "STATUS", "COMMANDS")
		for _, res := range results {
			if res.Err != nil {
				table.AddRow(res.Dir, "ERROR", res.Err.Error())
				continue
			}
			cmds := res.Solver.CommandStrings()
			for i, c := range cmds {
				cmds[i] = paintOp(c)
			}
			table.AddRow(res.Dir, res.Solver.PkgResultSet.Status, strings.Join(cmds, " "))
		}
		_, err := fmt.Fprintln(out, table)
		return err

	default:
		for _, res := range results {
			if res.Err != nil {
				if _, err := fmt.Fprintf(out, "%s: error: %s\n", res.Dir, res.Err); err != nil {
					return err
				}
				continue
			}
			text, err := res.Solver.FormatOutput(solver.Commands)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(out, "%s: %s", res.Dir, text); err != nil {
				return err
			}
		}
		return nil
	}
}
