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

	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/depsolver/internal/sat"
)

const maxsatDesc = `
Run the built-in solver on a DIMACS problem read from stdin, and write the
verdict on stdout in MaxSAT evaluation format. This is the solver depsolver
runs, in its own process, when no --solver is given.
`

func newMaxSATCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:    "maxsat",
		Short:  "run the built-in MaxSAT solver",
		Long:   maxsatDesc,
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limits := settings.Limits()
			// the parent enforces the wall clock
			limits.Timeout = 0
			return sat.ServeWorker(cmd.InOrStdin(), out, limits)
		},
	}

	return cmd
}
