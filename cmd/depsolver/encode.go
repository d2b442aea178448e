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

	"github.com/rancher-sandbox/depsolver/pkg/action"
)

const encodeDesc = `
Print the problem that solve would hand to the MaxSAT solver, in DIMACS
format: "p cnf" when any configuration will do, "p wcnf" when optimising.

Variable i stands for the i-th package in (name, version) order; variables
above the number of packages are auxiliary. Useful to feed other solvers or
to report solver bugs.
`

func newEncodeCmd(cfg *action.Configuration, out io.Writer) *cobra.Command {
	client := action.NewResolve(cfg)

	cmd := &cobra.Command{
		Use:   "encode [DIR | REPOSITORY [INITIAL [CONSTRAINTS]]]",
		Short: "print the solver problem of a request",
		Long:  encodeDesc,
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProblem(args)
			if err != nil {
				return err
			}
			client.Criteria = settings.Criteria

			f, err := client.Encode(p)
			if err != nil {
				return err
			}
			return f.Write(out)
		},
	}

	return cmd
}
