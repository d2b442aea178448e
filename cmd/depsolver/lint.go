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
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rancher-sandbox/depsolver/pkg/action"
)

var lintHelp = `
This command takes problem directories and runs a series of checks on
their data, flagging what is valid input but will likely not resolve the
way the author expects: dependencies nothing satisfies, conflicts that can
never trigger, an initial configuration that is already broken, directives
that have no effect.

If the linter encounters things that will make a resolution fail, it emits
[ERROR] messages. With --strict, [WARNING] messages fail the lint too.
`

func newLintCmd(cfg *action.Configuration, out io.Writer) *cobra.Command {
	client := action.NewLint(cfg)

	cmd := &cobra.Command{
		Use:   "lint DIR...",
		Short: "examine problem directories for possible issues",
		Long:  lintHelp,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, paths []string) error {
			var message strings.Builder
			failed := 0

			for _, path := range paths {
				result := client.Run([]string{path})

				fmt.Fprint(&message, "==> Linting ", path, "\n")

				// A directory that can't be read has no messages, only errors.
				if result.TotalProblemsLinted == 0 {
					for _, err := range result.Errors {
						fmt.Fprintf(&message, "Error %s\n", err)
					}
				}
				for _, msg := range result.Messages {
					fmt.Fprintf(&message, "%s\n", msg)
				}

				if len(result.Errors) != 0 {
					failed++
				}

				// Blank line between problems.
				fmt.Fprint(&message, "\n")
			}

			fmt.Fprint(out, message.String())

			summary := fmt.Sprintf("%d problem(s) linted, %d problem(s) failed", len(paths), failed)
			if failed > 0 {
				return errors.New(summary)
			}
			fmt.Fprintln(out, summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&client.Strict, "strict", false, "fail on lint warnings")

	return cmd
}
