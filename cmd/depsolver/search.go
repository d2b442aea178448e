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

	"github.com/rancher-sandbox/depsolver/internal/solver"
	"github.com/rancher-sandbox/depsolver/pkg/action"
	"github.com/rancher-sandbox/depsolver/pkg/search"
)

const searchDesc = `
Search reads the repository of a problem, either a problem directory or a
repository file, and looks for packages matching the keywords. A keyword
matches a package name exactly, as a prefix or as a substring, or a name
the package provides.

It will display the newest stable version of each package found. If you
specify the --devel flag, the output will include pre-release versions.
If you want to search using a version constraint, use --version.

Examples:

    # Search for the newest stable versions matching the keyword "ssl"
    $ depsolver search ./problem ssl

    # List every version of zlib below 1.3
    $ depsolver search ./problem/repository.json zlib --versions --version '< 1.3'
`

func newSearchCmd(cfg *action.Configuration, out io.Writer) *cobra.Command {
	o := &search.Options{}

	cmd := &cobra.Command{
		Use:   "search DIR|REPOSITORY [keyword...]",
		Short: "search a repository for packages",
		Long:  searchDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProblem(args[:1])
			if err != nil {
				return err
			}
			return o.Run(out, p, args[1:], cfg.Log)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&o.Regexp, "regexp", "r", false, "use regular expressions for searching")
	f.BoolVarP(&o.Versions, "versions", "l", false, "show the long listing, with each version of each package on its own line")
	f.BoolVar(&o.Devel, "devel", false, "use development versions (alpha, beta, and release candidate releases), too")
	f.StringVar(&o.Version, "version", "", "search using semantic versioning constraints")
	f.UintVar(&o.MaxColWidth, "max-col-width", 50, "maximum column width for output table")
	bindOutputFlag(cmd, &o.OutputFormat, solver.Table)

	return cmd
}
