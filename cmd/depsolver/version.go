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

	"github.com/Masterminds/log-go"
	logio "github.com/Masterminds/log-go/io"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/rancher-sandbox/depsolver/internal/version"
)

const versionHelp = `
Print where this depsolver binary comes from: its release, the commit and
tree state it was built from, and the Go toolchain that compiled it.

Release builds get their commit stamped at link time. Other builds fall back
to the VCS revision the Go toolchain records in the binary, if any.

With --short only the release and the abbreviated commit are printed, as in
"v0.1+g1a2b3c4". With --output json or --output yaml the fields are printed
as a single document, for scripts that check which resolver they talk to.
`

var versionFormats = []string{"table", "json", "yaml"}

type versionCmd struct {
	short  bool
	format string
}

func newVersionCmd(logger log.Logger) *cobra.Command {
	c := &versionCmd{}
	cmd := &cobra.Command{
		Use:   "version",
		Short: "print depsolver build information",
		Long:  versionHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.print(logio.NewWriter(logger, log.InfoLevel), version.Get())
		},
	}
	f := cmd.Flags()
	f.BoolVar(&c.short, "short", false, "print the release and abbreviated commit only")
	f.StringVarP(&c.format, "output", "o", "table",
		fmt.Sprintf("format of the build information, one of %v", versionFormats))
	return cmd
}

func (c *versionCmd) print(w io.Writer, info version.BuildInfo) error {
	if c.short {
		_, err := fmt.Fprintln(w, shortVersion(info))
		return err
	}

	var out []byte
	switch c.format {
	case "table":
		table := uitable.New()
		table.AddRow("VERSION:", info.Version)
		table.AddRow("COMMIT:", orUnknown(info.GitCommit))
		table.AddRow("TREE:", orUnknown(info.GitTreeState))
		table.AddRow("GO:", info.GoVersion)
		out = []byte(table.String() + "\n")
	case "json":
		b, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encoding build information")
		}
		out = append(b, '\n')
	case "yaml":
		b, err := yaml.Marshal(info)
		if err != nil {
			return errors.Wrap(err, "encoding build information")
		}
		out = b
	default:
		return errors.Errorf("unknown output format %q, want one of %v", c.format, versionFormats)
	}
	_, err := w.Write(out)
	return err
}

// shortVersion is the release with the first 7 characters of the commit.
func shortVersion(info version.BuildInfo) string {
	if len(info.GitCommit) < 7 {
		return info.Version
	}
	return fmt.Sprintf("%s+g%s", info.Version, info.GitCommit[:7])
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
