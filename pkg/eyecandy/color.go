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

package eyecandy

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ColorCommand paints an install command ("+name=version") green and a
// removal ("-name=version") red.
func ColorCommand(colorsDisabled bool, cmd string) string {
	if colorsDisabled || cmd == "" {
		return cmd
	}
	var c *color.Color
	switch cmd[0] {
	case '+':
		c = color.New(color.FgGreen, color.Bold)
	case '-':
		c = color.New(color.FgRed, color.Bold)
	default:
		return cmd
	}
	c.EnableColor()
	return c.Sprint(cmd)
}

// IsTerminal reports whether w writes to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
