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

/*
Package search finds the packages of a problem repository by name, and
lists them with their version and installed state.

A term matches a package when it is the package name, a prefix or a
substring of it, or one of the names the package provides. Results are
ranked in that order.
*/
package search

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/log-go"
	"github.com/Masterminds/semver/v3"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/rancher-sandbox/depsolver/internal/pkg"
	"github.com/rancher-sandbox/depsolver/internal/solver"
	"github.com/rancher-sandbox/depsolver/pkg/repo"
)

// Scores, lower is a better match.
const (
	scoreExact = iota
	scorePrefix
	scoreSubstring
	scoreProvides
	noMatch
)

// Options is the struct used to search, and stores the different options to filter and configure the output
type Options struct {
	// Versions lists every version instead of only the newest one.
	Versions bool
	// Regexp takes terms as regular expressions.
	Regexp bool
	// Devel includes pre-release versions.
	Devel bool
	// Version is a semver constraint, e.g. ">=1.2, <2".
	Version      string
	MaxColWidth  uint
	OutputFormat solver.OutputMode
}

// Result is one package found by a search.
type Result struct {
	Name      string   `json:"name" yaml:"name"`
	Version   string   `json:"version" yaml:"version"`
	Size      int64    `json:"size,omitempty" yaml:"size,omitempty"`
	Installed bool     `json:"installed" yaml:"installed"`
	Provides  []string `json:"provides,omitempty" yaml:"provides,omitempty"`
	Score     int      `json:"-" yaml:"-"`

	pkg *pkg.Pkg
}

// Run searches the repository of p and writes the results to out.
func (o *Options) Run(out io.Writer, p *repo.Problem, terms []string, logger log.Logger) error {
	// The request plays no part in a search, and a broken one shouldn't
	// hide the repository.
	noRequest := *p
	noRequest.Constraints = nil
	w, err := repo.Build(&noRequest, "none", logger)
	if err != nil {
		return err
	}
	db, err := solver.LoadPkgDB(w.Packages)
	if err != nil {
		return err
	}

	res, err := o.Search(db, terms)
	if err != nil {
		return err
	}
	SortScore(res)
	data, err := o.applyConstraint(res)
	if err != nil {
		return err
	}
	logger.Debugf("search %q: %d of %d packages", strings.Join(terms, " "), len(data), db.Size())

	return o.write(out, data)
}

// Search returns the packages of db matching any of the terms, or all of
// them when there are no terms.
func (o *Options) Search(db *solver.PkgDB, terms []string) ([]*Result, error) {
	match, err := o.matcher(terms)
	if err != nil {
		return nil, err
	}

	res := []*Result{}
	for _, p := range db.Packages() {
		score := match(p.Name)
		for _, pr := range p.Provides {
			if match(pr.Name) < noMatch && score > scoreProvides {
				score = scoreProvides
			}
		}
		if score == noMatch {
			continue
		}
		res = append(res, newResult(p, score))
	}
	return res, nil
}

// matcher returns a function scoring a name against the terms.
func (o *Options) matcher(terms []string) (func(string) int, error) {
	if len(terms) == 0 {
		return func(string) int { return scoreExact }, nil
	}

	if o.Regexp {
		exprs := make([]*regexp.Regexp, 0, len(terms))
		for _, t := range terms {
			re, err := regexp.Compile(t)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid regular expression %q", t)
			}
			exprs = append(exprs, re)
		}
		return func(name string) int {
			for _, re := range exprs {
				if re.MatchString(name) {
					return scoreExact
				}
			}
			return noMatch
		}, nil
	}

	return func(name string) int {
		best := noMatch
		name = strings.ToLower(name)
		for _, t := range terms {
			t = strings.ToLower(t)
			switch {
			case name == t:
				return scoreExact
			case strings.HasPrefix(name, t) && best > scorePrefix:
				best = scorePrefix
			case strings.Contains(name, t) && best > scoreSubstring:
				best = scoreSubstring
			}
		}
		return best
	}, nil
}

func newResult(p *pkg.Pkg, score int) *Result {
	r := &Result{
		Name:      p.Name,
		Version:   p.Version.String(),
		Size:      p.Size,
		Installed: p.CurrentState == pkg.Present,
		Score:     score,
		pkg:       p,
	}
	for _, pr := range p.Provides {
		r.Provides = append(r.Provides, pr.String())
	}
	return r
}

// SortScore sorts by score, then by name, newest version first.
func SortScore(res []*Result) {
	sort.SliceStable(res, func(i, j int) bool {
		a, b := res[i], res[j]
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.pkg.Version.Compare(b.pkg.Version) > 0
	})
}

// applyConstraint get a result list and filters it based on the version
// constraint and the Devel and Versions options.
func (o *Options) applyConstraint(res []*Result) ([]*Result, error) {
	var constraint *semver.Constraints
	if o.Version != "" {
		c, err := semver.NewConstraint(o.Version)
		if err != nil {
			return res, errors.Wrap(err, "an invalid version/constraint format")
		}
		constraint = c
	}

	data := res[:0]
	foundNames := map[string]bool{}
	for _, r := range res {
		// if not returning all versions and already have found a result,
		// you're done!
		if !o.Versions && foundNames[r.Name] {
			continue
		}
		// Dotted versions semver can't read only pass without a constraint.
		v, err := semver.NewVersion(r.Version)
		if err != nil {
			if constraint != nil {
				continue
			}
		} else {
			if !o.Devel && v.Prerelease() != "" {
				continue
			}
			if constraint != nil && !constraint.Check(v) {
				continue
			}
		}
		data = append(data, r)
		foundNames[r.Name] = true
	}

	return data, nil
}

func (o *Options) write(out io.Writer, res []*Result) error {
	switch o.OutputFormat {
	case solver.JSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case solver.YAML:
		b, err := yaml.Marshal(res)
		if err != nil {
			return errors.Wrap(err, "marshalling results to yaml")
		}
		_, err = out.Write(b)
		return err
	case solver.Commands:
		for _, r := range res {
			if _, err := fmt.Fprintln(out, pkg.CreateFingerPrint(r.Name, r.Version)); err != nil {
				return err
			}
		}
		return nil
	}

	if len(res) == 0 {
		_, err := out.Write([]byte("No results found\n"))
		if err != nil {
			return fmt.Errorf("unable to write results: %s", err)
		}
		return nil
	}
	table := uitable.New()
	table.MaxColWidth = o.MaxColWidth
	table.AddRow("NAME", "VERSION", "INSTALLED", "PROVIDES")
	for _, r := range res {
		installed := ""
		if r.Installed {
			installed = "yes"
		}
		table.AddRow(r.Name, r.Version, installed, strings.Join(r.Provides, ", "))
	}
	_, err := fmt.Fprintln(out, table)
	return err
}
