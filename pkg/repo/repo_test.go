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

package repo

import (
	"io"
	"testing"

	"github.com/Masterminds/log-go"
	logcli "github.com/Masterminds/log-go/impl/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rancher-sandbox/depsolver/internal/pkg"
)

func testLogger() log.Logger {
	l := logcli.NewStandard()
	l.InfoOut = io.Discard
	l.WarnOut = io.Discard
	l.ErrorOut = io.Discard
	l.DebugOut = io.Discard
	return l
}

func TestLoadDir(t *testing.T) {
	p, err := LoadDir("testdata/conflict")
	require.NoError(t, err)

	assert.Equal(t, "conflict", p.Name)
	require.Len(t, p.Repository, 3)
	assert.Equal(t, "A", p.Repository[0].Name)
	assert.Equal(t, int64(10), p.Repository[0].Size)
	assert.Equal(t, []Conjunct{{"B"}}, p.Repository[0].Depends)
	assert.Equal(t, []string{"C"}, p.Repository[0].Conflicts)
	assert.Equal(t, []string{"C=1"}, p.Initial)
	assert.Equal(t, []string{"+A"}, p.Constraints.Directives)
	assert.Equal(t, "", p.Constraints.Criteria)
	assert.NotZero(t, p.Digest)

	again, err := LoadDir("testdata/conflict")
	require.NoError(t, err)
	assert.Equal(t, p.Digest, again.Digest)
}

func TestLoadDirYAML(t *testing.T) {
	p, err := LoadDir("testdata/yaml")
	require.NoError(t, err)

	assert.Empty(t, p.Initial)
	assert.Equal(t, []Conjunct{{"libssl", "openssl>=3"}, {"zlib"}}, p.Repository[0].Depends)
	assert.Equal(t, []string{"+app", "^zlib"}, p.Constraints.Directives)
	assert.Equal(t, "-removed,+new", p.Constraints.Criteria)

	w, err := Build(p, "", testLogger())
	require.NoError(t, err)
	assert.Len(t, w.Packages, 3)
	assert.Empty(t, w.Initial)
	assert.Equal(t, []pkg.Criterion{{Kind: pkg.Removed}, {Kind: pkg.New, Maximize: true}}, w.Request.Criteria)
	assert.True(t, w.Request.Directives[0].Rels[0].SatisfiedBy(w.Packages[0]))
}

func TestLoadErrors(t *testing.T) {
	_, err := LoadDir("testdata/nonexistent")
	assert.Error(t, err)

	_, err = LoadFiles("testdata/conflict/repository.json", "testdata/conflict/missing.json", "")
	assert.Error(t, err)
}

func TestParseConstraints(t *testing.T) {
	for _, tcase := range []struct {
		name     string
		data     string
		expected *Constraints
		err      bool
	}{
		{"list", `["+A", "-B"]`, &Constraints{Directives: []string{"+A", "-B"}}, false},
		{"object with string criteria", `{"directives": ["+A"], "criteria": "-new"}`,
			&Constraints{Directives: []string{"+A"}, Criteria: "-new"}, false},
		{"object without directives", `{"criteria": "none"}`,
			&Constraints{Directives: []string{}, Criteria: "none"}, false},
		{"null criteria", `{"directives": [], "criteria": null}`,
			&Constraints{Directives: []string{}}, false},
		{"number", `3`, nil, true},
		{"bad criteria", `{"directives": [], "criteria": 3}`, nil, true},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			c, err := ParseConstraints([]byte(tcase.data))
			if tcase.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tcase.expected, c)
		})
	}
}

func TestParseRepository(t *testing.T) {
	records, err := ParseRepository([]byte(`[{"name": "A", "version": "1", "depends": ["B", ["C", "D=2"]]}]`))
	require.NoError(t, err)
	assert.Equal(t, []Conjunct{{"B"}, {"C", "D=2"}}, records[0].Depends)

	_, err = ParseRepository([]byte(`[{"name": "A", "version": "1", "depends": [3]}]`))
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	p, err := LoadDir("testdata/conflict")
	require.NoError(t, err)

	w, err := Build(p, "", testLogger())
	require.NoError(t, err)
	require.Len(t, w.Packages, 3)
	require.Len(t, w.Initial, 1)
	assert.Equal(t, "C=1", w.Initial[0].GetFingerPrint())
	assert.Equal(t, pkg.Absent, w.Packages[0].CurrentState)
	assert.Equal(t, pkg.DefaultCriteria, w.Request.Criteria)
	require.Len(t, w.Request.Directives, 1)
	assert.Equal(t, "+A", w.Request.Directives[0].String())

	a := w.Packages[0]
	assert.Equal(t, int64(10), a.Size)
	require.Len(t, a.DependsRel, 1)
	assert.Equal(t, "B", a.DependsRel[0][0].String())
	require.Len(t, a.ConflictsRel, 1)
	assert.Equal(t, "C", a.ConflictsRel[0].String())

	w, err = Build(p, "none", testLogger())
	require.NoError(t, err)
	assert.False(t, w.Request.Optimize())
}

func TestBuildMissingInitial(t *testing.T) {
	p := &Problem{
		Repository:  []*Record{{Name: "A", Version: "2"}},
		Initial:     []string{"A=1", "A=1"},
		Constraints: &Constraints{Directives: []string{"-A=1"}},
	}
	w, err := Build(p, "", testLogger())
	require.NoError(t, err)
	require.Len(t, w.Packages, 2)
	require.Len(t, w.Initial, 1)
	assert.Equal(t, "A=1", w.Initial[0].GetFingerPrint())
	assert.Empty(t, w.Initial[0].DependsRel)
}

func TestBuildInitialByVersion(t *testing.T) {
	p := &Problem{
		Repository:  []*Record{{Name: "A", Version: "1.0"}, {Name: "B", Version: "1.0.0+build.2"}},
		Initial:     []string{"A=1.00", "B=1.0.0"},
		Constraints: &Constraints{Directives: []string{"-A"}},
	}
	w, err := Build(p, "", testLogger())
	require.NoError(t, err)
	require.Len(t, w.Packages, 2)
	require.Len(t, w.Initial, 2)
	assert.Equal(t, "A=1.0", w.Initial[0].GetFingerPrint())
	assert.Equal(t, "B=1.0.0+build.2", w.Initial[1].GetFingerPrint())
	for _, ip := range w.Packages {
		assert.Equal(t, pkg.Present, ip.CurrentState, ip.GetFingerPrint())
	}
}

func TestBuildErrors(t *testing.T) {
	repo := func(records ...*Record) []*Record { return records }
	for _, tcase := range []struct {
		name    string
		problem *Problem
	}{
		{"duplicate", &Problem{Repository: repo(
			&Record{Name: "A", Version: "1"}, &Record{Name: "A", Version: "1"})}},
		{"duplicate spelled differently", &Problem{Repository: repo(
			&Record{Name: "A", Version: "1.0"}, &Record{Name: "A", Version: "1.00"})}},
		{"duplicate with build metadata", &Problem{Repository: repo(
			&Record{Name: "A", Version: "1.0.0"}, &Record{Name: "A", Version: "1.0.0+build"})}},
		{"two initial spellings of different versions", &Problem{
			Repository: repo(&Record{Name: "A", Version: "1.0"}, &Record{Name: "A", Version: "1.0.0"}),
			Initial:    []string{"A=1.00", "A=1.0.0"}}},
		{"unknown version syntax", &Problem{Repository: repo(&Record{Name: "A", Version: "one"})}},
		{"no name", &Problem{Repository: repo(&Record{Version: "1"})}},
		{"bad name", &Problem{Repository: repo(&Record{Name: "A B", Version: "1"})}},
		{"negative size", &Problem{Repository: repo(&Record{Name: "A", Version: "1", Size: -1})}},
		{"empty dependency", &Problem{Repository: repo(
			&Record{Name: "A", Version: "1", Depends: []Conjunct{{}}})}},
		{"bad atom", &Problem{Repository: repo(
			&Record{Name: "A", Version: "1", Conflicts: []string{"B=="}})}},
		{"bad provide", &Problem{Repository: repo(
			&Record{Name: "A", Version: "1", Provides: []string{"V>1"}})}},
		{"initial without version", &Problem{
			Repository: repo(&Record{Name: "A", Version: "1"}), Initial: []string{"A"}}},
		{"initial with a range", &Problem{
			Repository: repo(&Record{Name: "A", Version: "1"}), Initial: []string{"A>=1"}}},
		{"two initial versions", &Problem{
			Repository: repo(&Record{Name: "A", Version: "1"}, &Record{Name: "A", Version: "2"}),
			Initial:    []string{"A=1", "A=2"}}},
		{"unknown directive name", &Problem{
			Repository:  repo(&Record{Name: "A", Version: "1"}),
			Constraints: &Constraints{Directives: []string{"+B"}}}},
		{"bad directive", &Problem{
			Repository:  repo(&Record{Name: "A", Version: "1"}),
			Constraints: &Constraints{Directives: []string{"A"}}}},
		{"bad criteria", &Problem{
			Repository:  repo(&Record{Name: "A", Version: "1"}),
			Constraints: &Constraints{Criteria: "-colour"}}},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			_, err := Build(tcase.problem, "", testLogger())
			var me *pkg.ModelError
			assert.ErrorAs(t, err, &me)
		})
	}
}
