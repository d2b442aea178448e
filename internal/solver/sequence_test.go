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

package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rancher-sandbox/depsolver/internal/pkg"
)

// number gives packages IDs in the given order.
func number(pkgs ...*pkg.Pkg) []*pkg.Pkg {
	for i, p := range pkgs {
		p.ID = i + 1
	}
	return pkgs
}

func commandStrings(cmds []*Command) []string {
	out := []string{}
	for _, c := range cmds {
		out = append(out, c.String())
	}
	return out
}

func TestSequence(t *testing.T) {
	t.Run("version swap of a dependency", func(t *testing.T) {
		ps := number(
			pkg.NewPkgMock("app", "1", pkg.Present).Depends("lib"),
			pkg.NewPkgMock("lib", "1", pkg.Present),
			pkg.NewPkgMock("lib", "2", pkg.Unknown),
		)
		cmds, err := Sequence([]*pkg.Pkg{ps[0], ps[1]}, []*pkg.Pkg{ps[0], ps[2]})
		require.NoError(t, err)
		assert.Equal(t, []string{"-lib=1", "+lib=2"}, commandStrings(cmds))
	})

	t.Run("dependency cycle removed as a batch", func(t *testing.T) {
		ps := number(
			pkg.NewPkgMock("A", "1", pkg.Present).Depends("B"),
			pkg.NewPkgMock("B", "1", pkg.Present).Depends("A"),
			pkg.NewPkgMock("C", "1", pkg.Present).Depends("B"),
			pkg.NewPkgMock("D", "1", pkg.Present),
		)
		cmds, err := Sequence(ps, []*pkg.Pkg{ps[3]})
		require.NoError(t, err)
		assert.Equal(t, []string{"-C=1", "-A=1", "-B=1"}, commandStrings(cmds))
	})

	t.Run("dependencies met by survivors add no ordering", func(t *testing.T) {
		ps := number(
			pkg.NewPkgMock("A", "1", pkg.Unknown).Depends("Z"),
			pkg.NewPkgMock("B", "1", pkg.Unknown),
			pkg.NewPkgMock("Z", "1", pkg.Present),
			pkg.NewPkgMock("Z", "2", pkg.Unknown).Depends("B"),
		)
		cmds, err := Sequence([]*pkg.Pkg{ps[2]}, []*pkg.Pkg{ps[0], ps[1], ps[2]})
		require.NoError(t, err)
		assert.Equal(t, []string{"+A=1", "+B=1"}, commandStrings(cmds))
	})

	t.Run("nothing to do", func(t *testing.T) {
		ps := number(pkg.NewPkgMock("A", "1", pkg.Present))
		cmds, err := Sequence(ps, ps)
		require.NoError(t, err)
		assert.Empty(t, cmds)
	})
}

func TestValidate(t *testing.T) {
	ps := number(
		pkg.NewPkgMock("A", "1", pkg.Present),
		pkg.NewPkgMock("A", "2", pkg.Unknown),
		pkg.NewPkgMock("B", "1", pkg.Unknown).Conflicts("C"),
		pkg.NewPkgMock("C", "1", pkg.Present),
		pkg.NewPkgMock("D", "1", pkg.Unknown).Depends("E"),
		pkg.NewPkgMock("E", "1", pkg.Unknown),
		pkg.NewPkgMock("F", "1", pkg.Unknown).Depends("G"),
		pkg.NewPkgMock("G", "1", pkg.Unknown).Depends("H"),
		pkg.NewPkgMock("H", "1", pkg.Unknown).Depends("F"),
	)
	a1, a2, b, c, d, e := ps[0], ps[1], ps[2], ps[3], ps[4], ps[5]
	f, g, h := ps[6], ps[7], ps[8]
	install := func(p *pkg.Pkg) *Command { return &Command{Op: InstallOp, Pkg: p} }
	remove := func(p *pkg.Pkg) *Command { return &Command{Op: RemoveOp, Pkg: p} }

	for _, tcase := range []struct {
		name    string
		initial []*pkg.Pkg
		target  []*pkg.Pkg
		cmds    []*Command
		valid   bool
	}{
		{"swap", []*pkg.Pkg{a1}, []*pkg.Pkg{a2}, []*Command{remove(a1), install(a2)}, true},
		{"two versions at once", []*pkg.Pkg{a1}, []*pkg.Pkg{a2}, []*Command{install(a2), remove(a1)}, false},
		{"target not reached", []*pkg.Pkg{a1}, []*pkg.Pkg{a2}, []*Command{remove(a1)}, false},
		{"conflict brought in", []*pkg.Pkg{c}, []*pkg.Pkg{b, c}, []*Command{install(b)}, false},
		{"dependency never met", []*pkg.Pkg{}, []*pkg.Pkg{d}, []*Command{install(d)}, false},
		{"dependencies first", []*pkg.Pkg{}, []*pkg.Pkg{d, e}, []*Command{install(e), install(d)}, true},
		{"dependent first", []*pkg.Pkg{}, []*pkg.Pkg{d, e}, []*Command{install(d), install(e)}, false},
		{"cycle in a row", []*pkg.Pkg{}, []*pkg.Pkg{f, g, h}, []*Command{install(g), install(h), install(f)}, true},
		{"cycle interrupted", []*pkg.Pkg{}, []*pkg.Pkg{e, f, g, h}, []*Command{install(f), install(e), install(g), install(h)}, false},
		{"cycle split by a removal", []*pkg.Pkg{a1}, []*pkg.Pkg{f, g, h}, []*Command{install(f), install(g), remove(a1), install(h)}, false},
		{"removing what is absent", []*pkg.Pkg{}, []*pkg.Pkg{}, []*Command{remove(e)}, false},
		{"installing twice", []*pkg.Pkg{c}, []*pkg.Pkg{c}, []*Command{install(c)}, false},
	} {
		t.Run(tcase.name, func(t *testing.T) {
			err := Validate(tcase.initial, tcase.target, tcase.cmds)
			if tcase.valid {
				assert.NoError(t, err)
			} else {
				var se *SequencingError
				assert.ErrorAs(t, err, &se)
			}
		})
	}
}

func TestPkgDB(t *testing.T) {
	db := NewPkgDB()
	for _, p := range []*pkg.Pkg{
		pkg.NewPkgMock("B", "10", pkg.Unknown),
		pkg.NewPkgMock("A", "1", pkg.Unknown),
		pkg.NewPkgMock("B", "9", pkg.Unknown).Provide("V=3"),
		pkg.NewPkgMock("C", "1", pkg.Unknown).Provide("V"),
	} {
		require.NoError(t, db.Add(p))
	}
	var me *pkg.ModelError
	assert.ErrorAs(t, db.Add(pkg.NewPkgMock("A", "1", pkg.Unknown)), &me)
	assert.ErrorAs(t, db.Add(pkg.NewPkgMock("B", "010", pkg.Unknown)), &me)

	db.AssignIDs()
	assert.Equal(t, 4, db.Size())
	assert.Equal(t, "A=1", db.GetPackageByPbID(1).GetFingerPrint())
	assert.Equal(t, "B=9", db.GetPackageByPbID(2).GetFingerPrint())
	assert.Equal(t, "B=10", db.GetPackageByPbID(3).GetFingerPrint())
	assert.Nil(t, db.GetPackageByPbID(5))
	assert.Equal(t, 3, db.GetPackageByFingerprint("B=10").ID)
	assert.Equal(t, []string{"A", "B", "C"}, db.Names())

	ids := func(ps []*pkg.Pkg) []int {
		out := []int{}
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}
	assert.Equal(t, []int{2, 4}, ids(db.Match(pkg.MustParsePkgRel("V"))))
	assert.Equal(t, []int{2}, ids(db.Match(pkg.MustParsePkgRel("V>=2"))))
	assert.Equal(t, []int{3}, ids(db.Match(pkg.MustParsePkgRel("B>9"))))
	assert.Equal(t, []int{1, 2, 3}, ids(db.MatchAny([]*pkg.PkgRel{pkg.MustParsePkgRel("B"), pkg.MustParsePkgRel("A")})))
	assert.True(t, db.Known("V"))
	assert.False(t, db.Known("W"))
	assert.True(t, db.IsNewest(db.GetPackageByFingerprint("B=10")))
	assert.False(t, db.IsNewest(db.GetPackageByFingerprint("B=9")))
}

func TestLoadPkgDB(t *testing.T) {
	db, err := LoadPkgDB([]*pkg.Pkg{
		pkg.NewPkgMock("B", "1", pkg.Unknown),
		pkg.NewPkgMock("A", "2", pkg.Unknown),
		pkg.NewPkgMock("A", "1", pkg.Unknown),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, db.Size())
	assert.Equal(t, "A=1", db.GetPackageByPbID(1).GetFingerPrint())
	assert.Equal(t, "B=1", db.GetPackageByPbID(3).GetFingerPrint())

	var me *pkg.ModelError
	for _, versions := range [][2]string{{"1", "1"}, {"1.0", "1.00"}, {"1.0.0", "1.0.0+build"}} {
		_, err = LoadPkgDB([]*pkg.Pkg{
			pkg.NewPkgMock("A", versions[0], pkg.Unknown),
			pkg.NewPkgMock("A", versions[1], pkg.Unknown),
		})
		assert.ErrorAs(t, err, &me, "%s and %s", versions[0], versions[1])
	}

	db, err = LoadPkgDB([]*pkg.Pkg{
		pkg.NewPkgMock("A", "1.0", pkg.Unknown),
		pkg.NewPkgMock("A", "1.0.0", pkg.Unknown),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, db.Size())
}
