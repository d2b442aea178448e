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

package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePkgRel(t *testing.T) {
	is := assert.New(t)

	rel, err := ParsePkgRel("libfoo-dev")
	require.NoError(t, err)
	is.Equal("libfoo-dev", rel.Name)
	is.Equal(OpAny, rel.Op)
	is.True(rel.Version.IsZero())

	rel, err = ParsePkgRel("B>=2.1")
	require.NoError(t, err)
	is.Equal("B", rel.Name)
	is.Equal(OpGe, rel.Op)
	is.Equal("2.1", rel.Version.String())
	is.Equal("B>=2.1", rel.String())

	rel, err = ParsePkgRel("g++<=3")
	require.NoError(t, err)
	is.Equal("g++", rel.Name)
	is.Equal(OpLe, rel.Op)

	_, err = ParsePkgRel("B>=")
	is.Error(err)
	_, err = ParsePkgRel("B=zz")
	is.Error(err)
	_, err = ParsePkgRel("has space")
	is.Error(err)
}

func TestSatisfiedBy(t *testing.T) {
	is := assert.New(t)

	b1 := NewPkgMock("B", "1", Unknown)
	b2 := NewPkgMock("B", "2", Unknown)
	mta := NewPkgMock("postfix", "3.4", Unknown).Provide("mail-transport-agent")
	awk := NewPkgMock("gawk", "5.1", Unknown).Provide("awk=5")

	is.True(MustParsePkgRel("B").SatisfiedBy(b1))
	is.True(MustParsePkgRel("B<2").SatisfiedBy(b1))
	is.False(MustParsePkgRel("B<2").SatisfiedBy(b2))
	is.True(MustParsePkgRel("B>1").SatisfiedBy(b2))
	is.True(MustParsePkgRel("B=2").SatisfiedBy(b2))
	is.False(MustParsePkgRel("C").SatisfiedBy(b1))

	is.True(MustParsePkgRel("mail-transport-agent").SatisfiedBy(mta))
	is.False(MustParsePkgRel("mail-transport-agent>=1").SatisfiedBy(mta))
	is.True(MustParsePkgRel("awk>=4").SatisfiedBy(awk))
	is.False(MustParsePkgRel("awk>5").SatisfiedBy(awk))
	is.True(MustParsePkgRel("gawk=5.1").SatisfiedBy(awk))
}

func TestParseDirective(t *testing.T) {
	is := assert.New(t)

	d, err := ParseDirective("+A|B>=2")
	require.NoError(t, err)
	is.Equal(Install, d.Kind)
	is.Len(d.Rels, 2)
	is.Equal("+A|B>=2", d.String())

	d, err = ParseDirective("-C=1")
	require.NoError(t, err)
	is.Equal(Remove, d.Kind)
	is.True(d.Rels[0].Concrete())

	d, err = ParseDirective("^D")
	require.NoError(t, err)
	is.Equal(Keep, d.Kind)

	for _, bad := range []string{"", "A", "-A|B", "+"} {
		_, err = ParseDirective(bad)
		is.Error(err, "directive %q", bad)
	}
}

func TestParseCriteria(t *testing.T) {
	is := assert.New(t)

	c, err := ParseCriteria("")
	require.NoError(t, err)
	is.Equal(DefaultCriteria, c)

	c, err = ParseCriteria("none")
	require.NoError(t, err)
	is.Empty(c)

	c, err = ParseCriteria("-removed, +new,-size")
	require.NoError(t, err)
	is.Equal([]Criterion{{Kind: Removed}, {Kind: New, Maximize: true}, {Kind: Size}}, c)
	is.Equal("+new", c[1].String())

	_, err = ParseCriteria("-removed,-removed")
	is.Error(err)
	_, err = ParseCriteria("removed")
	is.Error(err)
	_, err = ParseCriteria("-popularity")
	is.Error(err)
}
