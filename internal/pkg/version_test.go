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

func TestVersionCompare(t *testing.T) {
	for _, tcase := range []struct {
		a, b string
		want int
	}{
		{"1", "1", 0},
		{"1", "2", -1},
		{"2.0.13", "2.0.9", 1},
		{"1.0", "1.0.0", -1},
		{"1.0", "1.00", 0},
		{"1.2.3.4", "1.2.3", 1},
		{"1.2.0.1", "1.2.1-rc.1", -1},
		{"1.0.0-rc.1", "1.0.0", -1},
		{"1.0.0-rc.1", "1.0.0-rc.2", -1},
		{"1.0.0+build.5", "1.0.0", 0},
		{"1.0.0+build.5", "1.0.0+build.6", 0},
		{"1.0", "1.0.0+build.5", -1},
		{"v2.1.0", "2.0.99", 1},
		{"1.2-rc.1", "1.2", -1},
		{"1.2-rc.1", "1.1.9", 1},
		{"1.2-rc.1", "1.2.0.0", -1},
	} {
		t.Run(tcase.a+" vs "+tcase.b, func(t *testing.T) {
			a := MustParseVersion(tcase.a)
			b := MustParseVersion(tcase.b)
			assert.Equal(t, tcase.want, a.Compare(b))
			assert.Equal(t, -tcase.want, b.Compare(a))
			assert.Equal(t, tcase.want == 0, a.Equal(b))
		})
	}
}

func TestVersionOrder(t *testing.T) {
	sorted := []string{"1.0.0-rc.1", "1.0", "1.0.0", "1.0.0.0", "1.2-rc.1", "1.2-rc.2", "1.2", "1.2.0.1", "v2.1.0"}
	for i := range sorted {
		for j := range sorted {
			a := MustParseVersion(sorted[i])
			b := MustParseVersion(sorted[j])
			assert.Equal(t, compareInt(i, j), a.Compare(b), "%s vs %s", sorted[i], sorted[j])
		}
	}
}

func TestPrereleaseSatisfiesUpperBound(t *testing.T) {
	rel, err := ParsePkgRel("B<1.2")
	require.NoError(t, err)
	assert.True(t, rel.SatisfiedByVersion(MustParseVersion("1.2-rc.1")))
	assert.False(t, rel.SatisfiedByVersion(MustParseVersion("1.2")))

	rel, err = ParsePkgRel("B>=1.2")
	require.NoError(t, err)
	assert.False(t, rel.SatisfiedByVersion(MustParseVersion("1.2-rc.1")))
}

func TestParseVersionErrors(t *testing.T) {
	for _, s := range []string{"", "abc", "1..2", "1.2.x"} {
		_, err := ParseVersion(s)
		var merr *ModelError
		assert.ErrorAs(t, err, &merr, "version %q", s)
	}
}
