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
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var dottedVersionRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)

// Version is the version of a package. Two syntaxes are understood:
// dotted integers of any length ("1", "2.0.13", "1.2.3.4"), compared
// component by component, and semantic versions carrying pre-release or
// build metadata ("1.0.0-rc.1"), compared with semver precedence.
type Version struct {
	raw   string
	parts []int
	sv    *semver.Version
}

// ParseVersion parses s, returning a ModelError for unknown version syntax.
func ParseVersion(s string) (Version, error) {
	if dottedVersionRegex.MatchString(s) {
		fields := strings.Split(s, ".")
		parts := make([]int, len(fields))
		for i, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return Version{}, NewModelError("version %q: %s", s, err)
			}
			parts[i] = n
		}
		return Version{raw: s, parts: parts}, nil
	}

	sv, err := semver.NewVersion(s)
	if err != nil {
		return Version{}, NewModelError("unknown version syntax %q", s)
	}
	return Version{
		raw:   s,
		parts: []int{int(sv.Major()), int(sv.Minor()), int(sv.Patch())},
		sv:    sv,
	}, nil
}

// MustParseVersion is like ParseVersion but panics on error.
// Useful for testing.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero is true for the version of an atom without a version relation.
func (v Version) IsZero() bool {
	return v.raw == ""
}

func (v Version) String() string {
	return v.raw
}

// Compare returns -1, 0 or 1 when v is lower, equal or greater than o.
// Numeric components are compared first, missing ones counting as zero.
// On a tie a pre-release is lower than a release, pre-releases follow
// semver precedence, and otherwise the shorter version is lower, so
// 1.2-rc.1 < 1.2 < 1.2.0 while build metadata is ignored.
func (v Version) Compare(o Version) int {
	n := len(v.parts)
	if len(o.parts) > n {
		n = len(o.parts)
	}
	for i := 0; i < n; i++ {
		if c := compareInt(v.part(i), o.part(i)); c != 0 {
			return c
		}
	}

	vpre, opre := v.prerelease(), o.prerelease()
	switch {
	case vpre && !opre:
		return -1
	case !vpre && opre:
		return 1
	case vpre && opre:
		return v.sv.Compare(o.sv)
	}
	return compareInt(len(v.parts), len(o.parts))
}

func (v Version) part(i int) int {
	if i < len(v.parts) {
		return v.parts[i]
	}
	return 0
}

func (v Version) prerelease() bool {
	return v.sv != nil && v.sv.Prerelease() != ""
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Equal reports whether v and o denote the same version.
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

// MarshalText renders the version as originally written.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.raw), nil
}

// UnmarshalText parses a version, see ParseVersion.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML renders the version as a plain scalar.
func (v Version) MarshalYAML() (interface{}, error) {
	return v.raw, nil
}
