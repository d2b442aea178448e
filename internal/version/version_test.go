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

package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	defer func(v, m, c string) { version, metadata, gitCommit = v, m, c }(version, metadata, gitCommit)

	version, metadata, gitCommit = "v1.2.3", "", "abcdef0123"
	assert.Equal(t, "v1.2.3", GetVersion())
	assert.Equal(t, BuildInfo{Version: "v1.2.3", GitCommit: "abcdef0123", GitTreeState: gitTreeState, GoVersion: runtime.Version()}, Get())

	metadata = "unreleased"
	assert.Equal(t, "v1.2.3+unreleased", Get().Version)
}
