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
	"fmt"
)

// ModelError reports malformed or self-inconsistent input data: unknown
// version syntax, unparseable atoms, duplicate repository entries, request
// atoms that name no known package. It aborts a run before any encoding.
type ModelError struct {
	msg string
}

// NewModelError formats a new ModelError.
func NewModelError(format string, v ...interface{}) *ModelError {
	return &ModelError{msg: fmt.Sprintf(format, v...)}
}

func (e *ModelError) Error() string {
	return "invalid model: " + e.msg
}

// Msg returns the message without the "invalid model" prefix.
func (e *ModelError) Msg() string {
	return e.msg
}
