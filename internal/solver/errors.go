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
	"fmt"
	"strings"
)

// RequestConflict is returned when the directives of a request contradict
// each other, before any solving happens.
type RequestConflict struct {
	Directives []string
	Reason     string
}

func (e *RequestConflict) Error() string {
	return fmt.Sprintf("conflicting request: %s (%s)", e.Reason, strings.Join(e.Directives, ", "))
}

// SequencingError means the solver's configuration could not be reached by
// a valid sequence of commands. It is always a bug.
type SequencingError struct {
	Msg string
}

func (e *SequencingError) Error() string {
	return "internal error, no valid command sequence: " + e.Msg
}

func sequencingErrorf(format string, v ...interface{}) *SequencingError {
	return &SequencingError{Msg: fmt.Sprintf(format, v...)}
}
