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

package sat

import (
	"fmt"
)

// Reason tells apart the ways a solver run can fail.
type Reason string

const (
	// ResourceLimit means the wall-clock, CPU-time or memory ceiling was hit.
	ResourceLimit Reason = "resource limit"
	// Crash means the solver could not be started or exited abnormally.
	Crash Reason = "crash"
	// Malformed means the solver's answer could not be parsed or is wrong.
	Malformed Reason = "malformed output"
	// Indeterminate means the solver gave up, or could not prove optimality.
	Indeterminate Reason = "indeterminate"
	// Cancelled means the caller's context was done.
	Cancelled Reason = "cancelled"
)

// SolverFailure is returned when the decision procedure did not produce a
// usable verdict. It is never an unsatisfiability result.
type SolverFailure struct {
	Reason Reason
	Detail string
	Stderr string // tail of the solver's stderr, if any
	Err    error
}

func (e *SolverFailure) Error() string {
	msg := fmt.Sprintf("solver failure (%s)", e.Reason)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap gives access to the underlying error, if any.
func (e *SolverFailure) Unwrap() error {
	return e.Err
}

func failure(reason Reason, err error, format string, v ...interface{}) *SolverFailure {
	return &SolverFailure{Reason: reason, Detail: fmt.Sprintf(format, v...), Err: err}
}
