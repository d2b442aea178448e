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

//go:build linux

package sat

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// applyLimits sets the CPU-time and address-space ceilings of a running
// process. The soft CPU limit raises SIGXCPU, the hard one a second later
// SIGKILL.
func applyLimits(pid int, l Limits) error {
	for resource, lim := range rlimits(l) {
		err := unix.Prlimit(pid, resource, lim, nil)
		if errors.Is(err, unix.ESRCH) {
			// already exited, Wait will tell how
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "prlimit %d on pid %d", resource, pid)
		}
	}
	return nil
}

// SetOwnLimits applies the CPU-time and memory ceilings of l to the calling
// process. The worker uses it so that limits hold even when its parent could
// not set them.
func SetOwnLimits(l Limits) error {
	for resource, lim := range rlimits(l) {
		if err := unix.Setrlimit(resource, lim); err != nil {
			return errors.Wrapf(err, "setrlimit %d", resource)
		}
	}
	return nil
}

func rlimits(l Limits) map[int]*unix.Rlimit {
	lims := map[int]*unix.Rlimit{}
	if l.MaxMemory > 0 {
		lims[unix.RLIMIT_AS] = &unix.Rlimit{Cur: uint64(l.MaxMemory), Max: uint64(l.MaxMemory)}
	}
	if l.CPUTime > 0 {
		secs := uint64((l.CPUTime + time.Second - 1) / time.Second)
		lims[unix.RLIMIT_CPU] = &unix.Rlimit{Cur: secs, Max: secs + 1}
	}
	return lims
}
