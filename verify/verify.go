// Copyright 2024 The TLS Interop Harness Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package verify applies protocol-aware predicates to captured Result
// snapshots: exit-code checks, byte-marker search and occurrence counting.
// All checks operate on immutable snapshots, never on a live process, so
// there is no race between assertion and process termination.
package verify

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tlsinterop/harness/process"
)

// HRRMarker is the fixed prefix of the Hello Retry Request server random
// (RFC 8446 §4.1.3), as it appears in a provider's hex-dumped message trace.
const HRRMarker = "cf 21 ad 74 e5 9a 61 11 be 1d"

// Check is one predicate over a terminal Result. A nil return is a pass.
type Check func(process.Result) error

// All combines checks; the first failure wins.
func All(checks ...Check) Check {
	return func(r process.Result) error {
		for _, c := range checks {
			if err := c(r); err != nil {
				return err
			}
		}
		return nil
	}
}

// Ran fails on infrastructure errors: a process that never validly ran
// cannot satisfy any scenario, positive or negative.
func Ran(r process.Result) error {
	if r.Err != nil {
		return fmt.Errorf("process never validly ran: %w", r.Err)
	}
	return nil
}

// CleanExit expects a successful negotiated session.
func CleanExit(r process.Result) error {
	if err := Ran(r); err != nil {
		return err
	}
	if r.TimedOut {
		return errors.New("expected clean exit, process timed out")
	}
	if r.ExitCode != 0 {
		return fmt.Errorf("expected exit code 0, got %d (stderr: %.200s)", r.ExitCode, r.Stderr)
	}
	return nil
}

// FailedExit expects a negotiation or configuration failure: the process ran
// and exited non-zero.
func FailedExit(r process.Result) error {
	if err := Ran(r); err != nil {
		return err
	}
	if r.ExitCode == 0 {
		return errors.New("expected a failing exit code, got 0")
	}
	return nil
}

// TimedOut expects the forced-termination outcome.
func TimedOut(r process.Result) error {
	if err := Ran(r); err != nil {
		return err
	}
	if !r.TimedOut {
		return fmt.Errorf("expected a timeout, process exited with code %d", r.ExitCode)
	}
	return nil
}

// StdoutContains expects a fixed byte marker on stdout.
func StdoutContains(marker string) Check {
	return func(r process.Result) error {
		if !bytes.Contains(r.Stdout, []byte(marker)) {
			return fmt.Errorf("marker %q absent from stdout", marker)
		}
		return nil
	}
}

// StdoutAbsent expects a marker not to appear on stdout.
func StdoutAbsent(marker string) Check {
	return func(r process.Result) error {
		if bytes.Contains(r.Stdout, []byte(marker)) {
			return fmt.Errorf("marker %q unexpectedly present on stdout", marker)
		}
		return nil
	}
}

// StderrContains expects a fixed byte marker on stderr.
func StderrContains(marker string) Check {
	return func(r process.Result) error {
		if !bytes.Contains(r.Stderr, []byte(marker)) {
			return fmt.Errorf("marker %q absent from stderr", marker)
		}
		return nil
	}
}

// OutputContains expects a marker on either stream. Providers are not
// consistent about which stream diagnostic lines land on.
func OutputContains(marker string) Check {
	return func(r process.Result) error {
		if !bytes.Contains(r.Stdout, []byte(marker)) && !bytes.Contains(r.Stderr, []byte(marker)) {
			return fmt.Errorf("marker %q absent from both streams", marker)
		}
		return nil
	}
}

// OutputAbsent expects a marker on neither stream.
func OutputAbsent(marker string) Check {
	return func(r process.Result) error {
		if bytes.Contains(r.Stdout, []byte(marker)) || bytes.Contains(r.Stderr, []byte(marker)) {
			return fmt.Errorf("marker %q unexpectedly present", marker)
		}
		return nil
	}
}

// StdoutCount expects a marker to occur exactly n times on stdout.
func StdoutCount(marker string, n int) Check {
	return func(r process.Result) error {
		if got := bytes.Count(r.Stdout, []byte(marker)); got != n {
			return fmt.Errorf("marker %q occurred %d times on stdout, want %d", marker, got, n)
		}
		return nil
	}
}
