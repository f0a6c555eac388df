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

// Package portalloc hands out loopback ports to test process pairs.
//
// The allocator is monotonic: a port number is never handed out twice, so two
// concurrently-running pairs can never collide on a port even without locking
// around the processes themselves. The trade-off is that the allocator relies
// on the OS releasing ports promptly when a pair is torn down; under very high
// parallelism a long run can walk off the end of the range, which surfaces as
// [ErrExhausted] rather than silent reuse.
package portalloc

import (
	"errors"
	"sync"
)

// Default range. Ports below 1024 are privileged and the well-known
// registered range is avoided entirely.
const (
	DefaultBase = 8000
	DefaultMax  = 30000
)

// ErrExhausted is returned by [Allocator.Next] once every port in the
// configured range has been handed out.
var ErrExhausted = errors.New("portalloc: port range exhausted")

// Allocator produces a lazy, infinite-until-exhausted sequence of usable
// ports. The zero value is not usable; construct with [New].
type Allocator struct {
	mu   sync.Mutex
	next int
	max  int
}

// New returns an allocator over [base, max). New panics if the range is
// empty or dips into the privileged range; both are programming errors.
func New(base, max int) *Allocator {
	if base < 1024 || max <= base {
		panic("portalloc: invalid port range")
	}
	return &Allocator{next: base, max: max}
}

// NewDefault returns an allocator over the default range.
func NewDefault() *Allocator {
	return New(DefaultBase, DefaultMax)
}

// Next returns a port that has not been returned before by this allocator.
// It is safe for concurrent use.
func (a *Allocator) Next() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.next >= a.max {
		return 0, ErrExhausted
	}
	p := a.next
	a.next++
	return p, nil
}

// Remaining reports how many ports the allocator can still hand out.
func (a *Allocator) Remaining() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.max - a.next
}
