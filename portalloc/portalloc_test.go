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

package portalloc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextNeverRepeats(t *testing.T) {
	a := New(9000, 9100)
	seen := make(map[int]bool)
	for i := 0; i < 100; i++ {
		p, err := a.Next()
		require.NoError(t, err)
		require.False(t, seen[p], "port %d handed out twice", p)
		seen[p] = true
	}
}

func TestExhaustion(t *testing.T) {
	a := New(9000, 9002)
	_, err := a.Next()
	require.NoError(t, err)
	_, err = a.Next()
	require.NoError(t, err)
	_, err = a.Next()
	require.ErrorIs(t, err, ErrExhausted)
	// Exhaustion is sticky.
	_, err = a.Next()
	require.ErrorIs(t, err, ErrExhausted)
}

func TestConcurrentAllocationsAreUnique(t *testing.T) {
	a := New(10000, 11000)
	var mu sync.Mutex
	seen := make(map[int]bool)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				p, err := a.Next()
				assert.NoError(t, err)
				mu.Lock()
				assert.False(t, seen[p])
				seen[p] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Len(t, seen, 16*50)
}

func TestRejectsPrivilegedRange(t *testing.T) {
	require.Panics(t, func() { New(80, 1000) })
	require.Panics(t, func() { New(9000, 9000) })
}

func TestRemaining(t *testing.T) {
	a := New(9000, 9010)
	require.Equal(t, 10, a.Remaining())
	_, err := a.Next()
	require.NoError(t, err)
	require.Equal(t, 9, a.Remaining())
}
