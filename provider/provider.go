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

package provider

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/tlsinterop/harness/params"
)

// Provider is one TLS implementation invoked as an external executable. The
// flag vocabulary of each provider is an opaque contract between the harness
// and that implementation; Args is the only place it is spelled out.
type Provider interface {
	params.Capabilities

	// Binary returns the executable for the given role.
	Binary(mode Mode) string

	// Args translates an Options record into the provider's command line,
	// excluding the binary itself.
	Args(opts Options) ([]string, error)
}

// ErrUnsupported is returned by Args when the options ask for something the
// provider has no flag vocabulary for. Combinations that reach this point
// were not filtered; treat it as a harness bug, not a protocol failure.
var ErrUnsupported = errors.New("provider: unsupported option")

// Available reports whether the provider's binaries can be found on PATH.
// Scenario tests use it to skip rather than fail when an implementation is
// not installed.
func Available(p Provider) bool {
	for _, mode := range []Mode{Client, Server} {
		if _, err := exec.LookPath(p.Binary(mode)); err != nil {
			return false
		}
	}
	return true
}

func requireHostPort(opts Options) error {
	if opts.Host == "" || opts.Port == 0 {
		return fmt.Errorf("%w: host and port are required", ErrUnsupported)
	}
	return nil
}
