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

// Package scriptprov is a test-only provider whose "implementation" is a
// shell script. It lets the orchestration and assertion pipeline run
// hermetically, without real TLS binaries installed.
package scriptprov

import (
	"github.com/tlsinterop/harness/params"
	"github.com/tlsinterop/harness/provider"
)

// Script runs the given shell snippet for either role. ClientScript, when
// set, overrides the snippet for the client side so one value can describe a
// whole pair.
type Script struct {
	ProviderName string
	ServerScript string
	ClientScript string
}

func (s Script) Name() string {
	if s.ProviderName != "" {
		return s.ProviderName
	}
	return "script"
}

func (Script) Binary(provider.Mode) string { return "/bin/sh" }

func (s Script) Args(opts provider.Options) ([]string, error) {
	script := s.ServerScript
	if opts.Mode == provider.Client && s.ClientScript != "" {
		script = s.ClientScript
	}
	return []string{"-c", script}, nil
}

func (Script) SupportsProtocol(params.Protocol) bool { return true }
func (Script) SupportsCipher(params.Cipher) bool     { return true }
func (Script) SupportsPSKHash(params.PSKHash) bool   { return true }
