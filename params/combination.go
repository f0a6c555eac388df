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

package params

import (
	"fmt"
	"iter"
)

// Capabilities is what the validity filter needs to know about the provider
// on the far side of a combination. Kept as a narrow interface so the filter
// stays a pure function over data and does not import the provider package.
type Capabilities interface {
	Name() string
	SupportsProtocol(Protocol) bool
	SupportsCipher(Cipher) bool
	SupportsPSKHash(PSKHash) bool
}

// Combination is one ephemeral point in the test-parameter space. It is
// produced by [Expand], classified by [Invalid], and never persisted.
type Combination struct {
	Cipher      Cipher
	Curve       Curve
	Protocol    Protocol
	Certificate Certificate
	Provider    Capabilities
	// ClientPSK/ServerPSK are nil when the scenario does not use external
	// PSKs. They may reference different identities to exercise mismatch.
	ClientPSK *PSKSet
	ServerPSK *PSKSet
}

// Name renders a stable, human-readable identifier for logs and reports,
// in the cipher-curve-protocol-cert order the parametrization declares.
func (c Combination) Name() string {
	provider := "?"
	if c.Provider != nil {
		provider = c.Provider.Name()
	}
	return fmt.Sprintf("%s-%s-%s-%s-%s", c.Cipher, c.Curve, c.Protocol, c.Certificate, provider)
}

// Matrix declares the axes of one combinatorial expansion. Empty axes are
// expanded as a single zero value so callers only list what they vary.
type Matrix struct {
	Ciphers      []Cipher
	Curves       []Curve
	Protocols    []Protocol
	Certificates []Certificate
	Providers    []Capabilities
	ClientPSKs   []*PSKSet
	ServerPSKs   []*PSKSet
}

// Expand yields every combination of the matrix axes, lazily, without
// filtering. Callers are expected to consult [Invalid] before acting on a
// combination; [ExpandValid] does both.
func (m Matrix) Expand() iter.Seq[Combination] {
	ciphers := m.Ciphers
	if len(ciphers) == 0 {
		ciphers = []Cipher{{}}
	}
	curves := m.Curves
	if len(curves) == 0 {
		curves = []Curve{{}}
	}
	protocols := m.Protocols
	if len(protocols) == 0 {
		protocols = []Protocol{0}
	}
	certs := m.Certificates
	if len(certs) == 0 {
		certs = []Certificate{{}}
	}
	providers := m.Providers
	if len(providers) == 0 {
		providers = []Capabilities{nil}
	}
	clientPSKs := m.ClientPSKs
	if len(clientPSKs) == 0 {
		clientPSKs = []*PSKSet{nil}
	}
	serverPSKs := m.ServerPSKs
	if len(serverPSKs) == 0 {
		serverPSKs = []*PSKSet{nil}
	}
	return func(yield func(Combination) bool) {
		for _, cipher := range ciphers {
			for _, curve := range curves {
				for _, protocol := range protocols {
					for _, cert := range certs {
						for _, prov := range providers {
							for _, cpsk := range clientPSKs {
								for _, spsk := range serverPSKs {
									c := Combination{
										Cipher:      cipher,
										Curve:       curve,
										Protocol:    protocol,
										Certificate: cert,
										Provider:    prov,
										ClientPSK:   cpsk,
										ServerPSK:   spsk,
									}
									if !yield(c) {
										return
									}
								}
							}
						}
					}
				}
			}
		}
	}
}

// ExpandValid yields only the combinations [Invalid] classifies as valid.
func (m Matrix) ExpandValid() iter.Seq[Combination] {
	return func(yield func(Combination) bool) {
		for c := range m.Expand() {
			if Invalid(c) {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}
