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

// Invalid reports whether a combination is semantically meaningless and must
// be pruned before any process is spawned. It is a pure function and total
// over the combination space: every combination is classified one way or the
// other.
//
// A combination is invalid when:
//   - the cipher suite is not defined at the combination's protocol version
//     (a TLS 1.3 suite below 1.3, or a pre-1.3 suite at 1.3);
//   - the curve is not negotiable at the protocol version;
//   - the certificate cannot authenticate the cipher suite;
//   - the peer provider does not speak the protocol or suite;
//   - a PSK parameter set uses a hash the peer provider does not support, or
//     PSKs are combined with a pre-1.3 protocol.
func Invalid(c Combination) bool {
	if c.Cipher.Name != "" && c.Protocol != 0 {
		if c.Protocol < c.Cipher.MinVersion {
			return true
		}
		if !c.Cipher.TLS13Only && c.Protocol >= TLS13 {
			return true
		}
	}
	if c.Curve.Name != "" && c.Protocol != 0 && c.Protocol < c.Curve.MinVersion {
		return true
	}
	if c.Certificate.Name != "" && c.Cipher.Name != "" {
		if c.Cipher.Auth != SigAny && c.Cipher.Auth != c.Certificate.Alg {
			return true
		}
	}
	if c.Provider != nil {
		if c.Protocol != 0 && !c.Provider.SupportsProtocol(c.Protocol) {
			return true
		}
		if c.Cipher.Name != "" && !c.Provider.SupportsCipher(c.Cipher) {
			return true
		}
	}
	for _, psk := range []*PSKSet{c.ClientPSK, c.ServerPSK} {
		if psk == nil {
			continue
		}
		// External PSK negotiation exists only at TLS 1.3.
		if c.Protocol != 0 && c.Protocol < TLS13 {
			return true
		}
		if c.Provider != nil && !c.Provider.SupportsPSKHash(psk.Hash) {
			return true
		}
	}
	return false
}
