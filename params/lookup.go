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
	"strings"
)

// FindCipher resolves a catalog cipher by its provider-facing name.
func FindCipher(name string) (Cipher, bool) {
	for _, c := range AllCiphers {
		if c.Name == name {
			return c, true
		}
	}
	return Cipher{}, false
}

// FindCurve resolves a catalog curve by name.
func FindCurve(name string) (Curve, bool) {
	for _, c := range AllCurves {
		if c.Name == name {
			return c, true
		}
	}
	return Curve{}, false
}

// FindCertificate resolves a catalog certificate by name.
func FindCertificate(name string) (Certificate, bool) {
	for _, c := range AllCerts {
		if c.Name == name {
			return c, true
		}
	}
	return Certificate{}, false
}

// FindProtocol resolves a protocol by its display name.
func FindProtocol(name string) (Protocol, bool) {
	for _, p := range []Protocol{SSLv3, TLS10, TLS11, TLS12, TLS13} {
		if p.String() == name {
			return p, true
		}
	}
	return 0, false
}

// ParsePSK parses the identity,secret,hmac form used in scenario files and
// on the s2n command line.
func ParsePSK(s string) (PSKSet, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return PSKSet{}, fmt.Errorf("params: PSK %q is not identity,secret,hmac", s)
	}
	psk := PSKSet{Identity: parts[0], Secret: parts[1], Hash: PSKHash(parts[2])}
	switch psk.Hash {
	case PSKHashSHA256, PSKHashSHA384, PSKHashSHA512:
	default:
		return PSKSet{}, fmt.Errorf("params: unknown PSK hash %q", parts[2])
	}
	if psk.Identity == "" || psk.Secret == "" {
		return PSKSet{}, fmt.Errorf("params: PSK %q has an empty identity or secret", s)
	}
	return psk, nil
}
