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
	"fmt"
	"strconv"

	"github.com/tlsinterop/harness/params"
)

// S2N drives the implementation under test through the s2nc/s2nd command
// line clients.
type S2N struct{}

func (S2N) Name() string { return "s2n" }

func (S2N) Binary(mode Mode) string {
	if mode == Server {
		return "s2nd"
	}
	return "s2nc"
}

func (S2N) SupportsProtocol(p params.Protocol) bool {
	return p >= params.TLS10
}

func (S2N) SupportsCipher(params.Cipher) bool { return true }

// s2nc/s2nd reject S2N_PSK_HMAC_SHA512 at argument parsing time, so a
// SHA-512 PSK never produces a meaningful handshake.
func (S2N) SupportsPSKHash(h params.PSKHash) bool {
	return h == params.PSKHashSHA256 || h == params.PSKHashSHA384
}

func (s S2N) Args(opts Options) ([]string, error) {
	if err := requireHostPort(opts); err != nil {
		return nil, err
	}
	var args []string
	if opts.Protocol == params.TLS13 {
		args = append(args, "--tls13")
	}
	if opts.Cipher.Name != "" {
		args = append(args, "-c", cipherPreference(opts))
	}
	switch opts.Mode {
	case Server:
		if opts.Cert != "" {
			args = append(args, "--cert", opts.Cert, "--key", opts.Key)
		}
	case Client:
		if opts.Insecure {
			args = append(args, "--insecure")
		}
	default:
		return nil, fmt.Errorf("%w: mode %q", ErrUnsupported, opts.Mode)
	}
	args = append(args, opts.ExtraFlags...)
	args = append(args, opts.Host, strconv.Itoa(opts.Port))
	return args, nil
}

// PSKFlags renders one external PSK in s2n's identity,secret,hmac form.
func (S2N) PSKFlags(psk params.PSKSet) []string {
	return []string{"--psk", psk.String()}
}

// s2n selects cipher suites through named preference policies rather than
// per-suite flags.
func cipherPreference(opts Options) string {
	if opts.Cipher.TLS13Only || opts.Protocol == params.TLS13 {
		return "default_tls13"
	}
	return "default"
}
