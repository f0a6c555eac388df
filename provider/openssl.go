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
	"net"
	"strconv"

	"github.com/tlsinterop/harness/params"
)

// OpenSSL is the reference peer, driven through s_client/s_server. The
// server always runs with -msg so that handshake messages (and the HRR
// random prefix) appear in its output for the assertion layer to count.
type OpenSSL struct{}

func (OpenSSL) Name() string { return "openssl" }

func (OpenSSL) Binary(Mode) string { return "openssl" }

func (OpenSSL) SupportsProtocol(p params.Protocol) bool {
	return p >= params.TLS10
}

func (OpenSSL) SupportsCipher(params.Cipher) bool { return true }

// s_client/s_server external PSKs are only usable with SHA-256 bound
// ciphersuites in the configurations this harness drives.
func (OpenSSL) SupportsPSKHash(h params.PSKHash) bool {
	return h == params.PSKHashSHA256
}

func (o OpenSSL) Args(opts Options) ([]string, error) {
	if err := requireHostPort(opts); err != nil {
		return nil, err
	}
	var args []string
	switch opts.Mode {
	case Client:
		args = append(args, "s_client", "-connect", net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)))
	case Server:
		args = append(args, "s_server", "-accept", strconv.Itoa(opts.Port), "-msg")
	default:
		return nil, fmt.Errorf("%w: mode %q", ErrUnsupported, opts.Mode)
	}
	if flag := protocolFlag(opts.Protocol); flag != "" {
		args = append(args, flag)
	}
	if opts.Cipher.Name != "" {
		if opts.Cipher.TLS13Only {
			args = append(args, "-ciphersuites", opts.Cipher.Name)
		} else {
			args = append(args, "-cipher", opts.Cipher.Name)
		}
	}
	if opts.Curve.Name != "" {
		args = append(args, "-curves", opts.Curve.Name)
	}
	if opts.Mode == Server {
		if opts.Cert != "" {
			args = append(args, "-cert", opts.Cert, "-key", opts.Key)
		} else {
			args = append(args, "-nocert")
		}
	}
	args = append(args, opts.ExtraFlags...)
	return args, nil
}

// PSKFlags renders one external PSK in s_client/s_server vocabulary. The
// hash is implied by the negotiated ciphersuite, not spelled on the command
// line.
func (OpenSSL) PSKFlags(psk params.PSKSet) []string {
	return []string{"-psk_identity", psk.Identity, "-psk", psk.Secret}
}

func protocolFlag(p params.Protocol) string {
	switch p {
	case params.TLS13:
		return "-tls1_3"
	case params.TLS12:
		return "-tls1_2"
	case params.TLS11:
		return "-tls1_1"
	case params.TLS10:
		return "-tls1"
	}
	return ""
}
