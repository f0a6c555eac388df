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

package harness

import (
	"github.com/tlsinterop/harness/params"
	"github.com/tlsinterop/harness/provider"
)

// pskFlagger is implemented by providers that can spell an external PSK on
// their command line.
type pskFlagger interface {
	PSKFlags(params.PSKSet) []string
}

// BuildOptions derives the correlated per-role option records for one
// combination. The client record is completed first; the server record is a
// deep-copied variant of it, so later server-side adjustments can never
// contaminate the client's configuration. PSK flags are rendered in each
// provider's own vocabulary and attached per side.
func BuildOptions(c params.Combination, clientProv, serverProv provider.Provider, base provider.Options) (client, server provider.Options) {
	client = base.Clone()
	client.Mode = provider.Client
	if client.Host == "" {
		client.Host = "localhost"
	}
	client.Cipher = c.Cipher
	client.Curve = c.Curve
	client.Protocol = c.Protocol

	server = client.ServerVariant(c.Certificate)
	// Extra flags are spelled in the client provider's vocabulary; they do
	// not transfer to a server that may be a different implementation.
	server.ExtraFlags = nil

	if c.ClientPSK != nil {
		if f, ok := clientProv.(pskFlagger); ok {
			client.ExtraFlags = append(client.ExtraFlags, f.PSKFlags(*c.ClientPSK)...)
		}
	}
	if c.ServerPSK != nil {
		if f, ok := serverProv.(pskFlagger); ok {
			server.ExtraFlags = append(server.ExtraFlags, f.PSKFlags(*c.ServerPSK)...)
		}
	}
	return client, server
}
