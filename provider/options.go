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

// Package provider describes how to invoke one side of a handshake: the
// per-role Options record and the providers (TLS implementations driven as
// external executables) that translate Options into command lines.
package provider

import (
	"slices"

	"github.com/tlsinterop/harness/params"
)

// Mode selects which role a provider process plays.
type Mode string

const (
	Client Mode = "client"
	Server Mode = "server"
)

// Options configures one side of a handshake. Options values travel by
// [Options.Clone], never by sharing: the client's record is handed to its
// process before the server's is derived, so a shallow copy would let a
// later server-side mutation leak into a running client.
type Options struct {
	Mode     Mode
	Host     string
	Port     int
	Cipher   params.Cipher
	Curve    params.Curve
	Protocol params.Protocol

	// Cert and Key are paths to PEM material, normally set on the server
	// side only.
	Cert string
	Key  string

	// Insecure disables peer certificate verification.
	Insecure bool

	// ExtraFlags is appended verbatim after the generated arguments. Order
	// is preserved.
	ExtraFlags []string

	// DataToSend is written to the process's stdin once the handshake is
	// expected to be up. Nil means send nothing.
	DataToSend []byte
}

// Clone returns a copy deep enough that mutating either record (including
// its slices) never affects the other.
func (o Options) Clone() Options {
	c := o
	c.ExtraFlags = slices.Clone(o.ExtraFlags)
	c.DataToSend = slices.Clone(o.DataToSend)
	return c
}

// ServerVariant derives a server-side record from a client-side base: role
// flipped, payload cleared, certificate material attached. The receiver is
// not modified.
func (o Options) ServerVariant(cert params.Certificate) Options {
	s := o.Clone()
	s.Mode = Server
	s.DataToSend = nil
	s.Cert = cert.Cert
	s.Key = cert.Key
	return s
}
