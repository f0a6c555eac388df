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
	"strconv"

	"github.com/tlsinterop/harness/params"
)

// Tcpdump records the loopback traffic of one handshake pair to a pcap file
// that the capture package can count handshake messages from. It is managed
// like any other provider process but speaks no TLS itself, so it never
// constrains a combination.
type Tcpdump struct {
	// WriteFile is the pcap output path.
	WriteFile string
	// Interface defaults to the loopback device.
	Interface string
}

func (Tcpdump) Name() string { return "tcpdump" }

func (Tcpdump) Binary(Mode) string { return "tcpdump" }

func (Tcpdump) SupportsProtocol(params.Protocol) bool { return true }
func (Tcpdump) SupportsCipher(params.Cipher) bool     { return true }
func (Tcpdump) SupportsPSKHash(params.PSKHash) bool   { return true }

func (t Tcpdump) Args(opts Options) ([]string, error) {
	iface := t.Interface
	if iface == "" {
		iface = "lo"
	}
	args := []string{"-i", iface, "-n", "--immediate-mode", "-w", t.WriteFile}
	if opts.Port != 0 {
		args = append(args, "port", strconv.Itoa(opts.Port))
	}
	return args, nil
}
