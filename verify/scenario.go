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

package verify

import (
	"fmt"

	"github.com/tlsinterop/harness/params"
	"github.com/tlsinterop/harness/process"
)

// ChosenPSK verifies the marker lines s2n emits when an external PSK was
// negotiated: the wire index (which the implementation logs to stderr),
// type, identity size/data and the zero obfuscated ticket age mandated for
// external PSKs.
func ChosenPSK(psk params.PSKSet) Check {
	return All(
		CleanExit,
		OutputContains("Chosen PSK wire index:"),
		StdoutContains("Chosen PSK type: S2N_PSK_TYPE_EXTERNAL"),
		StdoutContains(fmt.Sprintf("Chosen PSK identity size: %d", len(psk.Identity))),
		StdoutContains(fmt.Sprintf("Chosen PSK identity data: %s", psk.Identity)),
		StdoutContains("Chosen PSK obfuscated ticket age: 0"),
	)
}

// NoChosenPSK verifies the mismatched-identity outcome: the handshake fails
// and no PSK selection is ever logged.
func NoChosenPSK(r process.Result) error {
	return All(
		FailedExit,
		OutputAbsent("Chosen PSK wire index"),
	)(r)
}

// HelloRetry verifies that a handshake completed after exactly one retry
// round: the fixed HRR random prefix appears exactly once in the message
// trace, and ClientHello, ServerHello and Finished each appear exactly
// twice. The count-based condition is the contract; there is no separate
// pass sentinel.
func HelloRetry(r process.Result) error {
	return All(
		CleanExit,
		StdoutCount(HRRMarker, 1),
		StdoutCount("ClientHello", 2),
		StdoutCount("ServerHello", 2),
		// The trailing handshake-tag form ("..., Finished") keeps the count
		// from matching unrelated prose in the trace.
		StdoutCount(", Finished", 2),
	)(r)
}
