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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tlsinterop/harness/params"
	"github.com/tlsinterop/harness/process"
)

func TestCleanExit(t *testing.T) {
	assert.NoError(t, CleanExit(process.Result{ExitCode: 0}))
	assert.Error(t, CleanExit(process.Result{ExitCode: 1}))
	assert.Error(t, CleanExit(process.Result{ExitCode: 0, TimedOut: true}))
	assert.Error(t, CleanExit(process.Result{Err: errors.New("spawn failed")}))
}

func TestFailedExitDistinguishesInfraFailure(t *testing.T) {
	assert.NoError(t, FailedExit(process.Result{ExitCode: 1}))
	assert.Error(t, FailedExit(process.Result{ExitCode: 0}))
	// An infrastructure failure is never an acceptable "failure" outcome.
	assert.Error(t, FailedExit(process.Result{ExitCode: 1, Err: errors.New("spawn failed")}))
}

func TestTimedOut(t *testing.T) {
	assert.NoError(t, TimedOut(process.Result{ExitCode: -1, TimedOut: true}))
	assert.Error(t, TimedOut(process.Result{ExitCode: 0}))
}

func TestMarkerChecks(t *testing.T) {
	r := process.Result{
		Stdout: []byte("negotiated TLS1.3\nConnected to peer\n"),
		Stderr: []byte("Chosen PSK wire index: 1\n"),
	}
	assert.NoError(t, StdoutContains("negotiated TLS1.3")(r))
	assert.Error(t, StdoutContains("Chosen PSK wire index:")(r))
	assert.NoError(t, StderrContains("Chosen PSK wire index:")(r))
	assert.NoError(t, OutputContains("Chosen PSK wire index:")(r))
	assert.NoError(t, StdoutAbsent("alert")(r))
	assert.Error(t, OutputAbsent("Chosen PSK wire index")(r))
}

func TestStdoutCount(t *testing.T) {
	r := process.Result{Stdout: []byte("ClientHello\nServerHello\nClientHello\n")}
	assert.NoError(t, StdoutCount("ClientHello", 2)(r))
	assert.Error(t, StdoutCount("ClientHello", 1)(r))
	assert.Error(t, StdoutCount("ServerHello", 2)(r))
}

// Scenario A shape: matching external PSK on both sides.
func TestChosenPSKMatchingIdentity(t *testing.T) {
	psk := params.PSKSet{Identity: "shared_identity", Secret: "123456", Hash: params.PSKHashSHA256}
	r := process.Result{
		ExitCode: 0,
		Stdout: []byte(strings.Join([]string{
			"Chosen PSK type: S2N_PSK_TYPE_EXTERNAL",
			"Chosen PSK identity size: 15",
			"Chosen PSK identity data: shared_identity",
			"Chosen PSK obfuscated ticket age: 0",
			"",
		}, "\n")),
		Stderr: []byte("Chosen PSK wire index: 1\n"),
	}
	assert.NoError(t, ChosenPSK(psk)(r))

	// Wrong identity in the output fails the check.
	other := params.PSKSet{Identity: "other_identity", Secret: "123456", Hash: params.PSKHashSHA256}
	assert.Error(t, ChosenPSK(other)(r))
}

// Scenario B shape: identity unknown to the server.
func TestNoChosenPSKOnMismatch(t *testing.T) {
	r := process.Result{
		ExitCode: 255,
		Stderr:   []byte("handshake failed: no matching PSK identity\n"),
	}
	assert.NoError(t, NoChosenPSK(r))

	// A clean exit means a PSK was negotiated after all.
	assert.Error(t, NoChosenPSK(process.Result{ExitCode: 0}))
	// So does a logged selection, even with a failing exit.
	assert.Error(t, NoChosenPSK(process.Result{
		ExitCode: 1,
		Stdout:   []byte("Chosen PSK wire index: 0\n"),
	}))
}

// Scenario C shape: one retry round, counted from the message trace.
func hrrTrace(helloRounds int) []byte {
	var b strings.Builder
	for i := 0; i < helloRounds; i++ {
		b.WriteString("<<< TLS 1.3, Handshake [length 00c5], ClientHello\n")
		if i == 0 {
			// The retry ServerHello carries the fixed HRR random prefix.
			b.WriteString(">>> TLS 1.3, Handshake [length 0058], ServerHello\n")
			b.WriteString("    " + HRRMarker + " 8c 02 1e 65 b8 91\n")
		} else {
			b.WriteString(">>> TLS 1.3, Handshake [length 007b], ServerHello\n")
		}
	}
	b.WriteString(">>> TLS 1.3, Handshake [length 0024], Finished\n")
	b.WriteString("<<< TLS 1.3, Handshake [length 0024], Finished\n")
	return []byte(b.String())
}

func TestHelloRetrySingleRound(t *testing.T) {
	r := process.Result{ExitCode: 0, Stdout: hrrTrace(2)}
	require.NoError(t, HelloRetry(r))
}

func TestHelloRetryRejectsNoRetry(t *testing.T) {
	r := process.Result{ExitCode: 0, Stdout: hrrTrace(1)}
	assert.Error(t, HelloRetry(r), "a single hello round is not a retry")
}

func TestHelloRetryRejectsFailedHandshake(t *testing.T) {
	r := process.Result{ExitCode: 1, Stdout: hrrTrace(2)}
	assert.Error(t, HelloRetry(r))
}

func TestAllStopsAtFirstFailure(t *testing.T) {
	calls := 0
	pass := Check(func(process.Result) error { calls++; return nil })
	fail := Check(func(process.Result) error { calls++; return errors.New("no") })
	err := All(pass, fail, pass)(process.Result{})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}
