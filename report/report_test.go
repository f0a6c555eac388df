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

package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport(failure string) HandshakeReport {
	return HandshakeReport{
		Combination:    "TLS_AES_128_GCM_SHA256-X25519-TLS1.3-RSA_2048_SHA256-openssl",
		Client:         "s2n",
		Server:         "openssl",
		Port:           8042,
		Time:           time.Now().UTC().Truncate(time.Second),
		DurationMs:     120,
		ClientExitCode: 0,
		ServerExitCode: 0,
		Failure:        failure,
	}
}

func TestIsSuccess(t *testing.T) {
	assert.True(t, sampleReport("").IsSuccess())
	assert.False(t, sampleReport("marker absent").IsSuccess())
}

func TestWriteCollectorEmitsJSONLines(t *testing.T) {
	var buf bytes.Buffer
	c := &WriteCollector{Writer: &buf}
	require.NoError(t, c.Collect(context.Background(), sampleReport("")))
	require.NoError(t, c.Collect(context.Background(), sampleReport("timeout")))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var decoded HandshakeReport
	require.NoError(t, json.Unmarshal(lines[1], &decoded))
	assert.Equal(t, "timeout", decoded.Failure)
	assert.Equal(t, "s2n", decoded.Client)
}

// countingCollector records how many reports reached it.
type countingCollector struct{ n int }

func (c *countingCollector) Collect(context.Context, Report) error {
	c.n++
	return nil
}

func TestSamplingCollectorFractions(t *testing.T) {
	sink := &countingCollector{}
	c := &SamplingCollector{Collector: sink, SuccessFraction: 0, FailureFraction: 1}

	for i := 0; i < 20; i++ {
		require.NoError(t, c.Collect(context.Background(), sampleReport("")))
	}
	assert.Zero(t, sink.n, "successes sampled at 0 must never forward")

	for i := 0; i < 20; i++ {
		require.NoError(t, c.Collect(context.Background(), sampleReport("fail")))
	}
	assert.Equal(t, 20, sink.n, "failures sampled at 1 must always forward")
}

// flakyCollector fails a fixed number of times before succeeding.
type flakyCollector struct {
	failures int
	calls    int
}

func (c *flakyCollector) Collect(context.Context, Report) error {
	c.calls++
	if c.calls <= c.failures {
		return errors.New("transient sink failure")
	}
	return nil
}

func TestRetryCollectorRecoversFromTransientFailure(t *testing.T) {
	sink := &flakyCollector{failures: 2}
	c := &RetryCollector{Collector: sink, MaxRetry: 3, InitialDelay: time.Millisecond}
	require.NoError(t, c.Collect(context.Background(), sampleReport("")))
	assert.Equal(t, 3, sink.calls)
}

func TestRetryCollectorGivesUp(t *testing.T) {
	sink := &flakyCollector{failures: 100}
	c := &RetryCollector{Collector: sink, MaxRetry: 2, InitialDelay: time.Millisecond}
	require.Error(t, c.Collect(context.Background(), sampleReport("")))
	assert.Equal(t, 3, sink.calls)
}

func TestSamplingCollectorIgnoresUntypedReports(t *testing.T) {
	sink := &countingCollector{}
	c := &SamplingCollector{Collector: sink, SuccessFraction: 1, FailureFraction: 1}
	require.NoError(t, c.Collect(context.Background(), struct{}{}))
	assert.Zero(t, sink.n)
}
