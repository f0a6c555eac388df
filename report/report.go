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

// Package report collects per-combination records of a harness run. A
// collector decides where records go; the run loop only hands them over.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"
)

// Report is any record a collector accepts.
type Report any

// HasSuccess is implemented by reports that know their own outcome, which
// lets sampling collectors treat passes and failures differently.
type HasSuccess interface {
	IsSuccess() bool
}

// Collector receives one report per executed combination.
type Collector interface {
	Collect(context.Context, Report) error
}

// HandshakeReport is the record for one executed client/server pair.
type HandshakeReport struct {
	// Inputs
	Combination string `json:"combination"`
	Client      string `json:"client"`
	Server      string `json:"server"`
	Port        int    `json:"port"`

	// Observations
	Time           time.Time `json:"time"`
	DurationMs     int64     `json:"duration_ms"`
	ClientExitCode int       `json:"client_exit_code"`
	ServerExitCode int       `json:"server_exit_code"`
	// Failure is the first assertion or infrastructure error, empty on pass.
	Failure string `json:"failure,omitempty"`
}

func (r HandshakeReport) IsSuccess() bool { return r.Failure == "" }

// WriteCollector renders each report as one JSON line on the writer.
type WriteCollector struct {
	Writer io.Writer
}

func (c *WriteCollector) Collect(_ context.Context, report Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if _, err := c.Writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// SamplingCollector forwards a fraction of reports to the underlying
// collector, with separate fractions for passing and failing records.
// A fraction of 1 always forwards; 0 never does.
type SamplingCollector struct {
	Collector       Collector
	SuccessFraction float64
	FailureFraction float64
}

func (c *SamplingCollector) Collect(ctx context.Context, report Report) error {
	hs, ok := report.(HasSuccess)
	if !ok {
		return nil
	}
	fraction := c.FailureFraction
	if hs.IsSuccess() {
		fraction = c.SuccessFraction
	}
	if rand.Float64() >= fraction {
		return nil
	}
	return c.Collector.Collect(ctx, report)
}

// RetryCollector retries the underlying collector with exponential backoff,
// for sinks that can fail transiently (a report file on contended storage, a
// remote receiver). The context bounds the whole attempt sequence.
type RetryCollector struct {
	Collector    Collector
	MaxRetry     int
	InitialDelay time.Duration
}

func (c *RetryCollector) Collect(ctx context.Context, report Report) error {
	var lastErr error
	for i := 0; i < c.MaxRetry+1; i++ {
		if err := ctx.Err(); err != nil {
			return errors.Join(err, lastErr)
		}
		lastErr = c.Collector.Collect(ctx, report)
		if lastErr == nil {
			return nil
		}
		time.Sleep(time.Duration(math.Pow(2, float64(i))) * c.InitialDelay)
	}
	return fmt.Errorf("collecting after %d retries: %w", c.MaxRetry, lastErr)
}
