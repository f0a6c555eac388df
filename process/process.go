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

// Package process owns the lifecycle of one spawned provider process: start,
// output capture, timeout enforcement and exit-status collection, exposed as
// a one-shot sequence of immutable Result snapshots.
package process

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/tlsinterop/harness/provider"
)

// DefaultTimeout bounds a provider process that is never reaped by the
// protocol itself. Timeouts are a normal, assertable outcome.
const DefaultTimeout = 5 * time.Second

// Result is an immutable snapshot taken once the process has terminated.
//
// Err is non-nil only for infrastructure failures (the binary could not be
// started or communicated with); a process that ran to completion with a
// non-zero status is a protocol failure, reported through ExitCode with a
// nil Err. The two must never be conflated: the former aborts a test, the
// latter is data for the assertion layer.
type Result struct {
	// ExitCode is the process's exit status, or -1 when it was terminated
	// by a signal (forced termination on timeout lands here).
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	// TimedOut is set when the configured timeout forced termination.
	TimedOut bool
	// Duration covers spawn to reap.
	Duration time.Duration
	// Err records an infrastructure failure. When set, ExitCode is not
	// meaningful.
	Err error
}

// Managed wraps one spawned provider process. Construct with [Spawn]; the
// zero value is not usable.
type Managed struct {
	name   string
	cmd    *exec.Cmd
	cancel context.CancelFunc

	stdout bytes.Buffer
	stderr bytes.Buffer

	done     chan struct{} // closed once result is final
	result   Result
	consumed bool
	mu       sync.Mutex
}

// Spawn launches one provider process with arguments derived from opts and
// arms the timeout. It always returns a Managed: when the binary cannot be
// started the failure is carried in the Result as an infrastructure error
// rather than lost, so callers have a single place to look.
//
// The payload in opts.DataToSend, if any, is fed to the process over stdin.
func Spawn(ctx context.Context, p provider.Provider, opts provider.Options, timeout time.Duration) *Managed {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	m := &Managed{
		name: p.Name() + "-" + string(opts.Mode),
		done: make(chan struct{}),
	}

	args, err := p.Args(opts)
	if err != nil {
		m.failedToSpawn(err)
		return m
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	m.cancel = cancel

	bin := p.Binary(opts.Mode)
	cmd := exec.CommandContext(cctx, bin, args...)
	cmd.Stdout = &m.stdout
	cmd.Stderr = &m.stderr
	if opts.DataToSend != nil {
		cmd.Stdin = bytes.NewReader(opts.DataToSend)
	}
	// Without a wait delay a child that inherits the pipes could block Wait
	// past the timeout.
	cmd.WaitDelay = time.Second
	m.cmd = cmd

	slog.Debug("spawning provider process", "name", m.name, "binary", bin, "args", args, "timeout", timeout)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		cancel()
		m.failedToSpawn(err)
		return m
	}

	go func() {
		defer cancel()
		err := cmd.Wait()
		timedOut := cctx.Err() == context.DeadlineExceeded

		r := Result{
			ExitCode: cmd.ProcessState.ExitCode(),
			Stdout:   m.stdout.Bytes(),
			Stderr:   m.stderr.Bytes(),
			TimedOut: timedOut,
			Duration: time.Since(start),
		}
		// A non-zero exit (including a timeout kill) is a protocol-level
		// outcome, not an infrastructure failure.
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) && !timedOut {
			r.Err = err
		}
		m.finish(r)
	}()
	return m
}

func (m *Managed) failedToSpawn(err error) {
	m.finish(Result{ExitCode: -1, Err: err})
}

func (m *Managed) finish(r Result) {
	m.result = r
	close(m.done)
	if r.Err != nil {
		slog.Debug("provider process failed to run", "name", m.name, "error", r.Err)
	} else {
		slog.Debug("provider process finished", "name", m.name,
			"exit_code", r.ExitCode, "timed_out", r.TimedOut, "duration", r.Duration)
	}
}

// Results returns the one-shot sequence of Result snapshots. Iteration
// blocks until the process has terminated or its timeout forced termination,
// then yields exactly one Result; the sequence is exhausted afterwards.
func (m *Managed) Results() iter.Seq[Result] {
	return func(yield func(Result) bool) {
		<-m.done
		m.mu.Lock()
		if m.consumed {
			m.mu.Unlock()
			return
		}
		m.consumed = true
		m.mu.Unlock()
		yield(m.result)
	}
}

// Result blocks until the terminal Result is available and returns it. It
// does not consume the Results sequence.
func (m *Managed) Result() Result {
	<-m.done
	return m.result
}

// Kill forcibly terminates the process if it is still running and waits for
// the result to settle. It is idempotent and safe to defer unconditionally.
func (m *Managed) Kill() {
	if m.cancel != nil {
		m.cancel()
	}
	<-m.done
}

// Name identifies the process in logs: provider name plus role.
func (m *Managed) Name() string { return m.name }
