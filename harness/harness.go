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

// Package harness orchestrates client/server process pairs over a shared
// port: the server is spawned first, the client after a small listen grace
// delay, and both are reaped deterministically whatever the outcome.
package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tlsinterop/harness/params"
	"github.com/tlsinterop/harness/portalloc"
	"github.com/tlsinterop/harness/process"
	"github.com/tlsinterop/harness/provider"
)

// DefaultListenGrace is how long the orchestrator waits between spawning
// the server and the client. There is deliberately no readiness handshake
// beyond ordering and this delay; the protocol's own retry behavior
// tolerates connection races.
const DefaultListenGrace = 50 * time.Millisecond

// ErrInvalidCombination is returned when a combination classified invalid
// by the filter reaches the runner. Invalid combinations never spawn.
var ErrInvalidCombination = errors.New("harness: invalid parameter combination")

// ErrPortMismatch is returned when the two endpoints of a pair disagree on
// the port.
var ErrPortMismatch = errors.New("harness: client and server options must share a port")

// Endpoint binds a provider to the options its process will be invoked with.
type Endpoint struct {
	Provider provider.Provider
	Options  provider.Options
}

// Pair holds the two live processes of one handshake. Always arrange for
// Close to run when the test scope exits; it is idempotent.
type Pair struct {
	Server *process.Managed
	Client *process.Managed
	// Port is the loopback port the pair shares.
	Port int
}

// Close tears both processes down. Client first: killing the server under a
// still-running client would manufacture a spurious client failure.
func (p *Pair) Close() {
	if p.Client != nil {
		p.Client.Kill()
	}
	if p.Server != nil {
		p.Server.Kill()
	}
}

// Wait blocks until both processes have produced their terminal Result and
// returns the two snapshots, server first. Collection runs jointly; each
// side is already bounded by its own timeout.
func (p *Pair) Wait(ctx context.Context) (server, client process.Result) {
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		server = p.Server.Result()
		return nil
	})
	g.Go(func() error {
		client = p.Client.Result()
		return nil
	})
	// Result collection itself cannot fail; the group only joins the waits.
	_ = g.Wait()
	return server, client
}

// Runner spawns pairs against a shared port allocator and counts every
// spawn it performs, so tests can observe that filtered combinations never
// reach a process.
type Runner struct {
	// Ports hands out one fresh port per pair. Required.
	Ports *portalloc.Allocator
	// Timeout applies to every spawned process. Zero means
	// [process.DefaultTimeout].
	Timeout time.Duration
	// ListenGrace overrides [DefaultListenGrace] when positive.
	ListenGrace time.Duration

	spawns atomic.Int64
}

// Spawns reports how many processes this runner has spawned.
func (r *Runner) Spawns() int64 { return r.spawns.Load() }

func (r *Runner) grace() time.Duration {
	if r.ListenGrace > 0 {
		return r.ListenGrace
	}
	return DefaultListenGrace
}

// StartPair allocates a port if the endpoints do not already carry one,
// spawns the server, waits the listen grace delay, then spawns the client.
// Both endpoints must end up on the same port. The caller owns the returned
// Pair and must Close it.
func (r *Runner) StartPair(ctx context.Context, server, client Endpoint) (*Pair, error) {
	if server.Options.Port == 0 && client.Options.Port == 0 {
		port, err := r.Ports.Next()
		if err != nil {
			return nil, fmt.Errorf("allocating pair port: %w", err)
		}
		server.Options.Port = port
		client.Options.Port = port
	}
	if server.Options.Port != client.Options.Port {
		return nil, ErrPortMismatch
	}
	if server.Options.Mode != provider.Server || client.Options.Mode != provider.Client {
		return nil, fmt.Errorf("harness: endpoint roles are %q/%q, want server/client",
			server.Options.Mode, client.Options.Mode)
	}

	slog.Debug("starting pair",
		"server", server.Provider.Name(), "client", client.Provider.Name(),
		"port", server.Options.Port)

	p := &Pair{Port: server.Options.Port}
	p.Server = r.spawn(ctx, server)
	time.Sleep(r.grace())
	p.Client = r.spawn(ctx, client)
	return p, nil
}

func (r *Runner) spawn(ctx context.Context, e Endpoint) *process.Managed {
	r.spawns.Add(1)
	return process.Spawn(ctx, e.Provider, e.Options, r.Timeout)
}

// StartCombination gates a combination through the validity filter, builds
// correlated per-role options from it and starts the pair. The combination's
// provider is the server side; the given client provider is the peer
// (typically the implementation under test).
func (r *Runner) StartCombination(ctx context.Context, c params.Combination, client provider.Provider, base provider.Options) (*Pair, error) {
	if params.Invalid(c) {
		return nil, ErrInvalidCombination
	}
	serverProv, ok := c.Provider.(provider.Provider)
	if !ok {
		return nil, fmt.Errorf("harness: combination provider %T cannot be invoked", c.Provider)
	}
	clientOpts, serverOpts := BuildOptions(c, client, serverProv, base)
	return r.StartPair(ctx,
		Endpoint{Provider: serverProv, Options: serverOpts},
		Endpoint{Provider: client, Options: clientOpts},
	)
}
