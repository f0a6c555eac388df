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

// Command run-interop executes a declarative scenario matrix against real
// provider binaries and reports one JSON record per executed combination.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"

	"github.com/tlsinterop/harness/harness"
	"github.com/tlsinterop/harness/params"
	"github.com/tlsinterop/harness/portalloc"
	"github.com/tlsinterop/harness/provider"
	"github.com/tlsinterop/harness/report"
)

var providers = map[string]provider.Provider{
	"s2n":     provider.S2N{},
	"openssl": provider.OpenSSL{},
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags...]\n", path.Base(os.Args[0]))
		flag.PrintDefaults()
	}
}

func main() {
	verboseFlag := flag.Bool("v", false, "Enable debug output")
	configFlag := flag.String("config", "interop.yaml", "Scenario matrix file")
	reportFlag := flag.String("report", "-", "File to append JSON report lines to, - for stdout")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verboseFlag {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(
		os.Stderr,
		&tint.Options{NoColor: !term.IsTerminal(int(os.Stderr.Fd())), Level: logLevel},
	)))

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	client, ok := providers[cfg.Client]
	if !ok {
		slog.Error("Unknown client provider", "client", cfg.Client)
		os.Exit(1)
	}

	reportOut := os.Stdout
	if *reportFlag != "-" {
		f, err := os.OpenFile(*reportFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			slog.Error("Failed to open report file", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		reportOut = f
	}
	collector := &report.WriteCollector{Writer: reportOut}

	runner := &harness.Runner{
		Ports:   portalloc.NewDefault(),
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}

	failures := 0
	executed := 0
	for _, scenario := range cfg.Scenarios {
		server, ok := providers[scenario.Server]
		if !ok {
			slog.Error("Unknown server provider", "scenario", scenario.Name, "server", scenario.Server)
			os.Exit(1)
		}
		matrix, err := scenario.matrix(server)
		if err != nil {
			slog.Error("Bad scenario", "error", err)
			os.Exit(1)
		}
		for combination := range matrix.ExpandValid() {
			executed++
			if !runCombination(runner, collector, scenario, combination, client) {
				failures++
			}
		}
	}

	slog.Info("Run finished", "executed", executed, "failures", failures)
	if failures > 0 {
		os.Exit(1)
	}
}

func runCombination(runner *harness.Runner, collector report.Collector, scenario ScenarioConfig, c params.Combination, client provider.Provider) bool {
	start := time.Now()

	base := provider.Options{Host: "localhost", Insecure: true, ExtraFlags: scenario.ClientFlags}
	if scenario.PayloadBytes > 0 {
		base.DataToSend = make([]byte, scenario.PayloadBytes)
		rand.Read(base.DataToSend)
	}

	rec := report.HandshakeReport{
		Combination: c.Name(),
		Client:      client.Name(),
		Server:      c.Provider.Name(),
		Time:        start.UTC().Truncate(time.Second),
	}

	pair, err := runner.StartCombination(context.Background(), c, client, base)
	if err != nil {
		rec.Failure = err.Error()
	} else {
		defer pair.Close()
		serverRes, clientRes := pair.Wait(context.Background())

		rec.Port = pair.Port
		rec.ClientExitCode = clientRes.ExitCode
		rec.ServerExitCode = serverRes.ExitCode
		clientCheck, serverCheck := scenario.checks(c)
		if cerr := clientCheck(clientRes); cerr != nil {
			rec.Failure = "client: " + cerr.Error()
		} else if serr := serverCheck(serverRes); serr != nil {
			rec.Failure = "server: " + serr.Error()
		}
	}
	rec.DurationMs = time.Since(start).Milliseconds()

	if err := collector.Collect(context.Background(), rec); err != nil {
		slog.Warn("Failed to collect report", "error", err)
	}
	if rec.Failure != "" {
		slog.Error("Combination failed", "scenario", scenario.Name, "combination", c.Name(), "failure", rec.Failure)
		return false
	}
	slog.Debug("Combination passed", "scenario", scenario.Name, "combination", c.Name())
	return true
}
