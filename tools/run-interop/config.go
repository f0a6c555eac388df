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

package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/tlsinterop/harness/params"
	"github.com/tlsinterop/harness/process"
	"github.com/tlsinterop/harness/verify"
)

// Config is the declarative scenario matrix the tool executes.
type Config struct {
	// Client names the implementation under test, used as the client side
	// of every pair.
	Client string `yaml:"client"`
	// TimeoutSeconds bounds each spawned process. Zero means the default.
	TimeoutSeconds int              `yaml:"timeout_seconds"`
	Scenarios      []ScenarioConfig `yaml:"scenarios"`
}

// ScenarioConfig declares one parametrized scenario. Axes left empty are not
// varied.
type ScenarioConfig struct {
	Name   string `yaml:"name"`
	Server string `yaml:"server"`
	// Expect selects the verification applied to each pair: clean, fail,
	// hrr, psk or no_psk.
	Expect       string   `yaml:"expect"`
	Protocols    []string `yaml:"protocols"`
	Ciphers      []string `yaml:"ciphers"`
	Curves       []string `yaml:"curves"`
	Certificates []string `yaml:"certificates"`
	// ClientPSK/ServerPSK use the identity,secret,hmac form.
	ClientPSK   string   `yaml:"client_psk"`
	ServerPSK   string   `yaml:"server_psk"`
	ClientFlags []string `yaml:"client_flags"`
	// PayloadBytes of random data are sent by the client once up.
	PayloadBytes int `yaml:"payload_bytes"`
}

func loadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Client == "" {
		return Config{}, fmt.Errorf("config: client is required")
	}
	for _, s := range cfg.Scenarios {
		if s.Server == "" {
			return Config{}, fmt.Errorf("config: scenario %q: server is required", s.Name)
		}
		switch s.Expect {
		case "clean", "fail", "hrr", "psk", "no_psk":
		default:
			return Config{}, fmt.Errorf("config: scenario %q: unknown expect %q", s.Name, s.Expect)
		}
	}
	return cfg, nil
}

// matrix resolves the scenario's named axes against the parameter catalogs.
func (s ScenarioConfig) matrix(server params.Capabilities) (params.Matrix, error) {
	var m params.Matrix
	m.Providers = []params.Capabilities{server}
	for _, name := range s.Ciphers {
		c, ok := params.FindCipher(name)
		if !ok {
			return m, fmt.Errorf("scenario %q: unknown cipher %q", s.Name, name)
		}
		m.Ciphers = append(m.Ciphers, c)
	}
	for _, name := range s.Curves {
		c, ok := params.FindCurve(name)
		if !ok {
			return m, fmt.Errorf("scenario %q: unknown curve %q", s.Name, name)
		}
		m.Curves = append(m.Curves, c)
	}
	for _, name := range s.Protocols {
		p, ok := params.FindProtocol(name)
		if !ok {
			return m, fmt.Errorf("scenario %q: unknown protocol %q", s.Name, name)
		}
		m.Protocols = append(m.Protocols, p)
	}
	for _, name := range s.Certificates {
		c, ok := params.FindCertificate(name)
		if !ok {
			return m, fmt.Errorf("scenario %q: unknown certificate %q", s.Name, name)
		}
		m.Certificates = append(m.Certificates, c)
	}
	if s.ClientPSK != "" {
		psk, err := params.ParsePSK(s.ClientPSK)
		if err != nil {
			return m, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		m.ClientPSKs = []*params.PSKSet{&psk}
	}
	if s.ServerPSK != "" {
		psk, err := params.ParsePSK(s.ServerPSK)
		if err != nil {
			return m, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		m.ServerPSKs = []*params.PSKSet{&psk}
	}
	return m, nil
}

// checks returns the per-role verifications for one combination of the
// scenario.
func (s ScenarioConfig) checks(c params.Combination) (client, server verify.Check) {
	none := verify.Check(func(process.Result) error { return nil })
	switch s.Expect {
	case "clean":
		return verify.CleanExit, verify.CleanExit
	case "fail":
		return verify.FailedExit, verify.Ran
	case "hrr":
		return verify.CleanExit, verify.HelloRetry
	case "psk":
		serverCheck := none
		if c.ServerPSK != nil {
			serverCheck = verify.ChosenPSK(*c.ServerPSK)
		}
		return verify.CleanExit, serverCheck
	case "no_psk":
		return verify.NoChosenPSK, verify.Ran
	}
	return none, none
}
