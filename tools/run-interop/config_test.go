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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tlsinterop/harness/params"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "interop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleConfig = `
client: s2n
timeout_seconds: 5
scenarios:
  - name: external-psk
    server: s2n
    expect: psk
    protocols: [TLS1.3]
    ciphers: [TLS_AES_128_GCM_SHA256, TLS_AES_256_GCM_SHA384]
    client_psk: shared_identity,123456,S2N_PSK_HMAC_SHA256
    server_psk: shared_identity,123456,S2N_PSK_HMAC_SHA256
    payload_bytes: 64
  - name: hello-retry
    server: openssl
    expect: hrr
    protocols: [TLS1.3]
    ciphers: [TLS_AES_128_GCM_SHA256]
    curves: [X25519]
    certificates: [RSA_2048_SHA256]
    client_flags: ["-K", "secp256r1"]
    payload_bytes: 24
`

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "s2n", cfg.Client)
	assert.Equal(t, 5, cfg.TimeoutSeconds)
	require.Len(t, cfg.Scenarios, 2)
	assert.Equal(t, []string{"-K", "secp256r1"}, cfg.Scenarios[1].ClientFlags)
}

func TestLoadConfigRejectsUnknownExpect(t *testing.T) {
	_, err := loadConfig(writeConfig(t, `
client: s2n
scenarios:
  - name: bad
    server: s2n
    expect: maybe
`))
	require.Error(t, err)
}

func TestLoadConfigRequiresClient(t *testing.T) {
	_, err := loadConfig(writeConfig(t, "scenarios: []\n"))
	require.Error(t, err)
}

func TestScenarioMatrixResolvesCatalogNames(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	m, err := cfg.Scenarios[0].matrix(fakeServer{})
	require.NoError(t, err)
	assert.Len(t, m.Ciphers, 2)
	assert.Equal(t, []params.Protocol{params.TLS13}, m.Protocols)
	require.Len(t, m.ClientPSKs, 1)
	assert.Equal(t, "shared_identity", m.ClientPSKs[0].Identity)
}

func TestScenarioMatrixRejectsUnknownCipher(t *testing.T) {
	s := ScenarioConfig{Name: "x", Ciphers: []string{"TLS_BOGUS"}}
	_, err := s.matrix(fakeServer{})
	require.Error(t, err)
}

type fakeServer struct{}

func (fakeServer) Name() string                          { return "fake" }
func (fakeServer) SupportsProtocol(params.Protocol) bool { return true }
func (fakeServer) SupportsCipher(params.Cipher) bool     { return true }
func (fakeServer) SupportsPSKHash(params.PSKHash) bool   { return true }
