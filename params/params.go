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

// Package params holds the test parameter vocabulary: protocol versions,
// cipher suites, curves, certificates and PSK parameter sets, plus the
// combinatorial expansion over them and the validity filter that prunes
// combinations before any process is spawned.
package params

import "fmt"

// Protocol is a TLS protocol version. Values are ordered so that versions
// can be compared numerically.
type Protocol int

const (
	SSLv3 Protocol = 30
	TLS10 Protocol = 31
	TLS11 Protocol = 32
	TLS12 Protocol = 33
	TLS13 Protocol = 34
)

// Protocols lists every version the harness can ask a provider to negotiate.
var Protocols = []Protocol{TLS13, TLS12, TLS11, TLS10}

func (p Protocol) String() string {
	switch p {
	case SSLv3:
		return "SSLv3"
	case TLS10:
		return "TLS1.0"
	case TLS11:
		return "TLS1.1"
	case TLS12:
		return "TLS1.2"
	case TLS13:
		return "TLS1.3"
	}
	return fmt.Sprintf("Protocol(%d)", int(p))
}

// SigAlg tags the authentication algorithm of a certificate or cipher suite.
type SigAlg string

const (
	SigRSA   SigAlg = "RSA"
	SigECDSA SigAlg = "ECDSA"
	// SigAny marks TLS 1.3 suites, which do not constrain the certificate.
	SigAny SigAlg = "ANY"
)

// Cipher describes one cipher suite by provider-facing name.
type Cipher struct {
	Name string
	// MinVersion is the lowest protocol version the suite is defined for.
	MinVersion Protocol
	// TLS13Only suites are undefined below TLS 1.3, and pre-1.3 suites are
	// not negotiable at TLS 1.3.
	TLS13Only bool
	// Auth constrains the certificate the server must present, SigAny for
	// suites that sign with whatever the certificate supports.
	Auth SigAlg
}

func (c Cipher) String() string { return c.Name }

// The TLS 1.3 suites from RFC 8446.
var (
	AES128GCMSHA256        = Cipher{Name: "TLS_AES_128_GCM_SHA256", MinVersion: TLS13, TLS13Only: true, Auth: SigAny}
	AES256GCMSHA384        = Cipher{Name: "TLS_AES_256_GCM_SHA384", MinVersion: TLS13, TLS13Only: true, Auth: SigAny}
	CHACHA20POLY1305SHA256 = Cipher{Name: "TLS_CHACHA20_POLY1305_SHA256", MinVersion: TLS13, TLS13Only: true, Auth: SigAny}

	ECDHERSAAES128GCMSHA256   = Cipher{Name: "ECDHE-RSA-AES128-GCM-SHA256", MinVersion: TLS12, Auth: SigRSA}
	ECDHERSAAES256GCMSHA384   = Cipher{Name: "ECDHE-RSA-AES256-GCM-SHA384", MinVersion: TLS12, Auth: SigRSA}
	ECDHEECDSAAES128GCMSHA256 = Cipher{Name: "ECDHE-ECDSA-AES128-GCM-SHA256", MinVersion: TLS12, Auth: SigECDSA}
	ECDHERSAAES128SHA         = Cipher{Name: "ECDHE-RSA-AES128-SHA", MinVersion: TLS10, Auth: SigRSA}
)

// TLS13Ciphers mirrors the suite list used by the PSK and HRR scenarios.
var TLS13Ciphers = []Cipher{AES128GCMSHA256, AES256GCMSHA384, CHACHA20POLY1305SHA256}

// AllCiphers is every suite the harness knows how to ask for.
var AllCiphers = []Cipher{
	AES128GCMSHA256, AES256GCMSHA384, CHACHA20POLY1305SHA256,
	ECDHERSAAES128GCMSHA256, ECDHERSAAES256GCMSHA384,
	ECDHEECDSAAES128GCMSHA256, ECDHERSAAES128SHA,
}

// Curve describes one named group.
type Curve struct {
	Name string
	// MinVersion is the lowest protocol version at which the group is
	// negotiable by the providers under test.
	MinVersion Protocol
}

func (c Curve) String() string { return c.Name }

var (
	P256   = Curve{Name: "P-256", MinVersion: TLS10}
	P384   = Curve{Name: "P-384", MinVersion: TLS10}
	P521   = Curve{Name: "P-521", MinVersion: TLS12}
	X25519 = Curve{Name: "X25519", MinVersion: TLS13}
)

// AllCurves lists the groups exercised by the test matrix.
var AllCurves = []Curve{P256, P384, P521, X25519}

// Certificate references a certificate/key pair on disk.
type Certificate struct {
	Name string
	Cert string
	Key  string
	Alg  SigAlg
}

func (c Certificate) String() string { return c.Name }

var (
	RSA2048SHA256  = Certificate{Name: "RSA_2048_SHA256", Cert: "certs/rsa_2048_sha256_cert.pem", Key: "certs/rsa_2048_sha256_key.pem", Alg: SigRSA}
	RSA4096SHA384  = Certificate{Name: "RSA_4096_SHA384", Cert: "certs/rsa_4096_sha384_cert.pem", Key: "certs/rsa_4096_sha384_key.pem", Alg: SigRSA}
	ECDSA256SHA256 = Certificate{Name: "ECDSA_256_SHA256", Cert: "certs/ecdsa_p256_sha256_cert.pem", Key: "certs/ecdsa_p256_sha256_key.pem", Alg: SigECDSA}
)

// AllCerts lists the certificate material available to servers.
var AllCerts = []Certificate{RSA2048SHA256, RSA4096SHA384, ECDSA256SHA256}

// PSKHash names the HMAC algorithm a PSK is bound to, in s2n's vocabulary.
type PSKHash string

const (
	PSKHashSHA256 PSKHash = "S2N_PSK_HMAC_SHA256"
	PSKHashSHA384 PSKHash = "S2N_PSK_HMAC_SHA384"
	PSKHashSHA512 PSKHash = "S2N_PSK_HMAC_SHA512"
)

// PSKSet is one external pre-shared key: identity, secret and the hash the
// key is bound to.
type PSKSet struct {
	Identity string
	Secret   string
	Hash     PSKHash
}

func (p PSKSet) String() string {
	return fmt.Sprintf("%s,%s,%s", p.Identity, p.Secret, p.Hash)
}
