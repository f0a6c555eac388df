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

// Package capture counts TLS handshake messages in a pcap file recorded by
// the tcpdump provider, corroborating marker-based assertions with what was
// actually on the wire. Only the cleartext flight is visible at TLS 1.3, so
// the counts cover ClientHello, ServerHello and the Hello Retry Request
// variant; encrypted records are skipped.
package capture

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// hrrRandomPrefix is the fixed start of the Hello Retry Request server
// random (RFC 8446 §4.1.3).
var hrrRandomPrefix = []byte{0xCF, 0x21, 0xAD, 0x74, 0xE5, 0x9A, 0x61, 0x11, 0xBE, 0x1D}

const (
	recordHandshake      = 0x16
	handshakeClientHello = 1
	handshakeServerHello = 2
)

// Counts is what the cleartext portion of a capture shows.
type Counts struct {
	ClientHello int
	ServerHello int
	// HelloRetries counts ServerHello messages carrying the HRR random.
	// Such messages are also included in ServerHello.
	HelloRetries int
}

// OneRetryRound reports whether the capture shows a handshake that completed
// after exactly one Hello Retry Request round trip.
func (c Counts) OneRetryRound() bool {
	return c.HelloRetries == 1 && c.ClientHello == 2 && c.ServerHello == 2
}

// CountHandshake scans a pcap stream for TLS handshake messages. TCP
// payloads are concatenated per flow direction in arrival order before
// record parsing; that is enough for loopback captures, which do not
// reorder.
func CountHandshake(r io.Reader) (Counts, error) {
	var counts Counts
	pcap, err := pcapgo.NewReader(r)
	if err != nil {
		return counts, fmt.Errorf("opening pcap: %w", err)
	}

	streams := make(map[string][]byte)
	var order []string
	for {
		data, _, err := pcap.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			return counts, fmt.Errorf("reading packet: %w", err)
		}
		packet := gopacket.NewPacket(data, pcap.LinkType(), gopacket.Default)
		tcp, ok := packet.TransportLayer().(*layers.TCP)
		if !ok || len(tcp.Payload) == 0 {
			continue
		}
		key := fmt.Sprintf("%v>%v", tcp.SrcPort, tcp.DstPort)
		if _, seen := streams[key]; !seen {
			order = append(order, key)
		}
		streams[key] = append(streams[key], tcp.Payload...)
	}

	for _, key := range order {
		countStream(streams[key], &counts)
	}
	return counts, nil
}

// countStream walks TLS records in one direction of a connection. Scanning
// stops at the first incomplete or non-TLS record; everything of interest is
// in the cleartext prefix of the stream.
func countStream(stream []byte, counts *Counts) {
	for len(stream) >= 5 {
		recType := stream[0]
		recLen := int(binary.BigEndian.Uint16(stream[3:5]))
		if recType < 0x14 || recType > 0x17 || len(stream) < 5+recLen {
			return
		}
		if recType == recordHandshake {
			countHandshakeRecord(stream[5:5+recLen], counts)
		}
		stream = stream[5+recLen:]
	}
}

func countHandshakeRecord(record []byte, counts *Counts) {
	for len(record) >= 4 {
		msgType := record[0]
		msgLen := int(record[1])<<16 | int(record[2])<<8 | int(record[3])
		if len(record) < 4+msgLen {
			return
		}
		body := record[4 : 4+msgLen]
		switch msgType {
		case handshakeClientHello:
			counts.ClientHello++
		case handshakeServerHello:
			counts.ServerHello++
			// random starts after the 2-byte legacy version
			if len(body) >= 2+32 && bytes.HasPrefix(body[2:], hrrRandomPrefix) {
				counts.HelloRetries++
			}
		}
		record = record[4+msgLen:]
	}
}
