// Copyright 2024 Flowtrace Authors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

// Package model holds the data types shared across the inference pipeline:
// flow identities and the raw application-layer payloads carried within them.
package model

import (
	"fmt"

	"github.com/OneOfOne/xxhash"
)

// Payload is a single application-layer message, as reassembled by the flow
// grouper. Any byte sequence, including the empty one, is a valid payload.
type Payload []byte

// FlowKey identifies a bidirectional conversation by its canonical unordered
// address pair, so that both directions of a TCP conversation hash to the
// same key regardless of which side is recorded as "source" by the packet
// capture.
type FlowKey struct {
	AddrA string
	PortA uint16
	AddrB string
	PortB uint16
}

// NewFlowKey builds the canonical key for a conversation between two
// endpoints. The endpoint that sorts first lexicographically (by address,
// then port) is always stored as the "A" side, so a flow and its reply
// traffic produce the same key.
func NewFlowKey(addr1 string, port1 uint16, addr2 string, port2 uint16) FlowKey {
	if addr1 > addr2 || (addr1 == addr2 && port1 > port2) {
		addr1, addr2 = addr2, addr1
		port1, port2 = port2, port1
	}
	return FlowKey{AddrA: addr1, PortA: port1, AddrB: addr2, PortB: port2}
}

// String renders the flow key in a stable, human-readable form suitable for
// logging and CSV output.
func (k FlowKey) String() string {
	return fmt.Sprintf("%s:%d<->%s:%d", k.AddrA, k.PortA, k.AddrB, k.PortB)
}

// Hash returns a stable 64-bit digest of the flow key, used as a metrics
// label and as a compact map key when the full struct is inconvenient.
func (k FlowKey) Hash() uint64 {
	return xxhash.Checksum64([]byte(k.String()))
}
