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

// Package pcap is the reference flow-grouper collaborator: it demultiplexes
// an offline packet capture into the map of FlowKey to ordered application
// payloads the inference pipeline consumes. It sits outside the inference
// core itself, which never parses a packet capture directly.
package pcap

import (
	"fmt"
	"io"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/flowtrace/grammar/model"
)

// ExtractPort reads every TCP packet in r carrying the given port on either
// side, and groups their payloads by canonical flow key, in capture order.
// Packets with an empty TCP payload are skipped, matching the original
// per-packet filter this reference collaborator reproduces.
func ExtractPort(r io.Reader, port uint16) (map[model.FlowKey][]model.Payload, error) {
	reader, err := pcapgo.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open pcap reader: %w", err)
	}

	flows := make(map[model.FlowKey][]model.Payload)
	src := gopacket.NewPacketSource(reader, reader.LinkType())
	for packet := range src.Packets() {
		payload, key, ok := extractOne(packet, port)
		if !ok {
			continue
		}
		flows[key] = append(flows[key], payload)
	}

	return flows, nil
}

func extractOne(packet gopacket.Packet, port uint16) (model.Payload, model.FlowKey, bool) {
	tcpLayer := packet.Layer(layers.LayerTypeTCP)
	if tcpLayer == nil {
		return nil, model.FlowKey{}, false
	}
	tcp, ok := tcpLayer.(*layers.TCP)
	if !ok {
		return nil, model.FlowKey{}, false
	}
	if uint16(tcp.SrcPort) != port && uint16(tcp.DstPort) != port {
		return nil, model.FlowKey{}, false
	}
	if len(tcp.Payload) == 0 {
		return nil, model.FlowKey{}, false
	}

	ipLayer := packet.Layer(layers.LayerTypeIPv4)
	if ipLayer == nil {
		// IPv6 and anything else is out of scope for this reference
		// collaborator, mirroring the original prototype's IPv4-only filter.
		return nil, model.FlowKey{}, false
	}
	ip, ok := ipLayer.(*layers.IPv4)
	if !ok {
		return nil, model.FlowKey{}, false
	}

	key := model.NewFlowKey(ip.SrcIP.String(), uint16(tcp.SrcPort), ip.DstIP.String(), uint16(tcp.DstPort))
	payload := make(model.Payload, len(tcp.Payload))
	copy(payload, tcp.Payload)

	return payload, key, true
}
