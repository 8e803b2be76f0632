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

package pcap_test

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flowpcap "github.com/flowtrace/grammar/flow/pcap"
)

func buildModbusCapture(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := pcapgo.NewWriter(&buf)
	require.NoError(t, w.WriteFileHeader(65536, layers.LinkTypeEthernet))

	write := func(srcIP, dstIP net.IP, srcPort, dstPort uint16, payload []byte) {
		eth := layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0, 0, 0, 0, 0, 1},
			DstMAC:       net.HardwareAddr{0, 0, 0, 0, 0, 2},
			EthernetType: layers.EthernetTypeIPv4,
		}
		ip := layers.IPv4{
			Version:  4,
			IHL:      5,
			TTL:      64,
			Protocol: layers.IPProtocolTCP,
			SrcIP:    srcIP,
			DstIP:    dstIP,
		}
		tcp := layers.TCP{
			SrcPort: layers.TCPPort(srcPort),
			DstPort: layers.TCPPort(dstPort),
			Window:  1024,
		}
		require.NoError(t, tcp.SetNetworkLayerForChecksum(&ip))

		sb := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}
		require.NoError(t, gopacket.SerializeLayers(sb, opts, &eth, &ip, &tcp, gopacket.Payload(payload)))

		require.NoError(t, w.WritePacket(gopacket.CaptureInfo{
			Timestamp:     time.Unix(0, 0),
			CaptureLength: len(sb.Bytes()),
			Length:        len(sb.Bytes()),
		}, sb.Bytes()))
	}

	client, server := net.IPv4(10, 0, 0, 1), net.IPv4(10, 0, 0, 2)
	write(client, server, 40000, 502, []byte("\x01\x02hello"))
	write(server, client, 502, 40000, []byte("\x01\x02world")) // reply, same flow
	write(client, server, 40001, 9999, []byte("not modbus"))   // different port, must be skipped

	return buf.Bytes()
}

func TestExtractPort(t *testing.T) {
	data := buildModbusCapture(t)

	flows, err := flowpcap.ExtractPort(bytes.NewReader(data), 502)
	require.NoError(t, err)
	require.Len(t, flows, 1)

	for key, payloads := range flows {
		assert.Contains(t, key.String(), "10.0.0.1")
		require.Len(t, payloads, 2)
		assert.Equal(t, []byte("\x01\x02hello"), []byte(payloads[0]))
		assert.Equal(t, []byte("\x01\x02world"), []byte(payloads[1]))
	}
}
