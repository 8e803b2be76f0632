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

package report_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowtrace/grammar/model"
	"github.com/flowtrace/grammar/report"
	"github.com/flowtrace/grammar/trie"
)

func buildSample() *trie.Trie {
	t := trie.Build([]model.Payload{
		[]byte("\x01\x02hello"),
		[]byte("\x01\x02world"),
	})
	trie.Tag(t, 0.95)
	return t
}

func TestWriteDepthSummary(t *testing.T) {
	built := buildSample()

	var buf bytes.Buffer
	require.NoError(t, report.WriteDepthSummary(&buf, built))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "1 | C | 01"))
}

func TestWriteCSV(t *testing.T) {
	built := buildSample()

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, built))

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "node_id,depth,byte,count,ratio,type", lines[0])
	// root row: node_id 0, depth 0, empty byte field, type root.
	assert.Contains(t, lines[1], ",0,,")
	assert.True(t, len(lines) > len(built.Nodes))
}
