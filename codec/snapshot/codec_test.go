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

package snapshot_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowtrace/grammar/codec/snapshot"
	"github.com/flowtrace/grammar/field"
	"github.com/flowtrace/grammar/model"
	"github.com/flowtrace/grammar/trie"
)

func TestCodecTrieRoundTrip(t *testing.T) {
	built := trie.Build([]model.Payload{
		[]byte("\x01\x02hello"),
		[]byte("\x01\x02world"),
	})
	trie.Tag(built, 0.95)

	c := snapshot.NewCodec()
	blob, err := c.Marshal(built)
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	got, err := c.Unmarshal(blob)
	require.NoError(t, err)
	assert.Equal(t, built.Root, got.Root)
	assert.Equal(t, built.Nodes, got.Nodes)
}

func TestCodecFieldTreeRoundTrip(t *testing.T) {
	built := field.Build([]model.Payload{
		[]byte("\x01\x02hello\x00"),
		[]byte("\x01\x02world\x00"),
	}, 10)

	c := snapshot.NewCodec()
	blob, err := c.MarshalFieldTree(built)
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	got, err := c.UnmarshalFieldTree(blob)
	require.NoError(t, err)
	require.Len(t, got.Root.Children, 3)
	assert.Equal(t, built.Root.Children[2].Kind, got.Root.Children[2].Kind)
	assert.Equal(t, built.Root.Children[2].Size, got.Root.Children[2].Size)
}
