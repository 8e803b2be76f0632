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

// Package snapshot encodes and decodes built tries and field trees as opaque,
// compressed blobs so they can be cached or shipped between processes.
package snapshot

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/flowtrace/grammar/field"
	sizemetrics "github.com/flowtrace/grammar/metrics/size"
	"github.com/flowtrace/grammar/trie"
)

// Codec encodes and decodes snapshot values using CBOR encoding and
// zstandard compression, mirroring the teacher's encode-then-compress split
// so either half can be swapped independently.
type Codec struct {
	encoder cbor.EncMode
	decoder cbor.DecMode

	compressor   *zstd.Encoder
	decompressor *zstd.Decoder

	sizes *sizemetrics.Tracker
}

// WithSizeTracker attaches a size.Tracker that records the original and
// compressed byte counts of every blob this Codec produces.
func (c *Codec) WithSizeTracker(t *sizemetrics.Tracker) *Codec {
	c.sizes = t
	return c
}

// NewCodec builds a Codec. It panics on construction failure, since the
// options passed here are fixed and a failure can only mean a broken build.
func NewCodec() *Codec {
	encOptions := cbor.CanonicalEncOptions()
	encoder, err := encOptions.EncMode()
	if err != nil {
		panic(err)
	}

	decOptions := cbor.DecOptions{
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}
	decoder, err := decOptions.DecMode()
	if err != nil {
		panic(err)
	}

	compressor, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic(err)
	}
	decompressor, err := zstd.NewReader(nil)
	if err != nil {
		panic(err)
	}

	return &Codec{
		encoder:      encoder,
		decoder:      decoder,
		compressor:   compressor,
		decompressor: decompressor,
	}
}

// Encode returns the CBOR encoding of the given value.
func (c *Codec) Encode(value interface{}) ([]byte, error) {
	return c.encoder.Marshal(value)
}

// Decode parses CBOR-encoded data into the given value.
func (c *Codec) Decode(data []byte, value interface{}) error {
	return c.decoder.Unmarshal(data, value)
}

// Marshal encodes then compresses a Trie. The trie's arena is a flat slice
// of Nodes addressed by parent/child index, not pointers, so it round-trips
// through CBOR with no auxiliary representation.
func (c *Codec) Marshal(t *trie.Trie) ([]byte, error) {
	data, err := c.Encode(t)
	if err != nil {
		return nil, fmt.Errorf("could not encode trie: %w", err)
	}
	compressed := c.compressor.EncodeAll(data, nil)
	if c.sizes != nil {
		c.sizes.Record("trie", len(data), len(compressed))
	}
	return compressed, nil
}

// Unmarshal decompresses then decodes a Trie.
func (c *Codec) Unmarshal(compressed []byte) (*trie.Trie, error) {
	data, err := c.decompressor.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("could not decompress trie: %w", err)
	}
	var t trie.Trie
	if err := c.Decode(data, &t); err != nil {
		return nil, fmt.Errorf("could not decode trie: %w", err)
	}
	return &t, nil
}

// MarshalFieldTree encodes then compresses a field Tree.
func (c *Codec) MarshalFieldTree(t *field.Tree) ([]byte, error) {
	data, err := c.Encode(t)
	if err != nil {
		return nil, fmt.Errorf("could not encode field tree: %w", err)
	}
	compressed := c.compressor.EncodeAll(data, nil)
	if c.sizes != nil {
		c.sizes.Record("fieldtree", len(data), len(compressed))
	}
	return compressed, nil
}

// UnmarshalFieldTree decompresses then decodes a field Tree.
func (c *Codec) UnmarshalFieldTree(compressed []byte) (*field.Tree, error) {
	data, err := c.decompressor.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("could not decompress field tree: %w", err)
	}
	var t field.Tree
	if err := c.Decode(data, &t); err != nil {
		return nil, fmt.Errorf("could not decode field tree: %w", err)
	}
	return &t, nil
}
