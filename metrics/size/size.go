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

// Package size tracks the original-versus-compressed byte counts of
// snapshot blobs, logging a periodic summary per snapshot kind.
package size

import (
	"sync"
	"time"

	metrics "github.com/rcrowley/go-metrics"
	"github.com/rs/zerolog"
)

// Tracker accumulates original and compressed byte counters per snapshot
// kind ("trie", "fieldtree", ...) and logs their ratio on a timer.
type Tracker struct {
	sync.Mutex
	log        zerolog.Logger
	original   map[string]metrics.Counter
	compressed map[string]metrics.Counter
	done       chan struct{}
}

// NewTracker starts a Tracker that logs a summary every interval until Stop
// is called.
func NewTracker(log zerolog.Logger, interval time.Duration) *Tracker {
	t := Tracker{
		log:        log.With().Str("component", "snapshot_size").Logger(),
		original:   make(map[string]metrics.Counter),
		compressed: make(map[string]metrics.Counter),
		done:       make(chan struct{}),
	}

	go t.loop(interval)

	return &t
}

// Record adds one blob's original and compressed sizes to the named kind's
// running totals.
func (t *Tracker) Record(kind string, originalBytes, compressedBytes int) {
	t.Lock()
	defer t.Unlock()

	original, ok := t.original[kind]
	if !ok {
		original = metrics.NewCounter()
		t.original[kind] = original
	}
	compressed, ok := t.compressed[kind]
	if !ok {
		compressed = metrics.NewCounter()
		t.compressed[kind] = compressed
	}
	original.Inc(int64(originalBytes))
	compressed.Inc(int64(compressedBytes))
}

// Stop ends the periodic log loop.
func (t *Tracker) Stop() {
	close(t.done)
}

func (t *Tracker) loop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			t.output()
		}
	}
}

func (t *Tracker) output() {
	t.Lock()
	defer t.Unlock()

	for kind, original := range t.original {
		compressed := t.compressed[kind]
		originalCount := original.Count()
		compressedCount := compressed.Count()
		if originalCount == 0 {
			continue
		}
		ratio := float64(compressedCount) / float64(originalCount)
		t.log.Info().
			Str("kind", kind).
			Int64("original_bytes", originalCount).
			Int64("compressed_bytes", compressedCount).
			Float64("ratio", ratio).
			Msg("snapshot size")
	}
}
