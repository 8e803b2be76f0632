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

// Package metrics exposes prometheus collectors for the inference pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors bundles every counter and histogram the pipeline records to.
type Collectors struct {
	FlowsProcessed   prometheus.Counter
	FlowsSkipped     prometheus.Counter
	NodesAllocated   prometheus.Counter
	FieldsTyped      prometheus.Counter
	BuildDuration    prometheus.Histogram
	FieldTypeResults *prometheus.CounterVec
}

// New registers and returns the pipeline's collectors. Calling it twice
// panics, since promauto registers against the default registry; callers
// that need isolated registries should use NewFor instead.
func New() *Collectors {
	return NewFor(prometheus.DefaultRegisterer)
}

// NewFor registers the pipeline's collectors against a specific registerer,
// which tests can set to a fresh prometheus.NewRegistry() to avoid colliding
// with other tests' default-registry state.
func NewFor(reg prometheus.Registerer) *Collectors {
	factory := promauto.With(reg)

	c := Collectors{
		FlowsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "grammar_flows_processed_total",
			Help: "number of flows that produced a trie and field tree",
		}),
		FlowsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "grammar_flows_skipped_total",
			Help: "number of flows skipped for having too few packets",
		}),
		NodesAllocated: factory.NewCounter(prometheus.CounterOpts{
			Name: "grammar_trie_nodes_allocated_total",
			Help: "number of trie nodes allocated across all tries built",
		}),
		FieldsTyped: factory.NewCounter(prometheus.CounterOpts{
			Name: "grammar_fields_typed_total",
			Help: "number of field nodes emitted by the heuristic typer",
		}),
		BuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "grammar_build_duration_seconds",
			Help:    "wall time spent building one flow's trie and field tree",
			Buckets: prometheus.DefBuckets,
		}),
		FieldTypeResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grammar_field_kind_total",
			Help: "number of field nodes emitted, labeled by kind",
		}, []string{"kind"}),
	}

	return &c
}
