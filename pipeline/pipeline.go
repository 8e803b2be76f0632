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

// Package pipeline orchestrates the inference engine's components: it takes
// flow-grouped payloads, skips flows below the configured packet minimum,
// builds and tags a trie and runs the heuristic field typer for every
// qualifying flow concurrently, then builds and tags the cross-flow global
// trie.
package pipeline

import (
	"sort"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/flowtrace/grammar/config"
	"github.com/flowtrace/grammar/field"
	"github.com/flowtrace/grammar/metrics"
	"github.com/flowtrace/grammar/model"
	"github.com/flowtrace/grammar/trie"
)

// FlowResult is one flow's inference output.
type FlowResult struct {
	Flow  model.FlowKey
	Trie  *trie.Trie
	Field *field.Tree
}

// Result is the full output of a pipeline run.
type Result struct {
	Flows  []FlowResult
	Global *trie.Trie
}

// Pipeline runs the inference engine's components over flow-grouped
// payloads.
type Pipeline struct {
	cfg     config.Config
	log     zerolog.Logger
	metrics *metrics.Collectors
}

// New validates cfg and returns a Pipeline, or a *model.ConfigError if cfg
// is out of bounds. No flow is processed until Run is called.
func New(cfg config.Config, log zerolog.Logger, m *metrics.Collectors) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:     cfg,
		log:     log.With().Str("component", "pipeline").Logger(),
		metrics: m,
	}, nil
}

// Run builds per-flow and global tries plus per-flow field trees for every
// flow with at least cfg.MinPacketsPerFlow payloads. It returns
// model.ErrEmptyInput if no flow qualifies.
//
// Flows are processed in a deterministic order (sorted by flow key string)
// so that the global trie's node ids are reproducible across runs with the
// same input, per trie.BuildGlobal's contract.
func (p *Pipeline) Run(flows map[model.FlowKey][]model.Payload) (*Result, error) {
	keys := make([]model.FlowKey, 0, len(flows))
	for k, payloads := range flows {
		if len(payloads) < p.cfg.MinPacketsPerFlow {
			if p.metrics != nil {
				p.metrics.FlowsSkipped.Inc()
			}
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	if len(keys) == 0 {
		return nil, model.ErrEmptyInput
	}

	results := make([]FlowResult, len(keys))
	var eg errgroup.Group
	for i, k := range keys {
		i, k := i, k
		eg.Go(func() error {
			start := time.Now()
			payloads := flows[k]

			t := trie.Build(payloads)
			trie.Tag(t, p.cfg.Threshold)
			ft := field.Build(payloads, p.cfg.EnumThreshold)

			results[i] = FlowResult{Flow: k, Trie: t, Field: ft}

			if p.metrics != nil {
				p.metrics.FlowsProcessed.Inc()
				p.metrics.NodesAllocated.Add(float64(len(t.Nodes)))
				p.metrics.BuildDuration.Observe(time.Since(start).Seconds())
				countFieldKinds(p.metrics, ft)
			}

			p.log.Debug().
				Str("flow", k.String()).
				Int("packets", len(payloads)).
				Int("nodes", len(t.Nodes)).
				Msg("flow built")

			return nil
		})
	}

	// eg.Go's closures never return a non-nil error today, since Build and
	// field.Build have no failure mode; Wait is still called so a future
	// fallible step (e.g. a resource-bounded arena) plugs in without
	// changing Run's shape. Every flow's build runs to completion, but Wait
	// reports only the first non-nil error, which Run returns wrapped in a
	// multierror.Error.
	var errs *multierror.Error
	if err := eg.Wait(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if errs != nil {
		return nil, errs
	}

	ordered := make([][]model.Payload, len(keys))
	for i, k := range keys {
		ordered[i] = flows[k]
	}
	global := trie.BuildGlobal(ordered)
	trie.Tag(global, p.cfg.Threshold)

	return &Result{Flows: results, Global: global}, nil
}

func countFieldKinds(m *metrics.Collectors, t *field.Tree) {
	var walk func(n *field.Node)
	walk = func(n *field.Node) {
		m.FieldsTyped.Inc()
		m.FieldTypeResults.WithLabelValues(n.Kind.String()).Inc()
		for _, c := range n.Children {
			walk(c)
		}
		for _, c := range n.Branches {
			walk(c)
		}
	}
	for _, c := range t.Root.Children {
		walk(c)
	}
}
