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

package pipeline_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowtrace/grammar/config"
	"github.com/flowtrace/grammar/metrics"
	"github.com/flowtrace/grammar/model"
	"github.com/flowtrace/grammar/pipeline"
)

func TestPipelineRun(t *testing.T) {
	m := metrics.NewFor(prometheus.NewRegistry())
	p, err := pipeline.New(config.New(), zerolog.Nop(), m)
	require.NoError(t, err)

	flowA := model.NewFlowKey("10.0.0.1", 502, "10.0.0.2", 40000)
	flowB := model.NewFlowKey("10.0.0.3", 502, "10.0.0.4", 40001)

	flows := map[model.FlowKey][]model.Payload{
		flowA: {
			model.Payload("\x01\x02hello\x00"),
			model.Payload("\x01\x02world\x00"),
		},
		flowB: {
			model.Payload("\xAA\xBB"),
		}, // below MinPacketsPerFlow, should be skipped
	}

	result, err := p.Run(flows)
	require.NoError(t, err)
	require.Len(t, result.Flows, 1)
	assert.Equal(t, flowA, result.Flows[0].Flow)
	assert.NotNil(t, result.Flows[0].Trie)
	assert.NotNil(t, result.Flows[0].Field)
	assert.NotNil(t, result.Global)
}

func TestPipelineRunEmptyInput(t *testing.T) {
	m := metrics.NewFor(prometheus.NewRegistry())
	p, err := pipeline.New(config.New(), zerolog.Nop(), m)
	require.NoError(t, err)

	_, err = p.Run(map[model.FlowKey][]model.Payload{})
	assert.ErrorIs(t, err, model.ErrEmptyInput)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	bad := config.New()
	bad.Threshold = 1.5

	_, err := pipeline.New(bad, zerolog.Nop(), nil)
	require.Error(t, err)
}
