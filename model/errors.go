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

package model

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when the flows map has no flow with at least
// MinPacketsPerFlow payloads. It is not a fault: callers should treat it as
// "nothing to build" and proceed with empty outputs.
var ErrEmptyInput = errors.New("no flow has enough payloads to build a tree")

// ConfigError wraps a rejected configuration value. It is returned before
// any build begins, so a caller never observes a partially built tree.
type ConfigError struct {
	Field string
	Value interface{}
	Cause string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration for %s (value %v): %s", e.Field, e.Value, e.Cause)
}

// ResourceError reports that the node arena could not grow to accommodate a
// flow's trie. It carries enough context for the caller to decide whether to
// retry with a smaller flow set or a larger budget.
type ResourceError struct {
	Flow             FlowKey
	ApproximateNodes int
	Cause            error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("could not grow node arena for flow %s (~%d nodes): %v", e.Flow, e.ApproximateNodes, e.Cause)
}

func (e *ResourceError) Unwrap() error {
	return e.Cause
}
