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

// Package config holds the tunables of the inference engine and validates
// them before any tree is built.
package config

import (
	"github.com/go-playground/validator/v10"

	"github.com/flowtrace/grammar/model"
)

// Default tunables, per the core's external interface.
const (
	DefaultThreshold         = 0.95
	DefaultEnumThreshold     = 10
	DefaultMinPacketsPerFlow = 2
)

// Config carries the engine's tunables. Zero values are not valid
// configuration; use New to get a config with the documented defaults.
type Config struct {
	// Threshold is the minimum ratio, inclusive, at which a trie node is
	// tagged constant rather than variable.
	Threshold float64 `validate:"gte=0,lte=1"`
	// EnumThreshold is the maximum number of distinct byte values admissible
	// for an ENUMERATED field node.
	EnumThreshold int `validate:"gte=2"`
	// MinPacketsPerFlow is the minimum payload count a flow must have to be
	// considered by the per-flow builder; flows below it are skipped.
	MinPacketsPerFlow int `validate:"gte=1"`
}

// New returns a Config with the documented default tunables.
func New() Config {
	return Config{
		Threshold:         DefaultThreshold,
		EnumThreshold:     DefaultEnumThreshold,
		MinPacketsPerFlow: DefaultMinPacketsPerFlow,
	}
}

var validate = validator.New()

// Validate rejects a configuration that falls outside the documented bounds,
// returning a *model.ConfigError identifying the offending field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return &model.ConfigError{Field: "config", Value: c, Cause: err.Error()}
	}

	first := verrs[0]
	return &model.ConfigError{
		Field: first.Field(),
		Value: first.Value(),
		Cause: "failed validation: " + first.Tag(),
	}
}
