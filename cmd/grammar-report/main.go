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

package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/flowtrace/grammar/codec/snapshot"
	"github.com/flowtrace/grammar/report"
)

func main() {
	var (
		flagSnapshot string
		flagLog      string
		flagCSV      bool
	)

	pflag.StringVarP(&flagSnapshot, "snapshot", "s", "", "snapshot file written by grammar-infer")
	pflag.StringVarP(&flagLog, "log", "l", "info", "log output level")
	pflag.BoolVar(&flagCSV, "csv", false, "print CSV rows instead of the depth summary")

	pflag.Parse()

	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	level, err := zerolog.ParseLevel(flagLog)
	if err != nil {
		log.Fatal().Err(err).Msg("could not parse log level")
	}
	log = log.Level(level)

	if flagSnapshot == "" {
		log.Fatal().Msg("snapshot file is required")
	}

	blob, err := os.ReadFile(flagSnapshot)
	if err != nil {
		log.Fatal().Err(err).Msg("could not read snapshot file")
	}

	codec := snapshot.NewCodec()
	t, err := codec.Unmarshal(blob)
	if err != nil {
		log.Fatal().Err(err).Msg("could not decode snapshot")
	}

	if flagCSV {
		if err := report.WriteCSV(os.Stdout, t); err != nil {
			log.Fatal().Err(err).Msg("could not write csv")
		}
		return
	}

	if err := report.WriteDepthSummary(os.Stdout, t); err != nil {
		log.Fatal().Err(err).Msg("could not write depth summary")
	}
}
