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
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/flowtrace/grammar/codec/snapshot"
	"github.com/flowtrace/grammar/config"
	"github.com/flowtrace/grammar/engine"
	flowpcap "github.com/flowtrace/grammar/flow/pcap"
	"github.com/flowtrace/grammar/metrics"
	"github.com/flowtrace/grammar/metrics/size"
	"github.com/flowtrace/grammar/model"
	"github.com/flowtrace/grammar/pipeline"
	"github.com/flowtrace/grammar/report"
)

func main() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	var (
		flagPcap       string
		flagPort       uint16
		flagLog        string
		flagThreshold  float64
		flagEnum       int
		flagMinPackets int
		flagCSV        string
		flagSnapshot   string
		flagMetrics    string
	)

	pflag.StringVarP(&flagPcap, "pcap", "p", "", "packet capture to infer a grammar from")
	pflag.Uint16VarP(&flagPort, "port", "P", 502, "TCP port identifying the protocol's traffic")
	pflag.StringVarP(&flagLog, "log", "l", "info", "log output level")
	pflag.Float64Var(&flagThreshold, "threshold", config.DefaultThreshold, "constant/variable tagging threshold")
	pflag.IntVar(&flagEnum, "enum-threshold", config.DefaultEnumThreshold, "maximum distinct values for an enumerated field")
	pflag.IntVar(&flagMinPackets, "min-packets", config.DefaultMinPacketsPerFlow, "minimum packets for a flow to be considered")
	pflag.StringVar(&flagCSV, "csv", "", "write the global trie as CSV to this path")
	pflag.StringVar(&flagSnapshot, "snapshot", "", "write a compressed snapshot of the global trie to this path")
	pflag.StringVar(&flagMetrics, "metrics-address", "", "if set, serve prometheus metrics on this address")

	pflag.Parse()

	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	level, err := zerolog.ParseLevel(flagLog)
	if err != nil {
		log.Fatal().Err(err).Msg("could not parse log level")
	}
	log = log.Level(level)

	if flagPcap == "" {
		log.Fatal().Msg("pcap file is required")
	}

	cfg := config.Config{
		Threshold:         flagThreshold,
		EnumThreshold:     flagEnum,
		MinPacketsPerFlow: flagMinPackets,
	}
	collectors := metrics.New()
	p, err := pipeline.New(cfg, log, collectors)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	e := engine.New(log, "grammar-infer", sig)

	if flagMetrics != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{Addr: flagMetrics, Handler: mux}
		e.Component("metrics", func() error {
			err := server.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}, func() {
			_ = server.Close()
		})
	}

	e.Component("inference", func() error {
		return runInference(log, p, flagPcap, flagPort, flagCSV, flagSnapshot)
	}, func() {})

	if err := e.Run(); err != nil {
		log.Fatal().Err(err).Msg("grammar-infer failed")
	}
}

// runInference reads the pcap file, runs the pipeline, and writes the
// requested reports. It is registered as the engine's one-shot component:
// once it returns, the engine shuts down every other registered component,
// including the metrics server.
func runInference(log zerolog.Logger, p *pipeline.Pipeline, pcapPath string, port uint16, csvPath, snapshotPath string) error {
	file, err := os.Open(pcapPath)
	if err != nil {
		return err
	}
	defer file.Close()

	flows, err := flowpcap.ExtractPort(file, port)
	if err != nil {
		return err
	}
	log.Info().Int("flows", len(flows)).Msg("flows extracted")

	result, err := p.Run(flows)
	if errors.Is(err, model.ErrEmptyInput) {
		log.Warn().Msg("no flow had enough packets to build a tree")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().
		Int("flows_built", len(result.Flows)).
		Int("global_nodes", len(result.Global.Nodes)).
		Msg("inference complete")

	if csvPath != "" {
		out, err := os.Create(csvPath)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := report.WriteCSV(out, result.Global); err != nil {
			return err
		}
	}

	if snapshotPath != "" {
		tracker := size.NewTracker(log, time.Minute)
		defer tracker.Stop()
		codec := snapshot.NewCodec().WithSizeTracker(tracker)
		blob, err := codec.Marshal(result.Global)
		if err != nil {
			return err
		}
		if err := os.WriteFile(snapshotPath, blob, 0o644); err != nil {
			return err
		}
	}

	return nil
}
