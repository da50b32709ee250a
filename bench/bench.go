/*
 * Copyright 2019 Dgraph Labs, Inc. and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command ivfsim replays a cluster access workload through a matrix of
// weighted caches and reports the storage reads each one would cause.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/dgraph-io/ivfcache"
	"github.com/dgraph-io/ivfcache/z"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath  string // Matrix file
	logLevel    string // Log verbosity level
	metricsAddr string // Address to serve Prometheus metrics on, if any
)

var rootCmd = &cobra.Command{
	Use:   "ivfsim",
	Short: "Weighted cluster cache simulator for IVF workloads",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a workload through every cache of a matrix file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return errors.Errorf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := ReadConfig(configPath)
		if err != nil {
			return err
		}
		results, err := simulate(cfg)
		if err != nil {
			return err
		}
		report(cmd.OutOrStdout(), results)

		if metricsAddr == "" {
			return nil
		}
		exporter, err := NewExporter()
		if err != nil {
			return err
		}
		exporter.Record(results)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return exporter.Serve(ctx, metricsAddr)
	},
}

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "Describe the cache option strings accepted in matrix files",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), ivfcache.PolicyHelp)
	},
}

// simulate loads the workload of cfg and replays it through every cache.
func simulate(cfg *Config) ([]*ivfcache.Result, error) {
	w, err := cfg.LoadWeights()
	if err != nil {
		return nil, err
	}
	seq, err := cfg.LoadTrace(w)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"accesses": humanize.Comma(int64(len(seq))),
		"clusters": w.Len(),
		"vectors":  z.Comma(w.Total()),
	}).Info("Loaded workload")

	results := ivfcache.Sweep(cfg.Policies(), seq, w)
	for _, capacity := range cfg.Clairvoyant {
		r, err := ivfcache.Clairvoyant(capacity, seq, w)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	for _, r := range results {
		if r.Err != nil {
			logrus.WithField("policy", r.Policy).Warnf("Simulation failed: %v", r.Err)
			continue
		}
		logrus.WithFields(logrus.Fields{
			"policy":       r.Policy,
			"hits":         r.Hits,
			"misses":       r.Misses,
			"vectors_read": r.VectorsRead,
			"fingerprint":  fmt.Sprintf("%016x", r.Fingerprint),
		}).Debug("Simulation complete")
	}
	return results, nil
}

// report writes one row per result. The evicted weight percentiles are the
// power of two bucket bounds of the eviction histogram.
func report(out io.Writer, results []*ivfcache.Result) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "policy\thits\tmisses\tvectors read\tunique vectors\thit ratio\tamplification\t"+
		"admitted\tevicted\tevicted p50\tevicted p99\t")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\t%v\t\t\t\t\t\t\t\t\t\t\n", r.Policy, r.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.4f\t%.3f\t%s\t%s\t%.0f\t%.0f\t\n",
			r.Policy,
			z.Comma(r.Hits),
			z.Comma(r.Misses),
			z.Comma(r.VectorsRead),
			z.Comma(r.UniqueVectors),
			r.HitRatio(),
			r.ReadAmplification(),
			z.Comma(r.ClustersAdmitted),
			z.Comma(r.ClustersEvicted),
			r.EvictedWeightPercentile(0.5),
			r.EvictedWeightPercentile(0.99),
		)
	}
	tw.Flush()
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "ivfsim.yaml", "Matrix file describing the workload and the caches")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve the results as Prometheus metrics on this address until interrupted")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(policiesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
