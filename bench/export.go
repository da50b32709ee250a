/*
 * Copyright 2024 Dgraph Labs, Inc. and Contributors
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

package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dgraph-io/ivfcache"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const namespace = "ivfsim"

// Exporter publishes the outcome of every simulated cache as Prometheus
// gauges labelled by the policy description.
type Exporter struct {
	registry *prometheus.Registry

	hits          *prometheus.GaugeVec
	misses        *prometheus.GaugeVec
	vectorsRead   *prometheus.GaugeVec
	evicted       *prometheus.GaugeVec
	hitRatio      *prometheus.GaugeVec
	amplification *prometheus.GaugeVec
	unique        *prometheus.GaugeVec
	admitted      *prometheus.GaugeVec
	evictedWeight *prometheus.GaugeVec
}

// evictedQuantiles are the quantiles of evicted cluster weights exported per
// policy.
var evictedQuantiles = []float64{0.5, 0.9, 0.99}

func newGaugeVec(name, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, []string{"policy"})
}

// NewExporter registers the simulation gauges with a fresh registry.
func NewExporter() (*Exporter, error) {
	e := &Exporter{
		registry:      prometheus.NewRegistry(),
		hits:          newGaugeVec("hits", "Accesses served by the cache."),
		misses:        newGaugeVec("misses", "Accesses that read the cluster from storage."),
		vectorsRead:   newGaugeVec("vectors_read", "Vectors read from storage on misses."),
		evicted:       newGaugeVec("vectors_evicted", "Vectors evicted from the cache."),
		hitRatio:      newGaugeVec("hit_ratio", "Hits over all accesses."),
		amplification: newGaugeVec("read_amplification", "Vectors read over the unavoidable vector reads."),
		unique:        newGaugeVec("unique_vectors", "Vectors of the distinct clusters of the sequence."),
		admitted:      newGaugeVec("clusters_admitted", "Clusters inserted into the cache."),
		evictedWeight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "evicted_cluster_weight",
			Help:      "Quantiles of the weights of evicted clusters, as power of two bucket bounds.",
		}, []string{"policy", "quantile"}),
	}
	for _, c := range []prometheus.Collector{
		e.hits, e.misses, e.vectorsRead, e.evicted, e.hitRatio, e.amplification, e.unique,
		e.admitted, e.evictedWeight,
	} {
		if err := e.registry.Register(c); err != nil {
			return nil, errors.Wrap(err, "registering metrics")
		}
	}
	return e, nil
}

// Record sets the gauges of every successful result.
func (e *Exporter) Record(results []*ivfcache.Result) {
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		labels := prometheus.Labels{"policy": r.Policy}
		e.hits.With(labels).Set(float64(r.Hits))
		e.misses.With(labels).Set(float64(r.Misses))
		e.vectorsRead.With(labels).Set(float64(r.VectorsRead))
		e.evicted.With(labels).Set(float64(r.VectorsEvicted))
		e.hitRatio.With(labels).Set(r.HitRatio())
		e.amplification.With(labels).Set(r.ReadAmplification())
		e.unique.With(labels).Set(float64(r.UniqueVectors))
		e.admitted.With(labels).Set(float64(r.ClustersAdmitted))
		for _, q := range evictedQuantiles {
			e.evictedWeight.With(prometheus.Labels{
				"policy":   r.Policy,
				"quantile": strconv.FormatFloat(q, 'f', -1, 64),
			}).Set(r.EvictedWeightPercentile(q))
		}
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Serve exposes /metrics on addr until ctx is done.
func (e *Exporter) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	logrus.Infof("Serving metrics on %s/metrics", addr)

	select {
	case err := <-errCh:
		return errors.Wrap(err, "metrics server")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
