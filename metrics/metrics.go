// Package metrics collects per-variant phase timings across a multi-variant run
// and exports them in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/summa-dev/summa-bench/consts"
	"github.com/summa-dev/summa-bench/errs"
	"github.com/summa-dev/summa-bench/result"
)

const namespace = "summa_bench"

type RunMetrics struct {
	Variant      consts.Variant `json:"variant"`
	K            uint32         `json:"k"`
	Users        int            `json:"n_users"`
	Currencies   int            `json:"n_currencies"`
	SetupMs      int64          `json:"setup_ms"`
	CommitmentMs int64          `json:"commitment_ms"`
	InclusionMs  int64          `json:"inclusion_ms"`
	Failed       bool           `json:"failed"`
	LastError    string         `json:"last_error,omitempty"`
}

type Summary struct {
	TotalRuns   uint64 `json:"total_runs"`
	TotalFailed uint64 `json:"total_failed"`
}

type Snapshot struct {
	GeneratedAtMs int64        `json:"generated_at_ms"`
	Summary       Summary      `json:"summary"`
	Runs          []RunMetrics `json:"runs,omitempty"`
}

// Collector is safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	runs    map[consts.Variant]*RunMetrics
	order   []consts.Variant
	summary Summary

	registry   *prometheus.Registry
	setup      *prometheus.GaugeVec
	commitment *prometheus.GaugeVec
	inclusion  *prometheus.GaugeVec
	users      *prometheus.GaugeVec
	runsTotal  *prometheus.CounterVec
}

func NewCollector() *Collector {
	labels := []string{"variant"}
	c := &Collector{
		runs:     make(map[consts.Variant]*RunMetrics, len(consts.Variants)),
		registry: prometheus.NewRegistry(),
		setup: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "setup_milliseconds",
			Help:      "Untimed setup phase (circuit compile and key generation) duration.",
		}, labels),
		commitment: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "commitment_generation_milliseconds",
			Help:      "Commitment phase duration.",
		}, labels),
		inclusion: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inclusion_generation_milliseconds",
			Help:      "Inclusion proof phase duration.",
		}, labels),
		users: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "users",
			Help:      "Population size of the run.",
		}, labels),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Benchmark runs by outcome.",
		}, []string{"variant", "outcome"}),
	}
	c.registry.MustRegister(c.setup, c.commitment, c.inclusion, c.users, c.runsTotal)
	return c
}

func (c *Collector) getOrCreateLocked(v consts.Variant) *RunMetrics {
	if m, ok := c.runs[v]; ok {
		return m
	}
	m := &RunMetrics{Variant: v}
	c.runs[v] = m
	c.order = append(c.order, v)
	return m
}

// RecordRun stores a completed run. setup is reported separately from the result
// because the result deliberately excludes it.
func (c *Collector) RecordRun(v consts.Variant, res result.Result, setup time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreateLocked(v)
	*m = RunMetrics{
		Variant:      v,
		K:            res.K(),
		Users:        res.Users(),
		Currencies:   res.Currencies(),
		SetupMs:      setup.Milliseconds(),
		CommitmentMs: res.CommitmentMillis(),
		InclusionMs:  res.InclusionMillis(),
	}
	c.summary.TotalRuns++

	label := string(v)
	c.setup.WithLabelValues(label).Set(float64(m.SetupMs))
	c.commitment.WithLabelValues(label).Set(float64(m.CommitmentMs))
	c.inclusion.WithLabelValues(label).Set(float64(m.InclusionMs))
	c.users.WithLabelValues(label).Set(float64(m.Users))
	c.runsTotal.WithLabelValues(label, "ok").Inc()
}

func (c *Collector) RecordFailure(v consts.Variant, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreateLocked(v)
	m.Failed = true
	if err != nil {
		m.LastError = err.Error()
	}
	c.summary.TotalRuns++
	c.summary.TotalFailed++
	c.runsTotal.WithLabelValues(string(v), "failed").Inc()
}

func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		GeneratedAtMs: time.Now().UnixMilli(),
		Summary:       c.summary,
		Runs:          make([]RunMetrics, 0, len(c.order)),
	}
	for _, v := range c.order {
		snap.Runs = append(snap.Runs, *c.runs[v])
	}
	return snap
}

// WriteTextfile atomically writes every metric to path for the node_exporter
// textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("%w: write metrics %s: %w", errs.ErrIO, path, err)
	}
	return nil
}
