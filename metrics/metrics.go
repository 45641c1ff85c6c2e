// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/weighted-voting/governance"
)

const Namespace = "weighted_voting"

var _ governance.Recorder = (*Metrics)(nil)

// Metrics counts governance operations and API requests.
type Metrics struct {
	operations      *prometheus.CounterVec
	votes           *prometheus.CounterVec
	weightCast      *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func New(namespace string, registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "governance",
			Name:      "operations_total",
			Help:      "Mutating operations by outcome",
		}, []string{"op", "result"}),
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "governance",
			Name:      "votes_total",
			Help:      "Votes cast",
		}, []string{"side"}),
		weightCast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "governance",
			Name:      "weight_cast_total",
			Help:      "Voting weight cast",
		}, []string{"side"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of requests.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	err := errors.Join(
		registerer.Register(m.operations),
		registerer.Register(m.votes),
		registerer.Register(m.weightCast),
		registerer.Register(m.requests),
		registerer.Register(m.requestDuration),
	)
	return m, err
}

// Op implements governance.Recorder.
func (m *Metrics) Op(op string, err error) {
	m.operations.WithLabelValues(op, Result(err)).Inc()
}

// VoteCast implements governance.Recorder.
func (m *Metrics) VoteCast(support bool, weight int64) {
	side := "against"
	if support {
		side = "for"
	}
	m.votes.WithLabelValues(side).Inc()
	m.weightCast.WithLabelValues(side).Add(float64(weight))
}

// ObserveRequest records one finished API request.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// Result is the label value for an operation outcome.
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	switch governance.Kind(err) {
	case governance.ErrUnauthorized:
		return "unauthorized"
	case governance.ErrInvalidArgument:
		return "invalid_argument"
	case governance.ErrNotFound:
		return "not_found"
	case governance.ErrAlreadyVoted:
		return "already_voted"
	case governance.ErrNotActive:
		return "not_active"
	case governance.ErrInvalidTransition:
		return "invalid_transition"
	}
	return "error"
}
