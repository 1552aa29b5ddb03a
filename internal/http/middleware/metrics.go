package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Counters shared by all limiter variants. The limiter label tells the
// fixed-window implementations apart: "redis" (per IP, shared across
// instances), "local" (per IP, in-process) and "player" (per account).
var (
	RLRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reward_api_ratelimit_requests_total",
			Help: "Requests seen by a rate limiter",
		},
		[]string{"limiter", "endpoint"},
	)
	RLBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reward_api_ratelimit_blocked_total",
			Help: "Requests blocked by a rate limiter",
		},
		[]string{"limiter", "endpoint"},
	)
)

func init() {
	prometheus.MustRegister(RLRequests, RLBlocked)
}
