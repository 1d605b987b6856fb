package redpool

import (
	"time"

	"github.com/pior/redpool/resp"
	"github.com/sony/gobreaker/v2"
)

// NewCircuitBreakerConfig returns a function that creates the circuit breaker
// of a pool. This is a helper for common use cases.
//
// Server error replies count as successes: the server answered. Only failures
// to connect, write or read trip the breaker.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(string) *gobreaker.CircuitBreaker[*Lease] {
	return func(serverAddr string) *gobreaker.CircuitBreaker[*Lease] {
		settings := gobreaker.Settings{
			Name:        serverAddr,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
			IsSuccessful: isBreakerSuccess,
		}
		return gobreaker.NewCircuitBreaker[*Lease](settings)
	}
}

func isBreakerSuccess(err error) bool {
	return !resp.ShouldCloseConnection(err)
}
