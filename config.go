package redpool

import (
	"context"
	"log/slog"
	"net"

	"github.com/pior/redpool/resp"
	"github.com/sony/gobreaker/v2"
)

// DefaultMaxSize is the pool size used when Config.MaxSize is zero.
const DefaultMaxSize = 10

// Config holds the configuration of a Pool.
type Config struct {
	// MaxSize is the number of connections opened by Establish.
	// Zero means DefaultMaxSize; use Pool.SetMaxSize(0) for a pool that only
	// opens connections on demand. Negative values are rejected by Establish.
	MaxSize int32

	// Dialer is the net.Dialer used to create new connections.
	// If nil, the default net.Dialer is used.
	Dialer *net.Dialer

	// ErrorFraming selects how error replies are read.
	// The zero value reads the message up to CRLF; resp.FramingBounded(255)
	// keeps the fixed-buffer behaviour and truncates longer messages.
	ErrorFraming resp.Framing

	// Backend is the factory of the idle connection store.
	// If nil, uses NewStackBackend (strict LIFO).
	Backend BackendFactory

	// NewCircuitBreaker creates the circuit breaker guarding Send.
	// Called once with the resolved server address.
	// If nil, no circuit breaker is used.
	NewCircuitBreaker func(serverAddr string) *gobreaker.CircuitBreaker[*Lease]

	// Logger receives connection failures during establishment.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// for testing purposes only
	constructor func(ctx context.Context) (*Connection, error)
}

// DefaultConfig returns a Config with every default spelled out.
func DefaultConfig() Config {
	return Config{
		MaxSize:      DefaultMaxSize,
		Dialer:       &net.Dialer{},
		ErrorFraming: resp.FramingLine,
		Backend:      NewStackBackend,
		Logger:       slog.Default(),
	}
}
