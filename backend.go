package redpool

import (
	"context"
	"errors"
	"time"
)

// ErrNoIdleConnection is returned by Backend.TryAcquire when no pooled
// connection can be handed out without waiting.
var ErrNoIdleConnection = errors.New("redpool: no idle connection")

// Backend holds the pooled connections of a Pool.
type Backend interface {
	// Fill opens one connection and adds it to the idle set.
	Fill(ctx context.Context) error

	// TryAcquire returns an idle connection without waiting. When the backend
	// is below its size it may open a new pooled connection, synchronously or
	// in the background. Returns ErrNoIdleConnection when nothing is available.
	TryAcquire(ctx context.Context) (Resource, error)

	// AcquireAllIdle checks out every idle connection.
	AcquireAllIdle() []Resource

	// Stats returns the connection gauges and lifetime counters of the backend.
	Stats() PoolStats

	// Close destroys idle connections. Leased connections are destroyed on release.
	Close()
}

// Resource is a pooled connection checked out of a Backend.
type Resource interface {
	Value() *Connection
	Release()
	Destroy()
	CreationTime() time.Time
	IdleDuration() time.Duration
}

// BackendFactory creates a Backend holding at most maxSize connections.
type BackendFactory func(constructor func(ctx context.Context) (*Connection, error), maxSize int32) (Backend, error)
