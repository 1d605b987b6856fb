package redpool

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/jackc/puddle/v2"
)

// NewPuddleBackend creates a backend on top of github.com/jackc/puddle/v2.
//
// When the pool is below its size, TryAcquire starts creating a connection in
// the background and the current caller is served by an overflow connection.
func NewPuddleBackend(constructor func(ctx context.Context) (*Connection, error), maxSize int32) (Backend, error) {
	b := &puddleBackend{}

	poolConfig := &puddle.Config[*Connection]{
		Constructor: func(ctx context.Context) (*Connection, error) {
			conn, err := constructor(ctx)
			if err == nil {
				b.createdConns.Add(1)
			}
			return conn, err
		},
		Destructor: func(c *Connection) {
			b.destroyedConns.Add(1)
			_ = c.Close()
		},
		MaxSize: maxSize,
	}

	pool, err := puddle.NewPool(poolConfig)
	if err != nil {
		return nil, &SetupError{Message: "invalid puddle pool configuration", Err: err}
	}
	b.pool = pool
	return b, nil
}

// puddleBackend wraps puddle.Pool to implement Backend.
type puddleBackend struct {
	pool           *puddle.Pool[*Connection]
	createdConns   atomic.Uint64
	destroyedConns atomic.Uint64
	closed         atomic.Bool
}

func (b *puddleBackend) Fill(ctx context.Context) error {
	if b.closed.Load() {
		return ErrPoolClosed
	}
	err := b.pool.CreateResource(ctx)
	if errors.Is(err, puddle.ErrNotAvailable) {
		return errBackendFull
	}
	return b.mapError(err)
}

func (b *puddleBackend) TryAcquire(ctx context.Context) (Resource, error) {
	if b.closed.Load() {
		return nil, ErrPoolClosed
	}
	res, err := b.pool.TryAcquire(ctx)
	if err != nil {
		return nil, b.mapError(err)
	}
	return res, nil
}

func (b *puddleBackend) mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, puddle.ErrNotAvailable):
		return ErrNoIdleConnection
	case errors.Is(err, puddle.ErrClosedPool):
		return ErrPoolClosed
	default:
		return err
	}
}

func (b *puddleBackend) AcquireAllIdle() []Resource {
	puddleResources := b.pool.AcquireAllIdle()
	resources := make([]Resource, len(puddleResources))
	for i, res := range puddleResources {
		resources[i] = res
	}
	return resources
}

func (b *puddleBackend) Stats() PoolStats {
	s := b.pool.Stat()

	return PoolStats{
		CreatedConns:   b.createdConns.Load(),
		DestroyedConns: b.destroyedConns.Load(),
		TotalConns:     s.TotalResources(),
		IdleConns:      s.IdleResources(),
		ActiveConns:    s.AcquiredResources(),
	}
}

// Close destroys the idle connections before returning. puddle.Pool.Close
// waits for every acquired resource, so it runs in the background and
// destroys leased connections as they are released.
func (b *puddleBackend) Close() {
	if !b.closed.CompareAndSwap(false, true) {
		return
	}

	for _, res := range b.pool.AcquireAllIdle() {
		res.Hijack()
		b.destroyedConns.Add(1)
		_ = res.Value().Close()
	}

	go b.pool.Close()
}
