package redpool

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pior/redpool/internal/coarsetime"
)

var errBackendFull = errors.New("redpool: backend full")

// NewStackBackend creates the default backend: a mutex-protected stack.
// The most recently released connection is handed out first.
func NewStackBackend(constructor func(ctx context.Context) (*Connection, error), maxSize int32) (Backend, error) {
	return &stackBackend{
		constructor: constructor,
		maxSize:     maxSize,
		idle:        make([]*stackResource, 0, maxSize),
	}, nil
}

// stackResource implements Resource for the stack backend.
type stackResource struct {
	conn         *Connection
	backend      *stackBackend
	creationTime time.Time
	lastUsedTime time.Time
}

func (r *stackResource) Value() *Connection {
	return r.conn
}

func (r *stackResource) Release() {
	r.lastUsedTime = coarsetime.Now()
	r.backend.put(r)
}

func (r *stackResource) Destroy() {
	_ = r.conn.Close()
	r.backend.remove()
}

func (r *stackResource) CreationTime() time.Time {
	return r.creationTime
}

func (r *stackResource) IdleDuration() time.Duration {
	return coarsetime.Now().Sub(r.lastUsedTime)
}

type stackBackend struct {
	constructor func(ctx context.Context) (*Connection, error)
	maxSize     int32

	mu        sync.Mutex
	idle      []*stackResource
	size      int32 // idle + leased
	closed    bool
	created   uint64
	destroyed uint64
}

// reserve claims a slot for a new connection (must be called with lock held)
func (b *stackBackend) reserve() error {
	if b.closed {
		return ErrPoolClosed
	}
	if b.size >= b.maxSize {
		return errBackendFull
	}
	b.size++
	return nil
}

// open runs the constructor for a reserved slot.
func (b *stackBackend) open(ctx context.Context) (*stackResource, error) {
	conn, err := b.constructor(ctx)
	if err != nil {
		b.mu.Lock()
		b.size--
		b.mu.Unlock()
		return nil, err
	}

	b.mu.Lock()
	b.created++
	b.mu.Unlock()

	now := coarsetime.Now()
	return &stackResource{
		conn:         conn,
		backend:      b,
		creationTime: now,
		lastUsedTime: now,
	}, nil
}

func (b *stackBackend) Fill(ctx context.Context) error {
	b.mu.Lock()
	err := b.reserve()
	b.mu.Unlock()
	if err != nil {
		return err
	}

	res, err := b.open(ctx)
	if err != nil {
		return err
	}
	b.put(res)
	return nil
}

func (b *stackBackend) TryAcquire(ctx context.Context) (Resource, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrPoolClosed
	}

	if n := len(b.idle); n > 0 {
		res := b.idle[n-1]
		b.idle[n-1] = nil
		b.idle = b.idle[:n-1]
		b.mu.Unlock()
		return res, nil
	}

	// Below size after failed fills or destroyed connections: heal
	if err := b.reserve(); err != nil {
		b.mu.Unlock()
		return nil, ErrNoIdleConnection
	}
	b.mu.Unlock()

	res, err := b.open(ctx)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (b *stackBackend) put(res *stackResource) {
	b.mu.Lock()
	if b.closed {
		b.size--
		b.destroyed++
		b.mu.Unlock()
		_ = res.conn.Close()
		return
	}
	b.idle = append(b.idle, res)
	b.mu.Unlock()
}

func (b *stackBackend) remove() {
	b.mu.Lock()
	b.size--
	b.destroyed++
	b.mu.Unlock()
}

func (b *stackBackend) AcquireAllIdle() []Resource {
	b.mu.Lock()
	idle := b.idle
	b.idle = make([]*stackResource, 0, b.maxSize)
	b.mu.Unlock()

	resources := make([]Resource, len(idle))
	for i, res := range idle {
		resources[i] = res
	}
	return resources
}

func (b *stackBackend) Stats() PoolStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	idle := int32(len(b.idle))
	return PoolStats{
		CreatedConns:   b.created,
		DestroyedConns: b.destroyed,
		TotalConns:     b.size,
		IdleConns:      idle,
		ActiveConns:    b.size - idle,
	}
}

func (b *stackBackend) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	idle := b.idle
	b.idle = nil
	b.size -= int32(len(idle))
	b.destroyed += uint64(len(idle))
	b.mu.Unlock()

	for _, res := range idle {
		_ = res.conn.Close()
	}
}
