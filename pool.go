package redpool

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"

	"github.com/pior/redpool/resp"
	"github.com/sony/gobreaker/v2"
)

// State is the lifecycle stage of a Pool.
type State int32

const (
	StateUnestablished State = iota
	StateEstablished
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnestablished:
		return "unestablished"
	case StateEstablished:
		return "established"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Pool keeps warm connections to a single server and reuses them across
// commands. It is safe for concurrent use: the lock only covers bookkeeping,
// commands run on connections exclusively held by a Lease.
type Pool struct {
	addr        *net.TCPAddr
	dialer      *net.Dialer
	config      Config
	logger      *slog.Logger
	constructor func(ctx context.Context) (*Connection, error)
	breaker     *gobreaker.CircuitBreaker[*Lease]

	mu      sync.Mutex
	state   State
	maxSize int32
	size    int32 // maxSize at establishment
	backend Backend // nil until established, or when established with size 0

	stats poolStatsCollector
}

// NewPool creates a pool for an endpoint of the form host:port.
// The first address the host resolves to is used for every connection.
func NewPool(endpoint string, config Config) (*Pool, error) {
	addr, err := net.ResolveTCPAddr("tcp", endpoint)
	if err != nil {
		return nil, &SetupError{Message: "failed to parse connection string", Err: err}
	}
	return NewPoolFromAddr(addr, config), nil
}

// NewPoolFromAddr creates a pool for a resolved address.
func NewPoolFromAddr(addr *net.TCPAddr, config Config) *Pool {
	maxSize := config.MaxSize
	if maxSize == 0 {
		maxSize = DefaultMaxSize
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dialer := config.Dialer
	if dialer == nil {
		dialer = &net.Dialer{}
	}

	p := &Pool{
		addr:    addr,
		dialer:  dialer,
		config:  config,
		logger:  logger,
		maxSize: maxSize,
	}

	p.constructor = config.constructor
	if p.constructor == nil {
		p.constructor = func(ctx context.Context) (*Connection, error) {
			return Dial(ctx, p.dialer, p.addr.String(), p.config.ErrorFraming)
		}
	}

	if config.NewCircuitBreaker != nil {
		p.breaker = config.NewCircuitBreaker(addr.String())
	}

	return p
}

// Addr returns the server address.
func (p *Pool) Addr() net.Addr {
	return p.addr
}

// State returns the lifecycle stage of the pool.
func (p *Pool) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// MaxSize returns the configured pool size.
func (p *Pool) MaxSize() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxSize
}

// SetMaxSize sets the number of connections Establish opens.
// It has no effect once the pool is established.
func (p *Pool) SetMaxSize(n int32) *Pool {
	p.mu.Lock()
	p.maxSize = n
	p.mu.Unlock()
	return p
}

// Establish opens MaxSize connections, one after the other.
//
// A connection that cannot be opened is logged and skipped: the pool may end
// up with fewer connections, or none, and is still established. Missing
// connections are opened on demand by later commands.
//
// Establish can run once. Later calls return ErrAlreadyEstablished.
func (p *Pool) Establish(ctx context.Context) error {
	p.mu.Lock()
	switch p.state {
	case StateEstablished:
		p.mu.Unlock()
		return ErrAlreadyEstablished
	case StateClosed:
		p.mu.Unlock()
		return ErrPoolClosed
	}

	maxSize := p.maxSize
	if maxSize < 0 {
		p.mu.Unlock()
		return &SetupError{Message: "pool size must not be negative"}
	}

	var backend Backend
	if maxSize > 0 {
		factory := p.config.Backend
		if factory == nil {
			factory = NewStackBackend
		}

		var err error
		backend, err = factory(p.constructor, maxSize)
		if err != nil {
			p.mu.Unlock()
			var setupErr *SetupError
			if errors.As(err, &setupErr) {
				return err
			}
			return &SetupError{Message: "failed to create pool backend", Err: err}
		}
	}

	p.backend = backend
	p.size = maxSize
	p.state = StateEstablished
	p.mu.Unlock()

	for i := int32(0); i < maxSize; i++ {
		if err := backend.Fill(ctx); err != nil {
			// Concurrent commands already opened the remaining connections
			if errors.Is(err, errBackendFull) {
				break
			}

			p.logger.Warn("redpool: failed to open pool connection",
				"addr", p.addr.String(), "attempt", i+1, "size", maxSize, "error", err)

			if ctx.Err() != nil || errors.Is(err, ErrPoolClosed) {
				break
			}
		}
	}

	return nil
}

// Send runs one command and returns the lease of the connection it ran on.
//
// The connection is the most recently returned idle one. When none is idle,
// one connection is opened for this command only and closed on release.
//
// On success the reply is left unread on the connection; the caller reads it
// through the lease if needed and must call Release. On failure no lease is
// returned: the connection goes back to the pool when only the server reported
// an error, and is destroyed otherwise.
func (p *Pool) Send(ctx context.Context, command string) (*Lease, error) {
	if p.breaker == nil {
		return p.send(ctx, command)
	}

	lease, err := p.breaker.Execute(func() (*Lease, error) {
		return p.send(ctx, command)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, newCommandError(err)
	}
	return lease, err
}

// Do runs one command and returns the first line of its reply (+OK).
// Replies spanning several lines need Send: for those Do returns the header
// line ($6) and the connection is destroyed with the unread rest.
func (p *Pool) Do(ctx context.Context, command string) (string, error) {
	lease, err := p.Send(ctx, command)
	if err != nil {
		return "", err
	}
	defer lease.Release()

	line, err := lease.ReadLine()
	if err != nil {
		return "", newCommandError(err)
	}
	if !resp.IsLineReply(line) {
		lease.Destroy()
	}
	return line, nil
}

func (p *Pool) send(ctx context.Context, command string) (*Lease, error) {
	lease, err := p.checkout(ctx)
	if err != nil {
		return nil, err
	}

	if err := lease.conn.Send(ctx, command); err != nil {
		p.stats.recordCommandError()
		lease.Release()
		return nil, err
	}

	return lease, nil
}

// checkout hands out a pooled connection, or an overflow one.
func (p *Pool) checkout(ctx context.Context) (*Lease, error) {
	p.mu.Lock()
	state, backend := p.state, p.backend
	p.mu.Unlock()

	if state == StateClosed {
		return nil, ErrPoolClosed
	}

	p.stats.recordAcquire()

	if backend != nil {
		res, err := backend.TryAcquire(ctx)
		if err == nil {
			return &Lease{pool: p, conn: res.Value(), resource: res}, nil
		}
		if !errors.Is(err, ErrNoIdleConnection) {
			return nil, err
		}
	}

	conn, err := p.constructor(ctx)
	if err != nil {
		return nil, err
	}
	p.stats.recordOverflowOpen()

	return &Lease{pool: p, conn: conn}, nil
}

// CheckIdle pings every idle connection and destroys the ones that fail.
// Returns the number of destroyed connections.
func (p *Pool) CheckIdle(ctx context.Context) int {
	p.mu.Lock()
	backend := p.backend
	p.mu.Unlock()

	if backend == nil {
		return 0
	}

	destroyed := 0
	for _, res := range backend.AcquireAllIdle() {
		conn := res.Value()
		if err := conn.Send(ctx, "PING"); err == nil {
			_, _ = conn.ReadLine()
		}

		if !conn.reusable() {
			p.logger.Debug("redpool: destroying unhealthy connection", "addr", p.addr.String())
			res.Destroy()
			destroyed++
			continue
		}
		res.Release()
	}
	return destroyed
}

// Stats returns a snapshot of pool statistics.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	backend, maxSize := p.backend, p.maxSize
	if p.state != StateUnestablished {
		maxSize = p.size
	}
	p.mu.Unlock()

	var s PoolStats
	if backend != nil {
		s = backend.Stats()
	}
	s.MaxSize = maxSize
	return p.stats.merge(s)
}

// Close destroys the idle connections. Leased connections are closed when
// released. Calling Close more than once is a no-op.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.state == StateClosed {
		p.mu.Unlock()
		return
	}
	p.state = StateClosed
	backend := p.backend
	p.mu.Unlock()

	if backend != nil {
		backend.Close()
	}
}
