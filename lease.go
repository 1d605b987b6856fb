package redpool

// Lease is the exclusive hold on a connection returned by Pool.Send.
//
// The connection stays out of the pool until Release, so the caller can read
// the reply without another command interleaving. A released lease refuses
// further reads and writes.
type Lease struct {
	pool     *Pool
	conn     *Connection
	resource Resource // nil for an overflow connection
	released bool
}

// Conn returns the leased connection.
func (l *Lease) Conn() *Connection {
	return l.conn
}

// Pooled reports whether the connection belongs to the pool. Overflow
// connections are closed on release.
func (l *Lease) Pooled() bool {
	return l.resource != nil
}

// Read reads residual reply bytes from the connection.
func (l *Lease) Read(p []byte) (int, error) {
	if l.released {
		return 0, ErrLeaseReleased
	}
	return l.conn.Read(p)
}

// Write writes raw bytes to the connection.
func (l *Lease) Write(p []byte) (int, error) {
	if l.released {
		return 0, ErrLeaseReleased
	}
	return l.conn.Write(p)
}

// ReadLine reads one reply line without its CRLF.
func (l *Lease) ReadLine() (string, error) {
	if l.released {
		return "", ErrLeaseReleased
	}
	return l.conn.ReadLine()
}

// MarkDrained tells the pool that the whole reply was read through Read.
// Without it, a connection read through Read is destroyed on release.
func (l *Lease) MarkDrained() {
	if l.released {
		return
	}
	l.conn.MarkDrained()
}

// Release returns the connection to the pool. Broken connections and
// connections whose reply was not read to its end are destroyed instead.
// Overflow connections are closed.
// Calling Release more than once is a no-op.
func (l *Lease) Release() {
	if l.released {
		return
	}
	l.released = true

	if l.resource == nil {
		_ = l.conn.Close()
		l.pool.stats.recordOverflowClose()
		return
	}

	if !l.conn.reusable() {
		l.pool.logger.Debug("redpool: destroying connection",
			"addr", l.pool.addr.String(), "broken", l.conn.Broken(), "pending", l.conn.Pending())
		l.resource.Destroy()
		return
	}

	l.resource.Release()
}

// Destroy closes the connection and removes it from the pool.
func (l *Lease) Destroy() {
	if l.released {
		return
	}
	l.released = true

	if l.resource == nil {
		_ = l.conn.Close()
		l.pool.stats.recordOverflowClose()
		return
	}
	l.resource.Destroy()
}
