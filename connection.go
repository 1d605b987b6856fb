package redpool

import (
	"bufio"
	"context"
	"net"
	"time"

	"github.com/pior/redpool/internal/coarsetime"
	"github.com/pior/redpool/resp"
)

// Connection owns one transport stream to the server.
//
// A Connection handles one command at a time and is not safe for concurrent
// use. Inside a pool it is only reachable through the Lease holding it.
type Connection struct {
	netConn net.Conn
	framing resp.Framing

	// Reader holds the unread part of the last reply.
	Reader *bufio.Reader
	Writer *bufio.Writer

	createdAt time.Time
	lastUsed  time.Time
	broken    bool
	closed    bool
	pending   bool // reply not read up to a known boundary
}

// NewConnection wraps an open stream.
func NewConnection(netConn net.Conn, framing resp.Framing) *Connection {
	now := time.Now()
	return &Connection{
		netConn:   netConn,
		framing:   framing,
		Reader:    bufio.NewReader(netConn),
		Writer:    bufio.NewWriter(netConn),
		createdAt: now,
		lastUsed:  now,
	}
}

// Dial opens a TCP stream to addr. The dialer's own timeouts apply, as does
// the deadline of ctx.
func Dial(ctx context.Context, dialer *net.Dialer, addr string, framing resp.Framing) (*Connection, error) {
	if dialer == nil {
		dialer = &net.Dialer{}
	}

	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &ConnectionError{Message: "failed to connect", Err: err}
	}
	return NewConnection(netConn, framing), nil
}

// Send writes command followed by CRLF and sniffs the first byte of the reply.
//
// On success nothing of the reply is consumed: it can be read through Reader,
// Read or ReadLine. A server error reply is consumed and returned as a
// *CommandError wrapping a *resp.ServerError. Write and read failures mark the
// connection broken.
//
// Bytes still buffered from a previous reply are discarded before writing.
func (c *Connection) Send(ctx context.Context, command string) error {
	if err := ctx.Err(); err != nil {
		return newCommandError(err)
	}

	if c.closed {
		return ErrConnectionClosed
	}

	// Set deadline based on context
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.netConn.SetDeadline(deadline)
	} else {
		_ = c.netConn.SetDeadline(time.Time{})
	}

	if n := c.Reader.Buffered(); n > 0 {
		_, _ = c.Reader.Discard(n)
	}

	c.lastUsed = coarsetime.Now()

	if err := resp.WriteCommand(c.Writer, command); err != nil {
		c.broken = true
		return newCommandError(err)
	}

	c.pending = false
	if err := resp.ReadReply(c.Reader, c.framing); err != nil {
		if resp.ShouldCloseConnection(err) {
			c.broken = true
		}
		return newCommandError(err)
	}

	c.pending = true
	return nil
}

// Read reads the residual reply bytes. The connection stays pending until
// MarkDrained is called.
func (c *Connection) Read(p []byte) (int, error) {
	n, err := c.Reader.Read(p)
	if err != nil {
		c.broken = true
	}
	return n, err
}

// Write writes raw bytes to the stream and flushes them.
func (c *Connection) Write(p []byte) (int, error) {
	n, err := c.Writer.Write(p)
	if err == nil {
		err = c.Writer.Flush()
	}
	if err != nil {
		c.broken = true
	}
	return n, err
}

// ReadLine reads one reply line without its CRLF (+PONG).
//
// A single line reply (simple string, error, integer) is complete after this
// call. Any other line is the header of a longer reply and the connection
// stays pending.
func (c *Connection) ReadLine() (string, error) {
	line, err := resp.ReadLine(c.Reader)
	if err != nil {
		c.broken = true
		return line, err
	}
	if resp.IsLineReply(line) {
		c.pending = false
	}
	return line, nil
}

// Pending reports whether the reply of the last command may still have
// unread bytes. A pending connection cannot serve another command: bytes
// arriving late would be read as the next reply.
func (c *Connection) Pending() bool {
	return c.pending
}

// MarkDrained tells the connection that the caller read the whole reply
// through Read or Reader.
func (c *Connection) MarkDrained() {
	c.pending = false
}

// reusable reports whether the connection can go back to the pool.
func (c *Connection) reusable() bool {
	return !c.Broken() && !c.pending
}

// Broken reports whether an I/O failure left the stream unusable.
func (c *Connection) Broken() bool {
	return c.broken || c.closed
}

// CreatedAt returns when the connection was opened.
func (c *Connection) CreatedAt() time.Time {
	return c.createdAt
}

// LastUsed returns when the last command was sent.
func (c *Connection) LastUsed() time.Time {
	return c.lastUsed
}

// RemoteAddr returns the server address.
func (c *Connection) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// Close closes the stream. Calling Close more than once is a no-op.
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.netConn.Close()
}
