package redpool

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/pior/redpool/resp"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func createListener(t testing.TB, handler func(conn net.Conn)) string {
	// Start a simple test server
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to start test server: %v", err)
	}

	t.Cleanup(func() {
		listener.Close()
	})

	// Accept connections in background
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}

			go func(c net.Conn) {
				defer c.Close()

				if handler != nil {
					handler(c)
				}
			}(conn)
		}
	}()

	return listener.Addr().String()
}

// refusedAddr returns an address nothing listens on.
func refusedAddr(t testing.TB) string {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())
	return addr
}

// replyEach answers every command line with reply.
func replyEach(reply string) func(conn net.Conn) {
	return func(conn net.Conn) {
		reader := bufio.NewReader(conn)
		for {
			if _, err := reader.ReadString('\n'); err != nil {
				return
			}
			if _, err := conn.Write([]byte(reply)); err != nil {
				return
			}
		}
	}
}

// dialRecorder is an instrumented constructor: it counts dial attempts,
// fails the configured ones and keeps every connection it opened.
type dialRecorder struct {
	addr string
	fail map[int]bool

	mu       sync.Mutex
	attempts int
	conns    []*Connection
}

func newDialRecorder(addr string, failAttempts ...int) *dialRecorder {
	d := &dialRecorder{addr: addr, fail: map[int]bool{}}
	for _, n := range failAttempts {
		d.fail[n] = true
	}
	return d
}

func (d *dialRecorder) constructor(ctx context.Context) (*Connection, error) {
	d.mu.Lock()
	d.attempts++
	fail := d.fail[d.attempts]
	d.mu.Unlock()

	if fail {
		return nil, &ConnectionError{Message: "failed to connect", Err: errors.New("injected failure")}
	}

	conn, err := Dial(ctx, nil, d.addr, resp.FramingLine)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.conns = append(d.conns, conn)
	d.mu.Unlock()
	return conn, nil
}

func (d *dialRecorder) Attempts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attempts
}

func (d *dialRecorder) Conns() []*Connection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Connection(nil), d.conns...)
}

func newTestPool(t testing.TB, addr string, config Config) *Pool {
	t.Helper()
	if config.Logger == nil {
		config.Logger = discardLogger
	}
	pool, err := NewPool(addr, config)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func testContext(t testing.TB) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// sendAndDrain runs a command, reads its reply line and keeps the lease.
func sendAndDrain(t testing.TB, pool *Pool, command string) *Lease {
	t.Helper()
	lease, err := pool.Send(testContext(t), command)
	require.NoError(t, err)
	_, err = lease.ReadLine()
	require.NoError(t, err)
	return lease
}
