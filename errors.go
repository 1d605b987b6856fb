package redpool

// Error kinds reported by the pool and its connections.
//
// Every fallible operation returns one of *SetupError, *ConnectionError or
// *CommandError. The message is the only diagnostic payload; wrapped errors are
// reachable with errors.Is and errors.As.

var (
	// ErrAlreadyEstablished is returned by a second call to Pool.Establish.
	ErrAlreadyEstablished = &SetupError{Message: "pool already established, cannot establish again"}

	// ErrPoolClosed is returned when using a closed pool.
	ErrPoolClosed = &SetupError{Message: "pool closed"}

	// ErrLeaseReleased is returned when reading or writing through a released lease.
	ErrLeaseReleased = &CommandError{Message: "lease already released"}

	// ErrConnectionClosed is returned when sending on a closed connection.
	ErrConnectionClosed = &CommandError{Message: "connection closed"}
)

// SetupError reports bad configuration or misuse before any I/O happened:
// an unparseable endpoint, an invalid pool size, a second establishment.
type SetupError struct {
	Message string
	Err     error
}

func (e *SetupError) Error() string {
	if e.Err != nil {
		return "redpool: setup error: " + e.Message + ": " + e.Err.Error()
	}
	return "redpool: setup error: " + e.Message
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// ConnectionError reports a failure to establish the transport stream.
type ConnectionError struct {
	Message string
	Err     error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return "redpool: connection error: " + e.Message + ": " + e.Err.Error()
	}
	return "redpool: connection error: " + e.Message
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// CommandError reports a failure during one command exchange.
//
// For a server error reply, Message is the decoded reply without its sigil and
// terminator ("ERR unknown command") and Err is a *resp.ServerError. For write
// and read failures, Message carries the underlying I/O error text.
type CommandError struct {
	Message string
	Err     error
}

func (e *CommandError) Error() string {
	return "redpool: command error: " + e.Message
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func newCommandError(err error) *CommandError {
	return &CommandError{Message: err.Error(), Err: err}
}
