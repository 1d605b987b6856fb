package resp

import "errors"

// ServerError is an error reply sent by the server.
//
// The protocol state of the connection is intact after a ServerError unless
// Truncated is set. A truncated frame leaves unread bytes on the stream (or
// the stream ended before the terminator) and the connection must be closed.
type ServerError struct {
	Message   string
	Truncated bool
}

func (e *ServerError) Error() string {
	return e.Message
}

// ShouldCloseConnection returns true when the rest of the frame was not consumed
func (e *ServerError) ShouldCloseConnection() bool {
	return e.Truncated
}

// ErrorWithConnectionState is implemented by errors that know whether the
// connection they happened on can still be used.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection reports whether err leaves the connection unusable.
//
// Returns false for nil and for complete server error replies. Any other error
// (I/O failure, EOF, truncated frame, unknown type) closes the connection.
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}

	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}

	// Unknown error type - be conservative and close connection
	return true
}
