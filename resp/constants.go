package resp

// Protocol delimiters
const (
	// CRLF terminates every command and every reply line.
	CRLF = "\r\n"

	// ErrorSigil is the first byte of an error reply: -ERR unknown command\r\n
	ErrorSigil byte = '-'
)

// DefaultMaxErrorLength is the read size used by bounded error framing.
// It counts the bytes following the sigil, terminator included.
const DefaultMaxErrorLength = 255

// Framing controls how the message of an error reply is read off the stream.
//
// The zero value reads the message up to and including its line terminator,
// whatever its length. A positive MaxLength reads at most that many bytes and
// stops early once the terminator is seen; longer messages are truncated and
// their remaining bytes are left on the stream.
type Framing struct {
	MaxLength int
}

// FramingLine reads error messages until CRLF.
var FramingLine = Framing{}

// FramingBounded reads error messages into a buffer of max bytes.
// A non-positive max selects DefaultMaxErrorLength.
func FramingBounded(max int) Framing {
	if max <= 0 {
		max = DefaultMaxErrorLength
	}
	return Framing{MaxLength: max}
}

// Bounded reports whether the framing truncates long messages.
func (f Framing) Bounded() bool {
	return f.MaxLength > 0
}
