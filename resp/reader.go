package resp

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"unicode"
)

var crlfBytes = []byte(CRLF)

// ReadReply sniffs the first byte of a reply.
//
// For an error reply (leading '-') the sigil and the message are consumed and
// a *ServerError is returned. For any other reply nothing is consumed: the
// whole reply, first byte included, stays buffered in r for the caller.
//
// Go errors other than *ServerError are I/O failures, including io.EOF when
// the stream ends before the first byte. The connection should be closed.
func ReadReply(r *bufio.Reader, framing Framing) error {
	first, err := r.Peek(1)
	if err != nil {
		return err
	}

	if first[0] != ErrorSigil {
		return nil
	}

	if _, err := r.Discard(1); err != nil {
		return err
	}

	var (
		raw       []byte
		truncated bool
	)
	if framing.Bounded() {
		raw, truncated, err = readBounded(r, framing.MaxLength)
	} else {
		raw, truncated, err = readLine(r)
	}
	if err != nil {
		return err
	}

	return &ServerError{
		Message:   decodeMessage(raw),
		Truncated: truncated,
	}
}

// ReadLine reads one reply line and returns it without its CRLF.
// Useful to drain a simple reply (+OK, +PONG) left by ReadReply.
func ReadLine(r *bufio.Reader) (string, error) {
	line, truncated, err := readLine(r)
	if err != nil {
		return "", err
	}
	if truncated {
		return "", io.ErrUnexpectedEOF
	}
	return string(bytes.TrimSuffix(line, crlfBytes)), nil
}

// IsLineReply reports whether line, a reply line without CRLF, is a whole
// reply by itself: a simple string, an error or an integer.
func IsLineReply(line string) bool {
	if line == "" {
		return false
	}
	switch line[0] {
	case '+', ErrorSigil, ':':
		return true
	}
	return false
}

// readLine reads up to and including LF. A stream ending after at least one
// byte but before LF yields the partial line with truncated set.
func readLine(r *bufio.Reader) ([]byte, bool, error) {
	line, err := r.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		// ReadSlice consumed the buffer, keep it before reading the rest
		head := append([]byte(nil), line...)
		var rest []byte
		rest, err = r.ReadBytes('\n')
		line = append(head, rest...)
	} else {
		line = append([]byte(nil), line...)
	}

	if err == io.EOF && len(line) > 0 {
		return line, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return line, false, nil
}

// readBounded reads at most max bytes, stopping after LF.
func readBounded(r *bufio.Reader, max int) ([]byte, bool, error) {
	buf := make([]byte, 0, max)
	for len(buf) < max {
		b, err := r.ReadByte()
		if err == io.EOF && len(buf) > 0 {
			return buf, true, nil
		}
		if err != nil {
			return nil, false, err
		}
		buf = append(buf, b)
		if b == '\n' {
			return buf, false, nil
		}
	}
	return buf, true, nil
}

// decodeMessage replaces invalid UTF-8, then strips CRLF and trailing spaces.
func decodeMessage(raw []byte) string {
	msg := strings.ToValidUTF8(string(raw), "�")
	msg = strings.TrimSuffix(msg, CRLF)
	return strings.TrimRightFunc(msg, unicode.IsSpace)
}
