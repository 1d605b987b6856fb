package resp

import "bufio"

// WriteCommand writes text followed by CRLF and flushes w.
//
// The text is written verbatim: no escaping and no multi-bulk encoding. The
// caller assembles the command line (SET foo bar).
//
// A write is never partial from the caller's point of view: either the whole
// line reached the underlying writer or an error is returned.
func WriteCommand(w *bufio.Writer, text string) error {
	if _, err := w.WriteString(text); err != nil {
		return err
	}
	if _, err := w.WriteString(CRLF); err != nil {
		return err
	}
	return w.Flush()
}
