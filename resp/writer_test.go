package resp

import (
	"bufio"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCommand(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		expected string
	}{
		{"ping", "PING", "PING\r\n"},
		{"set", "SET foo bar", "SET foo bar\r\n"},
		{"empty", "", "\r\n"},
		{"verbatim", "SET k \"a b\"", "SET k \"a b\"\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := bufio.NewWriter(&buf)

			require.NoError(t, WriteCommand(w, tt.command))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestWriteCommand_Error(t *testing.T) {
	w := bufio.NewWriter(failingWriter{})

	err := WriteCommand(w, "PING")
	require.EqualError(t, err, "broken pipe")
}
