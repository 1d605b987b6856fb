package main

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer answers PING with +PONG and anything else with an error reply.
func startServer(t *testing.T) string {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				reader := bufio.NewReader(c)
				for {
					line, err := reader.ReadString('\n')
					if err != nil {
						return
					}
					reply := "-ERR unknown command\r\n"
					if strings.TrimSpace(line) == "PING" {
						reply = "+PONG\r\n"
					}
					if _, err := c.Write([]byte(reply)); err != nil {
						return
					}
				}
			}(conn)
		}
	}()

	return listener.Addr().String()
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_SingleCommand(t *testing.T) {
	addr := startServer(t)

	out, err := runCLI(t, "", "--addr", addr, "--pool-size", "2", "PING")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "+PONG ("), out)
}

func TestCLI_Stdin(t *testing.T) {
	addr := startServer(t)

	out, err := runCLI(t, "PING\n\nFOO bar\nquit\nPING\n", "--addr", addr, "--pool-size", "1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "+PONG"))
	assert.Equal(t, "(error) ERR unknown command", lines[1])
}

func TestCLI_InvalidAddress(t *testing.T) {
	_, err := runCLI(t, "", "--addr", "no-port", "PING")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse connection string")
}
