package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/pior/redpool"
	"github.com/pior/redpool/promexporter"
	"github.com/pior/redpool/resp"
	"github.com/spf13/cobra"
)

var (
	addr          string
	poolSize      int32
	timeout       time.Duration
	boundedErrors int
	logLevel      string
	logFormat     string
	metricsAddr   string
)

var rootCmd = &cobra.Command{
	Use:   "redpool-cli [command...]",
	Short: "Send commands to a Redis compatible server through a connection pool",
	Long: `redpool-cli sends plain text commands (PING, SET foo bar) and prints the
first line of each reply.

With arguments, the arguments form a single command. Without, commands are
read from stdin, one per line.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", "localhost:6379", "Server address (host:port)")
	rootCmd.Flags().Int32Var(&poolSize, "pool-size", redpool.DefaultMaxSize, "Connections opened at startup")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Timeout of each command")
	rootCmd.Flags().IntVar(&boundedErrors, "bounded-errors", 0, "Read at most N bytes of error replies (0 reads the whole line)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "text", "Log format: text, json")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
}

func run(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd.ErrOrStderr(), logLevel, logFormat)

	config := redpool.Config{
		MaxSize: poolSize,
		Dialer:  &net.Dialer{Timeout: timeout},
		Logger:  logger,
	}
	if boundedErrors > 0 {
		config.ErrorFraming = resp.FramingBounded(boundedErrors)
	}

	pool, err := redpool.NewPool(addr, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	err = pool.SetMaxSize(poolSize).Establish(ctx)
	cancel()
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		exporter := promexporter.NewExporter()
		exporter.Watch(pool)
		go func() {
			if err := exporter.ServeHTTP(metricsAddr); err != nil {
				logger.Error("redpool-cli: metrics server stopped", "addr", metricsAddr, "error", err)
			}
		}()
	}

	if len(args) > 0 {
		return execute(cmd.Context(), pool, cmd.OutOrStdout(), strings.Join(args, " "))
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}

		if err := execute(cmd.Context(), pool, cmd.OutOrStdout(), line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// execute sends one command and prints its reply. Server error replies are
// printed; transport failures are returned.
func execute(ctx context.Context, pool *redpool.Pool, out io.Writer, command string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	line, err := pool.Do(ctx, command)

	var serverErr *resp.ServerError
	switch {
	case errors.As(err, &serverErr):
		fmt.Fprintf(out, "(error) %s\n", serverErr.Message)
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintf(out, "%s (%s)\n", line, time.Since(start).Round(time.Microsecond))
	return nil
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
