package redpool_test

import (
	"context"
	"fmt"
	"time"

	"github.com/pior/redpool"
	"github.com/pior/redpool/resp"
)

func ExampleNewPool() {
	pool, err := redpool.NewPool("localhost:6379", redpool.Config{})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer pool.Close()

	ctx := context.Background()

	// Open 10 connections; the ones that fail are opened on demand later
	_ = pool.SetMaxSize(10).Establish(ctx)

	if _, err := pool.Do(ctx, "SET foo bar"); err != nil {
		fmt.Println(err)
	}
}

// Example reading the reply left on the connection by Send
func ExamplePool_Send() {
	pool, _ := redpool.NewPool("localhost:6379", redpool.Config{MaxSize: 2})
	defer pool.Close()

	ctx := context.Background()
	_ = pool.Establish(ctx)

	lease, err := pool.Send(ctx, "PING")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer lease.Release()

	buf := make([]byte, 1024)
	n, _ := lease.Read(buf)
	fmt.Printf("Response: %s", buf[:n]) // Response: +PONG

	// The whole reply was read: the connection can be reused
	lease.MarkDrained()
}

// Example keeping the fixed 255 bytes error buffer and a circuit breaker
func ExampleConfig() {
	pool, _ := redpool.NewPool("localhost:6379", redpool.Config{
		MaxSize:           4,
		ErrorFraming:      resp.FramingBounded(resp.DefaultMaxErrorLength),
		NewCircuitBreaker: redpool.NewCircuitBreakerConfig(3, time.Minute, 10*time.Second),
	})
	defer pool.Close()

	_ = pool.Establish(context.Background())
	fmt.Println(pool.Stats().TotalConns)
}
