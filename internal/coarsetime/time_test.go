package coarsetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNow(t *testing.T) {
	before := time.Now()
	got := Now()

	assert.False(t, got.Before(before.Add(-Resolution)))

	assert.Eventually(t, func() bool {
		return Now().After(got)
	}, time.Second, Resolution)
}

func BenchmarkNow(b *testing.B) {
	var t time.Time

	b.Run("time", func(b *testing.B) {
		for b.Loop() {
			t = time.Now()
		}
	})

	b.Run("coarsetime", func(b *testing.B) {
		for b.Loop() {
			t = Now()
		}
	})

	_ = t
}
