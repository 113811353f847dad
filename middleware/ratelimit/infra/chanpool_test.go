package infra

import (
	"context"
	"testing"
	"time"
)

func TestChanPool_BlocksWhenFullAndReleasesOnce(t *testing.T) {
	pool := NewChanPool(1)

	release, ok := pool.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected first acquire to succeed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, ok := pool.Acquire(ctx); ok {
		t.Fatalf("expected second acquire to time out")
	}

	release()
	release()
	if got := InUse(pool); got != 0 {
		t.Fatalf("expected 0 slots in use after release, got %d", got)
	}
}
