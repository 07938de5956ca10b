package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"fsqa-audit-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestSessionLocksSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	locks := NewSessionLocks(newClient(mr), time.Minute)

	unlock, err := locks.Lock(context.Background(), 3)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if !mr.Exists("audit:session:3:lock") {
		t.Fatalf("expected redis lock key to be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	if _, err := locks.Lock(ctx, 3); !errors.Is(err, domain.ErrSessionLocked) {
		t.Fatalf("expected session locked, got %v", err)
	}

	unlock()
	if mr.Exists("audit:session:3:lock") {
		t.Fatalf("expected redis lock key to be removed")
	}
}

func TestSessionLocksReleaseKeepsForeignToken(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	locks := NewSessionLocks(newClient(mr), time.Second)
	unlock, err := locks.Lock(context.Background(), 4)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	// Simulate expiry and takeover by another instance.
	mr.FastForward(2 * time.Second)
	if err := mr.Set("audit:session:4:lock", "other-instance"); err != nil {
		t.Fatalf("seed foreign lock: %v", err)
	}

	unlock()
	got, err := mr.Get("audit:session:4:lock")
	if err != nil || got != "other-instance" {
		t.Fatalf("expected foreign lock untouched, got %q err=%v", got, err)
	}
}
