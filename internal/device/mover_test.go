package device

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// fakeDevice fails the first failures transfers, then succeeds. It records
// the blocking mode of each attempt.
type fakeDevice struct {
	failures int
	attempts int
	blocking []bool
}

func (d *fakeDevice) Name() string { return "gpu0" }

func (d *fakeDevice) Transfer(ctx context.Context, buf []byte, block bool) error {
	d.attempts++
	d.blocking = append(d.blocking, block)
	if d.attempts <= d.failures {
		return errors.New("device out of memory")
	}
	return nil
}

func TestMove_FirstAttemptNonBlocking(t *testing.T) {
	dev := &fakeDevice{}
	m := NewMover(nil, zap.NewNop())

	if err := m.Move(context.Background(), []byte("data"), dev); err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	if dev.attempts != 1 {
		t.Fatalf("device attempts = %d, want 1", dev.attempts)
	}
	if dev.blocking[0] {
		t.Error("first attempt should be non-blocking")
	}
}

func TestMove_RetriesBlockingAfterReclaim(t *testing.T) {
	dev := &fakeDevice{failures: 1}
	reclaims := 0
	m := NewMover(func(ctx context.Context) { reclaims++ }, zap.NewNop())

	if err := m.Move(context.Background(), []byte("data"), dev); err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	if reclaims != 1 {
		t.Errorf("reclaim ran %d times, want 1", reclaims)
	}
	if dev.attempts != 2 {
		t.Fatalf("device attempts = %d, want 2", dev.attempts)
	}
	if dev.blocking[0] || !dev.blocking[1] {
		t.Errorf("blocking sequence = %v, want [false true]", dev.blocking)
	}
}

func TestMove_SecondFailureIsComposite(t *testing.T) {
	dev := &fakeDevice{failures: 2}
	m := NewMover(func(ctx context.Context) {}, zap.NewNop())

	err := m.Move(context.Background(), []byte("data"), dev)
	if err == nil {
		t.Fatal("Move() succeeded, want error")
	}
	if !strings.Contains(err.Error(), "device out of memory") {
		t.Errorf("composite error %q does not include the original failure", err)
	}
	if dev.attempts != 2 {
		t.Errorf("device attempts = %d, want exactly 2 (bounded retry)", dev.attempts)
	}
}
