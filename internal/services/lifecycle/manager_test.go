package lifecycle

import (
	"context"
	"errors"
	"os"
	"reflect"
	"syscall"
	"testing"
	"time"
)

func TestShutdownRunsHooksInReverseOrder(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	m.Register("postgres", func(context.Context) error {
		order = append(order, "postgres")
		return nil
	})
	m.RegisterStop("monitor", func() { order = append(order, "monitor") })
	m.RegisterContext("sweeper", func(context.Context) { order = append(order, "sweeper") })

	if got := m.Components(); !reflect.DeepEqual(got, []string{"sweeper", "monitor", "postgres"}) {
		t.Fatalf("unexpected components %v", got)
	}
	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if !reflect.DeepEqual(order, []string{"sweeper", "monitor", "postgres"}) {
		t.Fatalf("unexpected order %v", order)
	}
	if len(m.Components()) != 0 {
		t.Fatalf("hooks must run only once")
	}
}

func TestShutdownJoinsErrors(t *testing.T) {
	m := New(time.Second, nil)
	errRedis := errors.New("redis close failed")
	ran := false
	m.Register("postgres", func(context.Context) error {
		ran = true
		return nil
	})
	m.Register("redis", func(context.Context) error { return errRedis })

	err := m.Shutdown(context.Background())
	if !errors.Is(err, errRedis) {
		t.Fatalf("expected redis error, got %v", err)
	}
	if !ran {
		t.Fatalf("failing hook must not stop the remaining ones")
	}
}

func TestShutdownSkipsHooksAfterDeadline(t *testing.T) {
	m := New(10*time.Millisecond, nil)
	ran := false
	m.Register("first", func(context.Context) error {
		ran = true
		return nil
	})
	m.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	err := m.Shutdown(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if ran {
		t.Fatalf("hook after the deadline must be skipped")
	}
}

func TestListenCancelsOnSignal(t *testing.T) {
	m := New(time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.listen(cancel, syscall.SIGUSR1)
	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("FindProcess failed: %v", err)
	}
	if err := proc.Signal(syscall.SIGUSR1); err != nil {
		t.Fatalf("signal failed: %v", err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("expected cancel after signal")
	}
}
