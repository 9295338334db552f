package pcre

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// resetInit returns the library to the uninitialized state and restores it
// when the test finishes.
func resetInit(t *testing.T) {
	t.Helper()
	initMu.Lock()
	initPhase.Store(phaseUninitialized)
	initCurrent = nil
	initVersion.Store(nil)
	initMu.Unlock()

	t.Cleanup(func() {
		initEngine = defaultInitEngine
		if err := Init(context.Background()); err != nil {
			t.Fatalf("re-Init: %v", err)
		}
	})
}

var defaultInitEngine = initEngine

func TestCompileBeforeInit(t *testing.T) {
	resetInit(t)

	if Ready() {
		t.Fatal("Ready() = true after reset")
	}
	if v := Version(); v != "" {
		t.Errorf("Version() before Init = %q, want empty", v)
	}
	_, err := Compile(`a`, "")
	var uerr *UsageError
	if !errors.As(err, &uerr) || !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Compile before Init error = %v, want UsageError(ErrNotInitialized)", err)
	}
}

func TestInitIdempotent(t *testing.T) {
	resetInit(t)

	for i := 0; i < 3; i++ {
		if err := Init(context.Background()); err != nil {
			t.Fatalf("Init #%d: %v", i, err)
		}
	}
	if !Ready() {
		t.Fatal("Ready() = false after Init")
	}
	if v := Version(); !strings.HasPrefix(v, "regexp2 ") {
		t.Errorf("Version() = %q", v)
	}
}

func TestInitConcurrentCallersShareAttempt(t *testing.T) {
	resetInit(t)

	var calls atomic.Int32
	release := make(chan struct{})
	initEngine = func() error {
		calls.Add(1)
		<-release
		return nil
	}

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = Init(context.Background())
		}()
	}

	// Give every caller a chance to block on the attempt.
	time.Sleep(20 * time.Millisecond)
	if Ready() {
		t.Error("Ready() = true while initializing")
	}
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: %v", i, err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("setup ran %d times, want 1", got)
	}
}

func TestInitFailureReturnsToUninitialized(t *testing.T) {
	resetInit(t)

	boom := errors.New("boom")
	initEngine = func() error { return boom }

	if err := Init(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Init error = %v, want boom", err)
	}
	if Ready() {
		t.Fatal("Ready() = true after failed Init")
	}

	initEngine = defaultInitEngine
	if err := Init(context.Background()); err != nil {
		t.Fatalf("retry Init: %v", err)
	}
	if !Ready() {
		t.Error("Ready() = false after successful retry")
	}
}

func TestInitContextBoundsWait(t *testing.T) {
	resetInit(t)

	release := make(chan struct{})
	initEngine = func() error {
		<-release
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := Init(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Init error = %v, want deadline exceeded", err)
	}

	close(release)
	if err := Init(context.Background()); err != nil {
		t.Fatalf("Init after release: %v", err)
	}
}
