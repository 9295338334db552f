package pcre

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/coregx/pcre/internal/engine"
)

// Initialization phases.
const (
	phaseUninitialized int32 = iota
	phaseInitializing
	phaseReady
)

type initAttempt struct {
	done chan struct{}
	err  error
}

var (
	initMu      sync.Mutex
	initPhase   atomic.Int32
	initCurrent *initAttempt
	initVersion atomic.Pointer[string]

	// initEngine is the setup step run by Init.
	initEngine = engine.SelfTest
)

// Init performs the process-wide setup that must complete before the first
// Compile. It verifies that the matching engine works and records its version.
//
// Init is idempotent and safe for concurrent use: concurrent callers wait for
// the same attempt, and callers after a successful Init return immediately.
// If setup fails the library returns to the uninitialized state and a later
// Init retries. ctx bounds only the wait; an attempt in progress is not
// cancelled.
//
// Example:
//
//	if err := pcre.Init(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
func Init(ctx context.Context) error {
	initMu.Lock()
	if initPhase.Load() == phaseReady {
		initMu.Unlock()
		return nil
	}
	a := initCurrent
	if a == nil {
		a = &initAttempt{done: make(chan struct{})}
		initCurrent = a
		initPhase.Store(phaseInitializing)
		go runInit(a)
	}
	initMu.Unlock()

	select {
	case <-a.done:
		return a.err
	case <-ctx.Done():
		return fmt.Errorf("pcre: init: %w", ctx.Err())
	}
}

func runInit(a *initAttempt) {
	err := initEngine()

	initMu.Lock()
	if err != nil {
		a.err = fmt.Errorf("pcre: init: %w", err)
		initPhase.Store(phaseUninitialized)
	} else {
		v := engine.Version()
		initVersion.Store(&v)
		initPhase.Store(phaseReady)
	}
	initCurrent = nil
	initMu.Unlock()

	close(a.done)
}

// Ready reports whether Init has completed successfully.
func Ready() bool {
	return initPhase.Load() == phaseReady
}

// Version returns the matching engine's version string, such as
// "regexp2 v1.11.5", or "" before Init has completed.
func Version() string {
	if !Ready() {
		return ""
	}
	if v := initVersion.Load(); v != nil {
		return *v
	}
	return ""
}
