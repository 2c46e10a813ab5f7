package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chazu/polymesh/pkg/scene"
)

// EvalTimeout is the default hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is wrapped by the error Evaluate returns when a script
	// runs past Engine.Timeout.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned when a later Evaluate call started on the
	// same Engine before this one finished.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// evalResult carries one sandbox run back to the caller.
type evalResult struct {
	scene  *scene.Scene
	errors []EvalError
	err    error
}

// waitWithTimeout blocks until the sandbox goroutine reports or timeout
// elapses. A timed-out goroutine keeps running until zygomys returns; its
// late result lands in the buffered channel and is never read.
//
// gen is the generation this call was started with. When the result
// arrives after a newer Evaluate bumped *currentGen, the scene is dropped
// so a slow script can never replace the scene of a faster, newer one.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	timeout time.Duration,
	mu *sync.Mutex,
	currentGen *uint64,
) (*scene.Scene, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		stale := gen != *currentGen
		mu.Unlock()
		if stale {
			return nil, nil, ErrSuperseded
		}
		return res.scene, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}
