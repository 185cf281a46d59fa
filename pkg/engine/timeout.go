package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/jointscan/pkg/model"
)

// EvalTimeout is the default hard limit for one evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when evaluation runs past the engine's limit.
	ErrTimeout = errors.New("engine: evaluation timed out")

	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer one had started.
	ErrSuperseded = errors.New("engine: evaluation superseded by newer request")
)

type evalResult struct {
	asm    *model.Assembly
	errors []EvalError
	err    error
}

// await waits for the evaluation tagged gen. On timeout the evaluating
// goroutine is abandoned; it writes to a buffered channel nobody reads.
func (e *Engine) await(ch <-chan evalResult, gen uint64) (*model.Assembly, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		e.mu.Lock()
		stale := gen != e.generation
		e.mu.Unlock()
		if stale {
			return nil, nil, ErrSuperseded
		}
		return res.asm, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
}
