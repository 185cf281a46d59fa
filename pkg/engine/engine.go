// Package engine evaluates assembly descriptions written in a small Lisp
// dialect and produces a model.Assembly of placed panels. Source runs in a
// fresh zygomys sandbox per call, with a hard time limit.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/jointscan/pkg/model"
)

// EvalError is a non-fatal problem in user source: a parse error, an unknown
// symbol, or a builtin rejecting its arguments.
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// LoadResult is the output of Load: the assembly plus every finding about it.
type LoadResult struct {
	Assembly   *model.Assembly
	Errors     []EvalError
	Validation model.ValidationResult
}

// Engine evaluates assembly source. It is safe for concurrent use; only the
// most recent evaluation's result is delivered.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
}

// NewEngine returns an Engine with the EvalTimeout limit.
func NewEngine() *Engine {
	return &Engine{timeout: EvalTimeout}
}

// Evaluate runs source and returns the assembly it describes.
//
//   - success: assembly, nil, nil
//   - problem in the source: nil, eval errors, nil
//   - timeout, superseded call or panic: nil, nil, error
func (e *Engine) Evaluate(source string) (*model.Assembly, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("engine: panic during evaluation: %v", r)}
			}
		}()
		asm, evalErrs := evaluate(source)
		ch <- evalResult{asm: asm, errors: evalErrs}
	}()

	return e.await(ch, gen)
}

// Load evaluates source and, when it produced an assembly, validates it.
// Fatal failures are returned as the error; everything else is in the
// result.
func (e *Engine) Load(source string) (LoadResult, error) {
	asm, evalErrs, err := e.Evaluate(source)
	if err != nil {
		return LoadResult{}, err
	}
	res := LoadResult{Assembly: asm, Errors: evalErrs}
	if asm != nil {
		res.Validation = model.Validate(asm)
	}
	return res, nil
}

// evaluate runs preprocessed source in a fresh sandbox. The sandbox has no
// filesystem or system access.
func evaluate(source string) (*model.Assembly, []EvalError) {
	if strings.TrimSpace(source) == "" {
		return model.NewAssembly(""), nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := newBuilder()
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err)
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err)
	}
	return b.asm, nil
}

var (
	errorOnLine = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)
	lineFirst   = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)
)

// parseZygomysError turns an interpreter error into EvalErrors, pulling out
// the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := strings.TrimSpace(err.Error())
	for _, re := range []*regexp.Regexp{errorOnLine, lineFirst} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: msg}}
}
