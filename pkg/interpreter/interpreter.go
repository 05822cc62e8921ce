package interpreter

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"pseudocoder/interpreter-go/pkg/ast"
	"pseudocoder/interpreter-go/pkg/runtime"
)

const (
	// DefaultMaxCallDepth bounds nested procedure and function invocations.
	DefaultMaxCallDepth = 10000
	// MaxAllowedCallDepth is the largest configurable limit. Deeper recursion would exhaust
	// the goroutine stack before StackExhausted could be raised.
	MaxAllowedCallDepth = 100000
)

// Options configures a new interpreter. The zero value is usable.
type Options struct {
	// Output receives OUTPUT lines. Defaults to os.Stdout.
	Output io.Writer
	// Logger receives call tracing. Defaults to a disabled logger.
	Logger *zerolog.Logger
	// MaxCallDepth defaults to DefaultMaxCallDepth when zero. It may not exceed MaxAllowedCallDepth.
	MaxCallDepth int
	// Types selects the optional built-in types (STRING, CHAR, DATE). Nil enables all.
	Types []string
}

// Interpreter executes pseudocode programs against one global namespace.
type Interpreter struct {
	types    *runtime.TypeRegistry
	arena    *runtime.SlotArena
	global   *runtime.Namespace
	out      io.Writer
	log      zerolog.Logger
	maxDepth int
	depth    int
}

// New returns an interpreter with every built-in type enabled, writing to stdout.
func New() *Interpreter {
	interp, err := NewWithOptions(Options{})
	if err != nil {
		panic(fmt.Sprintf("interpreter: default options rejected: %v", err))
	}
	return interp
}

// NewWithOptions builds the type registry and the global namespace described by opts.
func NewWithOptions(opts Options) (*Interpreter, error) {
	if opts.MaxCallDepth < 0 {
		return nil, fmt.Errorf("interpreter: max call depth must be positive, got %d", opts.MaxCallDepth)
	}
	if opts.MaxCallDepth > MaxAllowedCallDepth {
		return nil, fmt.Errorf("interpreter: max call depth %d exceeds the limit of %d", opts.MaxCallDepth, MaxAllowedCallDepth)
	}
	types, err := runtime.NewTypeRegistry(opts.Types)
	if err != nil {
		return nil, fmt.Errorf("interpreter: %w", err)
	}
	arena := runtime.NewSlotArena()
	global := runtime.NewGlobalNamespace(arena)
	if err := types.Install(global); err != nil {
		return nil, fmt.Errorf("interpreter: install built-in types: %w", err)
	}
	i := &Interpreter{
		types:    types,
		arena:    arena,
		global:   global,
		out:      opts.Output,
		log:      zerolog.Nop(),
		maxDepth: opts.MaxCallDepth,
	}
	if i.out == nil {
		i.out = os.Stdout
	}
	if opts.Logger != nil {
		i.log = *opts.Logger
	}
	if i.maxDepth == 0 {
		i.maxDepth = DefaultMaxCallDepth
	}
	return i, nil
}

// GlobalNamespace returns the interpreter's global namespace.
func (i *Interpreter) GlobalNamespace() *runtime.Namespace {
	return i.global
}

// Types returns the built-in type registry.
func (i *Interpreter) Types() *runtime.TypeRegistry {
	return i.types
}

// ExecuteProgram runs every top-level statement against the global namespace, stopping at the
// first error.
func (i *Interpreter) ExecuteProgram(program *ast.Program) error {
	if program == nil {
		return fmt.Errorf("interpreter: nil program")
	}
	i.log.Debug().Int("statements", len(program.Body)).Msg("run start")
	result, err := i.executeBlock(program.Body, i.global, i.global)
	if err != nil {
		i.log.Debug().Err(err).Msg("run failed")
		return err
	}
	if result.kind == flowReturn {
		return runtime.WithSpan(runtime.Errorf(runtime.ErrReturnOutsideFunction, "RETURN outside procedure or function"), result.span)
	}
	i.log.Debug().Int("live_slots", i.arena.Live()).Msg("run finished")
	return nil
}

// EvaluateExpression evaluates expr against the global namespace.
func (i *Interpreter) EvaluateExpression(expr ast.Expression) (runtime.Value, error) {
	if expr == nil {
		return nil, fmt.Errorf("interpreter: nil expression")
	}
	v, err := i.evaluate(expr, i.global)
	return v, runtime.WithSpan(err, expr.Span())
}
