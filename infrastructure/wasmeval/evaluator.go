// Package wasmeval provides a WASM-backed Evaluator. The evaluator module
// runs under wazero and exports three functions: allocate, deallocate, and
// evaluate. The host writes the input into guest memory, invokes evaluate,
// copies the result out, and returns the guest buffer through deallocate.
// The guest owns its allocations until the host explicitly releases them.
package wasmeval

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/clara-ai/clara-go/domain/ports"
	"github.com/clara-ai/clara-go/wireformat"
)

// Guest exports the evaluator module must provide.
const (
	exportAllocate   = "allocate"
	exportDeallocate = "deallocate"
	exportEvaluate   = "evaluate"
)

// evaluatorConfig holds configuration for the Evaluator.
type evaluatorConfig struct {
	logger        *slog.Logger
	maxResultSize uint32
}

func defaultEvaluatorConfig() evaluatorConfig {
	return evaluatorConfig{
		logger:        slog.Default(),
		maxResultSize: 1 << 20, // 1MB
	}
}

// Option configures the Evaluator.
type Option func(*evaluatorConfig)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *evaluatorConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxResultSize limits the size of results read from guest memory.
// Default is 1MB.
func WithMaxResultSize(size uint32) Option {
	return func(c *evaluatorConfig) {
		if size > 0 {
			c.maxResultSize = size
		}
	}
}

// Evaluator runs an evaluator WASM module. The guest instance is
// single-threaded, so calls are serialized with a mutex; the type is safe
// for concurrent use from multiple host goroutines.
type Evaluator struct {
	runtime    wazero.Runtime
	module     api.Module
	allocate   api.Function
	deallocate api.Function
	evaluate   api.Function
	config     evaluatorConfig
	mu         sync.Mutex
}

// New instantiates the evaluator module from wasmBytes and resolves its
// required exports. The caller owns the returned Evaluator and must Close it.
func New(ctx context.Context, wasmBytes []byte, opts ...Option) (*Evaluator, error) {
	cfg := defaultEvaluatorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	rt := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)

	mod, err := rt.Instantiate(ctx, wasmBytes)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate evaluator module: %w", err)
	}

	e := &Evaluator{
		runtime:    rt,
		module:     mod,
		allocate:   mod.ExportedFunction(exportAllocate),
		deallocate: mod.ExportedFunction(exportDeallocate),
		evaluate:   mod.ExportedFunction(exportEvaluate),
		config:     cfg,
	}
	for name, fn := range map[string]api.Function{
		exportAllocate:   e.allocate,
		exportDeallocate: e.deallocate,
		exportEvaluate:   e.evaluate,
	} {
		if fn == nil {
			rt.Close(ctx)
			return nil, fmt.Errorf("evaluator module missing %q export", name)
		}
	}
	return e, nil
}

// Close tears down the runtime and all guest state.
func (e *Evaluator) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Evaluate implements ports.Evaluator. The env token is opaque passthrough
// and is not forwarded into the guest; guest evaluators are self-contained.
// The returned buffer holds a host-side copy of the result; releasing it
// returns the guest allocation through the deallocate export.
func (e *Evaluator) Evaluate(ctx context.Context, _ ports.EnvToken, input string) (*wireformat.OwnedBuffer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	inPtr, err := e.writeInput(ctx, []byte(input))
	if err != nil {
		return nil, err
	}
	// The guest reads the input during the call; the host frees it after.
	defer e.freeGuest(ctx, inPtr, uint32(len(input)))

	results, err := e.evaluate.Call(ctx, uint64(inPtr), uint64(len(input)))
	if err != nil {
		return nil, fmt.Errorf("evaluate call failed: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("evaluate returned no result")
	}

	ptr, length := unpackPtrLen(results[0])
	if ptr == 0 || length == 0 {
		return nil, fmt.Errorf("evaluate returned a null result")
	}
	if length > e.config.maxResultSize {
		e.freeGuest(ctx, ptr, length)
		return nil, fmt.Errorf("result size %d exceeds maximum %d bytes", length, e.config.maxResultSize)
	}

	data, ok := e.module.Memory().Read(ptr, length)
	if !ok {
		e.freeGuest(ctx, ptr, length)
		return nil, fmt.Errorf("failed to read result from guest memory")
	}

	// Copy out before the guest memory can move or be reclaimed.
	out := make([]byte, length)
	copy(out, data)

	release := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.freeGuest(ctx, ptr, length)
	}
	return wireformat.NewOwnedBuffer(out, release), nil
}

// writeInput allocates guest memory for the input and writes it. A zero
// pointer with zero length is valid for empty input.
func (e *Evaluator) writeInput(ctx context.Context, input []byte) (uint32, error) {
	if len(input) == 0 {
		return 0, nil
	}
	results, err := e.allocate.Call(ctx, uint64(len(input)))
	if err != nil {
		return 0, fmt.Errorf("failed to allocate in guest: %w", err)
	}
	if len(results) == 0 || results[0] == 0 {
		return 0, fmt.Errorf("guest allocate returned no memory")
	}
	ptr := uint32(results[0])
	if !e.module.Memory().Write(ptr, input) {
		e.freeGuest(ctx, ptr, uint32(len(input)))
		return 0, fmt.Errorf("failed to write input to guest memory")
	}
	return ptr, nil
}

// freeGuest returns a guest allocation. Deallocation failures are logged,
// not propagated; the guest's deallocate is idempotent for unknown pointers.
func (e *Evaluator) freeGuest(ctx context.Context, ptr, length uint32) {
	if ptr == 0 || length == 0 {
		return
	}
	if _, err := e.deallocate.Call(ctx, uint64(ptr), uint64(length)); err != nil {
		e.config.logger.ErrorContext(ctx, "wasmeval: guest deallocate failed", "ptr", ptr, "len", length, "error", err)
	}
}

// unpackPtrLen unpacks a pointer and length from a packed i64.
// Upper 32 bits: pointer, lower 32 bits: length.
func unpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> 32)
	length = uint32(packed & 0xFFFFFFFF)
	return ptr, length
}
