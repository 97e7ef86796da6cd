package engine

import (
	"context"
	"fmt"
	"sync"
)

// Sentinel errors returned by Call. These are host-level dispatch failures;
// they occur before the UDF body runs, so UDFs never observe them.
var (
	ErrUnknownFunction = fmt.Errorf("unknown function")
	ErrArity           = fmt.Errorf("wrong number of arguments")
	ErrArgumentKind    = fmt.Errorf("wrong argument kind")
)

// UDFFunc is the body of a user-defined function. It receives the call's
// argument accessor and returns the host value for the call. The context is
// the one passed to Environment.Call.
type UDFFunc func(ctx context.Context, inv *Invocation) Value

// UDF declares a user-defined function: its dispatch name, declared return
// kind, argument count bounds, and per-position argument kind masks. When
// ArgKinds is shorter than MaxArgs, the last mask covers the remaining
// positions.
type UDF struct {
	Fn       UDFFunc
	Name     string
	ArgKinds []Kind
	Returns  Kind
	MinArgs  int
	MaxArgs  int
}

// environmentConfig holds configuration for an Environment.
type environmentConfig struct {
	strictMode bool // fail on duplicate UDF registrations
}

func defaultEnvironmentConfig() environmentConfig {
	return environmentConfig{
		strictMode: true, // prevent accidental overwrites
	}
}

// EnvironmentOption configures an Environment.
type EnvironmentOption func(*environmentConfig)

// WithStrictMode enables/disables strict mode for duplicate UDF
// registrations. Default is true (fail on duplicates). Disable only for
// testing or hot-reloading.
func WithStrictMode(enabled bool) EnvironmentOption {
	return func(c *environmentConfig) {
		c.strictMode = enabled
	}
}

// Environment is a host engine instance: a UDF dispatch table plus an
// interned lexeme table. It holds no other mutable state between calls and
// is safe for concurrent use.
type Environment struct {
	config  environmentConfig
	mu      sync.RWMutex
	udfs    map[string]*UDF
	lexemes sync.Map // string -> string (interned storage)
}

// NewEnvironment creates a new Environment with the given options.
func NewEnvironment(opts ...EnvironmentOption) *Environment {
	cfg := defaultEnvironmentConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Environment{
		config: cfg,
		udfs:   make(map[string]*UDF),
	}
}

// RegisterUDF adds a user-defined function to the dispatch table. The
// declaration must name the function, provide a body, and carry a
// satisfiable argument count range.
func (e *Environment) RegisterUDF(def UDF) error {
	if def.Name == "" {
		return fmt.Errorf("udf name cannot be empty")
	}
	if def.Fn == nil {
		return fmt.Errorf("udf %q has no body", def.Name)
	}
	if def.MinArgs < 0 || def.MaxArgs < def.MinArgs {
		return fmt.Errorf("udf %q has invalid argument bounds [%d,%d]", def.Name, def.MinArgs, def.MaxArgs)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.config.strictMode {
		if _, exists := e.udfs[def.Name]; exists {
			return fmt.Errorf("udf %q already registered", def.Name)
		}
	}
	e.udfs[def.Name] = &def
	return nil
}

// Lookup returns the declaration registered under name.
func (e *Environment) Lookup(name string) (UDF, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	def, ok := e.udfs[name]
	if !ok {
		return UDF{}, false
	}
	return *def, true
}

// Names returns the registered UDF names in unspecified order.
func (e *Environment) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.udfs))
	for name := range e.udfs {
		names = append(names, name)
	}
	return names
}

// CreateString interns s in the environment's lexeme table and returns a
// host-owned string value. Repeated calls with equal contents share storage,
// mirroring the host shell's symbol table.
func (e *Environment) CreateString(s string) Value {
	return Value{kind: KindString, lexeme: e.intern(s)}
}

// CreateSymbol interns s and returns a host-owned symbol value.
func (e *Environment) CreateSymbol(s string) Value {
	return Value{kind: KindSymbol, lexeme: e.intern(s)}
}

func (e *Environment) intern(s string) string {
	if interned, ok := e.lexemes.Load(s); ok {
		return interned.(string)
	}
	actual, _ := e.lexemes.LoadOrStore(s, s)
	return actual.(string)
}

// Call dispatches a UDF by name, enforcing the declared argument count and
// kinds before the body runs. The UDF body itself performs any secondary
// checks it needs via the Invocation accessor.
func (e *Environment) Call(ctx context.Context, name string, args ...Value) (Value, error) {
	def, ok := e.Lookup(name)
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}

	if len(args) < def.MinArgs || len(args) > def.MaxArgs {
		return Value{}, fmt.Errorf("%w: %s expects %d..%d arguments, got %d",
			ErrArity, name, def.MinArgs, def.MaxArgs, len(args))
	}
	for i, arg := range args {
		mask := argKindAt(def.ArgKinds, i)
		if mask != 0 && !arg.Is(mask) {
			return Value{}, fmt.Errorf("%w: %s argument %d must be %s, got %s",
				ErrArgumentKind, name, i+1, mask, arg.Kind())
		}
	}

	inv := &Invocation{env: e, udf: def, args: args}
	return def.Fn(ctx, inv), nil
}

// argKindAt returns the declared kind mask for argument position i; the last
// declared mask repeats for trailing positions.
func argKindAt(kinds []Kind, i int) Kind {
	if len(kinds) == 0 {
		return 0
	}
	if i >= len(kinds) {
		return kinds[len(kinds)-1]
	}
	return kinds[i]
}

// Invocation is the per-call argument accessor handed to a UDF body.
type Invocation struct {
	env  *Environment
	udf  UDF
	args []Value
}

// Env returns the environment the call executes in.
func (inv *Invocation) Env() *Environment {
	return inv.env
}

// ArgCount returns the number of arguments supplied to the call.
func (inv *Invocation) ArgCount() int {
	return len(inv.args)
}

// Argument returns the i-th argument if present and within the kind mask.
func (inv *Invocation) Argument(i int, mask Kind) (Value, bool) {
	if i < 0 || i >= len(inv.args) {
		return Value{}, false
	}
	if !inv.args[i].Is(mask) {
		return Value{}, false
	}
	return inv.args[i], true
}

// FirstArgument returns the first argument if present and within the kind
// mask.
func (inv *Invocation) FirstArgument(mask Kind) (Value, bool) {
	return inv.Argument(0, mask)
}
