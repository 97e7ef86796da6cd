// Package bridge mediates one call between the host engine and an external
// Evaluator. It registers the clara-evaluate UDF, forwards the string
// argument across the boundary, copies the Evaluator's result into the
// host's string representation, and releases the Evaluator-owned buffer
// exactly once per call.
package bridge

import (
	"context"
	"fmt"
	"log/slog"

	domainerrors "github.com/clara-ai/clara-go/domain/errors"
	"github.com/clara-ai/clara-go/domain/ports"
	"github.com/clara-ai/clara-go/engine"
	"github.com/clara-ai/clara-go/wireformat"
)

// Name is the fixed dispatch name the bridge registers under.
const Name = "clara-evaluate"

// invalidArgumentResult is returned verbatim when the string argument is
// missing or of the wrong kind. The Evaluator is not called in that case.
const invalidArgumentResult = `{"status":"error","message":"Invalid argument"}`

// bridgeConfig holds configuration for a Bridge.
type bridgeConfig struct {
	logger *slog.Logger
}

func defaultBridgeConfig() bridgeConfig {
	return bridgeConfig{
		logger: slog.Default(),
	}
}

// Option configures a Bridge.
type Option func(*bridgeConfig)

// WithLogger sets the structured logger used for failure paths.
func WithLogger(logger *slog.Logger) Option {
	return func(c *bridgeConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Bridge exposes one synchronous operation, Evaluate, to the host engine.
// It holds no mutable state between invocations and is safe for concurrent
// use whenever its Evaluator is.
type Bridge struct {
	evaluator ports.Evaluator
	config    bridgeConfig
}

// New creates a Bridge around the given Evaluator.
func New(evaluator ports.Evaluator, opts ...Option) (*Bridge, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("bridge: evaluator cannot be nil")
	}
	cfg := defaultBridgeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Bridge{evaluator: evaluator, config: cfg}, nil
}

// Register adds the clara-evaluate UDF to the environment's dispatch table:
// returns a string, takes exactly one lexeme argument.
func (b *Bridge) Register(env *engine.Environment) error {
	return env.RegisterUDF(engine.UDF{
		Name:     Name,
		Returns:  engine.KindString,
		MinArgs:  1,
		MaxArgs:  1,
		ArgKinds: []engine.Kind{engine.KindLexeme},
		Fn:       b.invoke,
	})
}

// invoke is the UDF body. The engine has already validated arity and kind;
// the check is repeated here and short-circuits to the literal
// invalid-argument result without touching the Evaluator.
func (b *Bridge) invoke(ctx context.Context, inv *engine.Invocation) engine.Value {
	arg, ok := inv.FirstArgument(engine.KindLexeme)
	if !ok {
		argErr := &domainerrors.InvalidArgumentError{Function: Name, Reason: "expected a lexeme"}
		b.config.logger.ErrorContext(ctx, "bridge: argument rejected", "error", argErr)
		return inv.Env().CreateString(invalidArgumentResult)
	}
	return inv.Env().CreateString(b.Evaluate(ctx, inv.Env(), arg.Lexeme()))
}

// Evaluate forwards input to the Evaluator and returns the result contents
// as a host-owned string. The Evaluator's buffer is released on every exit
// branch after the call, whether or not the copy is used. A nil or empty
// buffer, or an Evaluator error, yields a structured JSON error string
// rather than a fault.
func (b *Bridge) Evaluate(ctx context.Context, env ports.EnvToken, input string) string {
	buf, err := b.evaluator.Evaluate(ctx, env, input)
	if buf != nil {
		defer buf.Release()
	}

	if err != nil {
		extErr := &domainerrors.ExternalError{Err: err, Evaluator: Name}
		b.config.logger.ErrorContext(ctx, "bridge: evaluator failed", "function", Name, "error", extErr)
		return string(wireformat.ErrorResult("Evaluation failed: " + extErr.Error()).ToJSON())
	}
	if buf.Len() == 0 {
		extErr := &domainerrors.ExternalError{Evaluator: Name}
		b.config.logger.ErrorContext(ctx, "bridge: evaluator returned no result", "function", Name)
		return string(wireformat.ErrorResult(extErr.Error()).ToJSON())
	}

	// buf.String copies into host-owned storage before the deferred release.
	return buf.String()
}
