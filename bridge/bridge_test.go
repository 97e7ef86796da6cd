package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clara-ai/clara-go/domain/ports"
	"github.com/clara-ai/clara-go/engine"
	"github.com/clara-ai/clara-go/wireformat"
)

// countingEvaluator is a deterministic test double that records calls and
// buffer releases.
type countingEvaluator struct {
	mu        sync.Mutex
	calls     int
	releases  int
	inputs    []string
	result    func(input string) []byte
	err       error
	returnNil bool
}

func (e *countingEvaluator) Evaluate(_ context.Context, _ ports.EnvToken, input string) (*wireformat.OwnedBuffer, error) {
	e.mu.Lock()
	e.calls++
	e.inputs = append(e.inputs, input)
	e.mu.Unlock()

	if e.err != nil {
		return nil, e.err
	}
	if e.returnNil {
		return nil, nil
	}
	return wireformat.NewOwnedBuffer(e.result(input), func() {
		e.mu.Lock()
		e.releases++
		e.mu.Unlock()
	}), nil
}

func (e *countingEvaluator) counts() (calls, releases int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls, e.releases
}

func staticResult(s string) func(string) []byte {
	return func(string) []byte { return []byte(s) }
}

func TestNew_NilEvaluator(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestBridge_Register_DeclaresSignature(t *testing.T) {
	b, err := New(&countingEvaluator{result: staticResult("{}")})
	require.NoError(t, err)

	env := engine.NewEnvironment()
	require.NoError(t, b.Register(env))

	def, ok := env.Lookup(Name)
	require.True(t, ok)
	assert.Equal(t, engine.KindString, def.Returns)
	assert.Equal(t, 1, def.MinArgs)
	assert.Equal(t, 1, def.MaxArgs)
	assert.Equal(t, []engine.Kind{engine.KindLexeme}, def.ArgKinds)

	// A second registration must fail in strict mode.
	require.Error(t, b.Register(env))
}

func TestBridge_Evaluate_CopiesResultUnchanged(t *testing.T) {
	double := &countingEvaluator{result: staticResult(`{"status":"ok","message":"3"}`)}
	b, err := New(double)
	require.NoError(t, err)

	env := engine.NewEnvironment()
	require.NoError(t, b.Register(env))

	result, err := env.Call(context.Background(), Name, engine.String(`(+ 1 2)`))
	require.NoError(t, err)
	assert.Equal(t, `{"status":"ok","message":"3"}`, result.Lexeme())

	calls, releases := double.counts()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, releases)
	assert.Equal(t, []string{`(+ 1 2)`}, double.inputs)
}

func TestBridge_Evaluate_UTF8RoundTrip(t *testing.T) {
	// Echo double: result content equals the input, multi-byte included.
	double := &countingEvaluator{result: func(input string) []byte { return []byte(input) }}
	b, err := New(double)
	require.NoError(t, err)

	env := engine.NewEnvironment()
	require.NoError(t, b.Register(env))

	input := `{"tool":"echo","arguments":{"message":"héllo 世界 🜎"}}`
	result, err := env.Call(context.Background(), Name, engine.String(input))
	require.NoError(t, err)
	assert.Equal(t, input, result.Lexeme())
}

func TestBridge_Evaluate_Idempotent(t *testing.T) {
	double := &countingEvaluator{result: staticResult(`{"status":"ok","message":"same"}`)}
	b, err := New(double)
	require.NoError(t, err)

	env := engine.NewEnvironment()
	require.NoError(t, b.Register(env))

	first, err := env.Call(context.Background(), Name, engine.String("input"))
	require.NoError(t, err)
	second, err := env.Call(context.Background(), Name, engine.String("input"))
	require.NoError(t, err)

	assert.Equal(t, first.Lexeme(), second.Lexeme())
	calls, releases := double.counts()
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, releases)
}

func TestBridge_InvalidArgument_ShortCircuits(t *testing.T) {
	double := &countingEvaluator{result: staticResult("{}")}
	b, err := New(double)
	require.NoError(t, err)

	// A lenient registration bypasses the engine's own signature checks so
	// the bridge's argument check is what trips.
	env := engine.NewEnvironment()
	require.NoError(t, env.RegisterUDF(engine.UDF{
		Name:    "lenient-evaluate",
		Returns: engine.KindString,
		MinArgs: 0,
		MaxArgs: 1,
		Fn:      b.invoke,
	}))

	t.Run("missing argument", func(t *testing.T) {
		result, err := env.Call(context.Background(), "lenient-evaluate")
		require.NoError(t, err)
		assert.Equal(t, `{"status":"error","message":"Invalid argument"}`, result.Lexeme())
	})

	t.Run("wrong argument kind", func(t *testing.T) {
		result, err := env.Call(context.Background(), "lenient-evaluate", engine.Integer(42))
		require.NoError(t, err)
		assert.Equal(t, `{"status":"error","message":"Invalid argument"}`, result.Lexeme())
	})

	calls, releases := double.counts()
	assert.Zero(t, calls, "evaluator must not be called for malformed arguments")
	assert.Zero(t, releases)
}

func TestBridge_EngineValidation_RejectsBeforeDispatch(t *testing.T) {
	double := &countingEvaluator{result: staticResult("{}")}
	b, err := New(double)
	require.NoError(t, err)

	env := engine.NewEnvironment()
	require.NoError(t, b.Register(env))

	_, err = env.Call(context.Background(), Name)
	require.ErrorIs(t, err, engine.ErrArity)

	_, err = env.Call(context.Background(), Name, engine.String("a"), engine.String("b"))
	require.ErrorIs(t, err, engine.ErrArity)

	_, err = env.Call(context.Background(), Name, engine.Float(1.5))
	require.ErrorIs(t, err, engine.ErrArgumentKind)

	calls, _ := double.counts()
	assert.Zero(t, calls)
}

func TestBridge_Evaluate_NilBufferHardening(t *testing.T) {
	double := &countingEvaluator{returnNil: true}
	b, err := New(double)
	require.NoError(t, err)

	out := b.Evaluate(context.Background(), nil, "input")

	var res wireformat.ResultWire
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, wireformat.StatusError, res.Status)
	assert.Equal(t, "evaluator clara-evaluate returned no result", res.Message)

	calls, releases := double.counts()
	assert.Equal(t, 1, calls)
	assert.Zero(t, releases, "no buffer was produced, nothing to release")
}

func TestBridge_Evaluate_EmptyBufferReleasedAnyway(t *testing.T) {
	double := &countingEvaluator{result: staticResult("")}
	b, err := New(double)
	require.NoError(t, err)

	out := b.Evaluate(context.Background(), nil, "input")

	var res wireformat.ResultWire
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, wireformat.StatusError, res.Status)
	assert.Equal(t, "evaluator clara-evaluate returned no result", res.Message)

	_, releases := double.counts()
	assert.Equal(t, 1, releases, "buffer release must happen on every exit branch")
}

func TestBridge_Evaluate_EvaluatorError(t *testing.T) {
	double := &countingEvaluator{err: fmt.Errorf("engine exploded")}
	b, err := New(double)
	require.NoError(t, err)

	out := b.Evaluate(context.Background(), nil, "input")

	var res wireformat.ResultWire
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, wireformat.StatusError, res.Status)
	assert.Contains(t, res.Message, "evaluator clara-evaluate failed")
	assert.Contains(t, res.Message, "engine exploded")
}

func TestBridge_SymbolArgumentAccepted(t *testing.T) {
	double := &countingEvaluator{result: staticResult(`{"status":"ok","message":"done"}`)}
	b, err := New(double)
	require.NoError(t, err)

	env := engine.NewEnvironment()
	require.NoError(t, b.Register(env))

	result, err := env.Call(context.Background(), Name, engine.Symbol("payload"))
	require.NoError(t, err)
	assert.Equal(t, `{"status":"ok","message":"done"}`, result.Lexeme())
}
