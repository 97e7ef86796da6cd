package toolbox

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalTool_Expressions(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"(+ 1 2)", 3},
		{"(+ 1 2 3 4)", 10},
		{"(- 10 4)", 6},
		{"(- 5)", -5},
		{"(* 3 4)", 12},
		{"(/ 12 4)", 3},
		{"(* (- 10 4) 2)", 12},
		{"(+ 1.5 2.5)", 4},
		{"42", 42},
		{"(/ 100 5 2)", 10},
	}

	tool := NewEvalTool()
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			args, err := json.Marshal(EvalArgs{Expression: tt.expr})
			require.NoError(t, err)

			data, err := tool.Execute(context.Background(), args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, data["value"])
			assert.Equal(t, tt.expr, data["expression"])
		})
	}
}

func TestEvalTool_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"division by zero", "(/ 1 0)"},
		{"unknown operator", "(% 4 2)"},
		{"unbalanced", "(+ 1 2"},
		{"trailing input", "(+ 1 2) extra"},
		{"not a number", "(+ one 2)"},
		{"bare operator", "(+)"},
		{"stray close", ")"},
		{"empty", "   "},
	}

	tool := NewEvalTool()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := json.Marshal(EvalArgs{Expression: tt.expr})
			require.NoError(t, err)

			_, err = tool.Execute(context.Background(), args)
			require.Error(t, err)
		})
	}
}

func TestEvalTool_InvalidArguments(t *testing.T) {
	_, err := NewEvalTool().Execute(context.Background(), json.RawMessage(`{bad`))
	require.Error(t, err)
}

func TestEchoTool_InvalidArguments(t *testing.T) {
	_, err := NewEchoTool().Execute(context.Background(), json.RawMessage(`{bad`))
	require.Error(t, err)
}

func TestEchoTool_EmptyArguments(t *testing.T) {
	data, err := NewEchoTool().Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, data["echoed"])
}
