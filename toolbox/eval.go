package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// EvalTool evaluates prefix arithmetic expressions in the host shell's
// s-expression syntax, e.g. "(+ 1 2)" or "(* (- 10 4) 2)".
type EvalTool struct{}

// NewEvalTool creates an EvalTool.
func NewEvalTool() *EvalTool {
	return &EvalTool{}
}

// EvalArgs is the argument model for the eval tool.
type EvalArgs struct {
	// Expression is the s-expression to evaluate.
	Expression string `json:"expression" jsonschema:"required"`
}

// Name implements ports.Tool.
func (*EvalTool) Name() string {
	return "eval"
}

// Description implements ports.Tool.
func (*EvalTool) Description() string {
	return "Evaluates a prefix arithmetic s-expression"
}

// ArgsModel implements ports.ArgsModeler.
func (*EvalTool) ArgsModel() any {
	return &EvalArgs{}
}

// Execute implements ports.Tool.
func (*EvalTool) Execute(_ context.Context, args json.RawMessage) (map[string]any, error) {
	var parsed EvalArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(parsed.Expression) == "" {
		return nil, fmt.Errorf("expression is required")
	}

	value, err := evalExpression(parsed.Expression)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"expression": parsed.Expression,
		"value":      value,
	}, nil
}

// evalExpression tokenizes and evaluates a complete s-expression, rejecting
// trailing input.
func evalExpression(expr string) (float64, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return 0, err
	}
	p := &parser{tokens: tokens}
	value, err := p.parse()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.tokens) {
		return 0, fmt.Errorf("unexpected trailing input at %q", p.tokens[p.pos])
	}
	return value, nil
}

func tokenize(expr string) ([]string, error) {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range expr {
		switch {
		case r == '(' || r == ')':
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsSpace(r):
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	return tokens, nil
}

type parser struct {
	tokens []string
	pos    int
}

func (p *parser) parse() (float64, error) {
	if p.pos >= len(p.tokens) {
		return 0, fmt.Errorf("unexpected end of expression")
	}

	tok := p.tokens[p.pos]
	p.pos++

	if tok != "(" {
		if tok == ")" {
			return 0, fmt.Errorf("unexpected ')'")
		}
		value, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", tok)
		}
		return value, nil
	}

	if p.pos >= len(p.tokens) {
		return 0, fmt.Errorf("missing operator")
	}
	op := p.tokens[p.pos]
	p.pos++

	var operands []float64
	for p.pos < len(p.tokens) && p.tokens[p.pos] != ")" {
		value, err := p.parse()
		if err != nil {
			return 0, err
		}
		operands = append(operands, value)
	}
	if p.pos >= len(p.tokens) {
		return 0, fmt.Errorf("missing ')'")
	}
	p.pos++ // consume ")"

	return apply(op, operands)
}

func apply(op string, operands []float64) (float64, error) {
	if len(operands) == 0 {
		return 0, fmt.Errorf("operator %q needs at least one operand", op)
	}

	acc := operands[0]
	switch op {
	case "+":
		for _, v := range operands[1:] {
			acc += v
		}
	case "-":
		if len(operands) == 1 {
			return -acc, nil
		}
		for _, v := range operands[1:] {
			acc -= v
		}
	case "*":
		for _, v := range operands[1:] {
			acc *= v
		}
	case "/":
		for _, v := range operands[1:] {
			if v == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			acc /= v
		}
	default:
		return 0, fmt.Errorf("unknown operator: %q", op)
	}
	return acc, nil
}
