package spreadsheet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseExpression(expression string) (ASTNode, error) {
	tokens, err := NewLexer(expression).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

func TestParserBasicFormulas(t *testing.T) {
	validFormulas := []string{
		"1+2",
		"A1",
		"XFD16384",
		"-A1",
		"+1",
		"(((1)))",
		"1.5*.5",
		"2e-3/A1",
		"1E+2",
		"A1+B2*C3-D4/E5",
		"\t1 +\n2 ",
		"ZZZZ1",
	}

	for _, formula := range validFormulas {
		t.Run(formula, func(t *testing.T) {
			_, err := parseExpression(formula)
			if err != nil {
				t.Errorf("Failed to parse valid formula %q: %v", formula, err)
			}
		})
	}
}

func TestParserInvalidFormulas(t *testing.T) {
	invalidFormulas := []string{
		"",
		"1+",
		"*1",
		"(1",
		"1)",
		")(",
		"A",
		"a1",
		"1 2",
		"1e",
		"SUM(A1)",
		`"hello"`,
		"1,2",
		"A1:B2",
		"Sheet1!A1",
	}

	for _, formula := range invalidFormulas {
		t.Run(formula, func(t *testing.T) {
			_, err := parseExpression(formula)
			if err == nil {
				t.Errorf("Expected formula %q to fail but it succeeded", formula)
				return
			}
			if !errors.Is(err, ErrFormulaSyntax) {
				t.Errorf("Error for %q does not wrap ErrFormulaSyntax: %v", formula, err)
			}
		})
	}
}

func TestLexerTokens(t *testing.T) {
	tokens, err := NewLexer("-A1 - (2.5e1)").Tokenize()
	require.NoError(t, err)

	expected := []Token{
		{Type: TokenUnaryPrefixOp, Value: "-", Pos: 0},
		{Type: TokenCell, Value: "A1", Pos: 1},
		{Type: TokenBinaryOp, Value: "-", Pos: 4},
		{Type: TokenLeftParen, Value: "(", Pos: 6},
		{Type: TokenNumber, Value: "2.5e1", Pos: 7},
		{Type: TokenRightParen, Value: ")", Pos: 12},
		{Type: TokenEOF, Pos: 13},
	}
	assert.Equal(t, expected, tokens)
}

func TestParserEvaluation(t *testing.T) {
	values := map[Position]float64{
		{Row: 0, Col: 0}: 2,
		{Row: 1, Col: 1}: 10,
	}
	resolve := func(pos Position) (float64, error) {
		if !pos.IsValid() {
			return 0, NewFormulaError(ErrorCategoryRef)
		}
		return values[pos], nil
	}

	cases := map[string]float64{
		"1+2*3":    7,
		"(1+2)*3":  9,
		"A1*B2":    20,
		"-A1+B2":   8,
		"B2/A1/5":  1,
		"B2-A1-3":  5,
		"C3+1":     1,
		"--A1":     2,
		"-(-A1)*3": 6,
	}

	for expression, expected := range cases {
		t.Run(expression, func(t *testing.T) {
			ast, err := parseExpression(expression)
			require.NoError(t, err)
			result, err := ast.Eval(resolve)
			require.NoError(t, err)
			assert.InDelta(t, expected, result, 1e-10)
		})
	}

	t.Run("ResolverError", func(t *testing.T) {
		ast, err := parseExpression("1+ZZZZ9")
		require.NoError(t, err)
		_, err = ast.Eval(resolve)
		assert.Equal(t, NewFormulaError(ErrorCategoryRef), err)
	})
}

func TestParseFormula(t *testing.T) {
	formula, err := ParseFormula(" ( B2 + A1 ) * B2 - A1 ")
	require.NoError(t, err)

	assert.Equal(t, "(B2+A1)*B2-A1", formula.Expression())
	assert.Equal(t, []Position{{Row: 0, Col: 0}, {Row: 1, Col: 1}}, formula.ReferencedCells())

	// callers may not corrupt the formula through the returned slice
	formula.ReferencedCells()[0] = PositionNone
	assert.Equal(t, Position{Row: 0, Col: 0}, formula.ReferencedCells()[0])

	value := formula.Evaluate(func(pos Position) (float64, error) {
		return float64(pos.Row + 1), nil
	})
	assert.Equal(t, Number(5), value)

	value = formula.Evaluate(func(pos Position) (float64, error) {
		return 0, NewFormulaError(ErrorCategoryValue)
	})
	assert.Equal(t, NewFormulaError(ErrorCategoryValue), value)

	value = formula.Evaluate(func(pos Position) (float64, error) {
		return 0, errors.New("boom")
	})
	assert.Equal(t, NewFormulaError(ErrorCategoryArithmetic), value)
}

func TestCanonicalRenderingRoundTrips(t *testing.T) {
	expressions := []string{
		"((1+2))*3",
		"1-(2-(3-4))",
		"-(A1*-B2)/(C3-+4)",
		"1e21+0.000001",
		"2/(3*4)",
		"(2/3)*4",
		"0.1*(3/0.3)",
		"A1*(B2/C3)",
	}

	resolve := func(pos Position) (float64, error) {
		return float64(pos.Row+pos.Col) + 0.1, nil
	}

	for _, expression := range expressions {
		t.Run(expression, func(t *testing.T) {
			first, err := ParseFormula(expression)
			require.NoError(t, err)
			second, err := ParseFormula(first.Expression())
			require.NoError(t, err)
			assert.Equal(t, first.Expression(), second.Expression())
			assert.Equal(t, first.Evaluate(resolve), second.Evaluate(resolve))
		})
	}
}
