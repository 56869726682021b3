package spreadsheet

import (
	"errors"
	"slices"
)

// Formula is a compiled formula expression. a Formula is deterministic and
// free of side effects for a given expression and resolver.
type Formula interface {
	// Evaluate computes the formula, returning a Number or a FormulaError.
	Evaluate(resolve CellResolver) Value
	// Expression renders the canonical form of the expression, without the
	// leading '='.
	Expression() string
	// ReferencedCells lists the valid positions the expression reads, sorted
	// and without duplicates.
	ReferencedCells() []Position
}

// FormulaParser compiles expression text into a Formula.
type FormulaParser func(expression string) (Formula, error)

type astFormula struct {
	ast   ASTNode
	cells []Position
}

// ParseFormula compiles an expression (without the leading '='). the
// returned error wraps ErrFormulaSyntax.
func ParseFormula(expression string) (Formula, error) {
	tokens, err := NewLexer(expression).Tokenize()
	if err != nil {
		return nil, err
	}

	ast, err := NewParser(tokens).Parse()
	if err != nil {
		return nil, err
	}

	cells := ast.collectCells(nil)
	slices.SortFunc(cells, comparePositions)

	return &astFormula{
		ast:   ast,
		cells: slices.Compact(cells),
	}, nil
}

func (f *astFormula) Evaluate(resolve CellResolver) Value {
	result, err := f.ast.Eval(resolve)
	if err != nil {
		var formulaErr FormulaError
		if errors.As(err, &formulaErr) {
			return formulaErr
		}
		// any other failure is reported as an arithmetic error
		return NewFormulaError(ErrorCategoryArithmetic)
	}
	return Number(result)
}

func (f *astFormula) Expression() string {
	return f.ast.ToString()
}

func (f *astFormula) ReferencedCells() []Position {
	return slices.Clone(f.cells)
}
