package spreadsheet

import (
	"math"
	"strconv"
)

type NodePosition struct {
	Start int
	End   int
}

// CellResolver resolves a referenced position to a number. a returned error
// that is a FormulaError aborts the evaluation with that error.
type CellResolver func(pos Position) (float64, error)

// precedence levels used when rendering the canonical expression
const (
	precedenceAdditive = iota + 1
	precedenceMultiplicative
	precedenceUnary
	precedenceAtom
)

// ASTNode is a compiled formula expression. nodes are immutable once parsed.
type ASTNode interface {
	Eval(resolve CellResolver) (float64, error)
	GetPosition() NodePosition
	ToString() string
	precedence() int
	collectCells(cells []Position) []Position
}

// Parser parses tokens into an AST
type Parser struct {
	tokens []Token
	pos    int
}

// NumberNode represents a numeric literal
type NumberNode struct {
	Value    float64
	Position NodePosition
}

func (n *NumberNode) Eval(resolve CellResolver) (float64, error) {
	return n.Value, nil
}

func (n *NumberNode) GetPosition() NodePosition {
	return n.Position
}

func (n *NumberNode) ToString() string {
	return formatNumber(n.Value)
}

func (n *NumberNode) precedence() int { return precedenceAtom }

func (n *NumberNode) collectCells(cells []Position) []Position { return cells }

// CellRefNode represents a cell reference. Cell is PositionNone when the
// reference points past the edge of the sheet.
type CellRefNode struct {
	Cell     Position
	Position NodePosition
}

func (n *CellRefNode) Eval(resolve CellResolver) (float64, error) {
	return resolve(n.Cell)
}

func (n *CellRefNode) GetPosition() NodePosition {
	return n.Position
}

func (n *CellRefNode) ToString() string {
	if !n.Cell.IsValid() {
		return ErrorMapper[ErrorCategoryRef]
	}
	return n.Cell.String()
}

func (n *CellRefNode) precedence() int { return precedenceAtom }

func (n *CellRefNode) collectCells(cells []Position) []Position {
	if n.Cell.IsValid() {
		cells = append(cells, n.Cell)
	}
	return cells
}

// BinaryOpNode represents a binary operation
type BinaryOpNode struct {
	Op       BinaryOp
	Left     ASTNode
	Right    ASTNode
	Position NodePosition
}

func (n *BinaryOpNode) Eval(resolve CellResolver) (float64, error) {
	// left operand first: the first error encountered wins
	left, err := n.Left.Eval(resolve)
	if err != nil {
		return 0, err
	}
	right, err := n.Right.Eval(resolve)
	if err != nil {
		return 0, err
	}

	var result float64
	switch n.Op {
	case BinOpAdd:
		result = left + right
	case BinOpSubtract:
		result = left - right
	case BinOpMultiply:
		result = left * right
	case BinOpDivide:
		result = left / right
	}

	// division by zero lands here as well (Inf or NaN)
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, NewFormulaError(ErrorCategoryArithmetic)
	}
	return result, nil
}

func (n *BinaryOpNode) GetPosition() NodePosition {
	return n.Position
}

func (n *BinaryOpNode) ToString() string {
	opStr := ""
	switch n.Op {
	case BinOpAdd:
		opStr = "+"
	case BinOpSubtract:
		opStr = "-"
	case BinOpMultiply:
		opStr = "*"
	case BinOpDivide:
		opStr = "/"
	}

	prec := n.precedence()
	left := n.Left.ToString()
	if n.Left.precedence() < prec {
		left = "(" + left + ")"
	}

	// a right operand of equal precedence only keeps its parentheses when
	// the operator is not associative, or when a quotient sits under a
	// product, since a*b/c rounds differently from a*(b/c)
	right := n.Right.ToString()
	rightPrec := n.Right.precedence()
	nonAssociative := n.Op == BinOpSubtract || n.Op == BinOpDivide
	if rightPrec < prec || (rightPrec == prec && (nonAssociative || n.quotientUnderProduct())) {
		right = "(" + right + ")"
	}

	return left + opStr + right
}

func (n *BinaryOpNode) quotientUnderProduct() bool {
	right, ok := n.Right.(*BinaryOpNode)
	return ok && n.Op == BinOpMultiply && right.Op == BinOpDivide
}

func (n *BinaryOpNode) precedence() int {
	if n.Op == BinOpMultiply || n.Op == BinOpDivide {
		return precedenceMultiplicative
	}
	return precedenceAdditive
}

func (n *BinaryOpNode) collectCells(cells []Position) []Position {
	return n.Right.collectCells(n.Left.collectCells(cells))
}

// UnaryOpNode represents a unary operation
type UnaryOpNode struct {
	Op       UnaryOp
	Operand  ASTNode
	Position NodePosition
}

func (n *UnaryOpNode) Eval(resolve CellResolver) (float64, error) {
	val, err := n.Operand.Eval(resolve)
	if err != nil {
		return 0, err
	}
	if n.Op == UnaryOpMinus {
		return -val, nil
	}
	return val, nil
}

func (n *UnaryOpNode) GetPosition() NodePosition {
	return n.Position
}

func (n *UnaryOpNode) ToString() string {
	opStr := "+"
	if n.Op == UnaryOpMinus {
		opStr = "-"
	}
	operand := n.Operand.ToString()
	if n.Operand.precedence() < precedenceUnary {
		operand = "(" + operand + ")"
	}
	return opStr + operand
}

func (n *UnaryOpNode) precedence() int { return precedenceUnary }

func (n *UnaryOpNode) collectCells(cells []Position) []Position {
	return n.Operand.collectCells(cells)
}

// NewParser creates a new parser with the given tokens
func NewParser(tokens []Token) *Parser {
	return &Parser{
		tokens: tokens,
		pos:    0,
	}
}

// Parse parses the tokens into an AST
func (p *Parser) Parse() (ASTNode, error) {
	if len(p.tokens) == 0 {
		return nil, syntaxError(0, "empty expression")
	}

	node, err := p.parseAddition()
	if err != nil {
		return nil, err
	}

	// ensure we consumed all tokens (except EOF)
	if p.pos < len(p.tokens) && p.tokens[p.pos].Type != TokenEOF {
		tok := p.tokens[p.pos]
		return nil, syntaxError(tok.Pos, "unexpected token: "+tok.Value)
	}

	return node, nil
}

// parseAddition handles addition and subtraction
func (p *Parser) parseAddition() (ASTNode, error) {
	left, err := p.parseMultiplication()
	if err != nil {
		return nil, err
	}

	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		if tok.Type != TokenBinaryOp {
			break
		}

		var op BinaryOp
		switch tok.Value {
		case "+":
			op = BinOpAdd
		case "-":
			op = BinOpSubtract
		default:
			return left, nil
		}

		p.pos++
		right, err := p.parseMultiplication()
		if err != nil {
			return nil, err
		}

		left = &BinaryOpNode{
			Op:       op,
			Left:     left,
			Right:    right,
			Position: NodePosition{Start: left.GetPosition().Start, End: right.GetPosition().End},
		}
	}

	return left, nil
}

// parseMultiplication handles multiplication and division
func (p *Parser) parseMultiplication() (ASTNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		if tok.Type != TokenBinaryOp {
			break
		}

		var op BinaryOp
		switch tok.Value {
		case "*":
			op = BinOpMultiply
		case "/":
			op = BinOpDivide
		default:
			return left, nil
		}

		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = &BinaryOpNode{
			Op:       op,
			Left:     left,
			Right:    right,
			Position: NodePosition{Start: left.GetPosition().Start, End: right.GetPosition().End},
		}
	}

	return left, nil
}

// parseUnary handles unary operators
func (p *Parser) parseUnary() (ASTNode, error) {
	if p.pos >= len(p.tokens) {
		return nil, syntaxError(0, "unexpected end of expression")
	}

	tok := p.tokens[p.pos]
	if tok.Type != TokenUnaryPrefixOp {
		return p.parsePrimary()
	}

	op := UnaryOpPlus
	if tok.Value == "-" {
		op = UnaryOpMinus
	}

	p.pos++
	operand, err := p.parseUnary() // recurse for chained unary operators
	if err != nil {
		return nil, err
	}

	return &UnaryOpNode{
		Op:       op,
		Operand:  operand,
		Position: NodePosition{Start: tok.Pos, End: operand.GetPosition().End},
	}, nil
}

// parsePrimary handles primary expressions (literals, references,
// parentheses)
func (p *Parser) parsePrimary() (ASTNode, error) {
	if p.pos >= len(p.tokens) {
		return nil, syntaxError(0, "unexpected end of expression")
	}

	tok := p.tokens[p.pos]

	switch tok.Type {
	case TokenNumber:
		p.pos++
		val, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, syntaxError(tok.Pos, "invalid number: "+tok.Value)
		}
		return &NumberNode{
			Value:    val,
			Position: NodePosition{Start: tok.Pos, End: tok.Pos + len(tok.Value)},
		}, nil

	case TokenCell:
		p.pos++
		return &CellRefNode{
			Cell:     ParsePosition(tok.Value),
			Position: NodePosition{Start: tok.Pos, End: tok.Pos + len(tok.Value)},
		}, nil

	case TokenLeftParen:
		p.pos++
		node, err := p.parseAddition()
		if err != nil {
			return nil, err
		}

		if p.pos >= len(p.tokens) || p.tokens[p.pos].Type != TokenRightParen {
			return nil, syntaxError(tok.Pos, "expected closing parenthesis")
		}
		p.pos++

		return node, nil

	default:
		return nil, syntaxError(tok.Pos, "unexpected token: "+tok.Value)
	}
}

// formatNumber renders integral values without a fractional part or
// exponent and everything else in the shortest form that round-trips
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
