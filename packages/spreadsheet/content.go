package spreadsheet

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	// FormulaSign marks cell text as a formula.
	FormulaSign = '='
	// EscapeSign forces the rest of the text to be taken literally.
	EscapeSign = '\''
)

// content is the interpretation of a cell's text. the set of variants is
// closed: *emptyContent, *textContent and *formulaContent. all variants are
// pointers so that a content can be identified during cycle detection.
type content interface {
	isContent()
}

type emptyContent struct{}

type textContent struct {
	raw string
}

// formulaContent owns its compiled formula and the memoized result. cache is
// nil while no result is memoized.
type formulaContent struct {
	formula Formula
	cache   Value
}

func (*emptyContent) isContent()   {}
func (*textContent) isContent()    {}
func (*formulaContent) isContent() {}

// newContent classifies text into a candidate content. a lone "=" is text,
// not a formula.
func newContent(text string, parse FormulaParser) (content, error) {
	switch {
	case text == "":
		return &emptyContent{}, nil
	case len(text) > 1 && text[0] == FormulaSign:
		formula, err := parse(text[1:])
		if err != nil {
			if !errors.Is(err, ErrFormulaSyntax) {
				err = errors.Join(ErrFormulaSyntax, err)
			}
			return nil, err
		}
		return &formulaContent{formula: formula}, nil
	default:
		return &textContent{raw: text}, nil
	}
}

func contentText(c content) string {
	switch c := c.(type) {
	case *textContent:
		return c.raw
	case *formulaContent:
		return string(FormulaSign) + c.formula.Expression()
	default:
		return ""
	}
}

func contentReferences(c content) []Position {
	if f, ok := c.(*formulaContent); ok {
		return f.formula.ReferencedCells()
	}
	return nil
}

// invalidate drops a memoized formula result. it reports whether there was
// anything to drop.
func invalidate(c content) bool {
	f, ok := c.(*formulaContent)
	if !ok || f.cache == nil {
		return false
	}
	f.cache = nil
	return true
}

// contentValue computes the value of c, resolving references through s.
// formula results are memoized until invalidated.
func contentValue(c content, s *Sheet) Value {
	switch c := c.(type) {
	case *textContent:
		if c.raw != "" && c.raw[0] == EscapeSign {
			return Text(c.raw[1:])
		}
		return Text(c.raw)
	case *formulaContent:
		if c.cache != nil {
			s.metrics.cacheHit()
			return c.cache
		}
		s.metrics.evaluated()
		c.cache = c.formula.Evaluate(s.resolveNumber)
		return c.cache
	default:
		return Text("")
	}
}

// resolveNumber is the resolver handed to formulas: it coerces the value of
// the cell at pos to a number.
func (s *Sheet) resolveNumber(pos Position) (float64, error) {
	if !pos.IsValid() {
		return 0, NewFormulaError(ErrorCategoryRef)
	}

	cell := s.grid.get(pos)
	if cell == nil {
		return 0, nil
	}

	switch v := cell.Value().(type) {
	case Number:
		return float64(v), nil
	case Text:
		text := strings.TrimSpace(string(v))
		if text == "" {
			return 0, nil
		}
		// only plain decimal notation counts, no hex floats or digit separators
		if strings.ContainsAny(text, "xX_") {
			return 0, NewFormulaError(ErrorCategoryValue)
		}
		num, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsInf(num, 0) || math.IsNaN(num) {
			return 0, NewFormulaError(ErrorCategoryValue)
		}
		return num, nil
	case FormulaError:
		return 0, v
	default:
		return 0, NewFormulaError(ErrorCategoryValue)
	}
}
