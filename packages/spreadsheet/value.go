package spreadsheet

import "strconv"

// Value is the computed value of a cell or a formula. it is one of:
//   - Number: numeric values
//   - Text: text values (an empty cell is Text(""))
//   - FormulaError: error values (#REF!, #VALUE!, #ARITHM!)
type Value interface {
	isValue()
}

// Number is a numeric cell value.
type Number float64

// Text is a textual cell value.
type Text string

func (Number) isValue()       {}
func (Text) isValue()         {}
func (FormulaError) isValue() {}

// FormulaErrorCategory represents the kind of failure a formula ran into
type FormulaErrorCategory uint8

const (
	ErrorCategoryRef        FormulaErrorCategory = 1 // #REF! - reference to a position outside the sheet
	ErrorCategoryValue      FormulaErrorCategory = 2 // #VALUE! - referenced text is not a number
	ErrorCategoryArithmetic FormulaErrorCategory = 3 // #ARITHM! - division by zero or overflow
)

// ErrorMapper maps error categories to their string representations
var ErrorMapper = map[FormulaErrorCategory]string{
	ErrorCategoryRef:        "#REF!",
	ErrorCategoryValue:      "#VALUE!",
	ErrorCategoryArithmetic: "#ARITHM!",
}

// FormulaError is a domain error produced by evaluating a formula. it is a
// value that flows through the dependency graph, not a failure of the engine.
type FormulaError struct {
	Category FormulaErrorCategory
}

func NewFormulaError(category FormulaErrorCategory) FormulaError {
	return FormulaError{Category: category}
}

func (e FormulaError) Error() string {
	return e.String()
}

func (e FormulaError) String() string {
	if s, ok := ErrorMapper[e.Category]; ok {
		return s
	}
	return "#ERROR!"
}

// valueDigits is the number of significant digits a printed value keeps
const valueDigits = 6

// FormatValue renders a value the way it is printed in a sheet. numbers keep
// six significant digits and switch to exponent form past that (1.23457e+06).
func FormatValue(v Value) string {
	switch v := v.(type) {
	case Number:
		return strconv.FormatFloat(float64(v), 'g', valueDigits, 64)
	case Text:
		return string(v)
	case FormulaError:
		return v.String()
	default:
		return ""
	}
}
