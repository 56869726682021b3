package spreadsheet

import (
	"slices"
)

// Cell is a node in the sheet: it owns its content and the two edge sets
// that tie it into the dependency graph.
//
// invariant: for any cells a and b, b is in a.references exactly when a is
// in b.dependents.
type Cell struct {
	sheet *Sheet
	pos   Position

	content content

	references map[Position]*Cell // cells this cell's formula reads
	dependents map[Position]*Cell // cells whose formulas read this cell
}

func newCell(s *Sheet, pos Position) *Cell {
	return &Cell{
		sheet:      s,
		pos:        pos,
		content:    &emptyContent{},
		references: make(map[Position]*Cell),
		dependents: make(map[Position]*Cell),
	}
}

// Position returns the cell's coordinate.
func (c *Cell) Position() Position {
	return c.pos
}

// Value returns the computed value: Number, Text or FormulaError.
func (c *Cell) Value() Value {
	return contentValue(c.content, c.sheet)
}

// Text returns the cell text as it would be typed back in. formulas are
// rendered in canonical form.
func (c *Cell) Text() string {
	return contentText(c.content)
}

// ReferencedCells returns the positions the current content reads.
func (c *Cell) ReferencedCells() []Position {
	return contentReferences(c.content)
}

// IsEmpty reports whether the cell has no content.
func (c *Cell) IsEmpty() bool {
	_, ok := c.content.(*emptyContent)
	return ok
}

// References returns the outgoing edges, sorted.
func (c *Cell) References() []Position {
	return sortedPositions(c.references)
}

// Dependents returns the incoming edges, sorted.
func (c *Cell) Dependents() []Position {
	return sortedPositions(c.dependents)
}

func sortedPositions(set map[Position]*Cell) []Position {
	result := make([]Position, 0, len(set))
	for pos := range set {
		result = append(result, pos)
	}
	slices.SortFunc(result, comparePositions)
	return result
}

func comparePositions(a, b Position) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}
