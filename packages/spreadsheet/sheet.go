package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
)

// Sheet is a grid of cells with incremental recalculation. it combines
// storage, formula parsing, dependency tracking and lazy evaluation into a
// single API.
//
// a Sheet is not safe for concurrent use.
type Sheet struct {
	grid    *grid
	parse   FormulaParser
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Sheet.
type Option func(*Sheet)

// WithLogger sets the logger used for debug records about writes. the
// default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sheet) {
		s.logger = logger
	}
}

// WithMetrics records sheet activity into m.
func WithMetrics(m *Metrics) Option {
	return func(s *Sheet) {
		s.metrics = m
	}
}

// WithFormulaParser replaces the formula compiler. the default is
// ParseFormula.
func WithFormulaParser(parse FormulaParser) Option {
	return func(s *Sheet) {
		s.parse = parse
	}
}

// NewSheet creates an empty sheet
func NewSheet(opts ...Option) *Sheet {
	s := &Sheet{
		grid:   newGrid(),
		parse:  ParseFormula,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SheetInterface is the position-based surface of a sheet, for callers that
// want to swap in their own implementation.
type SheetInterface interface {
	SetCell(pos Position, text string) error
	GetCell(pos Position) (*Cell, error)
	ClearCell(pos Position) error

	PrintableSize() Size
	PrintValues(w io.Writer) error
	PrintTexts(w io.Writer) error
}

var _ SheetInterface = (*Sheet)(nil)

func invalidPosition(pos Position) error {
	return fmt.Errorf("%w: (%d, %d)", ErrInvalidPosition, pos.Row, pos.Col)
}

// SetCell writes text into the cell at pos, creating the cell if needed.
// text starting with '=' (and longer than one character) is compiled as a
// formula. a write that fails to compile or would create a reference cycle
// is rejected and leaves the sheet unchanged.
func (s *Sheet) SetCell(pos Position, text string) error {
	if !pos.IsValid() {
		s.metrics.write(writeResultPosition)
		return invalidPosition(pos)
	}

	cell := s.grid.get(pos)
	if cell == nil {
		// an empty cell at a fresh position is a valid state even if the
		// write below gets rejected
		cell = s.createCell(pos)
	}

	if err := cell.setContent(text); err != nil {
		s.recordRejected(pos, err)
		return err
	}

	s.metrics.write(writeResultOK)
	s.logger.Debug("cell written",
		slog.String("cell", pos.String()),
		slog.Int("references", len(cell.references)))
	return nil
}

// GetCell returns the cell at pos, or nil if no cell was ever written or
// referenced there.
func (s *Sheet) GetCell(pos Position) (*Cell, error) {
	if !pos.IsValid() {
		return nil, invalidPosition(pos)
	}
	return s.grid.get(pos), nil
}

// ClearCell resets the cell at pos to empty. the cell node is kept, so
// edges from other cells stay intact, and its dependents are invalidated.
// clearing a position that holds no cell is a no-op.
func (s *Sheet) ClearCell(pos Position) error {
	if !pos.IsValid() {
		s.metrics.write(writeResultPosition)
		return invalidPosition(pos)
	}

	cell := s.grid.get(pos)
	if cell == nil {
		return nil
	}

	// empty content has no references, so this can not fail
	if err := cell.setContent(""); err != nil {
		return err
	}

	s.metrics.write(writeResultOK)
	s.logger.Debug("cell cleared", slog.String("cell", pos.String()))
	return nil
}

// createCell stores a new empty cell at pos.
func (s *Sheet) createCell(pos Position) *Cell {
	cell := newCell(s, pos)
	s.grid.put(cell)
	return cell
}

func (s *Sheet) recordRejected(pos Position, err error) {
	result := writeResultSyntax
	if errors.Is(err, ErrCircularDependency) {
		result = writeResultCircular
	}
	s.metrics.write(result)
	s.logger.Debug("write rejected",
		slog.String("cell", pos.String()),
		slog.String("reason", result),
		slog.Any("error", err))
}

// PrintableSize returns the smallest rectangle anchored at A1 that holds
// every cell with non-empty text. it is computed on demand, so clearing
// cells shrinks it even though the nodes stay in storage.
func (s *Sheet) PrintableSize() Size {
	size := Size{}
	s.grid.each(func(cell *Cell) {
		if cell.Text() == "" {
			return
		}
		size.Rows = max(size.Rows, cell.pos.Row+1)
		size.Cols = max(size.Cols, cell.pos.Col+1)
	})
	return size
}

// CellCount returns the number of stored cell nodes, including empty ones
// created by clears or references.
func (s *Sheet) CellCount() int {
	return s.grid.count
}

// Cells returns every stored cell in row-major order.
func (s *Sheet) Cells() []*Cell {
	cells := make([]*Cell, 0, s.grid.count)
	s.grid.each(func(cell *Cell) {
		cells = append(cells, cell)
	})
	slices.SortFunc(cells, func(a, b *Cell) int {
		return comparePositions(a.pos, b.pos)
	})
	return cells
}

// address helpers

func parseAddress(address string) (Position, error) {
	pos := ParsePosition(address)
	if !pos.IsValid() {
		return PositionNone, fmt.Errorf("%w: %q", ErrInvalidPosition, address)
	}
	return pos, nil
}

// Set writes text into the cell at an A1 address
func (s *Sheet) Set(address string, text string) error {
	pos, err := parseAddress(address)
	if err != nil {
		s.metrics.write(writeResultPosition)
		return err
	}
	return s.SetCell(pos, text)
}

// Get returns the value of the cell at an A1 address. positions without a
// cell read as empty text.
func (s *Sheet) Get(address string) (Value, error) {
	pos, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	cell := s.grid.get(pos)
	if cell == nil {
		return Text(""), nil
	}
	return cell.Value(), nil
}

// Clear clears the cell at an A1 address
func (s *Sheet) Clear(address string) error {
	pos, err := parseAddress(address)
	if err != nil {
		s.metrics.write(writeResultPosition)
		return err
	}
	return s.ClearCell(pos)
}

// Cell returns the cell at an A1 address, or nil.
func (s *Sheet) Cell(address string) (*Cell, error) {
	pos, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	return s.GetCell(pos)
}
