package spreadsheet

import (
	"bufio"
	"io"
)

// PrintValues writes the computed values of the printable area, one row per
// line with tab-separated fields.
func (s *Sheet) PrintValues(w io.Writer) error {
	return s.printCells(w, func(c *Cell) string {
		return FormatValue(c.Value())
	})
}

// PrintTexts writes the cell texts of the printable area, one row per line
// with tab-separated fields.
func (s *Sheet) PrintTexts(w io.Writer) error {
	return s.printCells(w, (*Cell).Text)
}

func (s *Sheet) printCells(w io.Writer, render func(*Cell) string) error {
	size := s.PrintableSize()
	out := bufio.NewWriter(w)

	for row := 0; row < size.Rows; row++ {
		for col := 0; col < size.Cols; col++ {
			if col > 0 {
				out.WriteByte('\t')
			}
			if cell := s.grid.get(Position{Row: row, Col: col}); cell != nil {
				out.WriteString(render(cell))
			}
		}
		out.WriteByte('\n')
	}

	return out.Flush()
}
