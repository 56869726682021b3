package spreadsheet

import (
	"strconv"
)

const (
	// MaxRows is the number of addressable rows in a sheet.
	MaxRows = 16384
	// MaxCols is the number of addressable columns in a sheet (A..XFD).
	MaxCols = 16384

	maxColumnLetters  = 3
	lettersInAlphabet = 26
)

// Position identifies a cell by zero-based row and column.
type Position struct {
	Row int
	Col int
}

// PositionNone is the sentinel for an unaddressable position.
var PositionNone = Position{Row: -1, Col: -1}

// Size is the extent of the printable area of a sheet.
type Size struct {
	Rows int
	Cols int
}

// IsValid reports whether the position lies inside the sheet.
func (p Position) IsValid() bool {
	return p.Row >= 0 && p.Col >= 0 && p.Row < MaxRows && p.Col < MaxCols
}

// Less orders positions row-major.
func (p Position) Less(other Position) bool {
	if p.Row != other.Row {
		return p.Row < other.Row
	}
	return p.Col < other.Col
}

// String renders the position in A1 notation. invalid positions render as
// the empty string.
func (p Position) String() string {
	if !p.IsValid() {
		return ""
	}

	// column letters (A=0, B=1, ..., Z=25, AA=26, ...)
	var letters [maxColumnLetters]byte
	n := len(letters)
	for col := p.Col + 1; col > 0; col = (col - 1) / lettersInAlphabet {
		n--
		letters[n] = byte('A' + (col-1)%lettersInAlphabet)
	}

	return string(letters[n:]) + strconv.Itoa(p.Row+1)
}

// ParsePosition parses A1 notation. malformed or out-of-range input returns
// PositionNone.
func ParsePosition(s string) Position {
	// find where letters end and numbers begin
	letterEnd := 0
	for letterEnd < len(s) && s[letterEnd] >= 'A' && s[letterEnd] <= 'Z' {
		letterEnd++
	}

	if letterEnd == 0 || letterEnd > maxColumnLetters || letterEnd == len(s) {
		return PositionNone
	}

	col := 0
	for i := 0; i < letterEnd; i++ {
		col = col*lettersInAlphabet + int(s[i]-'A') + 1
	}

	rowStr := s[letterEnd:]
	for i := 0; i < len(rowStr); i++ {
		if rowStr[i] < '0' || rowStr[i] > '9' {
			return PositionNone
		}
	}

	// bounded by the digit check above, so only overflow can fail here
	row, err := strconv.Atoi(rowStr)
	if err != nil || row < 1 {
		return PositionNone
	}

	pos := Position{Row: row - 1, Col: col - 1}
	if !pos.IsValid() {
		return PositionNone
	}
	return pos
}
