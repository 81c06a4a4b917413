package contracts

import (
	"errors"
	"fmt"
	"strings"
)

// Grid bounds, 256 columns ("A".."IV") by 65536 rows.
const (
	MaxColumn = 255
	MaxRow    = 65535
)

var InvalidReferenceError = errors.New("invalid cell reference")

var ReferenceOutOfBoundsError = fmt.Errorf("%w: out of grid bounds", InvalidReferenceError)

// Coordinate addresses a single cell, zero-based in both axes.
type Coordinate struct {
	Col int
	Row int
}

func (c Coordinate) InBounds() bool {
	return c.Col >= 0 && c.Col <= MaxColumn && c.Row >= 0 && c.Row <= MaxRow
}

// ColumnToLetters converts a zero-based column index to letters
// (0 -> "A", 25 -> "Z", 26 -> "AA", 255 -> "IV").
func ColumnToLetters(col int) string {
	var buf [3]byte
	i := len(buf)
	col++
	for col > 0 {
		col--
		i--
		buf[i] = byte('A' + col%26)
		col /= 26
	}
	return string(buf[i:])
}

// LettersToColumn converts column letters to a zero-based index.
// Base-26 with no zero digit: A=0, Z=25, AA=26.
func LettersToColumn(letters string) (int, error) {
	if letters == "" {
		return 0, InvalidReferenceError
	}
	col := 0
	for _, ch := range strings.ToUpper(letters) {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("%w: bad column letter %q", InvalidReferenceError, string(ch))
		}
		col = col*26 + int(ch-'A') + 1
	}
	return col - 1, nil
}

// Reference is a cell coordinate plus absolute/relative flags per axis.
// The flags affect only formatting and adjustment, never which cell is
// addressed.
type Reference struct {
	Coordinate
	ColAbsolute bool
	RowAbsolute bool
}

// ParseReference parses "A1", "$A1", "A$1" or "$A$1".
func ParseReference(text string) (Reference, error) {
	var ref Reference
	s := strings.TrimSpace(text)
	if s == "" {
		return ref, InvalidReferenceError
	}

	i := 0
	if s[i] == '$' {
		ref.ColAbsolute = true
		i++
	}
	letterStart := i
	for i < len(s) && isASCIILetter(s[i]) {
		i++
	}
	if i == letterStart {
		return ref, fmt.Errorf("%w: %q", InvalidReferenceError, text)
	}
	col, err := LettersToColumn(s[letterStart:i])
	if err != nil {
		return ref, err
	}

	if i < len(s) && s[i] == '$' {
		ref.RowAbsolute = true
		i++
	}
	digitStart := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digitStart || i != len(s) {
		return ref, fmt.Errorf("%w: %q", InvalidReferenceError, text)
	}
	row := 0
	for _, ch := range s[digitStart:i] {
		row = row*10 + int(ch-'0')
		if row > MaxRow+1 {
			return ref, fmt.Errorf("%w: %q", ReferenceOutOfBoundsError, text)
		}
	}
	if row == 0 {
		return ref, fmt.Errorf("%w: %q", InvalidReferenceError, text)
	}

	ref.Col = col
	ref.Row = row - 1
	if !ref.InBounds() {
		return ref, fmt.Errorf("%w: %q", ReferenceOutOfBoundsError, text)
	}
	return ref, nil
}

// String renders the reference, emitting "$" per absolute flag. It
// round-trips exactly through ParseReference.
func (r Reference) String() string {
	var sb strings.Builder
	if r.ColAbsolute {
		sb.WriteByte('$')
	}
	sb.WriteString(ColumnToLetters(r.Col))
	if r.RowAbsolute {
		sb.WriteByte('$')
	}
	fmt.Fprintf(&sb, "%d", r.Row+1)
	return sb.String()
}

// Adjust shifts the relative components by the given deltas. Absolute
// components are left untouched. A shift that leaves the grid reports
// ReferenceOutOfBoundsError; callers turn that into a #REF! value.
func (r Reference) Adjust(dRow, dCol int) (Reference, error) {
	out := r
	if !r.RowAbsolute {
		out.Row = r.Row + dRow
	}
	if !r.ColAbsolute {
		out.Col = r.Col + dCol
	}
	if !out.InBounds() {
		return out, ReferenceOutOfBoundsError
	}
	return out, nil
}

// RangeReference is a rectangular cell range, normalized at construction
// so Start <= End on both axes.
type RangeReference struct {
	Start Reference
	End   Reference
}

// NewRangeReference normalizes the corner pair into a RangeReference.
func NewRangeReference(start, end Reference) RangeReference {
	if start.Row > end.Row {
		start.Row, end.Row = end.Row, start.Row
		start.RowAbsolute, end.RowAbsolute = end.RowAbsolute, start.RowAbsolute
	}
	if start.Col > end.Col {
		start.Col, end.Col = end.Col, start.Col
		start.ColAbsolute, end.ColAbsolute = end.ColAbsolute, start.ColAbsolute
	}
	return RangeReference{Start: start, End: end}
}

// ParseRange parses "A1:B10" (either corner may carry "$" flags).
func ParseRange(text string) (RangeReference, error) {
	parts := strings.SplitN(strings.TrimSpace(text), ":", 2)
	if len(parts) != 2 {
		return RangeReference{}, fmt.Errorf("%w: range %q", InvalidReferenceError, text)
	}
	start, err := ParseReference(parts[0])
	if err != nil {
		return RangeReference{}, err
	}
	end, err := ParseReference(parts[1])
	if err != nil {
		return RangeReference{}, err
	}
	return NewRangeReference(start, end), nil
}

func (r RangeReference) String() string {
	return r.Start.String() + ":" + r.End.String()
}

func (r RangeReference) Rows() int {
	return r.End.Row - r.Start.Row + 1
}

func (r RangeReference) Cols() int {
	return r.End.Col - r.Start.Col + 1
}

func (r RangeReference) Contains(c Coordinate) bool {
	return c.Row >= r.Start.Row && c.Row <= r.End.Row &&
		c.Col >= r.Start.Col && c.Col <= r.End.Col
}

// Cells returns every coordinate of the range in row-major order.
func (r RangeReference) Cells() []Coordinate {
	out := make([]Coordinate, 0, r.Rows()*r.Cols())
	for row := r.Start.Row; row <= r.End.Row; row++ {
		for col := r.Start.Col; col <= r.End.Col; col++ {
			out = append(out, Coordinate{Col: col, Row: row})
		}
	}
	return out
}

// EachCell visits the range in row-major order without materializing it.
func (r RangeReference) EachCell(visit func(Coordinate) bool) {
	for row := r.Start.Row; row <= r.End.Row; row++ {
		for col := r.Start.Col; col <= r.End.Col; col++ {
			if !visit(Coordinate{Col: col, Row: row}) {
				return
			}
		}
	}
}

// Adjust shifts both corners; see Reference.Adjust.
func (r RangeReference) Adjust(dRow, dCol int) (RangeReference, error) {
	start, err := r.Start.Adjust(dRow, dCol)
	if err != nil {
		return RangeReference{}, err
	}
	end, err := r.End.Adjust(dRow, dCol)
	if err != nil {
		return RangeReference{}, err
	}
	return NewRangeReference(start, end), nil
}

func isASCIILetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
