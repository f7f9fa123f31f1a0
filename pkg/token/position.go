package token

import "fmt"

// Position represents a location in the source code.
type Position struct {
	Line   int `json:"line"`   // 1-based line number
	Column int `json:"column"` // 1-based column number (bytes)
	Offset int `json:"offset"` // 0-based byte offset
}

// IsValid returns true if the position is valid (line > 0).
func (p Position) IsValid() bool {
	return p.Line > 0
}

// String formats the position as line:column.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span represents a half-open range [Start, End) in source code.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains returns true if the span contains the given offset.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start.Offset && offset < s.End.Offset
}

// Covers returns true if other lies entirely within s.
func (s Span) Covers(other Span) bool {
	return other.Start.Offset >= s.Start.Offset && other.End.Offset <= s.End.Offset
}

// Overlaps returns true if the two spans share at least one byte, or if both
// are empty insertions at the same offset.
func (s Span) Overlaps(other Span) bool {
	if s.Start.Offset == other.Start.Offset {
		return true
	}
	return s.Start.Offset < other.End.Offset && other.Start.Offset < s.End.Offset
}

// Len returns the number of bytes covered.
func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

// IsValid returns true if both start and end positions are valid.
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid()
}

// Join returns the smallest span covering a and b.
func Join(a, b Span) Span {
	if !a.IsValid() {
		return b
	}
	if !b.IsValid() {
		return a
	}
	out := a
	if b.Start.Offset < out.Start.Offset {
		out.Start = b.Start
	}
	if b.End.Offset > out.End.Offset {
		out.End = b.End
	}
	return out
}
