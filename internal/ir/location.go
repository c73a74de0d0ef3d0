package ir

import "fmt"

// Location identifies where an operation originated, normally a position in
// a parsed source file. The zero value is the unknown location.
type Location struct {
	File string
	Line int
	Col  int
}

// UnknownLoc returns the unknown location.
func UnknownLoc() Location { return Location{} }

// IsUnknown reports whether the location carries no source position.
func (l Location) IsUnknown() bool { return l == Location{} }

func (l Location) String() string {
	if l.IsUnknown() {
		return "<unknown>"
	}
	file := l.File
	if file == "" {
		file = "-"
	}
	return fmt.Sprintf("%s:%d:%d", file, l.Line, l.Col)
}
