package ast

import "fmt"

// Position locates a node in a source file. The zero value means
// "unknown position".
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	// File-level diagnostics carry no line. Printing ":0:0" for those
	// would point at a location that doesn't exist.
	if p.Line == 0 {
		return p.File
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Pos makes Position satisfy Positioner, so nodes can embed it.
func (p Position) Pos() Position {
	return p
}

// Before orders positions by (file, line, column). Error lists are
// sorted with it so repeated runs print identical output.
func (p Position) Before(other Position) bool {
	if p.File != other.File {
		return p.File < other.File
	}
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

type Positioner interface {
	Pos() Position
}
