package ir

import "fmt"

// Location is interned source position metadata attached to operations.
// Locations are immutable and uniqued per Context; they never reference
// values and never participate in def-use chains.
type Location interface {
	Context() *Context
	String() string
	location() // sealed
}

// nullLocation is the Context's singleton "no location" marker.
type nullLocation struct {
	ctx *Context
}

func (l *nullLocation) Context() *Context { return l.ctx }
func (l *nullLocation) String() string    { return "<unknown>" }
func (l *nullLocation) location()         {}

// SourceFile identifies one input document, interned by path.
type SourceFile struct {
	ctx  *Context
	path string
}

func (f *SourceFile) Context() *Context { return f.ctx }
func (f *SourceFile) Path() string      { return f.path }
func (f *SourceFile) String() string    { return f.path }
func (f *SourceFile) location()         {}

// SourceLoc is a position inside a SourceFile. Page distinguishes sheets
// or page-broken documents; all coordinates are 1-based, 0 when unknown.
type SourceLoc struct {
	file *SourceFile
	page int
	row  int
	col  int
}

func (l *SourceLoc) Context() *Context { return l.file.ctx }
func (l *SourceLoc) File() *SourceFile { return l.file }
func (l *SourceLoc) Page() int         { return l.page }
func (l *SourceLoc) Row() int          { return l.row }
func (l *SourceLoc) Col() int          { return l.col }
func (l *SourceLoc) location()         {}

func (l *SourceLoc) String() string {
	return fmt.Sprintf("%s#P%d:%d:%d", l.file.path, l.page, l.row, l.col)
}
