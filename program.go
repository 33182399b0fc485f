package yukr

import (
	"github.com/yukr-lang/yukr/bytecode"
)

// Program is a compiled yukr unit.
type Program struct {
	file *bytecode.File

	// Metadata
	source   string
	filename string
}

// Source returns the source code the program was compiled from. It is
// empty for programs loaded from a container.
func (p *Program) Source() string {
	return p.source
}

// Filename returns the filename associated with this program, if any.
func (p *Program) Filename() string {
	return p.filename
}

// File returns the underlying bytecode container.
func (p *Program) File() *bytecode.File {
	return p.file
}

// Declarations returns the names of the classes and functions the program
// declares, in source order.
func (p *Program) Declarations() []string {
	names := make([]string, 0, len(p.file.Decls))
	for _, d := range p.file.Decls {
		names = append(names, p.file.DeclName(d))
	}
	return names
}

// Marshal encodes the program as a binary container.
func (p *Program) Marshal() ([]byte, error) {
	return bytecode.Marshal(p.file)
}
