package bytecode

import "fmt"

const (
	Magic        uint32 = 0x59754B72
	VersionMajor uint16 = 1
	VersionMinor uint16 = 0
)

// DeclKind is the kind of a declaration record.
type DeclKind uint8

const (
	DeclClass DeclKind = iota
	DeclFunction
)

func (k DeclKind) String() string {
	if k == DeclClass {
		return "class"
	}
	return "function"
}

// Decl records the name of a class or function declared by a unit. Only
// the name is kept; bodies are not lowered.
type Decl struct {
	Kind      DeclKind
	NameIndex uint16
}

// File is a bytecode container.
type File struct {
	Major uint16
	Minor uint16
	Pool  *Pool
	Decls []Decl
	Attrs []Attr
}

// NewFile returns an empty container at the current format version.
func NewFile() *File {
	return &File{
		Major: VersionMajor,
		Minor: VersionMinor,
		Pool:  NewPool(),
	}
}

// AddAttr attaches an attribute. A container holds at most one Code
// attribute.
func (f *File) AddAttr(a Attr) error {
	if _, ok := a.(*Code); ok {
		if _, exists := f.Code(); exists {
			return ErrDuplicateCode
		}
	}
	f.Attrs = append(f.Attrs, a)
	return nil
}

// Code returns the Code attribute, if present.
func (f *File) Code() (*Code, bool) {
	for _, a := range f.Attrs {
		if code, ok := a.(*Code); ok {
			return code, true
		}
	}
	return nil, false
}

// SourceFile returns the source file name recorded in the container.
func (f *File) SourceFile() (string, bool) {
	for _, a := range f.Attrs {
		if sf, ok := a.(*SourceFile); ok {
			return f.Pool.Utf8At(sf.NameIndex)
		}
	}
	return "", false
}

// DeclName resolves the name of a declaration.
func (f *File) DeclName(d Decl) string {
	name, _ := f.Pool.Utf8At(d.NameIndex)
	return name
}

// Finalize interns the names of all attributes into the constant pool so
// that the container can be encoded. It is safe to call more than once.
func (f *File) Finalize() error {
	for _, a := range f.Attrs {
		if _, err := f.Pool.PushUtf8(a.Name()); err != nil {
			return fmt.Errorf("attribute %q name: %w", a.Name(), err)
		}
	}
	return nil
}

func (f *File) nameIndex(name string) (uint16, bool) {
	idx, ok := f.Pool.index[keyOf(NewUtf8(name))]
	return idx, ok
}
