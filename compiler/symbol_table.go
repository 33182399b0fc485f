package compiler

import (
	"fmt"
	"math"
	"sort"
)

// Symbol is a named local variable bound to a slot.
type Symbol struct {
	name  string
	index uint16
}

func (s *Symbol) Name() string { return s.name }

func (s *Symbol) Index() uint16 { return s.index }

// SymbolTable maps variable names to local slots for one lexical scope.
// A block scope continues numbering from its parent, and the parent gets
// those slots back when the block ends.
type SymbolTable struct {
	parent  *SymbolTable
	symbols map[string]*Symbol
	base    int // first slot owned by this scope
	next    int // next free slot
}

// NewSymbolTable returns an empty top-level scope.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: map[string]*Symbol{}}
}

// NewBlock returns a nested scope whose slots start after the ones in use
// by t.
func (t *SymbolTable) NewBlock() *SymbolTable {
	return &SymbolTable{
		parent:  t,
		symbols: map[string]*Symbol{},
		base:    t.next,
		next:    t.next,
	}
}

func (t *SymbolTable) Parent() *SymbolTable {
	return t.parent
}

// Count returns the number of variables declared directly in this scope.
func (t *SymbolTable) Count() uint16 {
	return uint16(t.next - t.base)
}

// Slots returns the number of slots in use by this scope and its parents.
func (t *SymbolTable) Slots() int {
	return t.next
}

// IsDefined reports whether name is declared in this scope itself.
func (t *SymbolTable) IsDefined(name string) bool {
	_, ok := t.symbols[name]
	return ok
}

// InsertVariable declares name in this scope and assigns it the next
// free slot.
func (t *SymbolTable) InsertVariable(name string) (*Symbol, error) {
	if t.IsDefined(name) {
		return nil, fmt.Errorf("%w: %q", ErrRedeclared, name)
	}
	if t.next >= math.MaxUint16 {
		return nil, fmt.Errorf("%w (declaring %q)", ErrTooManyLocals, name)
	}
	s := &Symbol{name: name, index: uint16(t.next)}
	t.symbols[name] = s
	t.next++
	return s, nil
}

// Resolve looks name up in this scope and then in each enclosing scope.
func (t *SymbolTable) Resolve(name string) (*Symbol, bool) {
	for scope := t; scope != nil; scope = scope.parent {
		if s, ok := scope.symbols[name]; ok {
			return s, true
		}
	}
	return nil, false
}

// Names returns every name visible from this scope, sorted.
func (t *SymbolTable) Names() []string {
	seen := map[string]bool{}
	var names []string
	for scope := t; scope != nil; scope = scope.parent {
		for name := range scope.symbols {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
