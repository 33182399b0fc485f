package bytecode

import (
	"fmt"
	"math"
)

// MaxPoolSize is the maximum number of pool entries, the sentinel included.
const MaxPoolSize = math.MaxUint16

// Pool is the constant pool of a container. Index 0 always holds None.
type Pool struct {
	entries []Constant
	index   map[constantKey]uint16
}

// NewPool returns a pool holding only the sentinel.
func NewPool() *Pool {
	return &Pool{
		entries: []Constant{None{}},
		index:   map[constantKey]uint16{},
	}
}

// Len returns the number of entries, the sentinel included.
func (p *Pool) Len() int {
	return len(p.entries)
}

// Get returns the entry at the given index.
func (p *Pool) Get(index uint16) (Constant, bool) {
	if int(index) >= len(p.entries) {
		return nil, false
	}
	return p.entries[index], true
}

// Entries returns a copy of the entries after the sentinel, in index order.
func (p *Pool) Entries() []Constant {
	entries := make([]Constant, len(p.entries)-1)
	copy(entries, p.entries[1:])
	return entries
}

// Push adds c to the pool and returns its index. If an equal entry already
// exists, its index is returned and the pool is unchanged. Pushing None
// returns 0.
func (p *Pool) Push(c Constant) (uint16, error) {
	if c == nil || c.Tag() == TagNone {
		return 0, nil
	}
	if idx, ok := p.index[keyOf(c)]; ok {
		return idx, nil
	}
	return p.append(c)
}

// PushUtf8 pushes a Utf8 entry holding s.
func (p *Pool) PushUtf8(s string) (uint16, error) {
	return p.Push(NewUtf8(s))
}

// PushNumber pushes a Number entry holding f.
func (p *Pool) PushNumber(f float64) (uint16, error) {
	return p.Push(NewNumber(f))
}

// PushString pushes a Utf8 entry holding s followed by a String entry
// referring to it, and returns the index of the String entry. Both halves
// are deduplicated independently.
func (p *Pool) PushString(s string) (uint16, error) {
	utf8Index, err := p.PushUtf8(s)
	if err != nil {
		return 0, err
	}
	return p.Push(String{Utf8Index: utf8Index})
}

// Utf8At returns the text of the Utf8 entry at index.
func (p *Pool) Utf8At(index uint16) (string, bool) {
	c, ok := p.Get(index)
	if !ok {
		return "", false
	}
	u, ok := c.(Utf8)
	if !ok {
		return "", false
	}
	return u.Text(), true
}

// StringAt resolves the String entry at index to its text.
func (p *Pool) StringAt(index uint16) (string, bool) {
	c, ok := p.Get(index)
	if !ok {
		return "", false
	}
	s, ok := c.(String)
	if !ok {
		return "", false
	}
	return p.Utf8At(s.Utf8Index)
}

// append adds c without deduplication. The reader uses it to reproduce the
// encoded entry order exactly.
func (p *Pool) append(c Constant) (uint16, error) {
	if len(p.entries) >= MaxPoolSize {
		return 0, fmt.Errorf("%w: limit is %d entries", ErrPoolOverflow, MaxPoolSize)
	}
	idx := uint16(len(p.entries))
	p.entries = append(p.entries, c)
	key := keyOf(c)
	if _, exists := p.index[key]; !exists {
		p.index[key] = idx
	}
	return idx, nil
}
