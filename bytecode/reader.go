package bytecode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/yukr-lang/yukr/op"
)

// Reader decodes containers from a byte stream.
type Reader struct {
	r   io.Reader
	buf [4]byte
}

// NewReader returns a Reader that reads from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Unmarshal decodes a container from data.
func Unmarshal(data []byte) (*File, error) {
	return NewReader(bytes.NewReader(data)).Read()
}

// Read decodes one container. A wrong magic number fails with ErrBadMagic
// before anything else is read. Other failures name the field being read
// and wrap the underlying error, so io.ErrUnexpectedEOF and the package's
// sentinel errors can be matched with errors.Is.
func (r *Reader) Read() (*File, error) {
	magic, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("magic number: %w", err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: expected 0x%08X, got 0x%08X", ErrBadMagic, Magic, magic)
	}
	f := &File{Pool: NewPool()}
	if f.Major, err = r.u16(); err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}
	if f.Minor, err = r.u16(); err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}
	if err := r.readPool(f.Pool); err != nil {
		return nil, err
	}
	if err := r.readAttrs(f); err != nil {
		return nil, err
	}
	return f, nil
}

func (r *Reader) readPool(p *Pool) error {
	count, err := r.u16()
	if err != nil {
		return fmt.Errorf("constant pool count: %w", err)
	}
	for i := 1; i < int(count); i++ {
		c, err := r.readConstant()
		if err != nil {
			return fmt.Errorf("constant pool entry %d: %w", i, err)
		}
		if _, err := p.append(c); err != nil {
			return fmt.Errorf("constant pool entry %d: %w", i, err)
		}
	}
	for i := 1; i < p.Len(); i++ {
		s, ok := p.entries[i].(String)
		if !ok {
			continue
		}
		if _, ok := p.Utf8At(s.Utf8Index); !ok {
			return fmt.Errorf("constant pool entry %d: %w (index %d)", i, ErrBadReference, s.Utf8Index)
		}
	}
	return nil
}

func (r *Reader) readConstant() (Constant, error) {
	tag, err := r.u8()
	if err != nil {
		return nil, err
	}
	switch Tag(tag) {
	case TagUtf8:
		n, err := r.u16()
		if err != nil {
			return nil, err
		}
		data, err := r.bytes(int64(n))
		if err != nil {
			return nil, err
		}
		return Utf8{Bytes: data}, nil
	case TagNumber:
		high, err := r.u32()
		if err != nil {
			return nil, err
		}
		low, err := r.u32()
		if err != nil {
			return nil, err
		}
		return Number{High: high, Low: low}, nil
	case TagString:
		idx, err := r.u16()
		if err != nil {
			return nil, err
		}
		return String{Utf8Index: idx}, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownConstantTag, tag)
	}
}

func (r *Reader) readAttrs(f *File) error {
	count, err := r.u16()
	if err != nil {
		return fmt.Errorf("attribute count: %w", err)
	}
	for i := 0; i < int(count); i++ {
		nameIndex, err := r.u16()
		if err != nil {
			return fmt.Errorf("attribute %d name: %w", i, err)
		}
		name, ok := f.Pool.Utf8At(nameIndex)
		if !ok {
			return fmt.Errorf("attribute %d name: %w (index %d)", i, ErrBadNameIndex, nameIndex)
		}
		attr, err := r.readAttr(name)
		if err != nil {
			return fmt.Errorf("attribute %q: %w", name, err)
		}
		if err := f.AddAttr(attr); err != nil {
			return fmt.Errorf("attribute %q: %w", name, err)
		}
	}
	return nil
}

func (r *Reader) readAttr(name string) (Attr, error) {
	switch name {
	case AttrCode:
		n, err := r.u32()
		if err != nil {
			return nil, err
		}
		insns, err := r.bytes(int64(n))
		if err != nil {
			return nil, err
		}
		usage := op.Analyze(insns)
		return &Code{
			Instructions: insns,
			MaxStack:     clampU16(usage.MaxStack),
			MaxLocals:    clampU16(usage.MaxLocals),
		}, nil
	case AttrSourceFile:
		idx, err := r.u16()
		if err != nil {
			return nil, err
		}
		return &SourceFile{NameIndex: idx}, nil
	default:
		return nil, ErrUnknownAttribute
	}
}

func (r *Reader) u8() (uint8, error) {
	if err := r.full(r.buf[:1]); err != nil {
		return 0, err
	}
	return r.buf[0], nil
}

func (r *Reader) u16() (uint16, error) {
	if err := r.full(r.buf[:2]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(r.buf[:2]), nil
}

func (r *Reader) u32() (uint32, error) {
	if err := r.full(r.buf[:4]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(r.buf[:4]), nil
}

// bytes reads exactly n bytes without trusting n for the allocation size.
func (r *Reader) bytes(n int64) ([]byte, error) {
	var buf bytes.Buffer
	copied, err := io.CopyN(&buf, r.r, n)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if copied < n {
		return nil, io.ErrUnexpectedEOF
	}
	if n == 0 {
		return []byte{}, nil
	}
	return buf.Bytes(), nil
}

// full reads len(b) bytes, reporting a short or empty read as
// io.ErrUnexpectedEOF since every field is mandatory.
func (r *Reader) full(b []byte) error {
	_, err := io.ReadFull(r.r, b)
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func clampU16(n int) uint16 {
	if n > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(n)
}
