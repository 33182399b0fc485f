package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Writer encodes containers to a byte stream.
type Writer struct {
	w   io.Writer
	buf [4]byte
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Marshal encodes f and returns the bytes.
func Marshal(f *File) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).Write(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes f. The container is finalized first, which may add the
// attribute names to its constant pool.
func (w *Writer) Write(f *File) error {
	if err := f.Finalize(); err != nil {
		return err
	}
	if err := w.u32(Magic); err != nil {
		return fmt.Errorf("magic number: %w", err)
	}
	if err := w.u16(f.Major); err != nil {
		return fmt.Errorf("version: %w", err)
	}
	if err := w.u16(f.Minor); err != nil {
		return fmt.Errorf("version: %w", err)
	}
	if err := w.writePool(f.Pool); err != nil {
		return err
	}
	return w.writeAttrs(f)
}

func (w *Writer) writePool(p *Pool) error {
	if err := w.u16(uint16(p.Len())); err != nil {
		return fmt.Errorf("constant pool count: %w", err)
	}
	for i := 1; i < p.Len(); i++ {
		if err := w.writeConstant(p.entries[i]); err != nil {
			return fmt.Errorf("constant pool entry %d: %w", i, err)
		}
	}
	return nil
}

func (w *Writer) writeConstant(c Constant) error {
	if err := w.u8(uint8(c.Tag())); err != nil {
		return err
	}
	switch c := c.(type) {
	case Utf8:
		if len(c.Bytes) > math.MaxUint16 {
			return fmt.Errorf("%w: %d bytes", ErrTooLong, len(c.Bytes))
		}
		if err := w.u16(uint16(len(c.Bytes))); err != nil {
			return err
		}
		return w.bytes(c.Bytes)
	case Number:
		if err := w.u32(c.High); err != nil {
			return err
		}
		return w.u32(c.Low)
	case String:
		return w.u16(c.Utf8Index)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownConstantTag, c.Tag())
	}
}

func (w *Writer) writeAttrs(f *File) error {
	if len(f.Attrs) > math.MaxUint16 {
		return fmt.Errorf("attribute count: %w", ErrTooLong)
	}
	if err := w.u16(uint16(len(f.Attrs))); err != nil {
		return fmt.Errorf("attribute count: %w", err)
	}
	for _, a := range f.Attrs {
		nameIndex, ok := f.nameIndex(a.Name())
		if !ok {
			return fmt.Errorf("attribute %q name: %w", a.Name(), ErrBadNameIndex)
		}
		if err := w.u16(nameIndex); err != nil {
			return fmt.Errorf("attribute %q name: %w", a.Name(), err)
		}
		if err := w.writeAttr(a); err != nil {
			return fmt.Errorf("attribute %q: %w", a.Name(), err)
		}
	}
	return nil
}

func (w *Writer) writeAttr(a Attr) error {
	switch a := a.(type) {
	case *Code:
		if uint64(len(a.Instructions)) > MaxCodeLength {
			return fmt.Errorf("%w: %d instruction bytes", ErrTooLong, len(a.Instructions))
		}
		if err := w.u32(uint32(len(a.Instructions))); err != nil {
			return err
		}
		return w.bytes(a.Instructions)
	case *SourceFile:
		return w.u16(a.NameIndex)
	default:
		return ErrUnknownAttribute
	}
}

func (w *Writer) u8(v uint8) error {
	w.buf[0] = v
	return w.bytes(w.buf[:1])
}

func (w *Writer) u16(v uint16) error {
	binary.BigEndian.PutUint16(w.buf[:2], v)
	return w.bytes(w.buf[:2])
}

func (w *Writer) u32(v uint32) error {
	binary.BigEndian.PutUint32(w.buf[:4], v)
	return w.bytes(w.buf[:4])
}

func (w *Writer) bytes(b []byte) error {
	_, err := w.w.Write(b)
	return err
}
