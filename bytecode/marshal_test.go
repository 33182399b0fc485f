package bytecode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukr-lang/yukr/op"
)

func sampleFile(t *testing.T) *File {
	t.Helper()
	f := NewFile()
	one, err := f.Pool.PushNumber(1)
	require.NoError(t, err)
	greeting, err := f.Pool.PushString("hi there")
	require.NoError(t, err)
	_, err = f.Pool.PushNumber(-0.25)
	require.NoError(t, err)
	src, err := f.Pool.PushUtf8("main.yk")
	require.NoError(t, err)

	code := &Code{
		Instructions: []byte{
			byte(op.Ldc), 0, byte(one),
			byte(op.Store0),
			byte(op.Ldc), 0, byte(greeting),
			byte(op.Print),
			byte(op.Load0),
		},
		MaxStack:  1,
		MaxLocals: 1,
	}
	require.NoError(t, f.AddAttr(code))
	require.NoError(t, f.AddAttr(&SourceFile{NameIndex: src}))
	return f
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	f := sampleFile(t)

	data, err := Marshal(f)
	require.NoError(t, err)

	restored, err := Unmarshal(data)
	require.NoError(t, err)

	require.Equal(t, f.Major, restored.Major)
	require.Equal(t, f.Minor, restored.Minor)
	require.Equal(t, f.Pool.Entries(), restored.Pool.Entries())
	require.Equal(t, f.Attrs, restored.Attrs)

	name, ok := restored.SourceFile()
	require.True(t, ok)
	require.Equal(t, "main.yk", name)
}

func TestMarshalFinalizesAttributeNames(t *testing.T) {
	f := sampleFile(t)
	before := f.Pool.Len()
	_, err := Marshal(f)
	require.NoError(t, err)
	require.Equal(t, before+2, f.Pool.Len())

	// A second encoding does not grow the pool again.
	_, err = Marshal(f)
	require.NoError(t, err)
	require.Equal(t, before+2, f.Pool.Len())
}

func TestMarshalLayout(t *testing.T) {
	f := NewFile()
	idx, err := f.Pool.PushNumber(3)
	require.NoError(t, err)
	require.NoError(t, f.AddAttr(&Code{
		Instructions: []byte{byte(op.Ldc), 0, byte(idx), byte(op.Print)},
		MaxStack:     1,
	}))

	data, err := Marshal(f)
	require.NoError(t, err)

	num := NewNumber(3)
	var want bytes.Buffer
	put := func(v any) { require.NoError(t, binary.Write(&want, binary.BigEndian, v)) }
	put(uint32(0x59754B72))
	put(VersionMajor)
	put(VersionMinor)
	put(uint16(3)) // sentinel, Number(3), Utf8("Code")
	put(uint8(TagNumber))
	put(num.High)
	put(num.Low)
	put(uint8(TagUtf8))
	put(uint16(4))
	want.WriteString("Code")
	put(uint16(1)) // attribute count
	put(uint16(2)) // "Code"
	put(uint32(4))
	want.Write([]byte{byte(op.Ldc), 0, 1, byte(op.Print)})

	require.Equal(t, want.Bytes(), data)
}

func TestUnmarshalBadMagic(t *testing.T) {
	data, err := Marshal(sampleFile(t))
	require.NoError(t, err)
	data[0] = 0xCA

	_, err = Unmarshal(data)
	require.ErrorIs(t, err, ErrBadMagic)
	require.False(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestUnmarshalTruncated(t *testing.T) {
	data, err := Marshal(sampleFile(t))
	require.NoError(t, err)

	tests := []struct {
		name   string
		length int
		field  string
	}{
		{"empty", 0, "magic number"},
		{"version", 5, "version"},
		{"pool count", 9, "constant pool count"},
		{"first entry", 12, "constant pool entry 1"},
		{"last byte", len(data) - 1, `attribute "SourceFile"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(data[:tt.length])
			require.Error(t, err)
			require.ErrorIs(t, err, io.ErrUnexpectedEOF)
			require.Contains(t, err.Error(), tt.field)
		})
	}
}

func header() *bytes.Buffer {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, Magic)
	_ = binary.Write(&buf, binary.BigEndian, VersionMajor)
	_ = binary.Write(&buf, binary.BigEndian, VersionMinor)
	return &buf
}

func TestUnmarshalUnknownConstantTag(t *testing.T) {
	buf := header()
	_ = binary.Write(buf, binary.BigEndian, uint16(2))
	buf.WriteByte(0x09)

	_, err := Unmarshal(buf.Bytes())
	require.ErrorIs(t, err, ErrUnknownConstantTag)
	require.Contains(t, err.Error(), "constant pool entry 1")
}

func TestUnmarshalUnknownAttribute(t *testing.T) {
	buf := header()
	_ = binary.Write(buf, binary.BigEndian, uint16(2))
	buf.WriteByte(byte(TagUtf8))
	_ = binary.Write(buf, binary.BigEndian, uint16(5))
	buf.WriteString("Bogus")
	_ = binary.Write(buf, binary.BigEndian, uint16(1))
	_ = binary.Write(buf, binary.BigEndian, uint16(1))

	_, err := Unmarshal(buf.Bytes())
	require.ErrorIs(t, err, ErrUnknownAttribute)
	require.Contains(t, err.Error(), `attribute "Bogus"`)
}

func TestUnmarshalAttributeNameNotUtf8(t *testing.T) {
	buf := header()
	_ = binary.Write(buf, binary.BigEndian, uint16(2))
	buf.WriteByte(byte(TagNumber))
	_ = binary.Write(buf, binary.BigEndian, uint64(0))
	_ = binary.Write(buf, binary.BigEndian, uint16(1))
	_ = binary.Write(buf, binary.BigEndian, uint16(1))

	_, err := Unmarshal(buf.Bytes())
	require.ErrorIs(t, err, ErrBadNameIndex)
	require.Contains(t, err.Error(), "attribute 0 name")
}

func TestUnmarshalDanglingString(t *testing.T) {
	buf := header()
	_ = binary.Write(buf, binary.BigEndian, uint16(2))
	buf.WriteByte(byte(TagString))
	_ = binary.Write(buf, binary.BigEndian, uint16(7))
	_ = binary.Write(buf, binary.BigEndian, uint16(0))

	_, err := Unmarshal(buf.Bytes())
	require.ErrorIs(t, err, ErrBadReference)
}

func TestUnmarshalKeepsDuplicateEntries(t *testing.T) {
	buf := header()
	_ = binary.Write(buf, binary.BigEndian, uint16(3))
	for i := 0; i < 2; i++ {
		buf.WriteByte(byte(TagUtf8))
		_ = binary.Write(buf, binary.BigEndian, uint16(1))
		buf.WriteString("x")
	}
	_ = binary.Write(buf, binary.BigEndian, uint16(0))

	f, err := Unmarshal(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, []Constant{NewUtf8("x"), NewUtf8("x")}, f.Pool.Entries())
}

func TestUnmarshalRecomputesUsage(t *testing.T) {
	f := NewFile()
	a, err := f.Pool.PushNumber(10)
	require.NoError(t, err)
	b, err := f.Pool.PushNumber(20)
	require.NoError(t, err)
	require.NoError(t, f.AddAttr(&Code{Instructions: []byte{
		byte(op.Ldc), 0, byte(a),
		byte(op.Ldc), 0, byte(b),
		byte(op.Add),
		byte(op.Store), 0, 6,
	}}))
	data, err := Marshal(f)
	require.NoError(t, err)

	restored, err := Unmarshal(data)
	require.NoError(t, err)
	code, ok := restored.Code()
	require.True(t, ok)
	require.Equal(t, uint16(2), code.MaxStack)
	require.Equal(t, uint16(7), code.MaxLocals)
}

func TestAddAttrDuplicateCode(t *testing.T) {
	f := NewFile()
	require.NoError(t, f.AddAttr(&Code{Instructions: []byte{byte(op.Nop)}}))
	err := f.AddAttr(&Code{Instructions: []byte{byte(op.Nop)}})
	require.ErrorIs(t, err, ErrDuplicateCode)
	require.Len(t, f.Attrs, 1)
}

type failingWriter struct{ after int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.after <= 0 {
		return 0, io.ErrShortWrite
	}
	w.after--
	return len(p), nil
}

func TestWriteErrorNamesField(t *testing.T) {
	err := NewWriter(&failingWriter{after: 3}).Write(sampleFile(t))
	require.ErrorIs(t, err, io.ErrShortWrite)
	require.Contains(t, err.Error(), "constant pool count")
}
