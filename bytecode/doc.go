// Package bytecode defines the yukr container format: the constant pool,
// the attributes attached to a container, and the binary encoding of both.
//
// # Key Types
//
//   - [Constant]: a tagged constant pool entry ([None], [Utf8], [Number], [String])
//   - [Pool]: the deduplicated, 1-indexed constant pool
//   - [Attr]: a named metadata block ([Code], [SourceFile])
//   - [File]: the container holding the version, pool, declarations and attributes
//
// # Wire Format
//
// All integers are big-endian:
//
//	magic:u32(0x59754B72) major:u16 minor:u16
//	cpCount:u16               entries 1..cpCount-1 follow, entry 0 is implicit
//	  tag:u8 payload          0x00 Utf8 len:u16 bytes
//	                          0x01 Number high:u32 low:u32
//	                          0x02 String utf8Index:u16
//	attrCount:u16
//	  nameIndex:u16 payload   "Code" insnCount:u32 bytes
//	                          "SourceFile" nameIndex:u16
//
// Declarations are in-memory only and are not part of the encoding.
//
// # Lifecycle
//
// A [Pool] is append-only. The code generator fills it while lowering a
// program; the [Reader] fills it once while decoding. After either, it is
// only read.
package bytecode
