package ot

import (
	"bytes"
	"io"
)

// Reading bytes from a font's binary representation.
//
// All access to font data runs through the checked primitives in this file.
// Higher-level parsers are built exclusively from view/u16/u32/… — manual
// index arithmetic on raw slices is confined to this file, so the bounds
// invariant is enforced in one place.

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u24(b []byte) uint32 {
	_ = b[2] // Bounds check hint to compiler
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

func u64(b []byte) uint64 {
	_ = b[7] // Bounds check hint to compiler
	return uint64(u32(b))<<32 | uint64(u32(b[4:]))
}

// --- Fixed-point values ----------------------------------------------------

// Fixed is a signed 16.16 fixed-point value, as used by 'head', 'maxp' and
// the variation tables. Decoding is a pure bit-reinterpretation of the
// underlying 32-bit integer.
type Fixed int32

// Float converts a 16.16 fixed-point value to a float64.
func (f Fixed) Float() float64 {
	return float64(f) / 65536.0
}

// MakeFixed reinterprets a raw uint32 read from the buffer as 16.16.
func MakeFixed(n uint32) Fixed {
	return Fixed(int32(n))
}

// F2Dot14 is a signed 2.14 fixed-point value, as used by variation axis
// coordinates and glyph transformation components.
type F2Dot14 int16

// Float converts a 2.14 fixed-point value to a float64.
func (f F2Dot14) Float() float64 {
	return float64(f) / 16384.0
}

// MakeF2Dot14 reinterprets a raw uint16 read from the buffer as 2.14.
func MakeF2Dot14(n uint16) F2Dot14 {
	return F2Dot14(int16(n))
}

// ---Locations, i.e. byte segments/slices -----------------------------------

// NavLocation is a position at a byte within a font's binary data.
// It represents the start of a segment/slice of binary data.
//
// NavLocation is always the final link of a chain of navigation calls, giving
// access to underlying (unstructured) font data. It is the client's
// responsibility to interpret the structure and impose it onto the
// NavLocation's bytes.
//
// If an error occured somewhere along a chain of navigation calls, the finally
// resulting NavLocation may be of size 0.
type NavLocation interface {
	Size() int                  // size in bytes
	Bytes() []byte              // return as a byte slice
	Slice(int, int) NavLocation // return a sub-segment of this location
	U16(int) uint16             // convenience access to 16 bit data at byte index
	U32(int) uint32             // convenience access to 32 bit data at byte index
	Glyphs() []GlyphIndex       // convenience conversion to slice of glyphs
}

// binarySegm is a segment of byte data.
// It implements the NavLocation interface. We use it throughout this module
// to navigate the font's binary data. A binarySegm is a window into the one
// font buffer handed to Parse; it owns no storage of its own, and slicing it
// can only ever narrow the window, never widen it.
type binarySegm []byte

func (b binarySegm) Size() int {
	return len(b)
}

func (b binarySegm) Bytes() []byte {
	return b
}

// Slice returns a sub-segment of this location. Out-of-window bounds are
// clamped to the window; the result is the intersection with the parent,
// never the union.
func (b binarySegm) Slice(from int, to int) NavLocation {
	if from < 0 {
		from = 0
	}
	if to > len(b) {
		to = len(b)
	}
	if from > to {
		return binarySegm{}
	}
	return b[from:to]
}

func (b binarySegm) Reader() io.Reader {
	return bytes.NewReader(b)
}

// U16 is unchecked convenience access: on a bounds violation it returns 0.
// Parsers use the checked variant u16 instead.
func (b binarySegm) U16(i int) uint16 {
	n, err := b.u16(i)
	if err != nil {
		return 0
	}
	return n
}

// U32 is unchecked convenience access: on a bounds violation it returns 0.
func (b binarySegm) U32(i int) uint32 {
	n, err := b.u32(i)
	if err != nil {
		return 0
	}
	return n
}

// Glyphs is a convenience conversion to a slice of glyph IDs.
// A trailing odd byte is ignored.
func (b binarySegm) Glyphs() []GlyphIndex {
	glyphs := make([]GlyphIndex, len(b)/2)
	j := 0
	for i := 0; i+1 < len(b); i += 2 {
		glyphs[j] = GlyphIndex(b[i])<<8 + GlyphIndex(b[i+1])
		j++
	}
	return glyphs
}

func asU16Slice(b binarySegm) []uint16 {
	r := make([]uint16, len(b)/2)
	j := 0
	for i := 0; i+1 < len(b); i += 2 {
		r[j] = uint16(b[i])<<8 + uint16(b[i+1])
		j++
	}
	return r
}

// return an unsigned integer as an array of two bytes.
func uintBytes(n uint16) binarySegm {
	return binarySegm{byte(n >> 8 & 0xff), byte(n & 0xff)}
}

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b. view fails with a bounds
// error if the requested window exceeds b's window — it never reads past
// b's declared length even if the underlying buffer is longer.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n <= 0 || offset > len(b)-n {
		return nil, BoundsError{Offset: offset, Need: n, Have: len(b)}
	}
	return b[offset : offset+n], nil
}

// u8 returns the byte in b at the relative offset i.
func (b binarySegm) u8(i int) (uint8, error) {
	buf, err := b.view(i, 1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// u16 returns the uint16 in b at the relative offset i.
func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// i16 returns the int16 in b at the relative offset i.
func (b binarySegm) i16(i int) (int16, error) {
	n, err := b.u16(i)
	return int16(n), err
}

// u24 returns the 3-byte unsigned integer in b at the relative offset i.
// 24-bit offsets occur in 'sbix' and extended cmap subtables.
func (b binarySegm) u24(i int) (uint32, error) {
	buf, err := b.view(i, 3)
	if err != nil {
		return 0, err
	}
	return u24(buf), nil
}

// u32 returns the uint32 in b at the relative offset i.
func (b binarySegm) u32(i int) (uint32, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

// i32 returns the int32 in b at the relative offset i.
func (b binarySegm) i32(i int) (int32, error) {
	n, err := b.u32(i)
	return int32(n), err
}

// u64 returns the uint64 in b at the relative offset i ('head' timestamps).
func (b binarySegm) u64(i int) (uint64, error) {
	buf, err := b.view(i, 8)
	if err != nil {
		return 0, err
	}
	return u64(buf), nil
}

// fixed returns the 16.16 fixed-point value in b at the relative offset i.
func (b binarySegm) fixed(i int) (Fixed, error) {
	n, err := b.u32(i)
	return MakeFixed(n), err
}

// f2dot14 returns the 2.14 fixed-point value in b at the relative offset i.
func (b binarySegm) f2dot14(i int) (F2Dot14, error) {
	n, err := b.u16(i)
	return MakeF2Dot14(n), err
}

// tag returns the 4-byte tag in b at the relative offset i.
func (b binarySegm) tag(i int) (Tag, error) {
	n, err := b.u32(i)
	return Tag(n), err
}
