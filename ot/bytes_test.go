package ot

import (
	"errors"
	"testing"
)

func TestViewBounds(t *testing.T) {
	b := binarySegm{0x00, 0x01, 0x02, 0x03}
	if _, err := b.view(0, 4); err != nil {
		t.Fatalf("full window view failed: %v", err)
	}
	cases := []struct {
		offset, n int
	}{
		{-1, 2},  // negative offset
		{0, 0},   // empty request
		{0, 5},   // longer than window
		{3, 2},   // crosses the end
		{4, 1},   // starts at the end
		{100, 1}, // far out
	}
	for _, c := range cases {
		_, err := b.view(c.offset, c.n)
		if err == nil {
			t.Fatalf("view(%d, %d) should fail", c.offset, c.n)
		}
		var be BoundsError
		if !errors.As(err, &be) {
			t.Fatalf("view(%d, %d): expected BoundsError, got %T", c.offset, c.n, err)
		}
		if be.Have != 4 {
			t.Fatalf("view(%d, %d): BoundsError should report window size 4, has %d", c.offset, c.n, be.Have)
		}
	}
}

func TestViewNeverWidens(t *testing.T) {
	// A view must respect its own window, not the underlying buffer.
	backing := make([]byte, 16)
	b := binarySegm(backing[:4])
	if _, err := b.view(2, 4); err == nil {
		t.Fatal("view must not read past the declared window")
	}
}

func TestSliceClamps(t *testing.T) {
	b := binarySegm{1, 2, 3, 4}
	if got := b.Slice(-2, 100).Size(); got != 4 {
		t.Fatalf("expected clamp to full window, got %d bytes", got)
	}
	if got := b.Slice(3, 2).Size(); got != 0 {
		t.Fatalf("inverted range should be empty, got %d bytes", got)
	}
	if got := b.Slice(1, 3).Size(); got != 2 {
		t.Fatalf("expected 2 bytes, got %d", got)
	}
}

func TestPrimitiveDecoding(t *testing.T) {
	b := binarySegm{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0}
	if n, err := b.u16(0); err != nil || n != 0x1234 {
		t.Fatalf("u16 = %x, %v", n, err)
	}
	if n, err := b.u24(1); err != nil || n != 0x345678 {
		t.Fatalf("u24 = %x, %v", n, err)
	}
	if n, err := b.u32(2); err != nil || n != 0x56789abc {
		t.Fatalf("u32 = %x, %v", n, err)
	}
	if n, err := b.u64(0); err != nil || n != 0x123456789abcdef0 {
		t.Fatalf("u64 = %x, %v", n, err)
	}
	if n, err := b.i16(4); err != nil || n != int16(-0x6544) {
		t.Fatalf("i16 = %d, %v", n, err)
	}
	if tag, err := binarySegm("cmapXYZ").tag(0); err != nil || tag != T("cmap") {
		t.Fatalf("tag = %s, %v", tag, err)
	}
}

func TestFixedDecoding(t *testing.T) {
	// 1.5 in 16.16 is 0x00018000
	b := binarySegm{0x00, 0x01, 0x80, 0x00}
	f, err := b.fixed(0)
	if err != nil {
		t.Fatal(err)
	}
	if f.Float() != 1.5 {
		t.Fatalf("expected 1.5, got %f", f.Float())
	}
	// -1.0 in 16.16 is 0xFFFF0000
	f = MakeFixed(0xffff0000)
	if f.Float() != -1.0 {
		t.Fatalf("expected -1.0, got %f", f.Float())
	}
	// -1.0 in 2.14 is 0xC000
	g := MakeF2Dot14(0xc000)
	if g.Float() != -1.0 {
		t.Fatalf("expected -1.0, got %f", g.Float())
	}
	if MakeF2Dot14(0x4000).Float() != 1.0 {
		t.Fatal("expected 2.14 0x4000 to be 1.0")
	}
}

func TestUncheckedAccessorsReturnZero(t *testing.T) {
	b := binarySegm{0x12}
	if b.U16(0) != 0 || b.U32(0) != 0 {
		t.Fatal("unchecked accessors must return 0 on bounds violation")
	}
}

func TestGlyphsIgnoresTrailingByte(t *testing.T) {
	b := binarySegm{0x00, 0x01, 0x00, 0x02, 0xff}
	glyphs := b.Glyphs()
	if len(glyphs) != 2 || glyphs[0] != 1 || glyphs[1] != 2 {
		t.Fatalf("unexpected glyphs %v", glyphs)
	}
}

func TestCheckedArithmetic(t *testing.T) {
	if _, err := checkedMulInt(1<<40, 1<<40); err == nil {
		t.Fatal("expected overflow error")
	}
	if _, err := checkedAddInt(1<<62, 1<<62); err == nil {
		t.Fatal("expected overflow error")
	}
	if n, err := checkedMulInt(3, 7); err != nil || n != 21 {
		t.Fatalf("checkedMulInt = %d, %v", n, err)
	}
	if _, err := checkedMulUint32(0xffffffff, 2); err == nil {
		t.Fatal("expected overflow error")
	}
	if _, err := checkedAddUint32(0xffffffff, 1); err == nil {
		t.Fatal("expected overflow error")
	}
	var oerr OverflowError
	_, err := checkedAddUint32(0xffffffff, 1)
	if !errors.As(err, &oerr) {
		t.Fatalf("expected OverflowError, got %T", err)
	}
}
