package ot

import "testing"

func TestParseHeadRejectsBadMagic(t *testing.T) {
	b := headBytes(1000, 0)
	putU32(b, 12, 0xcafebabe)
	ec := &errorCollector{}
	_, err := parseHead(T("head"), b, 0, uint32(len(b)), ec)
	if err == nil {
		t.Fatal("expected error for bad magic number")
	}
}

func TestParseHeadFields(t *testing.T) {
	b := headBytes(2048, 1)
	putU32(b, 4, 0x00018000) // fontRevision 1.5
	ec := &errorCollector{}
	table, err := parseHead(T("head"), b, 0, uint32(len(b)), ec)
	if err != nil {
		t.Fatal(err)
	}
	head := table.Self().AsHead()
	if head.UnitsPerEm != 2048 || head.IndexToLocFormat != 1 {
		t.Fatalf("unexpected head fields: %+v", head)
	}
	if head.FontRevision.Float() != 1.5 {
		t.Fatalf("expected font revision 1.5, got %f", head.FontRevision.Float())
	}
}

func TestParseMaxPVersions(t *testing.T) {
	ec := &errorCollector{}
	table, err := parseMaxP(T("maxp"), maxpBytes(123), 0, 6, ec)
	if err != nil {
		t.Fatal(err)
	}
	maxp := table.Self().AsMaxP()
	if maxp.Version != 0x00005000 || maxp.NumGlyphs != 123 {
		t.Fatalf("unexpected maxp: %+v", maxp)
	}
	// version 1.0 requires the full 32 bytes
	b := make([]byte, 8)
	putU32(b, 0, 0x00010000)
	putU16(b, 4, 5)
	if _, err := parseMaxP(T("maxp"), b, 0, uint32(len(b)), ec); err == nil {
		t.Fatal("expected error for truncated maxp 1.0")
	}
	// unknown versions carry the raw value
	putU32(b, 0, 0x00030000)
	_, err = parseMaxP(T("maxp"), b, 0, uint32(len(b)), ec)
	if !IsUnsupportedVersion(err) {
		t.Fatalf("expected UnsupportedVersionError, got %v", err)
	}
}

func hheaBytes(numberOfHMetrics uint16) []byte {
	b := make([]byte, 36)
	putU16(b, 0, 1) // majorVersion
	putU16(b, 4, 0x02ee)
	putU16(b, 6, 0xff06) // descender -250
	putU16(b, 34, numberOfHMetrics)
	return b
}

func TestParseHHea(t *testing.T) {
	ec := &errorCollector{}
	table, err := parseHHea(T("hhea"), hheaBytes(3), 0, 36, ec)
	if err != nil {
		t.Fatal(err)
	}
	hhea := table.Self().AsHHea()
	if hhea.Ascender != 750 || hhea.Descender != -250 {
		t.Fatalf("unexpected hhea metrics: %+v", hhea)
	}
	if hhea.NumberOfHMetrics != 3 {
		t.Fatalf("expected 3 hmetrics, got %d", hhea.NumberOfHMetrics)
	}
	if _, err := parseHHea(T("hhea"), hheaBytes(3)[:20], 0, 20, ec); err == nil {
		t.Fatal("expected error for truncated hhea")
	}
}

func TestHMtxBindMetrics(t *testing.T) {
	// 2 long metrics + 2 bare LSBs for a 4-glyph font
	b := make([]byte, 2*4+2*2)
	putU16(b, 0, 500)
	putU16(b, 2, 10)
	putU16(b, 4, 600)
	putU16(b, 6, 0xfff6) // lsb -10
	putU16(b, 8, 20)
	putU16(b, 10, 30)
	ec := &errorCollector{}
	table, err := parseHMtx(T("hmtx"), b, 0, uint32(len(b)), ec)
	if err != nil {
		t.Fatal(err)
	}
	hmtx := table.Self().AsHMtx()
	if err := hmtx.bindMetrics(2, 4); err != nil {
		t.Fatal(err)
	}
	if aw, lsb, ok := hmtx.HMetrics(1); !ok || aw != 600 || lsb != -10 {
		t.Fatalf("glyph 1 metrics = %d, %d, %v", aw, lsb, ok)
	}
	// glyphs past the long metrics share the last advance width
	if aw, lsb, ok := hmtx.HMetrics(3); !ok || aw != 600 || lsb != 30 {
		t.Fatalf("glyph 3 metrics = %d, %d, %v", aw, lsb, ok)
	}
	if _, _, ok := hmtx.HMetrics(4); ok {
		t.Fatal("expected no metrics past the glyph count")
	}
	// binding with counts the table cannot satisfy must fail
	if err := hmtx.bindMetrics(3, 10); err == nil {
		t.Fatal("expected bounds error for oversized counts")
	}
}

func TestLocaShortAndLong(t *testing.T) {
	ec := &errorCollector{}
	// short format: 3 entries for 2 glyphs, offsets divided by 2
	b := make([]byte, 6)
	putU16(b, 0, 0)
	putU16(b, 2, 4)
	putU16(b, 4, 9)
	table, _ := parseLoca(T("loca"), b, 0, uint32(len(b)), ec)
	loca := table.Self().AsLoca()
	if err := loca.bindGlyphCount(2, 0); err != nil {
		t.Fatal(err)
	}
	if got := loca.IndexToLocation(1); got != 8 {
		t.Fatalf("short loca entry should be doubled, got %d", got)
	}
	if got := loca.IndexToLocation(100); got != 0 {
		t.Fatal("out-of-range glyphs map to the missing character at 0")
	}
	// long format
	b = make([]byte, 12)
	putU32(b, 4, 1234)
	table, _ = parseLoca(T("loca"), b, 0, uint32(len(b)), ec)
	loca = table.Self().AsLoca()
	if err := loca.bindGlyphCount(2, 1); err != nil {
		t.Fatal(err)
	}
	if got := loca.IndexToLocation(1); got != 1234 {
		t.Fatalf("expected 1234, got %d", got)
	}
	// binding must validate the extent
	if err := loca.bindGlyphCount(100, 1); err == nil {
		t.Fatal("expected bounds error for oversized glyph count")
	}
}

func TestParseOS2(t *testing.T) {
	b := make([]byte, 78)
	putU16(b, 0, 4) // version
	putU16(b, 4, 700)
	putU16(b, 68, 800)
	putU16(b, 70, 0xff38) // typoDescender -200
	ec := &errorCollector{}
	table, err := parseOS2(T("OS/2"), b, 0, uint32(len(b)), ec)
	if err != nil {
		t.Fatal(err)
	}
	os2 := table.Self().AsOS2()
	if os2.WeightClass != 700 || os2.TypoAscender != 800 || os2.TypoDescender != -200 {
		t.Fatalf("unexpected OS/2 fields: %+v", os2)
	}
	putU16(b, 0, 9)
	if _, err := parseOS2(T("OS/2"), b, 0, uint32(len(b)), ec); err == nil {
		t.Fatal("expected error for unknown OS/2 version")
	}
}

// nameBytes builds a name table with one Windows record for the given name
// ID, with a UTF-16BE payload.
func nameBytes(nameID uint16, payload []byte) []byte {
	b := make([]byte, 6+12+len(payload))
	putU16(b, 2, 1)  // count
	putU16(b, 4, 18) // storage offset
	putU16(b, 6, 3)  // platform: Windows
	putU16(b, 8, 1)  // encoding: UCS-2
	putU16(b, 10, 0x0409)
	putU16(b, 12, nameID)
	putU16(b, 14, uint16(len(payload)))
	putU16(b, 16, 0)
	copy(b[18:], payload)
	return b
}

func TestParseNameTable(t *testing.T) {
	payload := []byte{0x00, 'A', 0x00, 'b', 0x00, 'c'} // "Abc" UTF-16BE
	ec := &errorCollector{}
	table, err := parseName(T("name"), nameBytes(1, payload), 0, 0, ec)
	if err != nil {
		t.Fatal(err)
	}
	name := table.Self().AsName()
	if name.Count() != 1 {
		t.Fatalf("expected 1 record, got %d", name.Count())
	}
	rec, raw, ok := name.Name(1)
	if !ok {
		t.Fatal("expected record for name ID 1")
	}
	if rec.PlatformID != 3 || rec.LanguageID != 0x0409 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if string(raw) != string(payload) {
		t.Fatalf("unexpected raw name bytes %v", raw)
	}
	if _, _, ok := name.Name(4); ok {
		t.Fatal("expected no record for unlisted name ID")
	}
}

func TestParseNameTableValidatesStorage(t *testing.T) {
	b := nameBytes(1, []byte{0x00, 'A'})
	putU16(b, 4, 5000) // storage offset beyond table
	ec := &errorCollector{}
	if _, err := parseName(T("name"), b, 0, 0, ec); err == nil {
		t.Fatal("expected error for out-of-bounds storage offset")
	}
}

// kernBytes builds an OT format kern table with one format 0 sub-table
// holding the given (left, right, value) triples, sorted by key.
func kernBytes(pairs [][3]uint16) []byte {
	n := len(pairs)
	b := make([]byte, 4+14+n*6)
	putU16(b, 2, 1) // one sub-table
	putU16(b, 4+2, uint16(14+n*6))
	putU16(b, 4+4, 0x0001) // coverage: horizontal, format 0
	putU16(b, 4+6, uint16(n))
	for i, p := range pairs {
		at := 4 + 14 + i*6
		putU16(b, at, p[0])
		putU16(b, at+2, p[1])
		putU16(b, at+4, p[2])
	}
	return b
}

func TestParseKern(t *testing.T) {
	b := kernBytes([][3]uint16{
		{2, 3, 0xffce}, // -50
		{2, 7, 10},
		{5, 3, 0xfff6}, // -10
	})
	ec := &errorCollector{}
	table, err := parseKern(T("kern"), b, 0, uint32(len(b)), ec)
	if err != nil {
		t.Fatal(err)
	}
	kern := table.Self().AsKern()
	if kern.SubTableCount() != 1 {
		t.Fatalf("expected 1 sub-table, got %d", kern.SubTableCount())
	}
	if v, ok := kern.Kerning(2, 3); !ok || v != -50 {
		t.Fatalf("kern(2,3) = %d, %v", v, ok)
	}
	if v, ok := kern.Kerning(5, 3); !ok || v != -10 {
		t.Fatalf("kern(5,3) = %d, %v", v, ok)
	}
	if _, ok := kern.Kerning(9, 9); ok {
		t.Fatal("expected no kerning for unlisted pair")
	}
}
