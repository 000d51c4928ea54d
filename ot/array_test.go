package ot

import (
	"errors"
	"testing"
)

func TestParseArrayValidatesCount(t *testing.T) {
	// A count field claiming 1000 records in a 10-byte buffer must fail at
	// construction, before any element access.
	b := make([]byte, 10)
	putU16(b, 0, 1000)
	_, err := parseArray(binarySegm(b), 0, 4, "test", "record")
	if err == nil {
		t.Fatal("expected bounds error for oversized count")
	}
	if !IsBounds(err) {
		t.Fatalf("expected BoundsError, got %T: %v", err, err)
	}
}

func TestParseArrayAccess(t *testing.T) {
	b := make([]byte, 2+3*4)
	putU16(b, 0, 3)
	for i := 0; i < 3; i++ {
		putU32(b, 2+i*4, uint32(0x100+i))
	}
	a, err := parseArray(binarySegm(b), 0, 4, "test", "record")
	if err != nil {
		t.Fatal(err)
	}
	if a.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", a.Len())
	}
	for i := 0; i < 3; i++ {
		rec, err := a.get(i)
		if err != nil {
			t.Fatal(err)
		}
		if got, _ := rec.u32(0); got != uint32(0x100+i) {
			t.Fatalf("record %d = 0x%x", i, got)
		}
	}
	if _, err := a.get(3); err == nil {
		t.Fatal("expected bounds error past the last record")
	}
	if _, err := a.get(-1); err == nil {
		t.Fatal("expected bounds error for negative index")
	}
	// unchecked access yields an empty location instead
	if a.Get(17).Size() != 0 {
		t.Fatal("unchecked out-of-range access should be empty")
	}
}

func TestArrayRange(t *testing.T) {
	b := make([]byte, 2+4)
	putU16(b, 0, 2)
	putU16(b, 2, 0xaa)
	putU16(b, 4, 0xbb)
	a, err := parseArray16(binarySegm(b), 0, "test", "value")
	if err != nil {
		t.Fatal(err)
	}
	var got []uint16
	for _, loc := range a.Range() {
		got = append(got, loc.U16(0))
	}
	if len(got) != 2 || got[0] != 0xaa || got[1] != 0xbb {
		t.Fatalf("unexpected range values %v", got)
	}
}

func TestVarArrayGetDeepTrue(t *testing.T) {
	// Layout:
	// [0..1] count=1
	// [2..3] offset=4 (to level-1 array)
	// [4..5] count=1
	// [6..7] offset=8 (to entry)
	// [8..9] entry data (0x002A)
	b := binarySegm{
		0x00, 0x01,
		0x00, 0x04,
		0x00, 0x01,
		0x00, 0x08,
		0x00, 0x2A,
	}
	va, err := parseVarArray16(b, 0, 2, 2, "test")
	if err != nil {
		t.Fatal(err)
	}
	loc, err := va.Get(0, true)
	if err != nil {
		t.Fatalf("Get(deep=true): %v", err)
	}
	if loc.U16(0) != 0x002A {
		t.Fatalf("unexpected entry value: %d", loc.U16(0))
	}
}

func TestVarArrayIndexUsedAtEveryLevel(t *testing.T) {
	// Two entries at both levels; Get(1, deep) must take index 1 at each
	// indirection.
	b := make([]byte, 0x24)
	putU16(b, 0, 2)    // count=2
	putU16(b, 2, 8)    // off0 -> level1 A
	putU16(b, 4, 0x12) // off1 -> level1 B
	putU16(b, 8, 2)    // A count=2
	putU16(b, 10, 0x1c)
	putU16(b, 12, 0x1e)
	putU16(b, 0x12, 2) // B count=2
	putU16(b, 0x14, 0x20)
	putU16(b, 0x16, 0x22)
	putU16(b, 0x1c, 0x00aa) // A0
	putU16(b, 0x1e, 0x00bb) // A1
	putU16(b, 0x20, 0x00cc) // B0
	putU16(b, 0x22, 0x00dd) // B1
	va, err := parseVarArray16(binarySegm(b), 0, 2, 2, "test")
	if err != nil {
		t.Fatal(err)
	}
	loc, err := va.Get(1, true)
	if err != nil {
		t.Fatal(err)
	}
	if loc.U16(0) != 0x00dd {
		t.Fatalf("expected B1 entry 0x00dd, got 0x%x", loc.U16(0))
	}
}

func TestVarArrayNullEntry(t *testing.T) {
	b := binarySegm{
		0x00, 0x01, // count=1
		0x00, 0x00, // NULL offset
	}
	va, err := parseVarArray16(b, 0, 2, 1, "test")
	if err != nil {
		t.Fatal(err)
	}
	loc, err := va.Get(0, true)
	if err != nil {
		t.Fatalf("NULL entry must not be an error: %v", err)
	}
	if loc.Size() != 0 {
		t.Fatal("NULL entry should yield an empty location")
	}
}

// --- Self-sizing record sequences -------------------------------------------

// buildRecordSeq encodes records whose first uint16 declares the record's
// total size.
func buildRecordSeq(payloads [][]byte) []byte {
	b := make([]byte, 2)
	putU16(b, 0, uint16(len(payloads)))
	for _, p := range payloads {
		rec := make([]byte, 2+len(p))
		putU16(rec, 0, uint16(2+len(p)))
		copy(rec[2:], p)
		b = append(b, rec...)
	}
	return b
}

func TestRecordSeqGet(t *testing.T) {
	b := buildRecordSeq([][]byte{
		{0x01},
		{0x02, 0x03, 0x04},
		{0x05, 0x06},
	})
	seq, err := parseRecordSeq(binarySegm(b), 0, "test")
	if err != nil {
		t.Fatal(err)
	}
	if seq.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", seq.Len())
	}
	rec, err := seq.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Size() != 5 || rec.Bytes()[2] != 0x02 {
		t.Fatalf("unexpected record 1: %v", rec.Bytes())
	}
	if _, err := seq.Get(3); err == nil {
		t.Fatal("expected bounds error past the last record")
	}
}

func TestRecordSeqBuildIndexAgreesWithGet(t *testing.T) {
	b := buildRecordSeq([][]byte{
		{0xaa},
		{0xbb, 0xbb},
		{0xcc, 0xcc, 0xcc},
		{0xdd},
	})
	seq, err := parseRecordSeq(binarySegm(b), 0, "test")
	if err != nil {
		t.Fatal(err)
	}
	index, err := seq.BuildIndex()
	if err != nil {
		t.Fatal(err)
	}
	if len(index) != seq.Len() {
		t.Fatalf("index has %d entries, sequence %d", len(index), seq.Len())
	}
	for i := 0; i < seq.Len(); i++ {
		rec, err := seq.Get(i)
		if err != nil {
			t.Fatal(err)
		}
		size := seq.loc.U16(index[i])
		at, err := seq.loc.view(index[i], int(size))
		if err != nil {
			t.Fatal(err)
		}
		if string(at.Bytes()) != string(rec.Bytes()) {
			t.Fatalf("record %d: index access disagrees with sequential access", i)
		}
	}
}

func TestRecordSeqRejectsDegenerateSize(t *testing.T) {
	// A record declaring size < 2 would not even cover its own size field;
	// linear scans must fail instead of looping.
	b := make([]byte, 6)
	putU16(b, 0, 2) // count
	putU16(b, 2, 0) // record 0 declares size 0
	seq, err := parseRecordSeq(binarySegm(b), 0, "test")
	if err != nil {
		t.Fatal(err)
	}
	_, err = seq.Get(1)
	if err == nil {
		t.Fatal("expected format error for degenerate record size")
	}
	var ferr FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FormatError, got %T: %v", err, err)
	}
	if _, err := seq.BuildIndex(); err == nil {
		t.Fatal("BuildIndex should fail on degenerate record size")
	}
}

// --- Tag record maps ---------------------------------------------------------

func TestTagRecordMapLookup(t *testing.T) {
	b := make([]byte, 2+2*6+4)
	putU16(b, 0, 2)
	putTag(b, 2, "abcd")
	putU16(b, 6, 14)
	putTag(b, 8, "wxyz")
	putU16(b, 12, 0) // NULL target
	putU16(b, 14, 0x77)
	m := parseTagRecordMap16(binarySegm(b), 0, binarySegm(b), "TestMap", "Record")
	if m.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", m.Len())
	}
	link := m.LookupTag(T("abcd"))
	if link.IsNull() {
		t.Fatal("expected link for 'abcd'")
	}
	if got := link.Jump().U16(0); got != 0x77 {
		t.Fatalf("expected 0x77, got 0x%x", got)
	}
	if !m.LookupTag(T("wxyz")).IsNull() {
		t.Fatal("NULL offset should yield a null link")
	}
	if !m.LookupTag(T("none")).IsNull() {
		t.Fatal("unlisted tag should yield a null link")
	}
	tags := m.Tags()
	if len(tags) != 2 || tags[0] != T("abcd") || tags[1] != T("wxyz") {
		t.Fatalf("unexpected tags %v", tags)
	}
}

func TestTagRecordMapCountLimit(t *testing.T) {
	b := make([]byte, 4)
	putU16(b, 0, 60000)
	m := parseTagRecordMap16(binarySegm(b), 0, binarySegm(b), "ScriptList", "Script")
	if m.Len() != 0 {
		t.Fatal("oversized script count must yield an empty map")
	}
}
