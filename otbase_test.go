package otbase

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func putU16(b []byte, at int, n uint16) {
	b[at] = byte(n >> 8)
	b[at+1] = byte(n)
}

func putU32(b []byte, at int, n uint32) {
	b[at] = byte(n >> 24)
	b[at+1] = byte(n >> 16)
	b[at+2] = byte(n >> 8)
	b[at+3] = byte(n)
}

// testFont builds a minimal font with head, maxp and a name table holding
// family "Test" and subfamily "Bold".
func testFont() []byte {
	head := make([]byte, 54)
	putU16(head, 0, 1)
	putU32(head, 12, 0x5f0f3cf5)
	putU16(head, 18, 1000)

	maxp := make([]byte, 6)
	putU32(maxp, 0, 0x00005000)
	putU16(maxp, 4, 1)

	utf16 := func(s string) []byte {
		b := make([]byte, 0, 2*len(s))
		for _, r := range s {
			b = append(b, byte(uint16(r)>>8), byte(r))
		}
		return b
	}
	family, subfamily := utf16("Test"), utf16("Bold")
	name := make([]byte, 6+2*12+len(family)+len(subfamily))
	putU16(name, 2, 2)
	putU16(name, 4, 30)
	rec := func(at int, nameID, length, offset uint16) {
		putU16(name, at, 3) // Windows
		putU16(name, at+2, 1)
		putU16(name, at+4, 0x0409)
		putU16(name, at+6, nameID)
		putU16(name, at+8, length)
		putU16(name, at+10, offset)
	}
	rec(6, 1, uint16(len(family)), 0)
	rec(18, 2, uint16(len(subfamily)), uint16(len(family)))
	copy(name[30:], family)
	copy(name[30+len(family):], subfamily)

	tables := []struct {
		tag  string
		data []byte
	}{
		{"head", head},
		{"maxp", maxp},
		{"name", name},
	}
	offset := 12 + 16*len(tables)
	total := offset
	for _, t := range tables {
		total += len(t.data)
	}
	b := make([]byte, total)
	putU32(b, 0, 0x00010000)
	putU16(b, 4, uint16(len(tables)))
	for i, t := range tables {
		at := 12 + 16*i
		copy(b[at:at+4], t.tag)
		putU32(b, at+8, uint32(offset))
		putU32(b, at+12, uint32(len(t.data)))
		copy(b[offset:], t.data)
		offset += len(t.data)
	}
	return b
}

func TestFromBinary(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "otbase")
	defer teardown()
	//
	otf, err := FromBinary(testFont())
	if err != nil {
		t.Fatal(err)
	}
	if otf.Header.TableCount != 3 {
		t.Fatalf("expected 3 tables, got %d", otf.Header.TableCount)
	}
}

func TestFamilyName(t *testing.T) {
	otf, err := FromBinary(testFont())
	if err != nil {
		t.Fatal(err)
	}
	family, subfamily := FamilyName(otf)
	if family != "Test" || subfamily != "Bold" {
		t.Fatalf("unexpected names: %q / %q", family, subfamily)
	}
}

func TestFromCollectionBinaryAcceptsSingleFont(t *testing.T) {
	faces, err := FromCollectionBinary(testFont())
	if err != nil {
		t.Fatal(err)
	}
	if len(faces) != 1 {
		t.Fatalf("expected 1 face, got %d", len(faces))
	}
}
