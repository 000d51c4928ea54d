package ot

import (
	"errors"
	"testing"
)

func TestDispatchFormat16(t *testing.T) {
	b := binarySegm{0x00, 0x02, 0xff, 0xff}
	format, err := dispatchFormat16(b, "Coverage", 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if format != 2 {
		t.Fatalf("expected format 2, got %d", format)
	}
}

func TestDispatchFormat16Unknown(t *testing.T) {
	b := binarySegm{0x00, 0x63}
	_, err := dispatchFormat16(b, "Coverage", 1, 2)
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	var uerr UnsupportedVersionError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UnsupportedVersionError, got %T", err)
	}
	// the raw discriminant must be preserved for diagnostics
	if uerr.Value != 99 {
		t.Fatalf("expected raw value 99, got %d", uerr.Value)
	}
	if uerr.Kind != "Coverage" {
		t.Fatalf("expected kind Coverage, got %q", uerr.Kind)
	}
}

func TestDispatchVersion32(t *testing.T) {
	b := make([]byte, 4)
	putU32(b, 0, 0x00005000)
	version, err := dispatchVersion32(binarySegm(b), "maxp", 0x00005000, 0x00010000)
	if err != nil {
		t.Fatal(err)
	}
	if version != 0x00005000 {
		t.Fatalf("expected version 0.5, got 0x%x", version)
	}
	putU32(b, 0, 0x00020000)
	_, err = dispatchVersion32(binarySegm(b), "maxp", 0x00005000, 0x00010000)
	var uerr UnsupportedVersionError
	if !errors.As(err, &uerr) || uerr.Value != 0x00020000 {
		t.Fatalf("expected unsupported version with raw value, got %v", err)
	}
}

func TestDispatchMajorMinor(t *testing.T) {
	b := binarySegm{0x00, 0x01, 0x00, 0x01}
	major, minor, err := dispatchMajorMinor(b, "GPOS", 1)
	if err != nil {
		t.Fatal(err)
	}
	if major != 1 || minor != 1 {
		t.Fatalf("expected 1.1, got %d.%d", major, minor)
	}
	b = binarySegm{0x00, 0x02, 0x00, 0x00}
	_, _, err = dispatchMajorMinor(b, "GPOS", 1)
	var uerr UnsupportedVersionError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UnsupportedVersionError, got %T", err)
	}
	if uerr.Value != 0x00020000 {
		t.Fatalf("expected raw value 0x00020000, got 0x%x", uerr.Value)
	}
}

func TestDispatchTruncatedBuffer(t *testing.T) {
	b := binarySegm{0x00}
	if _, err := dispatchFormat16(b, "x", 1); !IsBounds(err) {
		t.Fatalf("expected bounds error, got %v", err)
	}
	if _, err := dispatchVersion32(b, "x", 1); !IsBounds(err) {
		t.Fatalf("expected bounds error, got %v", err)
	}
}
