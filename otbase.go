/*
Package otbase decodes the binary structure of OpenType fonts.

The heavy lifting happens in sub-package ot, which exposes fonts as trees
of tables, records and links into an immutable byte buffer. Sub-package
otquery answers common informational queries on top of that. This package
bundles the most frequent entry points for clients who just want to load
a font and ask simple questions.

# Status

Shaping and rasterization are out of scope: this module reads font
structure, it does not interpret glyph outlines or layout rules.

# Links

OpenType explained:
https://docs.microsoft.com/en-us/typography/opentype/

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otbase

import (
	"os"

	"github.com/npillmayer/otbase/ot"
	"github.com/npillmayer/otbase/otquery"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/sfnt"
)

// tracer traces with key 'otbase'.
func tracer() tracing.Trace {
	return tracing.Select("otbase")
}

// FromBinary parses raw OpenType bytes and returns a decoded font.
//
// The input is expected to contain a complete single-font SFNT stream.
// It must not change after parsing for the font to be usable.
func FromBinary(data []byte) (*ot.Font, error) {
	return ot.Parse(data)
}

// FromCollectionBinary parses raw bytes holding either a single font or a
// TrueType/OpenType collection ('ttcf') and returns all faces. For a
// single font, the slice has one entry.
func FromCollectionBinary(data []byte) ([]*ot.Font, error) {
	return ot.ParseCollection(data)
}

// LoadFont loads an OpenType font (TTF or OTF) from a file.
func LoadFont(path string) (*ot.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	otf, err := ot.Parse(data)
	if err != nil {
		tracer().Errorf("cannot decode font %s: %s", path, err)
		return nil, err
	}
	tracer().Debugf("loaded and parsed font %s", path)
	return otf, nil
}

// FamilyName extracts family and subfamily names from a font's `name` table.
//
// Returned values are empty if no matching records exist or if records cannot be
// decoded by the current name-table reader.
func FamilyName(f *ot.Font) (family, subfamily string) {
	for nameId, stringValue := range otquery.NamesRange(f) {
		switch nameId {
		case sfnt.NameIDFamily:
			family = stringValue
		case sfnt.NameIDSubfamily:
			subfamily = stringValue
		}
	}
	return
}
