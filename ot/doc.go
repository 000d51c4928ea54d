/*
Package ot is a low-level, zero-copy parsing core for OpenType and TrueType
font binaries (sfnt containers and 'ttcf' font collections).

Intended audience for this package are:

▪︎ text shapers, such as HarfBuzz (https://harfbuzz.github.io/what-does-harfbuzz-do.html)

▪︎ glyph rasterizers, such as FreeType (https://github.com/golang/freetype)

▪︎ font inspection and subsetting tools, and any application that needs the
internal structure of an OpenType font file available, possibly extending the
methods of package `ot` by handling additional font tables

Package `ot` will not interpret the semantics of font tables beyond their
binary structure. It is not possible to ask package `ot` for a kerning
distance between two glyphs, or to shape a run of text. Clients navigate the
tables themselves and impose meaning on the bytes. From this point of view,
`ot` is a low-level package. Higher-level concerns are homed in sister
packages (`otquery` for font information).

# Views, not copies

The font binary is handed to `Parse` once and is never copied. Every table,
record, array and field access is a view into that single buffer: a pair of
coordinates plus a reference. Clients must keep the buffer unmodified for as
long as any view derived from it is in use. Views may be read concurrently
from multiple goroutines without synchronization.

Font files found in the wild are frequently malformed, truncated or outright
hostile. Package `ot` therefore treats every length, count and offset read
from the buffer as untrusted: it validates before it dereferences, it checks
arithmetic for overflow before using the result, and it turns every violation
into a structured, recoverable error. Parsing never panics on malformed
input, and a defect in one table does not prevent sibling tables from being
parsed.

▪︎ Format versions: many OT tables occur in a variety of formats. Version and
format discriminants are dispatched over a closed set of known layouts;
unknown discriminants surface as UnsupportedVersionError, never as a guessed
layout.

▪︎ Word size: offsets in OT may be 2-byte, 3-byte or 4-byte values. Package
`ot` hides offset-width details behind navigation links. An offset of value 0
means "absent" and resolves to a null link, not an error.

# Status

Single fonts and font collections (TTC) are supported. Variable-font
tables are exposed as generic tables but not interpreted.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'otbase.ot'
func tracer() tracing.Trace {
	return tracing.Select("otbase.ot")
}
