/*
Package otquery answers queries on OpenType fonts.

The queries in this package sit on top of the structural decoding done by
package ot. They are intended for diagnostic and informational use-cases,
such as interactive font inspection, and favor robustness over speed:
queries on broken or incomplete fonts return zero values instead of
failing.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otquery

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'otbase.query'.
func tracer() tracing.Trace {
	return tracing.Select("otbase.query")
}
