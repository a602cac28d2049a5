// Package css defines the style values stored in build declarations and the
// unit options offered for a CSS property.
//
// # Values
//
// A [StyleValue] is one of three shapes:
//
//   - unit: a number with a [Unit] ("10px", "1.5" with [UnitNumber])
//   - keyword: a bare identifier ("auto", "inherit")
//   - unparsed: raw text kept verbatim ("calc(100% - 10px)")
//
// # Unit Options
//
// [BuildOptions] produces the list used by a unit selector next to a numeric
// input. Units allowed for the property come first in a stable preferred
// order, followed by the property's keywords:
//
//	opts := css.BuildOptions("width", css.UnitValue(10, css.UnitPx), "—")
//	// px, %, em, rem, ch, vw, vh, ..., auto, fit-content, ...
package css
