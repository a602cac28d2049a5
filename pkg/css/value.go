package css

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueType discriminates the shape of a [StyleValue].
type ValueType string

const (
	ValueUnit     ValueType = "unit"
	ValueKeyword  ValueType = "keyword"
	ValueUnparsed ValueType = "unparsed"
)

// StyleValue is the value of a single style declaration.
//
// For ValueUnit, Value holds a float64 and Unit is set. For ValueKeyword and
// ValueUnparsed, Value holds a string and Unit is empty. After a JSON round
// trip numbers decode as float64 and text as string, so the invariant holds.
type StyleValue struct {
	Type  ValueType `json:"type"`
	Unit  Unit      `json:"unit,omitempty"`
	Value any       `json:"value"`
}

// UnitValue returns a numeric value with the given unit.
func UnitValue(n float64, u Unit) StyleValue {
	return StyleValue{Type: ValueUnit, Unit: u, Value: n}
}

// KeywordValue returns a keyword value.
func KeywordValue(k string) StyleValue {
	return StyleValue{Type: ValueKeyword, Value: k}
}

// UnparsedValue returns raw CSS text.
func UnparsedValue(s string) StyleValue {
	return StyleValue{Type: ValueUnparsed, Value: s}
}

// Number returns the numeric part of a unit value.
func (v StyleValue) Number() (float64, bool) {
	if v.Type != ValueUnit {
		return 0, false
	}
	switch n := v.Value.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// Keyword returns the keyword of a keyword value.
func (v StyleValue) Keyword() (string, bool) {
	if v.Type != ValueKeyword {
		return "", false
	}
	s, ok := v.Value.(string)
	return s, ok
}

// String renders the value as CSS text.
func (v StyleValue) String() string {
	switch v.Type {
	case ValueUnit:
		n, _ := v.Number()
		num := strconv.FormatFloat(n, 'f', -1, 64)
		if v.Unit == UnitNumber || v.Unit == "" {
			return num
		}
		return num + string(v.Unit)
	case ValueKeyword, ValueUnparsed:
		if s, ok := v.Value.(string); ok {
			return s
		}
	}
	return fmt.Sprint(v.Value)
}

// knownUnits is every unit ParseValue recognises, longest first so "vmin"
// wins over "in".
var knownUnits = []Unit{
	UnitVmin, UnitVmax, UnitTurn, UnitDeg, UnitRad, UnitRem,
	UnitPx, UnitEm, UnitCh, UnitVw, UnitVh, UnitEx, UnitCm, UnitMm, UnitIn, UnitPt, UnitPc, UnitMs,
	UnitPercent, UnitQ, UnitS,
}

// ParseValue reads CSS text typed by a user: a number with a known unit
// (or none) becomes a unit value, a bare identifier a keyword, and anything
// else is kept unparsed.
func ParseValue(s string) StyleValue {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnparsedValue(s)
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return UnitValue(n, UnitNumber)
	}
	lower := strings.ToLower(s)
	for _, u := range knownUnits {
		num, ok := strings.CutSuffix(lower, string(u))
		if !ok {
			continue
		}
		if n, err := strconv.ParseFloat(num, 64); err == nil {
			return UnitValue(n, u)
		}
	}
	if isIdent(s) {
		return KeywordValue(lower)
	}
	return UnparsedValue(s)
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-' && i == 0, r == '_':
		case (r >= '0' && r <= '9' || r == '-') && i > 0:
		default:
			return false
		}
	}
	return true
}
