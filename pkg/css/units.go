package css

import "slices"

// Unit is a CSS unit identifier. UnitNumber marks a unitless number.
type Unit string

const (
	UnitPx      Unit = "px"
	UnitPercent Unit = "%"
	UnitEm      Unit = "em"
	UnitRem     Unit = "rem"
	UnitCh      Unit = "ch"
	UnitVw      Unit = "vw"
	UnitVh      Unit = "vh"
	UnitVmin    Unit = "vmin"
	UnitVmax    Unit = "vmax"
	UnitEx      Unit = "ex"
	UnitCm      Unit = "cm"
	UnitMm      Unit = "mm"
	UnitIn      Unit = "in"
	UnitPt      Unit = "pt"
	UnitPc      Unit = "pc"
	UnitQ       Unit = "q"
	UnitDeg     Unit = "deg"
	UnitRad     Unit = "rad"
	UnitTurn    Unit = "turn"
	UnitS       Unit = "s"
	UnitMs      Unit = "ms"
	UnitNumber  Unit = "number"
)

// UnitGroup is a family of units a property may accept.
type UnitGroup string

const (
	GroupLength     UnitGroup = "length"
	GroupPercentage UnitGroup = "percentage"
	GroupNumber     UnitGroup = "number"
	GroupAngle      UnitGroup = "angle"
	GroupTime       UnitGroup = "time"
)

var unitGroups = map[UnitGroup][]Unit{
	GroupLength:     {UnitPx, UnitEm, UnitRem, UnitCh, UnitVw, UnitVh, UnitVmin, UnitVmax, UnitEx, UnitCm, UnitMm, UnitIn, UnitPt, UnitPc, UnitQ},
	GroupPercentage: {UnitPercent},
	GroupNumber:     {UnitNumber},
	GroupAngle:      {UnitDeg, UnitRad, UnitTurn},
	GroupTime:       {UnitS, UnitMs},
}

// preferredOrder lists the units surfaced first in a selector.
var preferredOrder = []Unit{UnitPx, UnitPercent, UnitEm, UnitRem, UnitCh, UnitVw, UnitVh}

// Property describes which values a CSS property accepts.
type Property struct {
	UnitGroups []UnitGroup
	Keywords   []string
}

var (
	sizeKeywords   = []string{"auto", "fit-content", "min-content", "max-content"}
	globalKeywords = []string{"inherit", "initial", "unset"}
	lengthPct      = []UnitGroup{GroupLength, GroupPercentage}
)

// Properties is the table of properties known to [BuildOptions].
var Properties = map[string]Property{
	"width":            {UnitGroups: lengthPct, Keywords: sizeKeywords},
	"height":           {UnitGroups: lengthPct, Keywords: sizeKeywords},
	"min-width":        {UnitGroups: lengthPct, Keywords: sizeKeywords},
	"min-height":       {UnitGroups: lengthPct, Keywords: sizeKeywords},
	"max-width":        {UnitGroups: lengthPct, Keywords: append([]string{"none"}, sizeKeywords[1:]...)},
	"max-height":       {UnitGroups: lengthPct, Keywords: append([]string{"none"}, sizeKeywords[1:]...)},
	"margin-top":       {UnitGroups: lengthPct, Keywords: []string{"auto"}},
	"margin-right":     {UnitGroups: lengthPct, Keywords: []string{"auto"}},
	"margin-bottom":    {UnitGroups: lengthPct, Keywords: []string{"auto"}},
	"margin-left":      {UnitGroups: lengthPct, Keywords: []string{"auto"}},
	"padding-top":      {UnitGroups: lengthPct},
	"padding-right":    {UnitGroups: lengthPct},
	"padding-bottom":   {UnitGroups: lengthPct},
	"padding-left":     {UnitGroups: lengthPct},
	"top":              {UnitGroups: lengthPct, Keywords: []string{"auto"}},
	"right":            {UnitGroups: lengthPct, Keywords: []string{"auto"}},
	"bottom":           {UnitGroups: lengthPct, Keywords: []string{"auto"}},
	"left":             {UnitGroups: lengthPct, Keywords: []string{"auto"}},
	"row-gap":          {UnitGroups: lengthPct, Keywords: []string{"normal"}},
	"column-gap":       {UnitGroups: lengthPct, Keywords: []string{"normal"}},
	"font-size":        {UnitGroups: lengthPct, Keywords: []string{"small", "medium", "large", "smaller", "larger"}},
	"line-height":      {UnitGroups: []UnitGroup{GroupNumber, GroupLength, GroupPercentage}, Keywords: []string{"normal"}},
	"letter-spacing":   {UnitGroups: []UnitGroup{GroupLength}, Keywords: []string{"normal"}},
	"font-weight":      {UnitGroups: []UnitGroup{GroupNumber}, Keywords: []string{"normal", "bold", "lighter", "bolder"}},
	"opacity":          {UnitGroups: []UnitGroup{GroupNumber, GroupPercentage}},
	"z-index":          {UnitGroups: []UnitGroup{GroupNumber}, Keywords: []string{"auto"}},
	"flex-grow":        {UnitGroups: []UnitGroup{GroupNumber}},
	"flex-shrink":      {UnitGroups: []UnitGroup{GroupNumber}},
	"flex-basis":       {UnitGroups: lengthPct, Keywords: []string{"auto", "content"}},
	"border-top-width": {UnitGroups: []UnitGroup{GroupLength}, Keywords: []string{"thin", "medium", "thick"}},
	"outline-width":    {UnitGroups: []UnitGroup{GroupLength}, Keywords: []string{"thin", "medium", "thick"}},
	"rotate":           {UnitGroups: []UnitGroup{GroupAngle}, Keywords: []string{"none"}},

	"transition-duration": {UnitGroups: []UnitGroup{GroupTime}},
	"transition-delay":    {UnitGroups: []UnitGroup{GroupTime}},
}

// OptionType distinguishes unit options from keyword options.
type OptionType string

const (
	OptionUnit    OptionType = "unit"
	OptionKeyword OptionType = "keyword"
)

// UnitOption is one entry of a unit selector.
type UnitOption struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Type  OptionType `json:"type"`
}

// AllowedUnits returns the units a property accepts in preferred order.
// Unknown properties accept no units.
func AllowedUnits(property string) []Unit {
	p, ok := Properties[property]
	if !ok {
		return nil
	}
	var allowed []Unit
	for _, g := range p.UnitGroups {
		allowed = append(allowed, unitGroups[g]...)
	}
	return sortUnits(allowed)
}

// BuildOptions returns the selector options for property given its current
// value. The current unit is kept even when the property would not accept it,
// so the selector can always display what is stored. unitlessLabel is shown
// for [UnitNumber].
func BuildOptions(property string, value StyleValue, unitlessLabel string) []UnitOption {
	p, ok := Properties[property]
	if !ok {
		return nil
	}

	units := AllowedUnits(property)
	if value.Type == ValueUnit && value.Unit != "" && !slices.Contains(units, value.Unit) {
		units = sortUnits(append(units, value.Unit))
	}

	options := make([]UnitOption, 0, len(units)+len(p.Keywords)+len(globalKeywords))
	for _, u := range units {
		label := string(u)
		if u == UnitNumber {
			label = unitlessLabel
		}
		options = append(options, UnitOption{ID: string(u), Label: label, Type: OptionUnit})
	}

	keywords := slices.Clone(p.Keywords)
	if kw, ok := value.Keyword(); ok && !slices.Contains(keywords, kw) && !slices.Contains(globalKeywords, kw) {
		keywords = append(keywords, kw)
	}
	keywords = append(keywords, globalKeywords...)
	for _, kw := range keywords {
		options = append(options, UnitOption{ID: kw, Label: kw, Type: OptionKeyword})
	}
	return options
}

func sortUnits(units []Unit) []Unit {
	rank := func(u Unit) int {
		if i := slices.Index(preferredOrder, u); i >= 0 {
			return i
		}
		return len(preferredOrder)
	}
	out := slices.Clone(units)
	slices.SortStableFunc(out, func(a, b Unit) int { return rank(a) - rank(b) })
	return slices.Compact(out)
}
