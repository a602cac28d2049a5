package css

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ids(opts []UnitOption) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.ID
	}
	return out
}

func TestAllowedUnitsPreferredOrder(t *testing.T) {
	got := AllowedUnits("width")
	want := []Unit{UnitPx, UnitPercent, UnitEm, UnitRem, UnitCh, UnitVw, UnitVh}
	if diff := cmp.Diff(want, got[:len(want)]); diff != "" {
		t.Errorf("AllowedUnits(width) prefix mismatch (-want +got):\n%s", diff)
	}
	if AllowedUnits("unknown-property") != nil {
		t.Error("unknown property should accept no units")
	}
}

func TestBuildOptions(t *testing.T) {
	tests := []struct {
		name      string
		property  string
		value     StyleValue
		wantFirst []string
		wantHas   []string
	}{
		{
			name:      "length with keywords",
			property:  "width",
			value:     UnitValue(10, UnitPx),
			wantFirst: []string{"px", "%", "em"},
			wantHas:   []string{"auto", "fit-content", "inherit"},
		},
		{
			name:      "unitless line-height",
			property:  "line-height",
			value:     UnitValue(1.5, UnitNumber),
			wantFirst: []string{"px", "%", "em"},
			wantHas:   []string{"number", "normal"},
		},
		{
			name:      "foreign unit is kept",
			property:  "opacity",
			value:     UnitValue(3, UnitPx),
			wantFirst: []string{"px", "%"},
			wantHas:   []string{"number"},
		},
		{
			name:      "foreign keyword is kept",
			property:  "padding-top",
			value:     KeywordValue("auto"),
			wantFirst: []string{"px"},
			wantHas:   []string{"auto"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(BuildOptions(tt.property, tt.value, "—"))
			if diff := cmp.Diff(tt.wantFirst, got[:len(tt.wantFirst)]); diff != "" {
				t.Errorf("leading options mismatch (-want +got):\n%s", diff)
			}
			for _, id := range tt.wantHas {
				found := false
				for _, g := range got {
					if g == id {
						found = true
					}
				}
				if !found {
					t.Errorf("BuildOptions(%q) missing %q in %v", tt.property, id, got)
				}
			}
		})
	}
}

func TestBuildOptionsUnknownProperty(t *testing.T) {
	if got := BuildOptions("not-a-property", KeywordValue("x"), "—"); len(got) != 0 {
		t.Errorf("BuildOptions(unknown) = %v, want empty", got)
	}
}

func TestBuildOptionsUnitlessLabel(t *testing.T) {
	for _, o := range BuildOptions("opacity", UnitValue(1, UnitNumber), "—") {
		if o.ID == string(UnitNumber) && o.Label != "—" {
			t.Errorf("unitless label = %q, want %q", o.Label, "—")
		}
	}
}

func TestStyleValueString(t *testing.T) {
	tests := []struct {
		v    StyleValue
		want string
	}{
		{UnitValue(10, UnitPx), "10px"},
		{UnitValue(1.5, UnitNumber), "1.5"},
		{UnitValue(50, UnitPercent), "50%"},
		{KeywordValue("auto"), "auto"},
		{UnparsedValue("calc(100% - 1px)"), "calc(100% - 1px)"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want StyleValue
	}{
		{"10px", UnitValue(10, UnitPx)},
		{" 1.5 ", UnitValue(1.5, UnitNumber)},
		{"50%", UnitValue(50, UnitPercent)},
		{"100vmin", UnitValue(100, UnitVmin)},
		{"2in", UnitValue(2, UnitIn)},
		{"-0.5rem", UnitValue(-0.5, UnitRem)},
		{"200ms", UnitValue(200, UnitMs)},
		{"Auto", KeywordValue("auto")},
		{"space-between", KeywordValue("space-between")},
		{"calc(100% - 1px)", UnparsedValue("calc(100% - 1px)")},
		{"10 px", UnparsedValue("10 px")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseValue(tt.in); got != tt.want {
				t.Errorf("ParseValue(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
