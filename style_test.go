package mitab

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"
)

func TestParseStyle(t *testing.T) {
	tools, err := parseStyle(`PEN(w:2px,c:#ff0000,id:"mapinfo-pen-2,ogr-pen-0"); BRUSH(fc:#00ff00)`)
	if err != nil {
		t.Fatalf("parseStyle failed: %v", err)
	}
	if len(tools) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(tools))
	}
	want := map[string]string{"w": "2px", "c": "#ff0000", "id": "mapinfo-pen-2,ogr-pen-0"}
	if diff := cmp.Diff(want, tools[0].params); diff != "" {
		t.Errorf("PEN params mismatch (-want +got):\n%s", diff)
	}
	if tools[1].name != "BRUSH" {
		t.Errorf("second tool = %s, want BRUSH", tools[1].name)
	}
}

func TestParseStyle_Invalid(t *testing.T) {
	for _, s := range []string{"PEN", "PEN(w:2px", "(c:#000000)", "PEN(c)"} {
		if _, err := parseStyle(s); !errors.Is(err, ErrInvalidStyle) {
			t.Errorf("parseStyle(%q): expected ErrInvalidStyle, got %v", s, err)
		}
	}
}

func TestPenStyleRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		setup func(p *FeaturePen)
		want  string
	}{
		{
			name:  "default",
			setup: func(*FeaturePen) {},
			want:  `PEN(w:1px,c:#000000,id:"mapinfo-pen-2,ogr-pen-0")`,
		},
		{
			name: "dashed points",
			setup: func(p *FeaturePen) {
				p.SetPenWidthPoint(1.5)
				p.SetPenPattern(5)
				p.SetPenColor(0x123456)
			},
			want: `PEN(w:1.5pt,c:#123456,id:"mapinfo-pen-5,ogr-pen-3",p:"3 1px")`,
		},
		{
			name: "hidden",
			setup: func(p *FeaturePen) {
				p.SetPenPattern(1)
				p.SetPenWidthPixel(3)
			},
			want: `PEN(w:3px,c:#000000,id:"mapinfo-pen-1,ogr-pen-1")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFeaturePen()
			tt.setup(&src)
			style := src.PenStyleString()
			if style != tt.want {
				t.Errorf("PenStyleString() = %s, want %s", style, tt.want)
			}

			dst := newFeaturePen()
			dst.Def = PenDef{}
			if err := dst.SetPenFromStyleString(style); err != nil {
				t.Fatalf("SetPenFromStyleString failed: %v", err)
			}
			if diff := cmp.Diff(src.Def, dst.Def); diff != "" {
				t.Errorf("pen mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPenStyle_DashWithoutMapInfoID(t *testing.T) {
	p := newFeaturePen()
	if err := p.SetPenFromStyleString(`PEN(c:#ff0000,p:"24 3 3 3 3 3px")`); err != nil {
		t.Fatalf("SetPenFromStyleString failed: %v", err)
	}
	if p.PenPattern() != 18 {
		t.Errorf("pattern = %d, want 18", p.PenPattern())
	}
}

func TestBrushStyleRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		def  BrushDef
	}{
		{"default", DefaultBrushDef()},
		{"solid", BrushDef{FillPattern: 2, FGColor: 0xff8800, BGColor: 0x000080}},
		{"transparent hatch", BrushDef{FillPattern: 8, FGColor: 0x00ff00, Transparent: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := FeatureBrush{Def: tt.def}
			dst := newFeatureBrush()
			dst.Def = BrushDef{}
			if err := dst.SetBrushFromStyleString(src.BrushStyleString()); err != nil {
				t.Fatalf("SetBrushFromStyleString failed: %v", err)
			}
			if diff := cmp.Diff(tt.def, dst.Def); diff != "" {
				t.Errorf("brush mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSymbolStyleRoundTrip(t *testing.T) {
	src := newFeatureSymbol()
	src.SetSymbolNo(40)
	src.SetSymbolSize(18)
	src.SetSymbolColor(0xabcdef)

	style := src.SymbolStyleString(0)
	want := `SYMBOL(a:0,c:#abcdef,s:18pt,id:"mapinfo-sym-40,ogr-sym-2")`
	if style != want {
		t.Errorf("SymbolStyleString() = %s, want %s", style, want)
	}

	dst := newFeatureSymbol()
	if err := dst.SetSymbolFromStyleString(style); err != nil {
		t.Fatalf("SetSymbolFromStyleString failed: %v", err)
	}
	if diff := cmp.Diff(src.Def, dst.Def); diff != "" {
		t.Errorf("symbol mismatch (-want +got):\n%s", diff)
	}
}

func TestRegionStyleString(t *testing.T) {
	r := NewRegion(orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}})
	r.SetPenColor(0xff0000)
	r.SetBrushPattern(2)
	r.SetBrushFGColor(0x0000ff)

	style := r.StyleString()
	want := `PEN(w:1px,c:#ff0000,id:"mapinfo-pen-2,ogr-pen-0");BRUSH(fc:#0000ff,bc:#ffffff,id:"mapinfo-brush-2,ogr-brush-0")`
	if style != want {
		t.Errorf("StyleString() =\n%s\nwant\n%s", style, want)
	}

	// The style string is cached until the style is replaced.
	r.SetPenColor(0x00ff00)
	if r.StyleString() != style {
		t.Error("StyleString() should be cached")
	}
	if err := r.SetStyleString(style); err != nil {
		t.Fatalf("SetStyleString failed: %v", err)
	}
	if r.PenColor() != 0xff0000 {
		t.Errorf("pen color = %06x, want ff0000", r.PenColor())
	}
}

func TestFontStyleMIF(t *testing.T) {
	for _, style := range []int{0, FontBold | FontItalic, FontHalo | FontShadow, FontExpanded | FontAllCaps} {
		if got := FontStyleFromMIF(FontStyleMIF(style)); got != style {
			t.Errorf("FontStyleFromMIF(FontStyleMIF(%#x)) = %#x", style, got)
		}
	}
}

func TestSetStyleString_OutOfRangeAngles(t *testing.T) {
	tests := []struct {
		name  string
		style string
		want  float64
	}{
		{"huge", `SYMBOL(a:1e300,c:#000000,s:12pt,id:"font-sym-65")`, math.Mod(1e300, 360)},
		{"inf", `SYMBOL(a:Inf,c:#000000,s:12pt,id:"font-sym-65")`, 45},
		{"nan", `SYMBOL(a:NaN,c:#000000,s:12pt,id:"font-sym-65")`, 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := NewFontPoint(orb.Point{1, 2})
			fp.SetAngle(45)
			if err := fp.SetStyleString(tt.style); err != nil {
				t.Fatalf("SetStyleString failed: %v", err)
			}
			if got := fp.Angle(); got != tt.want {
				t.Errorf("font point angle = %v, want %v", got, tt.want)
			}

			txt := NewText(orb.Point{1, 2}, "x", 1)
			txt.SetAngle(45)
			label := strings.Replace(tt.style, "SYMBOL(", `LABEL(t:"x",`, 1)
			if err := txt.SetStyleString(label); err != nil {
				t.Fatalf("SetStyleString failed: %v", err)
			}
			if got := txt.Angle(); got != tt.want {
				t.Errorf("text angle = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStyleLength_NonFinite(t *testing.T) {
	tools, err := parseStyle(`PEN(w:Inf,c:#000000)`)
	if err != nil {
		t.Fatalf("parseStyle failed: %v", err)
	}
	if _, _, ok := findTool(tools, "PEN").length("w"); ok {
		t.Error("expected a non-finite width to be treated as missing")
	}
}
