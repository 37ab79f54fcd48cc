package mitab

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/paulmach/orb"
)

func TestText_DefaultWidth(t *testing.T) {
	txt := NewText(orb.Point{10, 20}, "abcd", 2)
	if w := txt.Width(); math.Abs(w-4.8) > 1e-12 {
		t.Errorf("Width() = %v, want 4.8", w)
	}
	want := orb.Bound{Min: orb.Point{10, 20}, Max: orb.Point{14.8, 22}}
	if diff := cmp.Diff(want, txt.Bound(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("bound mismatch (-want +got):\n%s", diff)
	}
}

func TestText_DefaultWidthFollowsHeight(t *testing.T) {
	txt := NewText(orb.Point{0, 0}, "abcd", 2)
	_ = txt.Width()
	if txt.width != 0 {
		t.Errorf("Width() stored %v, want the default left unset", txt.width)
	}
	txt.SetHeight(4)
	if w := txt.Width(); math.Abs(w-9.6) > 1e-12 {
		t.Errorf("Width() after SetHeight = %v, want 9.6", w)
	}
	txt.SetWidth(3)
	if w := txt.Width(); w != 3 {
		t.Errorf("Width() after SetWidth = %v, want 3", w)
	}
}

func TestTextOrigin(t *testing.T) {
	p := orb.Point{10, 20}
	for _, angle := range []float64{0, 30, 90, 135, 180, 225, 270, 300} {
		txt := NewText(p, "hello", 2)
		txt.SetAngle(angle)

		got, w := textOrigin(txt.Bound(), angle, 2)
		if math.Abs(got[0]-p[0]) > 1e-9 || math.Abs(got[1]-p[1]) > 1e-9 {
			t.Errorf("angle %v: origin = %v, want %v", angle, got, p)
		}
		if math.Abs(w-txt.Width()) > 1e-9 {
			t.Errorf("angle %v: width = %v, want %v", angle, w, txt.Width())
		}
	}
}

func TestText_Alignment(t *testing.T) {
	txt := NewText(orb.Point{0, 0}, "x", 1)
	txt.SetJustification(JustRight)
	txt.SetSpacing(SpacingDouble)
	txt.SetLineType(LineArrow)

	if txt.Justification() != JustRight || txt.Spacing() != SpacingDouble || txt.LineType() != LineArrow {
		t.Fatalf("got %v %v %v", txt.Justification(), txt.Spacing(), txt.LineType())
	}
	txt.SetJustification(JustCenter)
	if txt.alignment != alignCenter|alignSpace2|alignArrow {
		t.Errorf("alignment = %#x", txt.alignment)
	}
}

func TestText_FontStyleMIF(t *testing.T) {
	tests := []struct {
		name    string
		mif     int
		bgSet   bool
		wantBox bool
	}{
		{"bold", 1, false, false},
		{"bold with background", 1, true, true},
		{"halo with background", 256 + 1, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txt := NewText(orb.Point{0, 0}, "x", 1)
			txt.SetFontStyleMIF(tt.mif, tt.bgSet)
			if got := txt.QueryFontStyle(FontBox); got != tt.wantBox {
				t.Errorf("box = %v, want %v", got, tt.wantBox)
			}
			if !txt.QueryFontStyle(FontBold) {
				t.Error("bold flag lost")
			}
			if got := txt.FontStyleMIF(); got&0xff != tt.mif&0xff {
				t.Errorf("FontStyleMIF() = %d", got)
			}
		})
	}
}

func TestText_LabelStyleRoundTrip(t *testing.T) {
	src := NewText(orb.Point{0, 0}, `say "hi"; now`, 2.5)
	src.SetAngle(45)
	src.SetFGColor(0xff0000)
	src.SetBGColor(0x00ff00)
	src.ToggleFontStyle(FontBold, true)
	src.ToggleFontStyle(FontHalo, true)
	src.SetJustification(JustCenter)
	src.SetFontName("Verdana")

	style := src.StyleString()
	want := `LABEL(t:"say 'hi'; now",a:45,s:2.5g,c:#ff0000,o:#00ff00,p:2,bo:1,f:"Verdana")`
	if style != want {
		t.Fatalf("StyleString() =\n%s\nwant\n%s", style, want)
	}

	dst := NewText(orb.Point{0, 0}, "", 1)
	if err := dst.SetStyleString(style); err != nil {
		t.Fatalf("SetStyleString failed: %v", err)
	}
	if dst.TextString() != "say 'hi'; now" {
		t.Errorf("text = %q", dst.TextString())
	}
	if dst.Angle() != 45 || dst.Height() != 2.5 {
		t.Errorf("angle, height = %v, %v", dst.Angle(), dst.Height())
	}
	if dst.FGColor() != 0xff0000 || dst.BGColor() != 0x00ff00 {
		t.Errorf("colors = %06x, %06x", dst.FGColor(), dst.BGColor())
	}
	if !dst.QueryFontStyle(FontBold) || !dst.QueryFontStyle(FontHalo) || dst.QueryFontStyle(FontItalic) {
		t.Errorf("font style = %#x", dst.FontStyle())
	}
	if dst.Justification() != JustCenter || dst.FontName() != "Verdana" {
		t.Errorf("justification %v, font %q", dst.Justification(), dst.FontName())
	}
}
