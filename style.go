package mitab

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// styleTool is one NAME(key:value,...) element of an OGR feature style
// string.
type styleTool struct {
	name   string
	params map[string]string
}

// parseStyle splits an OGR feature style string into its tools. Tools are
// separated by ';' and parameters by ','. Quoted values may contain either
// separator.
func parseStyle(s string) ([]styleTool, error) {
	var tools []styleTool
	for _, part := range splitOutsideQuotes(s, ';') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		open := strings.IndexByte(part, '(')
		if open <= 0 || !strings.HasSuffix(part, ")") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStyle, part)
		}
		t := styleTool{
			name:   strings.ToUpper(strings.TrimSpace(part[:open])),
			params: make(map[string]string),
		}
		for _, kv := range splitOutsideQuotes(part[open+1:len(part)-1], ',') {
			kv = strings.TrimSpace(kv)
			if kv == "" {
				continue
			}
			k, v, ok := strings.Cut(kv, ":")
			if !ok {
				return nil, fmt.Errorf("%w: parameter %q in %s", ErrInvalidStyle, kv, t.name)
			}
			t.params[strings.ToLower(strings.TrimSpace(k))] = strings.Trim(strings.TrimSpace(v), `"`)
		}
		tools = append(tools, t)
	}
	return tools, nil
}

func splitOutsideQuotes(s string, sep byte) []string {
	var (
		out    []string
		quoted bool
		start  int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			quoted = !quoted
		case sep:
			if !quoted {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

func findTool(tools []styleTool, name string) *styleTool {
	for i := range tools {
		if tools[i].name == name {
			return &tools[i]
		}
	}
	return nil
}

// color parses a #rrggbb or #rrggbbaa parameter. The alpha component is
// dropped.
func (t *styleTool) color(key string) (uint32, bool) {
	v, ok := t.params[key]
	if !ok || !strings.HasPrefix(v, "#") {
		return 0, false
	}
	v = v[1:]
	if len(v) != 6 && len(v) != 8 {
		return 0, false
	}
	n, err := strconv.ParseUint(v[:6], 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// length parses a numeric parameter with an optional px, pt, mm or g unit.
// Non-finite values are treated as missing.
func (t *styleTool) length(key string) (float64, string, bool) {
	v, ok := t.params[key]
	if !ok {
		return 0, "", false
	}
	var unit string
	for _, u := range []string{"px", "pt", "mm", "g"} {
		if strings.HasSuffix(v, u) {
			unit = u
			v = strings.TrimSuffix(v, u)
			break
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, "", false
	}
	return f, unit, true
}

// number parses a plain numeric parameter.
func (t *styleTool) number(key string) (float64, bool) {
	f, _, ok := t.length(key)
	return f, ok
}

// mapinfoID scans the comma separated id parameter for an entry with the
// given prefix and returns its numeric suffix.
func (t *styleTool) mapinfoID(prefix string) (int, bool) {
	ids, ok := t.params["id"]
	if !ok {
		return 0, false
	}
	for _, id := range strings.Split(ids, ",") {
		id = strings.TrimSpace(id)
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
		if err == nil {
			return n, true
		}
	}
	return 0, false
}

// pointSize converts a size parameter to points. Ground units are kept
// as they are.
func pointSize(v float64, unit string) float64 {
	if unit == "mm" {
		return v * 72 / 25.4
	}
	return v
}

// Font style flags shared by text and font point objects.
const (
	FontBold      = 0x0001
	FontItalic    = 0x0002
	FontUnderline = 0x0004
	FontStrikeout = 0x0008
	FontOutline   = 0x0010
	FontShadow    = 0x0020
	FontInverse   = 0x0040
	FontBlink     = 0x0080
	FontBox       = 0x0100
	FontHalo      = 0x0200
	FontAllCaps   = 0x0400
	FontExpanded  = 0x0800
)

// FontStyleMIF converts on-disk font style flags to their MIF value, where
// the flags above the low byte are shifted down by one bit.
func FontStyleMIF(style int) int {
	return (style & 0xff) + (style&0x7f00)/2
}

// FontStyleFromMIF is the inverse of FontStyleMIF.
func FontStyleFromMIF(mif int) int {
	return (mif & 0xff) + (mif&0x7f00)*2
}

func penBrushStyle(p *FeaturePen, b *FeatureBrush) string {
	return p.PenStyleString() + ";" + b.BrushStyleString()
}

// setPenBrushStyle applies the PEN and BRUSH tools of style.
func setPenBrushStyle(style string, p *FeaturePen, b *FeatureBrush) error {
	tools, err := parseStyle(style)
	if err != nil {
		return err
	}
	if t := findTool(tools, "PEN"); t != nil {
		p.applyPenTool(t)
	}
	if t := findTool(tools, "BRUSH"); t != nil {
		b.applyBrushTool(t)
	}
	return nil
}
