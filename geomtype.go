package mitab

import "fmt"

// GeomType is the on-disk object type code of a map object. Compressed and
// uncompressed variants of the same shape are adjacent codes: the compressed
// variant is the base and the uncompressed one is base+1.
type GeomType int

// Object type codes.
const (
	GeomUnset            GeomType = -1
	GeomNone             GeomType = 0
	GeomSymbolC          GeomType = 0x01
	GeomSymbol           GeomType = 0x02
	GeomLineC            GeomType = 0x04
	GeomLine             GeomType = 0x05
	GeomPLineC           GeomType = 0x07
	GeomPLine            GeomType = 0x08
	GeomArcC             GeomType = 0x0a
	GeomArc              GeomType = 0x0b
	GeomRegionC          GeomType = 0x0d
	GeomRegion           GeomType = 0x0e
	GeomTextC            GeomType = 0x10
	GeomText             GeomType = 0x11
	GeomRectC            GeomType = 0x13
	GeomRect             GeomType = 0x14
	GeomRoundRectC       GeomType = 0x16
	GeomRoundRect        GeomType = 0x17
	GeomEllipseC         GeomType = 0x19
	GeomEllipse          GeomType = 0x1a
	GeomMultiPLineC      GeomType = 0x25
	GeomMultiPLine       GeomType = 0x26
	GeomFontSymbolC      GeomType = 0x28
	GeomFontSymbol       GeomType = 0x29
	GeomCustomSymbolC    GeomType = 0x2b
	GeomCustomSymbol     GeomType = 0x2c
	GeomV450RegionC      GeomType = 0x2e
	GeomV450Region       GeomType = 0x2f
	GeomV450MultiPLineC  GeomType = 0x31
	GeomV450MultiPLine   GeomType = 0x32
	GeomMultiPointC      GeomType = 0x34
	GeomMultiPoint       GeomType = 0x35
	GeomCollectionC      GeomType = 0x37
	GeomCollection       GeomType = 0x38
	GeomUnknown1C        GeomType = 0x3a
	GeomUnknown1         GeomType = 0x3b
	GeomV800RegionC      GeomType = 0x3d
	GeomV800Region       GeomType = 0x3e
	GeomV800MultiPLineC  GeomType = 0x40
	GeomV800MultiPLine   GeomType = 0x41
	GeomV800MultiPointC  GeomType = 0x43
	GeomV800MultiPoint   GeomType = 0x44
	GeomV800CollectionC  GeomType = 0x46
	GeomV800Collection   GeomType = 0x47
)

// Vertex and section limits of the versioned region/polyline/multipoint
// families.
const (
	MaxVertices300           = 32767
	MaxSegments450           = 32767
	MaxVertices450           = 1048575
	MaxMultiPointVertices650 = 1048576
)

// RequiresV800 reports whether a region or multi-polyline with the given
// number of sections and total vertices needs the v800 object types.
func RequiresV800(sections, vertices int) bool {
	return sections > MaxSegments450 || int64(sections)*3+int64(vertices) > MaxVertices450
}

var geomTypeNames = map[GeomType]string{
	GeomNone:             "NONE",
	GeomSymbolC:          "SYMBOL_C",
	GeomSymbol:           "SYMBOL",
	GeomLineC:            "LINE_C",
	GeomLine:             "LINE",
	GeomPLineC:           "PLINE_C",
	GeomPLine:            "PLINE",
	GeomArcC:             "ARC_C",
	GeomArc:              "ARC",
	GeomRegionC:          "REGION_C",
	GeomRegion:           "REGION",
	GeomTextC:            "TEXT_C",
	GeomText:             "TEXT",
	GeomRectC:            "RECT_C",
	GeomRect:             "RECT",
	GeomRoundRectC:       "ROUNDRECT_C",
	GeomRoundRect:        "ROUNDRECT",
	GeomEllipseC:         "ELLIPSE_C",
	GeomEllipse:          "ELLIPSE",
	GeomMultiPLineC:      "MULTIPLINE_C",
	GeomMultiPLine:       "MULTIPLINE",
	GeomFontSymbolC:      "FONTSYMBOL_C",
	GeomFontSymbol:       "FONTSYMBOL",
	GeomCustomSymbolC:    "CUSTOMSYMBOL_C",
	GeomCustomSymbol:     "CUSTOMSYMBOL",
	GeomV450RegionC:      "V450_REGION_C",
	GeomV450Region:       "V450_REGION",
	GeomV450MultiPLineC:  "V450_MULTIPLINE_C",
	GeomV450MultiPLine:   "V450_MULTIPLINE",
	GeomMultiPointC:      "MULTIPOINT_C",
	GeomMultiPoint:       "MULTIPOINT",
	GeomCollectionC:      "COLLECTION_C",
	GeomCollection:       "COLLECTION",
	GeomUnknown1C:        "UNKNOWN1_C",
	GeomUnknown1:         "UNKNOWN1",
	GeomV800RegionC:      "V800_REGION_C",
	GeomV800Region:       "V800_REGION",
	GeomV800MultiPLineC:  "V800_MULTIPLINE_C",
	GeomV800MultiPLine:   "V800_MULTIPLINE",
	GeomV800MultiPointC:  "V800_MULTIPOINT_C",
	GeomV800MultiPoint:   "V800_MULTIPOINT",
	GeomV800CollectionC:  "V800_COLLECTION_C",
	GeomV800Collection:   "V800_COLLECTION",
}

func (t GeomType) String() string {
	if t == GeomUnset {
		return "UNSET"
	}
	if n, ok := geomTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("GeomType(0x%02x)", int(t))
}

// Valid reports whether t is one of the known object type codes.
func (t GeomType) Valid() bool {
	_, ok := geomTypeNames[t]
	return ok
}

// Version returns the MapInfo format version (300, 450, 650 or 800)
// required by the object type.
func (t GeomType) Version() int {
	switch {
	case t < GeomV450RegionC:
		return 300
	case t < GeomMultiPointC:
		return 450
	case t < GeomUnknown1C:
		return 650
	default:
		return 800
	}
}

// IsCompressed reports whether the type stores 16-bit coordinate deltas.
func (t GeomType) IsCompressed() bool {
	return t > GeomNone && t%3 == 1
}

// Compressed returns the compressed variant of t.
func (t GeomType) Compressed() GeomType {
	if t > GeomNone && t%3 == 2 {
		return t - 1
	}
	return t
}

// Uncompressed returns the uncompressed variant of t.
func (t GeomType) Uncompressed() GeomType {
	if t > GeomNone && t%3 == 1 {
		return t + 1
	}
	return t
}

// withCompression toggles t to the requested variant.
func (t GeomType) withCompression(compressed bool) GeomType {
	if compressed {
		return t.Compressed()
	}
	return t.Uncompressed()
}

func (t GeomType) oneOf(types ...GeomType) bool {
	for _, c := range types {
		if t == c {
			return true
		}
	}
	return false
}

func (t GeomType) isRegion() bool {
	return t.Uncompressed().oneOf(GeomRegion, GeomV450Region, GeomV800Region)
}

func (t GeomType) isMultiPLine() bool {
	return t.Uncompressed().oneOf(GeomMultiPLine, GeomV450MultiPLine, GeomV800MultiPLine)
}

func (t GeomType) isPLineFamily() bool {
	return t.Uncompressed() == GeomPLine || t.isMultiPLine() || t.isRegion()
}

func (t GeomType) isMultiPoint() bool {
	return t.Uncompressed().oneOf(GeomMultiPoint, GeomV800MultiPoint)
}

func (t GeomType) isCollection() bool {
	return t.Uncompressed().oneOf(GeomCollection, GeomV800Collection)
}
