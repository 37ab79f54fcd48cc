package mitab

import "testing"

func TestGeomType_Variants(t *testing.T) {
	tests := []struct {
		name         string
		t            GeomType
		compressed   bool
		wantC, wantU GeomType
		version      int
	}{
		{"symbol", GeomSymbol, false, GeomSymbolC, GeomSymbol, 300},
		{"symbol c", GeomSymbolC, true, GeomSymbolC, GeomSymbol, 300},
		{"region c", GeomRegionC, true, GeomRegionC, GeomRegion, 300},
		{"v450 multipline", GeomV450MultiPLine, false, GeomV450MultiPLineC, GeomV450MultiPLine, 450},
		{"multipoint", GeomMultiPoint, false, GeomMultiPointC, GeomMultiPoint, 650},
		{"collection c", GeomCollectionC, true, GeomCollectionC, GeomCollection, 650},
		{"v800 region", GeomV800Region, false, GeomV800RegionC, GeomV800Region, 800},
		{"none", GeomNone, false, GeomNone, GeomNone, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.t.IsCompressed(); got != tt.compressed {
				t.Errorf("IsCompressed() = %v, want %v", got, tt.compressed)
			}
			if got := tt.t.Compressed(); got != tt.wantC {
				t.Errorf("Compressed() = %s, want %s", got, tt.wantC)
			}
			if got := tt.t.Uncompressed(); got != tt.wantU {
				t.Errorf("Uncompressed() = %s, want %s", got, tt.wantU)
			}
			if got := tt.t.Version(); got != tt.version {
				t.Errorf("Version() = %d, want %d", got, tt.version)
			}
		})
	}
}

func TestGeomType_String(t *testing.T) {
	tests := []struct {
		t     GeomType
		want  string
		valid bool
	}{
		{GeomRegionC, "REGION_C", true},
		{GeomV800Collection, "V800_COLLECTION", true},
		{GeomNone, "NONE", true},
		{GeomUnset, "UNSET", false},
		{GeomType(0x03), "GeomType(0x03)", false},
		{GeomType(0x3c), "GeomType(0x3c)", false},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
		if got := tt.t.Valid(); got != tt.valid {
			t.Errorf("%s.Valid() = %v, want %v", tt.want, got, tt.valid)
		}
	}
}

func TestRequiresV800(t *testing.T) {
	tests := []struct {
		sections, vertices int
		want               bool
	}{
		{1, 100, false},
		{MaxSegments450, 0, false},
		{MaxSegments450 + 1, 0, true},
		{1, MaxVertices450 - 3, false},
		{1, MaxVertices450 - 2, true},
	}
	for _, tt := range tests {
		if got := RequiresV800(tt.sections, tt.vertices); got != tt.want {
			t.Errorf("RequiresV800(%d, %d) = %v, want %v", tt.sections, tt.vertices, got, tt.want)
		}
	}
}

func TestSectionHeaders(t *testing.T) {
	sizes := []struct {
		version    int
		compressed bool
		want       int32
	}{
		{300, false, 24},
		{300, true, 16},
		{450, false, 26},
		{650, true, 18},
		{800, false, 28},
		{800, true, 20},
	}
	for _, tt := range sizes {
		if got := storedSectionHeaderSize(tt.version, tt.compressed); got != tt.want {
			t.Errorf("storedSectionHeaderSize(%d, %v) = %d, want %d", tt.version, tt.compressed, got, tt.want)
		}
	}

	hdrs := newSectionHeaders(450, []int32{4, 3})
	if hdrs[0].VertexOffset != 0 || hdrs[0].DataOffset != 52 {
		t.Errorf("first section = %+v", hdrs[0])
	}
	if hdrs[1].VertexOffset != 4 || hdrs[1].DataOffset != 52+4*8 {
		t.Errorf("second section = %+v", hdrs[1])
	}
}
