package mitab

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// SectionHeader describes one part of a multi-polyline or one ring of a
// region in the coordinate block. For regions, NumHoles is the number of
// sections that follow an outer ring and are holes in it.
type SectionHeader struct {
	NumVertices  int32
	NumHoles     int32
	Bound        IntBound
	DataOffset   int32
	VertexOffset int32
}

// sectionHeaderSize returns the uncompressed size of one section header for
// the given format version. Data offsets are always computed with this size,
// even when the headers are written compressed.
func sectionHeaderSize(version int) int32 {
	switch {
	case version >= 800:
		return 28
	case version >= 450:
		return 26
	default:
		return 24
	}
}

// storedSectionHeaderSize returns the number of bytes a section header
// actually occupies.
func storedSectionHeaderSize(version int, compressed bool) int32 {
	n := sectionHeaderSize(version)
	if compressed {
		n -= 8
	}
	return n
}

// newSectionHeaders builds headers for consecutive sections holding the
// given vertex counts, setting vertex and data offsets.
func newSectionHeaders(version int, counts []int32) []SectionHeader {
	hdrs := make([]SectionHeader, len(counts))
	total := sectionHeaderSize(version) * int32(len(counts))
	var off int32
	for i, n := range counts {
		hdrs[i].NumVertices = n
		hdrs[i].VertexOffset = off
		hdrs[i].DataOffset = total + off*8
		off += n
	}
	return hdrs
}

// readSectionHeaders reads n section headers. maxVertices is the number of
// vertices the object's coordinate data can hold; every section must fit in
// it.
func readSectionHeaders(s Storage, c *Cursor, version int, compressed bool, n int32, maxVertices int64) ([]SectionHeader, error) {
	if err := checkCount(s, int64(n), int64(storedSectionHeaderSize(version, compressed)), "section count"); err != nil {
		return nil, err
	}
	total := int64(sectionHeaderSize(version)) * int64(n)
	hdrs := make([]SectionHeader, n)
	for i := range hdrs {
		h := &hdrs[i]
		if version < 450 {
			v, _ := c.ReadInt16()
			h.NumVertices = int32(v)
		} else {
			h.NumVertices, _ = c.ReadInt32()
		}
		if version < 800 {
			v, _ := c.ReadInt16()
			h.NumHoles = int32(v)
		} else {
			h.NumHoles, _ = c.ReadInt32()
		}
		h.Bound = c.readIntBound(compressed)
		h.DataOffset, _ = c.ReadInt32()
		if err := c.Err(); err != nil {
			return nil, err
		}

		if h.NumVertices < 0 || h.NumHoles < 0 || int64(h.DataOffset) < total {
			return nil, fmt.Errorf("%w: section %d: vertices %d, holes %d, offset %d",
				ErrCorrupt, i, h.NumVertices, h.NumHoles, h.DataOffset)
		}
		off := (int64(h.DataOffset) - total) / 8
		if off > math.MaxInt32 || off+int64(h.NumVertices) > maxVertices {
			return nil, fmt.Errorf("%w: section %d: vertices %d at offset %d exceed %d",
				ErrCorrupt, i, h.NumVertices, off, maxVertices)
		}
		h.VertexOffset = int32(off)
	}
	return hdrs, nil
}

func writeSectionHeaders(c *Cursor, version int, compressed bool, hdrs []SectionHeader) error {
	for _, h := range hdrs {
		if version < 450 {
			c.WriteInt16(int16(h.NumVertices))
		} else {
			c.WriteInt32(h.NumVertices)
		}
		if version < 800 {
			c.WriteInt16(int16(h.NumHoles))
		} else {
			c.WriteInt32(h.NumHoles)
		}
		c.writeIntBound(h.Bound, compressed)
		c.WriteInt32(h.DataOffset)
	}
	return c.Err()
}

// sectionVertexCapacity returns how many vertices fit in dataSize bytes of
// coordinate data after n section headers.
func sectionVertexCapacity(dataSize int32, version int, compressed bool, n int32) int64 {
	rest := int64(dataSize) - int64(storedSectionHeaderSize(version, compressed))*int64(n)
	if rest < 0 {
		return 0
	}
	return rest / int64(pointSizeFor(compressed))
}

func pointSizeFor(compressed bool) int32 {
	if compressed {
		return 4
	}
	return 8
}

// readVertices reads n coordinates, relative to the cursor origin when
// compressed.
func readVertices(s Storage, c *Cursor, compressed bool, n int64) ([]orb.Point, error) {
	if err := checkCount(s, n, int64(pointSizeFor(compressed)), "vertex count"); err != nil {
		return nil, err
	}
	pts := make([]orb.Point, n)
	for i := range pts {
		x, y, err := c.ReadIntCoord(compressed)
		if err != nil {
			return nil, err
		}
		pts[i] = toWorld(s, x, y)
	}
	return pts, nil
}

// writeVertices converts pts to integer space and writes them.
func writeVertices(s Storage, c *Cursor, compressed bool, pts []orb.Point) error {
	for _, p := range pts {
		x, y := s.ToFixed(p[0], p[1])
		c.WriteIntCoord(x, y, compressed)
	}
	return c.Err()
}

// readSections reads n section headers and the vertices they point at.
func readSections(s Storage, c *Cursor, version int, compressed bool, n, dataSize int32) ([]SectionHeader, [][]orb.Point, error) {
	hdrs, err := readSectionHeaders(s, c, version, compressed, n, sectionVertexCapacity(dataSize, version, compressed, n))
	if err != nil {
		return nil, nil, err
	}
	var total int64
	for _, h := range hdrs {
		total = max(total, int64(h.VertexOffset)+int64(h.NumVertices))
	}
	all, err := readVertices(s, c, compressed, total)
	if err != nil {
		return nil, nil, err
	}
	parts := make([][]orb.Point, len(hdrs))
	for i, h := range hdrs {
		parts[i] = all[h.VertexOffset : h.VertexOffset+h.NumVertices : h.VertexOffset+h.NumVertices]
	}
	return hdrs, parts, nil
}

// writeSections writes one section header per part followed by all the
// vertices. holes gives the hole count of each section and may be nil.
func writeSections(s Storage, c *Cursor, version int, compressed bool, parts [][]orb.Point, holes []int32) error {
	counts := make([]int32, len(parts))
	for i, p := range parts {
		counts[i] = int32(len(p))
	}
	hdrs := newSectionHeaders(version, counts)
	for i, p := range parts {
		var b IntBound
		for j, pt := range p {
			x, y := s.ToFixed(pt[0], pt[1])
			if j == 0 {
				b = IntBound{x, y, x, y}
			} else {
				b = b.Extend(x, y)
			}
		}
		hdrs[i].Bound = b
		if holes != nil {
			hdrs[i].NumHoles = holes[i]
		}
	}
	if err := writeSectionHeaders(c, version, compressed, hdrs); err != nil {
		return err
	}
	for _, p := range parts {
		if err := writeVertices(s, c, compressed, p); err != nil {
			return err
		}
	}
	return nil
}
