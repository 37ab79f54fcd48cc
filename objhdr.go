package mitab

import (
	"fmt"
	"math"
)

// ObjHeader is the fixed-size record stored in an object block for every
// map object. Compressed coordinates in a header are relative to the
// cursor's origin, except for the polyline, multipoint and collection
// headers, which carry their own origin.
type ObjHeader interface {
	Common() *ObjBase
	readBody(c *Cursor) error
	writeBody(c *Cursor) error
}

// ObjBase holds the fields every object header shares.
type ObjBase struct {
	Type  GeomType
	ID    int32
	Bound IntBound
}

func (b *ObjBase) Common() *ObjBase { return b }

func (b *ObjBase) compressed() bool { return b.Type.IsCompressed() }

// RawHeader is the header of an object whose type has no codec. It has no
// body.
type RawHeader struct {
	ObjBase
}

func (h *RawHeader) readBody(*Cursor) error  { return nil }
func (h *RawHeader) writeBody(*Cursor) error { return nil }

type PointHeader struct {
	ObjBase
	X, Y     int32
	SymbolID byte
}

func (h *PointHeader) readBody(c *Cursor) error {
	h.X, h.Y, _ = c.ReadIntCoord(h.compressed())
	h.SymbolID, _ = c.ReadByte()
	h.Bound = IntBound{h.X, h.Y, h.X, h.Y}
	return c.Err()
}

func (h *PointHeader) writeBody(c *Cursor) error {
	c.WriteIntCoord(h.X, h.Y, h.compressed())
	return c.WriteByte(h.SymbolID)
}

// FontPointHeader stores the symbol fields inline instead of referencing the
// symbol table.
type FontPointHeader struct {
	ObjBase
	SymbolNo  byte
	PointSize byte
	FontStyle int16
	Color     uint32
	Angle     int16 // tenths of a degree
	X, Y      int32
	FontID    byte
}

func (h *FontPointHeader) readBody(c *Cursor) error {
	h.SymbolNo, _ = c.ReadByte()
	h.PointSize, _ = c.ReadByte()
	h.FontStyle, _ = c.ReadInt16()
	h.Color = c.readRGB()
	c.Skip(3)
	h.Angle, _ = c.ReadInt16()
	h.X, h.Y, _ = c.ReadIntCoord(h.compressed())
	h.FontID, _ = c.ReadByte()
	h.Bound = IntBound{h.X, h.Y, h.X, h.Y}
	return c.Err()
}

func (h *FontPointHeader) writeBody(c *Cursor) error {
	c.WriteByte(h.SymbolNo)
	c.WriteByte(h.PointSize)
	c.WriteInt16(h.FontStyle)
	c.writeRGB(h.Color)
	c.WriteZeros(3)
	c.WriteInt16(h.Angle)
	c.WriteIntCoord(h.X, h.Y, h.compressed())
	return c.WriteByte(h.FontID)
}

type CustomPointHeader struct {
	ObjBase
	Unknown     byte
	CustomStyle byte
	X, Y        int32
	SymbolID    byte
	FontID      byte
}

func (h *CustomPointHeader) readBody(c *Cursor) error {
	h.Unknown, _ = c.ReadByte()
	h.CustomStyle, _ = c.ReadByte()
	h.X, h.Y, _ = c.ReadIntCoord(h.compressed())
	h.SymbolID, _ = c.ReadByte()
	h.FontID, _ = c.ReadByte()
	h.Bound = IntBound{h.X, h.Y, h.X, h.Y}
	return c.Err()
}

func (h *CustomPointHeader) writeBody(c *Cursor) error {
	c.WriteByte(h.Unknown)
	c.WriteByte(h.CustomStyle)
	c.WriteIntCoord(h.X, h.Y, h.compressed())
	c.WriteByte(h.SymbolID)
	return c.WriteByte(h.FontID)
}

// LineHeader is a two point line. Both ends are stored in the header.
type LineHeader struct {
	ObjBase
	X1, Y1, X2, Y2 int32
	PenID          byte
}

func (h *LineHeader) readBody(c *Cursor) error {
	h.X1, h.Y1, _ = c.ReadIntCoord(h.compressed())
	h.X2, h.Y2, _ = c.ReadIntCoord(h.compressed())
	h.PenID, _ = c.ReadByte()
	h.Bound = NewIntBound(h.X1, h.Y1, h.X2, h.Y2)
	return c.Err()
}

func (h *LineHeader) writeBody(c *Cursor) error {
	c.WriteIntCoord(h.X1, h.Y1, h.compressed())
	c.WriteIntCoord(h.X2, h.Y2, h.compressed())
	return c.WriteByte(h.PenID)
}

// PLineHeader is shared by polylines, multi-polylines and regions of every
// version. The coordinates live in the coordinate block at CoordBlockPtr.
type PLineHeader struct {
	ObjBase
	CoordBlockPtr   int32
	CoordDataSize   int32
	Smooth          bool
	NumLineSections int32
	LabelX, LabelY  int32
	ComprOrgX       int32
	ComprOrgY       int32
	PenID           byte
	BrushID         byte
}

const smoothFlag = math.MinInt32 // bit 31 of the data size

func (h *PLineHeader) readBody(c *Cursor) error {
	h.CoordBlockPtr, _ = c.ReadInt32()
	size, _ := c.ReadInt32()
	h.Smooth = size&smoothFlag != 0
	h.CoordDataSize = size &^ smoothFlag

	switch {
	case h.Type.Uncompressed() == GeomPLine:
		h.NumLineSections = 1
	case h.Type.Version() >= 800:
		h.NumLineSections, _ = c.ReadInt32()
		c.Skip(33)
	default:
		n, _ := c.ReadInt16()
		h.NumLineSections = int32(n)
	}
	if err := c.Err(); err != nil {
		return err
	}
	if h.NumLineSections < 0 {
		return fmt.Errorf("%w: negative section count %d", ErrCorrupt, h.NumLineSections)
	}

	h.readLabelAndBound(c)
	h.PenID, _ = c.ReadByte()
	if h.Type.isRegion() {
		h.BrushID, _ = c.ReadByte()
	}
	return c.Err()
}

func (h *PLineHeader) writeBody(c *Cursor) error {
	c.WriteInt32(h.CoordBlockPtr)
	size := h.CoordDataSize
	if h.Smooth {
		size |= smoothFlag
	}
	c.WriteInt32(size)

	switch {
	case h.Type.Uncompressed() == GeomPLine:
	case h.Type.Version() >= 800:
		c.WriteInt32(h.NumLineSections)
		c.WriteZeros(33)
	default:
		c.WriteInt16(int16(h.NumLineSections))
	}

	h.writeLabelAndBound(c)
	c.WriteByte(h.PenID)
	if h.Type.isRegion() {
		c.WriteByte(h.BrushID)
	}
	return c.Err()
}

// readLabelAndBound reads the label point, the compression origin and the
// MBR. Compressed objects store the label and MBR as deltas from their own
// origin, which follows the label.
func (h *PLineHeader) readLabelAndBound(c *Cursor) {
	h.LabelX, h.LabelY, h.ComprOrgX, h.ComprOrgY, h.Bound = readLabelOrgBound(c, h.compressed())
}

func (h *PLineHeader) writeLabelAndBound(c *Cursor) {
	writeLabelOrgBound(c, h.compressed(), h.LabelX, h.LabelY, h.ComprOrgX, h.ComprOrgY, h.Bound)
}

func readLabelOrgBound(c *Cursor, compressed bool) (lx, ly, ox, oy int32, b IntBound) {
	if !compressed {
		lx, _ = c.ReadInt32()
		ly, _ = c.ReadInt32()
		b = c.readIntBound(false)
		ox, oy = ComprOrigin(b)
		return
	}
	dx, _ := c.ReadInt16()
	dy, _ := c.ReadInt16()
	ox, _ = c.ReadInt32()
	oy, _ = c.ReadInt32()
	lx, ly = saturatedAdd(ox, dx), saturatedAdd(oy, dy)
	var d [4]int16
	for i := range d {
		d[i], _ = c.ReadInt16()
	}
	b = NewIntBound(saturatedAdd(ox, d[0]), saturatedAdd(oy, d[1]),
		saturatedAdd(ox, d[2]), saturatedAdd(oy, d[3]))
	return
}

func writeLabelOrgBound(c *Cursor, compressed bool, lx, ly, ox, oy int32, b IntBound) {
	if !compressed {
		c.WriteInt32(lx)
		c.WriteInt32(ly)
		c.writeIntBound(b, false)
		return
	}
	c.WriteInt16(int16(lx - ox))
	c.WriteInt16(int16(ly - oy))
	c.WriteInt32(ox)
	c.WriteInt32(oy)
	c.WriteInt16(int16(b.MinX - ox))
	c.WriteInt16(int16(b.MinY - oy))
	c.WriteInt16(int16(b.MaxX - ox))
	c.WriteInt16(int16(b.MaxY - oy))
}

// ArcHeader stores the arc's angles and the MBR of the full ellipse it is
// cut from. Bound is the MBR of the arc itself.
type ArcHeader struct {
	ObjBase
	StartAngle int16 // tenths of a degree
	EndAngle   int16
	Ellipse    IntBound
	PenID      byte
}

func (h *ArcHeader) readBody(c *Cursor) error {
	h.StartAngle, _ = c.ReadInt16()
	h.EndAngle, _ = c.ReadInt16()
	h.Ellipse = c.readIntBound(h.compressed())
	h.Bound = c.readIntBound(h.compressed())
	h.PenID, _ = c.ReadByte()
	return c.Err()
}

func (h *ArcHeader) writeBody(c *Cursor) error {
	c.WriteInt16(h.StartAngle)
	c.WriteInt16(h.EndAngle)
	c.writeIntBound(h.Ellipse, h.compressed())
	c.writeIntBound(h.Bound, h.compressed())
	return c.WriteByte(h.PenID)
}

// RectHeader is used by rectangles, rounded rectangles and ellipses. The
// corner size is only stored for rounded rectangles and is a diameter.
type RectHeader struct {
	ObjBase
	CornerWidth  int32
	CornerHeight int32
	PenID        byte
	BrushID      byte
}

func (h *RectHeader) readBody(c *Cursor) error {
	if h.Type.Uncompressed() == GeomRoundRect {
		h.CornerWidth = c.readInt(h.compressed())
		h.CornerHeight = c.readInt(h.compressed())
	}
	h.Bound = c.readIntBound(h.compressed())
	h.PenID, _ = c.ReadByte()
	h.BrushID, _ = c.ReadByte()
	return c.Err()
}

func (h *RectHeader) writeBody(c *Cursor) error {
	if h.Type.Uncompressed() == GeomRoundRect {
		c.writeInt(h.CornerWidth, h.compressed())
		c.writeInt(h.CornerHeight, h.compressed())
	}
	c.writeIntBound(h.Bound, h.compressed())
	c.WriteByte(h.PenID)
	return c.WriteByte(h.BrushID)
}

// TextHeader points at the text string in the coordinate block.
type TextHeader struct {
	ObjBase
	CoordBlockPtr int32
	StringLen     int32
	Justification int16
	Angle         int16 // tenths of a degree
	FontStyle     int16
	FGColor       uint32
	BGColor       uint32
	LineEndX      int32
	LineEndY      int32
	Height        int32
	FontID        byte
	PenID         byte
}

func (h *TextHeader) readBody(c *Cursor) error {
	h.CoordBlockPtr, _ = c.ReadInt32()
	n, _ := c.ReadInt16()
	h.StringLen = int32(n)
	h.Justification, _ = c.ReadInt16()
	h.Angle, _ = c.ReadInt16()
	h.FontStyle, _ = c.ReadInt16()
	h.FGColor = c.readRGB()
	h.BGColor = c.readRGB()
	h.LineEndX, h.LineEndY, _ = c.ReadIntCoord(h.compressed())
	h.Height = c.readInt(h.compressed())
	h.FontID, _ = c.ReadByte()
	h.Bound = c.readIntBound(h.compressed())
	h.PenID, _ = c.ReadByte()
	if err := c.Err(); err != nil {
		return err
	}
	if h.StringLen < 0 {
		return fmt.Errorf("%w: negative text length %d", ErrCorrupt, h.StringLen)
	}
	return nil
}

func (h *TextHeader) writeBody(c *Cursor) error {
	c.WriteInt32(h.CoordBlockPtr)
	c.WriteInt16(int16(h.StringLen))
	c.WriteInt16(h.Justification)
	c.WriteInt16(h.Angle)
	c.WriteInt16(h.FontStyle)
	c.writeRGB(h.FGColor)
	c.writeRGB(h.BGColor)
	c.WriteIntCoord(h.LineEndX, h.LineEndY, h.compressed())
	c.writeInt(h.Height, h.compressed())
	c.WriteByte(h.FontID)
	c.writeIntBound(h.Bound, h.compressed())
	return c.WriteByte(h.PenID)
}

type MultiPointHeader struct {
	ObjBase
	CoordBlockPtr  int32
	NumPoints      int32
	SymbolID       byte
	LabelX, LabelY int32
	ComprOrgX      int32
	ComprOrgY      int32
}

func (h *MultiPointHeader) pointSize() int32 {
	if h.compressed() {
		return 4
	}
	return 8
}

// CoordDataSize returns the size of the point list in the coordinate block.
func (h *MultiPointHeader) CoordDataSize() int32 { return h.NumPoints * h.pointSize() }

func (h *MultiPointHeader) readBody(c *Cursor) error {
	h.CoordBlockPtr, _ = c.ReadInt32()
	h.NumPoints, _ = c.ReadInt32()
	if err := c.Err(); err != nil {
		return err
	}
	if h.NumPoints < 0 || h.NumPoints > math.MaxInt32/h.pointSize() {
		return fmt.Errorf("%w: invalid point count %d", ErrCorrupt, h.NumPoints)
	}
	pad := 15
	if h.Type.Version() >= 800 {
		pad += 33
	}
	c.Skip(pad)
	h.SymbolID, _ = c.ReadByte()
	c.Skip(1)
	h.LabelX, h.LabelY, h.ComprOrgX, h.ComprOrgY, h.Bound = readLabelOrgBound(c, h.compressed())
	return c.Err()
}

func (h *MultiPointHeader) writeBody(c *Cursor) error {
	c.WriteInt32(h.CoordBlockPtr)
	c.WriteInt32(h.NumPoints)
	pad := 15
	if h.Type.Version() >= 800 {
		pad += 33
	}
	c.WriteZeros(pad)
	c.WriteByte(h.SymbolID)
	c.WriteByte(0)
	writeLabelOrgBound(c, h.compressed(), h.LabelX, h.LabelY, h.ComprOrgX, h.ComprOrgY, h.Bound)
	return c.Err()
}

// CollectionHeader describes up to one region, one polyline and one
// multipoint stored back to back in the coordinate block. The region and
// polyline data sizes exclude the 2 bytes per section the file adds to them.
type CollectionHeader struct {
	ObjBase
	CoordBlockPtr    int32
	CoordDataSize    int32
	NumMultiPoints   int32
	RegionDataSize   int32
	PolylineDataSize int32
	NumRegSections   int32
	NumPLineSections int32
	MPointSymbolID   byte
	RegionPenID      byte
	RegionBrushID    byte
	PolylinePenID    byte
	ComprOrgX        int32
	ComprOrgY        int32
}

// collectionMiniHeaderSize returns the size of the label and MBR block that
// precedes each part of a collection in the coordinate block.
func collectionMiniHeaderSize(compressed, v800, sectioned bool) int32 {
	n := int32(24)
	if compressed {
		n = 12
	}
	if v800 && sectioned {
		n += 4
	}
	return n
}

func (h *CollectionHeader) computeCoordDataSize() {
	compr := h.compressed()
	v800 := h.Type.Version() >= 800
	var size int32
	if h.NumRegSections > 0 {
		size += collectionMiniHeaderSize(compr, v800, true) + h.RegionDataSize
	}
	if h.NumPLineSections > 0 {
		size += collectionMiniHeaderSize(compr, v800, true) + h.PolylineDataSize
	}
	if h.NumMultiPoints > 0 {
		pt := int32(8)
		if compr {
			pt = 4
		}
		size += collectionMiniHeaderSize(compr, v800, false) + h.NumMultiPoints*pt
	}
	h.CoordDataSize = size
}

func (h *CollectionHeader) readBody(c *Cursor) error {
	v800 := h.Type.Version() >= 800
	h.CoordBlockPtr, _ = c.ReadInt32()
	h.NumMultiPoints, _ = c.ReadInt32()
	h.RegionDataSize, _ = c.ReadInt32()
	h.PolylineDataSize, _ = c.ReadInt32()
	if v800 {
		h.NumRegSections, _ = c.ReadInt32()
		h.NumPLineSections, _ = c.ReadInt32()
	} else {
		r, _ := c.ReadInt16()
		p, _ := c.ReadInt16()
		h.NumRegSections, h.NumPLineSections = int32(r), int32(p)
	}
	if err := c.Err(); err != nil {
		return err
	}
	if h.NumMultiPoints < 0 || h.NumMultiPoints > math.MaxInt32/8 ||
		h.NumRegSections < 0 || h.NumPLineSections < 0 ||
		h.NumRegSections > math.MaxInt32/2 || h.NumPLineSections > math.MaxInt32/2 ||
		h.RegionDataSize < 2*h.NumRegSections || h.PolylineDataSize < 2*h.NumPLineSections {
		return fmt.Errorf("%w: invalid collection counts (points %d, region %d/%d, polyline %d/%d)",
			ErrCorrupt, h.NumMultiPoints, h.NumRegSections, h.RegionDataSize,
			h.NumPLineSections, h.PolylineDataSize)
	}
	h.RegionDataSize -= 2 * h.NumRegSections
	h.PolylineDataSize -= 2 * h.NumPLineSections

	if v800 {
		b, _ := c.ReadByte()
		if c.Err() == nil && b != 4 {
			return fmt.Errorf("%w: unexpected v800 collection marker %d", ErrCorrupt, b)
		}
	}
	c.Skip(15)
	h.MPointSymbolID, _ = c.ReadByte()
	c.Skip(1)
	h.RegionPenID, _ = c.ReadByte()
	h.PolylinePenID, _ = c.ReadByte()
	h.RegionBrushID, _ = c.ReadByte()

	if h.compressed() {
		h.ComprOrgX, _ = c.ReadInt32()
		h.ComprOrgY, _ = c.ReadInt32()
		var d [4]int16
		for i := range d {
			d[i], _ = c.ReadInt16()
		}
		h.Bound = NewIntBound(saturatedAdd(h.ComprOrgX, d[0]), saturatedAdd(h.ComprOrgY, d[1]),
			saturatedAdd(h.ComprOrgX, d[2]), saturatedAdd(h.ComprOrgY, d[3]))
	} else {
		h.Bound = c.readIntBound(false)
		h.ComprOrgX, h.ComprOrgY = ComprOrigin(h.Bound)
	}
	if err := c.Err(); err != nil {
		return err
	}
	h.computeCoordDataSize()
	return nil
}

func (h *CollectionHeader) writeBody(c *Cursor) error {
	v800 := h.Type.Version() >= 800
	c.WriteInt32(h.CoordBlockPtr)
	c.WriteInt32(h.NumMultiPoints)
	c.WriteInt32(h.RegionDataSize + 2*h.NumRegSections)
	c.WriteInt32(h.PolylineDataSize + 2*h.NumPLineSections)
	if v800 {
		c.WriteInt32(h.NumRegSections)
		c.WriteInt32(h.NumPLineSections)
		c.WriteByte(4)
	} else {
		c.WriteInt16(int16(h.NumRegSections))
		c.WriteInt16(int16(h.NumPLineSections))
	}
	c.WriteZeros(15)
	c.WriteByte(h.MPointSymbolID)
	c.WriteByte(0)
	c.WriteByte(h.RegionPenID)
	c.WriteByte(h.PolylinePenID)
	c.WriteByte(h.RegionBrushID)

	if h.compressed() {
		c.WriteInt32(h.ComprOrgX)
		c.WriteInt32(h.ComprOrgY)
		c.WriteInt16(int16(h.Bound.MinX - h.ComprOrgX))
		c.WriteInt16(int16(h.Bound.MinY - h.ComprOrgY))
		c.WriteInt16(int16(h.Bound.MaxX - h.ComprOrgX))
		c.WriteInt16(int16(h.Bound.MaxY - h.ComprOrgY))
	} else {
		c.writeIntBound(h.Bound, false)
	}
	return c.Err()
}

// NewObjHeader returns an empty header of the kind used by type t. Types
// without a codec get a *RawHeader.
func NewObjHeader(t GeomType, id int32) ObjHeader {
	base := ObjBase{Type: t, ID: id}
	switch u := t.Uncompressed(); {
	case u == GeomSymbol:
		return &PointHeader{ObjBase: base}
	case u == GeomFontSymbol:
		return &FontPointHeader{ObjBase: base}
	case u == GeomCustomSymbol:
		return &CustomPointHeader{ObjBase: base}
	case u == GeomLine:
		return &LineHeader{ObjBase: base}
	case t.isPLineFamily():
		return &PLineHeader{ObjBase: base}
	case u == GeomArc:
		return &ArcHeader{ObjBase: base}
	case u.oneOf(GeomRect, GeomRoundRect, GeomEllipse):
		return &RectHeader{ObjBase: base}
	case u == GeomText:
		return &TextHeader{ObjBase: base}
	case t.isMultiPoint():
		return &MultiPointHeader{ObjBase: base}
	case t.isCollection():
		return &CollectionHeader{ObjBase: base}
	}
	return &RawHeader{ObjBase: base}
}

// ReadObjHeader reads an object header: the type byte, the object id and
// the type specific body.
func ReadObjHeader(c *Cursor) (ObjHeader, error) {
	t, _ := c.ReadByte()
	id, err := c.ReadInt32()
	if err != nil {
		return nil, err
	}
	h := NewObjHeader(GeomType(t), id)
	if err := h.readBody(c); err != nil {
		return nil, fmt.Errorf("read %s header of object %d: %w", GeomType(t), id, err)
	}
	return h, nil
}

// WriteObjHeader writes h in the layout ReadObjHeader expects.
func WriteObjHeader(c *Cursor, h ObjHeader) error {
	b := h.Common()
	c.WriteByte(byte(b.Type))
	c.WriteInt32(b.ID)
	if err := h.writeBody(c); err != nil {
		return fmt.Errorf("write %s header of object %d: %w", b.Type, b.ID, err)
	}
	return nil
}
