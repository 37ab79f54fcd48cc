package mitab

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Block is random-access byte storage that a Cursor reads from and writes
// to. Writes past Size grow the block.
type Block interface {
	io.ReaderAt
	io.WriterAt
	Size() int64
}

// Cursor reads and writes little-endian values at a moving address inside a
// Block. Compressed coordinates are read and written as 16-bit deltas from
// the cursor's origin.
//
// A Cursor keeps the first error it encounters; every later call is a no-op
// and the error is returned by Err.
type Cursor struct {
	blk          Block
	addr         int64
	featureStart int64
	orgX, orgY   int32
	err          error
	scratch      [4]byte
}

// NewCursor returns a cursor positioned at addr in b.
func NewCursor(b Block, addr int64) *Cursor {
	return &Cursor{blk: b, addr: addr, featureStart: addr}
}

// Err returns the first error encountered by the cursor.
func (c *Cursor) Err() error { return c.err }

// Address returns the current position.
func (c *Cursor) Address() int64 { return c.addr }

// Seek moves the cursor to addr.
func (c *Cursor) Seek(addr int64) error {
	if c.err != nil {
		return c.err
	}
	if addr < 0 {
		c.err = fmt.Errorf("%w: seek to negative address %d", ErrCorrupt, addr)
		return c.err
	}
	c.addr = addr
	return nil
}

// StartNewFeature marks the current position as the start of a feature's
// data so that FeatureDataSize can report what was written since.
func (c *Cursor) StartNewFeature() { c.featureStart = c.addr }

// FeatureDataSize returns the number of bytes between the last
// StartNewFeature call and the current position.
func (c *Cursor) FeatureDataSize() int32 { return int32(c.addr - c.featureStart) }

// SetComprOrigin sets the origin that compressed coordinates are relative to.
func (c *Cursor) SetComprOrigin(x, y int32) {
	c.orgX, c.orgY = x, y
}

// ComprOrigin returns the origin of compressed coordinates.
func (c *Cursor) ComprOrigin() (x, y int32) { return c.orgX, c.orgY }

func (c *Cursor) read(p []byte) {
	if c.err != nil {
		return
	}
	if c.addr+int64(len(p)) > c.blk.Size() {
		c.err = fmt.Errorf("mitab: read %d bytes at %d: %w", len(p), c.addr, io.ErrUnexpectedEOF)
		return
	}
	n, err := c.blk.ReadAt(p, c.addr)
	if err != nil && !(errors.Is(err, io.EOF) && n == len(p)) {
		c.err = fmt.Errorf("mitab: read at %d: %w", c.addr, err)
		return
	}
	c.addr += int64(n)
}

func (c *Cursor) write(p []byte) {
	if c.err != nil {
		return
	}
	n, err := c.blk.WriteAt(p, c.addr)
	if err != nil {
		c.err = fmt.Errorf("mitab: write at %d: %w", c.addr, err)
		return
	}
	c.addr += int64(n)
}

// ReadByte reads one byte.
func (c *Cursor) ReadByte() (byte, error) {
	b := c.scratch[:1]
	c.read(b)
	if c.err != nil {
		return 0, c.err
	}
	return b[0], nil
}

// ReadInt16 reads a little-endian int16.
func (c *Cursor) ReadInt16() (int16, error) {
	b := c.scratch[:2]
	c.read(b)
	if c.err != nil {
		return 0, c.err
	}
	return int16(binary.LittleEndian.Uint16(b)), nil
}

// ReadInt32 reads a little-endian int32.
func (c *Cursor) ReadInt32() (int32, error) {
	b := c.scratch[:4]
	c.read(b)
	if c.err != nil {
		return 0, c.err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// ReadBytes reads n bytes.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	if n < 0 || int64(n) > c.blk.Size()-c.addr {
		c.err = fmt.Errorf("%w: cannot read %d bytes at %d", ErrCorrupt, n, c.addr)
		return nil, c.err
	}
	p := make([]byte, n)
	c.read(p)
	if c.err != nil {
		return nil, c.err
	}
	return p, nil
}

// WriteByte writes one byte.
func (c *Cursor) WriteByte(v byte) error {
	c.scratch[0] = v
	c.write(c.scratch[:1])
	return c.err
}

// WriteInt16 writes a little-endian int16.
func (c *Cursor) WriteInt16(v int16) error {
	binary.LittleEndian.PutUint16(c.scratch[:2], uint16(v))
	c.write(c.scratch[:2])
	return c.err
}

// WriteInt32 writes a little-endian int32.
func (c *Cursor) WriteInt32(v int32) error {
	binary.LittleEndian.PutUint32(c.scratch[:4], uint32(v))
	c.write(c.scratch[:4])
	return c.err
}

// WriteBytes writes p.
func (c *Cursor) WriteBytes(p []byte) error {
	c.write(p)
	return c.err
}

// WriteZeros writes n zero bytes.
func (c *Cursor) WriteZeros(n int) error {
	if n > 0 {
		c.write(make([]byte, n))
	}
	return c.err
}

// Skip advances the cursor by n bytes without reading them.
func (c *Cursor) Skip(n int) error {
	if c.err != nil {
		return c.err
	}
	if c.addr+int64(n) > c.blk.Size() {
		c.err = fmt.Errorf("mitab: skip %d bytes at %d: %w", n, c.addr, io.ErrUnexpectedEOF)
		return c.err
	}
	c.addr += int64(n)
	return nil
}

// ReadIntCoord reads an integer coordinate pair, either as int16 deltas
// from the origin or as absolute int32 values.
func (c *Cursor) ReadIntCoord(compressed bool) (x, y int32, err error) {
	if compressed {
		dx, _ := c.ReadInt16()
		dy, _ := c.ReadInt16()
		if c.err != nil {
			return 0, 0, c.err
		}
		return saturatedAdd(c.orgX, dx), saturatedAdd(c.orgY, dy), nil
	}
	x, _ = c.ReadInt32()
	y, _ = c.ReadInt32()
	return x, y, c.err
}

// WriteIntCoord writes an integer coordinate pair, as int16 deltas from the
// origin when compressed.
func (c *Cursor) WriteIntCoord(x, y int32, compressed bool) error {
	if compressed {
		c.WriteInt16(int16(x - c.orgX))
		return c.WriteInt16(int16(y - c.orgY))
	}
	c.WriteInt32(x)
	return c.WriteInt32(y)
}

// readIntBound reads a min/max coordinate pair.
func (c *Cursor) readIntBound(compressed bool) IntBound {
	x1, y1, _ := c.ReadIntCoord(compressed)
	x2, y2, _ := c.ReadIntCoord(compressed)
	return NewIntBound(x1, y1, x2, y2)
}

func (c *Cursor) writeIntBound(b IntBound, compressed bool) error {
	c.WriteIntCoord(b.MinX, b.MinY, compressed)
	return c.WriteIntCoord(b.MaxX, b.MaxY, compressed)
}

// readInt reads an int16 when short is set, an int32 otherwise.
func (c *Cursor) readInt(short bool) int32 {
	if short {
		v, _ := c.ReadInt16()
		return int32(v)
	}
	v, _ := c.ReadInt32()
	return v
}

func (c *Cursor) writeInt(v int32, short bool) error {
	if short {
		return c.WriteInt16(int16(v))
	}
	return c.WriteInt32(v)
}

func (c *Cursor) readRGB() uint32 {
	var rgb [3]byte
	c.read(rgb[:])
	return uint32(rgb[0])<<16 | uint32(rgb[1])<<8 | uint32(rgb[2])
}

func (c *Cursor) writeRGB(v uint32) error {
	c.write([]byte{byte(v >> 16), byte(v >> 8), byte(v)})
	return c.err
}
