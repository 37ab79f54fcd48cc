package mapfile

import (
	"fmt"
	"io"
)

// memBlock is a growable byte slice implementing mitab.Block.
type memBlock struct {
	buf []byte
}

func (b *memBlock) Size() int64 { return int64(len(b.buf)) }

func (b *memBlock) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("mapfile: read at negative offset %d", off)
	}
	if off >= int64(len(b.buf)) {
		return 0, io.EOF
	}
	n := copy(p, b.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *memBlock) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("mapfile: write at negative offset %d", off)
	}
	if end := off + int64(len(p)); end > int64(len(b.buf)) {
		if end > int64(cap(b.buf)) {
			grown := make([]byte, end, max(end, 2*int64(cap(b.buf))))
			copy(grown, b.buf)
			b.buf = grown
		} else {
			b.buf = b.buf[:end]
		}
	}
	return copy(b.buf[off:], p), nil
}

// Bytes returns the block contents.
func (b *memBlock) Bytes() []byte { return b.buf }
