package mitab

import (
	"fmt"

	"golang.org/x/text/encoding"
)

// Storage is the map file a feature is read from or written to. It owns
// the integer coordinate system, the coordinate blocks and the shared pen,
// brush, font and symbol tables. Tool table entries are reference counted
// by the storage; features only hold indices into them.
type Storage interface {
	// ToFixed converts world coordinates to the file's integer space.
	ToFixed(x, y float64) (int32, int32)
	// ToWorld converts integer coordinates to world coordinates.
	ToWorld(x, y int32) (float64, float64)
	// ToFixedDist converts a world distance to integer units.
	ToFixedDist(dx, dy float64) (int32, int32)
	// ToWorldDist converts an integer distance to world units.
	ToWorldDist(dx, dy int32) (float64, float64)
	// Quadrant returns the coordinate origin quadrant (1-4, 0 means 3).
	Quadrant() int

	// CoordCursor returns a cursor positioned at addr in the coordinate
	// blocks, for reading.
	CoordCursor(addr int32) (*Cursor, error)
	// CurCoordCursor returns the cursor new coordinate data is appended at.
	CurCoordCursor() *Cursor

	ReadPenDef(index int, def *PenDef) error
	WritePenDef(def *PenDef) (int, error)
	ReadBrushDef(index int, def *BrushDef) error
	WriteBrushDef(def *BrushDef) (int, error)
	ReadFontDef(index int, def *FontDef) error
	WriteFontDef(def *FontDef) (int, error)
	ReadSymbolDef(index int, def *SymbolDef) error
	WriteSymbolDef(def *SymbolDef) (int, error)

	// FileSize returns the total size of the file in bytes. Counts read
	// from object headers are checked against it before use.
	FileSize() int64
	// Encoding returns the charset of strings stored in the file, or nil
	// when strings are stored as UTF-8.
	Encoding() encoding.Encoding
}

// checkCount rejects a count read from the file when it is negative or
// when count*unit bytes could not fit in the file.
func checkCount(s Storage, count, unit int64, what string) error {
	if count < 0 {
		return fmt.Errorf("%w: negative %s (%d)", ErrCorrupt, what, count)
	}
	if s != nil && count*unit > s.FileSize() {
		return fmt.Errorf("%w: %s %d exceeds file size %d", ErrCorrupt, what, count, s.FileSize())
	}
	return nil
}

// coordCursor returns cur when it is set, or a cursor at addr otherwise.
func coordCursor(s Storage, cur *Cursor, addr int32) (*Cursor, error) {
	if cur != nil {
		return cur, nil
	}
	return s.CoordCursor(addr)
}

// writeCursor returns cur when it is set, or the storage's append cursor.
func writeCursor(s Storage, cur *Cursor) *Cursor {
	if cur != nil {
		return cur
	}
	return s.CurCoordCursor()
}

func decodeString(s Storage, b []byte) (string, error) {
	enc := s.Encoding()
	if enc == nil {
		return string(b), nil
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("mitab: decode string: %w", err)
	}
	return string(out), nil
}

func encodeString(s Storage, str string) ([]byte, error) {
	enc := s.Encoding()
	if enc == nil {
		return []byte(str), nil
	}
	out, err := enc.NewEncoder().Bytes([]byte(str))
	if err != nil {
		return nil, fmt.Errorf("mitab: encode string %q: %w", str, err)
	}
	return out, nil
}
