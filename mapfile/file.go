package mapfile

import (
	"fmt"
	"iter"
	"log/slog"
	"maps"

	"github.com/paulmach/orb/geojson"
	"golang.org/x/text/encoding"

	mitab "github.com/tingold/orb-mitab"
)

// headerSize is the size of the map file header block that precedes the
// object and coordinate data.
const headerSize = 512

type object struct {
	addr       int64
	orgX, orgY int32
	typ        mitab.GeomType
	props      geojson.Properties
}

// File is an in-memory map file. Objects are appended with Append and
// read back by id; ids start at 1.
type File struct {
	header *Header
	enc    encoding.Encoding

	objs    *memBlock
	coords  *memBlock
	objects []object

	pens    *toolTable[mitab.PenDef]
	brushes *toolTable[mitab.BrushDef]
	fonts   *toolTable[mitab.FontDef]
	symbols *toolTable[mitab.SymbolDef]
}

var _ mitab.Storage = (*File)(nil)

// New returns an empty file. A nil opts uses DefaultOptions.
func New(opts *Options) (*File, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	enc, err := Charset(opts.Charset)
	if err != nil {
		return nil, err
	}
	return &File{
		header:  NewHeader(opts.Bounds, opts.Quadrant),
		enc:     enc,
		objs:    &memBlock{},
		coords:  &memBlock{},
		pens:    newToolTable("pen", mitab.PenDef.Equal, mitab.DefaultPenDef),
		brushes: newToolTable("brush", mitab.BrushDef.Equal, mitab.DefaultBrushDef),
		fonts:   newToolTable("font", mitab.FontDef.Equal, mitab.DefaultFontDef),
		symbols: newToolTable("symbol", mitab.SymbolDef.Equal, mitab.DefaultSymbolDef),
	}, nil
}

// Header returns the file's coordinate transform.
func (f *File) Header() *Header { return f.header }

func (f *File) ToFixed(x, y float64) (int32, int32)         { return f.header.ToFixed(x, y) }
func (f *File) ToWorld(x, y int32) (float64, float64)       { return f.header.ToWorld(x, y) }
func (f *File) ToFixedDist(dx, dy float64) (int32, int32)   { return f.header.ToFixedDist(dx, dy) }
func (f *File) ToWorldDist(dx, dy int32) (float64, float64) { return f.header.ToWorldDist(dx, dy) }
func (f *File) Quadrant() int                               { return f.header.Quadrant }
func (f *File) Encoding() encoding.Encoding                 { return f.enc }

// FileSize returns the header size plus the object and coordinate data.
func (f *File) FileSize() int64 {
	return headerSize + f.objs.Size() + f.coords.Size()
}

// CoordCursor returns a cursor at addr in the coordinate data.
func (f *File) CoordCursor(addr int32) (*mitab.Cursor, error) {
	if addr < 0 || int64(addr) > f.coords.Size() {
		return nil, fmt.Errorf("%w: coordinate address %d outside [0, %d]",
			mitab.ErrCorrupt, addr, f.coords.Size())
	}
	return mitab.NewCursor(f.coords, int64(addr)), nil
}

// CurCoordCursor returns a cursor at the end of the coordinate data.
func (f *File) CurCoordCursor() *mitab.Cursor {
	return mitab.NewCursor(f.coords, f.coords.Size())
}

// Len returns the number of objects in the file.
func (f *File) Len() int { return len(f.objects) }

// Append validates feat, writes its coordinate data and object header, and
// returns the id it was stored under. A feature whose geometry does not
// fit its kind is rejected with mitab.ErrInvalidGeometry.
func (f *File) Append(feat mitab.Feature) (int32, error) {
	if feat == nil {
		return 0, mitab.ErrNilGeometry
	}
	id := int32(len(f.objects) + 1)
	env := feat.Base()
	env.ID = id

	t := feat.ValidateType(f)
	if _, none := feat.(*mitab.NoGeometry); t == mitab.GeomNone && !none {
		return 0, fmt.Errorf("%w: %s", mitab.ErrInvalidGeometry, describe(feat))
	}

	hdr := mitab.NewObjHeader(t, id)
	if _, err := feat.WriteGeometry(f, hdr, false, nil); err != nil {
		return 0, fmt.Errorf("mapfile: write object %d: %w", id, err)
	}

	obj := object{addr: f.objs.Size(), typ: t, props: maps.Clone(env.Properties)}
	obj.orgX, obj.orgY = env.ComprOrigin()
	c := mitab.NewCursor(f.objs, obj.addr)
	c.SetComprOrigin(obj.orgX, obj.orgY)
	if err := mitab.WriteObjHeader(c, hdr); err != nil {
		return 0, fmt.Errorf("mapfile: %w", err)
	}
	f.objects = append(f.objects, obj)

	mitab.Logger().Debug("object appended",
		slog.Int("id", int(id)),
		slog.String("type", t.String()),
		slog.Int64("size", f.FileSize()))
	return id, nil
}

func describe(feat mitab.Feature) string {
	if g := feat.Base().Geometry(); g != nil {
		return fmt.Sprintf("%T with %s geometry", feat, g.GeoJSONType())
	}
	return fmt.Sprintf("%T without geometry", feat)
}

// Feature reads object id with its drawing tools.
func (f *File) Feature(id int32) (mitab.Feature, error) {
	return f.ReadFeature(id, false)
}

// ReadFeature reads object id. When coordOnly is set the drawing tools are
// not resolved and the tool tables are not consulted.
func (f *File) ReadFeature(id int32, coordOnly bool) (mitab.Feature, error) {
	if id < 1 || int(id) > len(f.objects) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	obj := f.objects[id-1]

	c := mitab.NewCursor(f.objs, obj.addr)
	c.SetComprOrigin(obj.orgX, obj.orgY)
	hdr, err := mitab.ReadObjHeader(c)
	if err != nil {
		return nil, fmt.Errorf("mapfile: object %d: %w", id, err)
	}

	feat := mitab.NewFeature(hdr.Common().Type)
	if _, err := feat.ReadGeometry(f, hdr, coordOnly, nil); err != nil {
		return nil, fmt.Errorf("mapfile: read object %d: %w", id, err)
	}
	feat.Base().ID = id
	feat.Base().Properties = maps.Clone(obj.props)
	return feat, nil
}

// All iterates over every object in id order. Iteration stops after the
// first error.
func (f *File) All() iter.Seq2[mitab.Feature, error] {
	return func(yield func(mitab.Feature, error) bool) {
		for i := range f.objects {
			feat, err := f.Feature(int32(i + 1))
			if !yield(feat, err) || err != nil {
				return
			}
		}
	}
}

// ReadAll returns every object in id order.
func (f *File) ReadAll() ([]mitab.Feature, error) {
	out := make([]mitab.Feature, 0, len(f.objects))
	for feat, err := range f.All() {
		if err != nil {
			return out, err
		}
		out = append(out, feat)
	}
	return out, nil
}

// Stats summarizes the contents of a file.
type Stats struct {
	Objects     int
	ByType      map[mitab.GeomType]int
	Pens        int
	Brushes     int
	Fonts       int
	Symbols     int
	ObjectBytes int64
	CoordBytes  int64
}

// Stats returns per-type object counts and tool table sizes.
func (f *File) Stats() Stats {
	st := Stats{
		Objects:     len(f.objects),
		ByType:      make(map[mitab.GeomType]int),
		Pens:        f.pens.len(),
		Brushes:     f.brushes.len(),
		Fonts:       f.fonts.len(),
		Symbols:     f.symbols.len(),
		ObjectBytes: f.objs.Size(),
		CoordBytes:  f.coords.Size(),
	}
	for _, o := range f.objects {
		st.ByType[o.typ]++
	}
	return st
}
