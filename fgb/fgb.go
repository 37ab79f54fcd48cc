// Package fgb moves map features in and out of FlatGeobuf. Export writes
// each feature's geometry and attributes together with its style string and
// object type, and Import uses those columns to rebuild features of the same
// kind and look.
package fgb

import (
	"errors"
)

// Common errors returned by this package.
var (
	ErrNilGeometry     = errors.New("fgb: nil geometry")
	ErrUnsupportedType = errors.New("fgb: unsupported geometry type")
	ErrInvalidData     = errors.New("fgb: invalid data")
	ErrNoIndex         = errors.New("fgb: file has no spatial index")
	ErrInvalidColumn   = errors.New("fgb: invalid column")
)

// Columns Export adds to every layer.
const (
	StyleColumn = "OGR_STYLE"    // feature style string
	TypeColumn  = "MAPINFO_TYPE" // map object type code
	IDColumn    = "MAPINFO_ID"   // 1-based position in the exported slice
)

// CRS is a coordinate reference system stored in the layer header.
type CRS struct {
	Code        int    // EPSG code
	Name        string
	Description string
	WKT         string // stored as the description when Description is empty
}

// WGS84 returns EPSG:4326.
func WGS84() *CRS {
	return &CRS{
		Code: 4326,
		Name: "WGS 84",
	}
}

// Options configures Export.
type Options struct {
	Name         string // layer name
	Description  string
	IncludeIndex bool // write the packed R-tree; Import needs it
	CRS          *CRS
}

// DefaultOptions returns options that write an indexed WGS84 layer.
func DefaultOptions() *Options {
	return &Options{
		IncludeIndex: true,
		CRS:          WGS84(),
	}
}

// ColumnInfo describes one attribute column.
type ColumnInfo struct {
	Name        string
	Type        string // "Bool", "Int", "Long", "Double", "String", "Json", ...
	Title       string
	Description string
	Nullable    bool
}

// Header is the layer metadata of a FlatGeobuf file.
type Header struct {
	Name          string
	Description   string
	GeometryType  string // "Point", "Polygon", "Unknown", ...
	FeaturesCount uint64
	Envelope      [4]float64 // minX, minY, maxX, maxY
	CRS           *CRS
	HasIndex      bool
	Columns       []ColumnInfo
}

// Column returns the column named name.
func (h *Header) Column(name string) (ColumnInfo, bool) {
	for _, c := range h.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnInfo{}, false
}
