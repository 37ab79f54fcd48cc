// Package mapfile is an in-memory MapInfo map file. It implements
// mitab.Storage: the integer coordinate system, the object and coordinate
// blocks, and the reference counted pen, brush, font and symbol tables.
//
// Nothing is persisted; a File lives as long as the program holds it.
package mapfile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Common errors returned by this package.
var (
	ErrNotFound       = errors.New("mapfile: object not found")
	ErrBadIndex       = errors.New("mapfile: tool table index out of range")
	ErrUnknownCharset = errors.New("mapfile: unknown charset")
)

// Options configures a new File.
type Options struct {
	Bounds   orb.Bound // Coordinate system bounds
	Quadrant int       // Coordinate origin quadrant, 1-4 (0 behaves as 3)
	Charset  string    // MapInfo charset of stored strings
}

// DefaultOptions returns options for a longitude/latitude file with the
// origin in quadrant 1 and Windows Latin 1 strings.
func DefaultOptions() *Options {
	return &Options{
		Bounds:   orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}},
		Quadrant: 1,
		Charset:  "WindowsLatin1",
	}
}

var charsets = map[string]encoding.Encoding{
	"windowslatin1":        charmap.Windows1252,
	"windowscentraleurope": charmap.Windows1250,
	"windowscyrillic":      charmap.Windows1251,
	"windowsgreek":         charmap.Windows1253,
	"windowsturkish":       charmap.Windows1254,
	"iso8859_1":            charmap.ISO8859_1,
	"iso8859_2":            charmap.ISO8859_2,
	"neutral":              nil,
	"utf-8":                nil,
	"":                     nil,
}

// Charset returns the encoding of a MapInfo charset name. A nil encoding
// means strings are stored as they are.
func Charset(name string) (encoding.Encoding, error) {
	enc, ok := charsets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	return enc, nil
}
