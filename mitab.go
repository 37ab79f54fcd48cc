// Package mitab provides MapInfo TAB/MAP binary object support for the orb
// geometry library. It encodes orb.Geometry values into map objects (points,
// polylines, regions, rectangles, ellipses, arcs, text, multipoints and
// collections) and decodes them back, quantizing coordinates into the
// integer space of the backing map file and resolving pen, brush, font and
// symbol definitions through the file's shared tool tables.
package mitab

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
)

// Common errors returned by this package.
var (
	ErrNilGeometry         = errors.New("mitab: nil geometry")
	ErrInvalidGeometry     = errors.New("mitab: invalid geometry for object type")
	ErrUnsupportedGeometry = errors.New("mitab: unsupported geometry type")
	ErrUnexpectedType      = errors.New("mitab: unexpected object type")
	ErrCorrupt             = errors.New("mitab: corrupt object data")
	ErrTypeMismatch        = errors.New("mitab: object header type does not match validated type")
	ErrInvalidStyle        = errors.New("mitab: invalid style string")
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger sets the logger used for codec diagnostics such as geometry
// type mismatches and unsupported object types. By default nothing is
// logged. Pass nil to restore the silent default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current diagnostics logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
