package mitab

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
)

// dumpWriter keeps the first write error so that dumps can be written
// without checking every line.
type dumpWriter struct {
	w   io.Writer
	err error
}

func newDumpWriter(w io.Writer) *dumpWriter { return &dumpWriter{w: w} }

func (d *dumpWriter) Write(p []byte) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	n, err := d.w.Write(p)
	d.err = err
	return n, err
}

func (d *dumpWriter) printf(format string, args ...any) {
	fmt.Fprintf(d, format, args...)
}

func (d *dumpWriter) point(p orb.Point) {
	d.printf("%.15g %.15g\n", p[0], p[1])
}

func (d *dumpWriter) points(pts []orb.Point) {
	for _, p := range pts {
		d.point(p)
	}
}

// indexByte returns the table index a feature already holds, for rewriting
// a header without touching the tool tables.
func indexByte(i int) byte {
	if i < 0 {
		return 0
	}
	return byte(i)
}
