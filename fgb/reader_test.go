package fgb

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"

	mitab "github.com/tingold/orb-mitab"
)

func TestNewReaderFromData_Invalid(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("not a flatgeobuf")} {
		if _, err := NewReaderFromData(data); !errors.Is(err, ErrInvalidData) {
			t.Errorf("NewReaderFromData(%q): expected ErrInvalidData, got %v", data, err)
		}
	}
}

func TestNewReader_NonExistent(t *testing.T) {
	if _, err := NewReader("/nonexistent/path/to/file.fgb"); err == nil {
		t.Error("expected error for non-existent file")
	}
}

func gridLayer(t *testing.T, includeIndex bool) []byte {
	t.Helper()
	var feats []mitab.Feature
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			feats = append(feats, mitab.NewPoint(orb.Point{float64(x), float64(y)}))
		}
	}
	opts := DefaultOptions()
	opts.IncludeIndex = includeIndex
	return exportLayer(t, feats, opts)
}

func TestReader_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.fgb")
	if err := os.WriteFile(path, gridLayer(t, true), 0o644); err != nil {
		t.Fatalf("failed to write layer: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer func() { _ = r.Close() }()

	fc, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(fc.Features) != 100 {
		t.Errorf("expected 100 features, got %d", len(fc.Features))
	}
}

func TestReader_Search(t *testing.T) {
	r, err := NewReaderFromData(gridLayer(t, true))
	if err != nil {
		t.Fatalf("NewReaderFromData failed: %v", err)
	}

	bounds := orb.Bound{Min: orb.Point{2, 2}, Max: orb.Point{4, 4}}
	fc, err := r.Search(bounds)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(fc.Features) == 0 {
		t.Fatal("expected some results from search")
	}
	for _, f := range fc.Features {
		p := f.Geometry.(orb.Point)
		if !bounds.Pad(1).Contains(p) {
			t.Errorf("point %v is far outside %v", p, bounds)
		}
		if _, ok := f.Properties[TypeColumn]; !ok {
			t.Errorf("missing %s on %v", TypeColumn, p)
		}
	}
}

func TestReader_NoIndex(t *testing.T) {
	data := gridLayer(t, false)

	r, err := NewReaderFromData(data)
	if err != nil {
		t.Fatalf("NewReaderFromData failed: %v", err)
	}
	if r.Header().HasIndex {
		t.Error("expected HasIndex to be false")
	}
	if _, err := r.Search(orb.Bound{Max: orb.Point{10, 10}}); !errors.Is(err, ErrNoIndex) {
		t.Errorf("Search: expected ErrNoIndex, got %v", err)
	}
	if _, err := Import(data); !errors.Is(err, ErrNoIndex) {
		t.Errorf("Import: expected ErrNoIndex, got %v", err)
	}
}

func TestImport_ForeignLayer(t *testing.T) {
	data := gridLayer(t, true)
	feats, err := Import(data)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(feats) != 100 {
		t.Fatalf("expected 100 features, got %d", len(feats))
	}
	for i, f := range feats {
		if f.Base().ID != int32(i+1) {
			t.Fatalf("feature %d has id %d, order not restored", i, f.Base().ID)
		}
	}
	if got := feats[23].Base().Geometry(); got != (orb.Point{2, 3}) {
		t.Errorf("feature 23 = %v, want (2, 3)", got)
	}
}
