package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"bvh-worldpos/internal/bvh"
	"bvh-worldpos/internal/mathutil"
	"bvh-worldpos/internal/skeleton"
)

// Format renders floats for text outputs. Precision < 0 means the shortest
// representation that round-trips.
type Format struct {
	Precision int
}

func (f Format) float(v float64) string {
	if f.Precision < 0 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', f.Precision, 64)
}

func (f Format) appendVec(row []string, v mathutil.Vec3) []string {
	return append(row, f.float(v.X), f.float(v.Y), f.float(v.Z))
}

// TableKind selects which per-joint quantity a Table writes.
type TableKind int

const (
	Positions TableKind = iota
	Rotations
)

// Table writes one header row and one row per pose.
type Table struct {
	w      *csv.Writer
	sk     *bvh.Skeleton
	kind   TableKind
	format Format
	row    []string
}

// NewTable writes the header for kind and returns the table.
func NewTable(w io.Writer, sk *bvh.Skeleton, kind TableKind, f Format) (*Table, error) {
	t := &Table{w: csv.NewWriter(w), sk: sk, kind: kind, format: f}
	header := PositionHeader(sk)
	if kind == Rotations {
		header = RotationHeader(sk)
	}
	if err := t.w.Write(header); err != nil {
		return nil, fmt.Errorf("export: write header: %w", err)
	}
	t.row = make([]string, 0, len(header))
	return t, nil
}

// WritePose appends the row for p.
func (t *Table) WritePose(p skeleton.Pose) error {
	row := append(t.row[:0], t.format.float(p.Time))
	for i, j := range t.sk.Joints() {
		switch {
		case t.kind == Positions:
			row = t.format.appendVec(row, p.Positions[i])
		case !j.EndSite:
			row = t.format.appendVec(row, p.EulerDegrees(t.sk, i))
		}
	}
	t.row = row
	if err := t.w.Write(row); err != nil {
		return fmt.Errorf("export: write frame %d: %w", p.Frame, err)
	}
	return nil
}

// Flush writes any buffered rows.
func (t *Table) Flush() error {
	t.w.Flush()
	return t.w.Error()
}

// RawWriter writes the compact variant: one x,y,z row per joint per frame,
// without header or time column.
type RawWriter struct {
	w      *csv.Writer
	format Format
	row    []string
}

func NewRawWriter(w io.Writer, f Format) *RawWriter {
	return &RawWriter{w: csv.NewWriter(w), format: f, row: make([]string, 0, 3)}
}

func (r *RawWriter) WritePose(p skeleton.Pose) error {
	for _, v := range p.Positions {
		r.row = r.format.appendVec(r.row[:0], v)
		if err := r.w.Write(r.row); err != nil {
			return fmt.Errorf("export: write frame %d: %w", p.Frame, err)
		}
	}
	return nil
}

func (r *RawWriter) Flush() error {
	r.w.Flush()
	return r.w.Error()
}
