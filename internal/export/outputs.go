package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"bvh-worldpos/internal/bvh"
	"bvh-worldpos/internal/skeleton"
)

// Options selects which artifacts are written and where.
type Options struct {
	Dir       string // output directory
	Base      string // file stem, e.g. "walk" for walk.bvh
	Compact   bool   // also write <base>_raw.csv
	NumPy     bool   // also write <base>.npy
	Rotations bool   // also write <base>_rotations.csv
	Format    Format
}

func (o Options) PositionsPath() string { return filepath.Join(o.Dir, o.Base+"_worldpos.csv") }
func (o Options) RawPath() string       { return filepath.Join(o.Dir, o.Base+"_raw.csv") }
func (o Options) ArrayPath() string     { return filepath.Join(o.Dir, o.Base+".npy") }
func (o Options) RotationsPath() string { return filepath.Join(o.Dir, o.Base+"_rotations.csv") }
func (o Options) ManifestPath() string  { return filepath.Join(o.Dir, o.Base+"_manifest.json") }

// Outputs fans each pose out to the selected artifacts. Everything is
// written to temporary files in the output directory, and only Commit moves
// them into place, so a failed run leaves no partial outputs behind.
type Outputs struct {
	files     []*pendingFile
	positions *Table
	raw       *RawWriter
	rotations *Table
	array     *ArrayBuffer
	arrayFile *pendingFile
	written   int
	frames    int
	closed    bool
}

// Create opens temporary files for every selected artifact and writes headers.
func Create(opts Options, sk *bvh.Skeleton, frameCount int) (*Outputs, error) {
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	o := &Outputs{frames: frameCount}
	fail := func(err error) (*Outputs, error) {
		o.Abort()
		return nil, err
	}

	pf, err := o.open(opts.PositionsPath())
	if err != nil {
		return fail(err)
	}
	if o.positions, err = NewTable(pf.w, sk, Positions, opts.Format); err != nil {
		return fail(err)
	}

	if opts.Compact {
		pf, err := o.open(opts.RawPath())
		if err != nil {
			return fail(err)
		}
		o.raw = NewRawWriter(pf.w, opts.Format)
	}

	if opts.NumPy {
		if o.arrayFile, err = o.open(opts.ArrayPath()); err != nil {
			return fail(err)
		}
		o.array = NewArrayBuffer(frameCount, sk.Len())
	}

	if opts.Rotations {
		pf, err := o.open(opts.RotationsPath())
		if err != nil {
			return fail(err)
		}
		if o.rotations, err = NewTable(pf.w, sk, Rotations, opts.Format); err != nil {
			return fail(err)
		}
	}
	return o, nil
}

// WritePose appends p to every artifact. Poses must arrive in frame order.
func (o *Outputs) WritePose(p skeleton.Pose) error {
	if p.Frame != o.written {
		return fmt.Errorf("export: frame %d written out of order, expected %d", p.Frame, o.written)
	}
	if err := o.positions.WritePose(p); err != nil {
		return err
	}
	if o.raw != nil {
		if err := o.raw.WritePose(p); err != nil {
			return err
		}
	}
	if o.array != nil {
		if err := o.array.WritePose(p); err != nil {
			return err
		}
	}
	if o.rotations != nil {
		if err := o.rotations.WritePose(p); err != nil {
			return err
		}
	}
	o.written++
	return nil
}

// Paths returns the final paths of every artifact opened so far, in order.
func (o *Outputs) Paths() []string {
	paths := make([]string, len(o.files))
	for i, pf := range o.files {
		paths[i] = pf.final
	}
	return paths
}

// AddFile stages data to be written to final alongside the other artifacts.
// It is renamed into place by Commit and discarded by Abort.
func (o *Outputs) AddFile(final string, data []byte) error {
	if o.closed {
		return fmt.Errorf("export: outputs already closed")
	}
	pf, err := o.open(final)
	if err != nil {
		return err
	}
	if _, err := pf.w.Write(data); err != nil {
		return fmt.Errorf("export: write %s: %w", final, err)
	}
	return nil
}

// Commit flushes every artifact and renames it into place. It returns the
// final paths in the order the artifacts were opened.
func (o *Outputs) Commit() ([]string, error) {
	if o.closed {
		return nil, fmt.Errorf("export: outputs already closed")
	}
	if o.written != o.frames {
		o.Abort()
		return nil, fmt.Errorf("export: %d of %d frames written", o.written, o.frames)
	}

	flushers := []interface{ Flush() error }{o.positions}
	if o.raw != nil {
		flushers = append(flushers, o.raw)
	}
	if o.rotations != nil {
		flushers = append(flushers, o.rotations)
	}
	for _, f := range flushers {
		if err := f.Flush(); err != nil {
			o.Abort()
			return nil, fmt.Errorf("export: %w", err)
		}
	}
	if o.array != nil {
		if _, err := o.array.WriteTo(o.arrayFile.w); err != nil {
			o.Abort()
			return nil, err
		}
	}

	for _, pf := range o.files {
		if err := pf.close(); err != nil {
			o.Abort()
			return nil, err
		}
	}
	paths := make([]string, 0, len(o.files))
	for _, pf := range o.files {
		if err := os.Rename(pf.f.Name(), pf.final); err != nil {
			for _, done := range o.files {
				if done.renamed {
					os.Remove(done.final)
				}
			}
			o.Abort()
			return nil, fmt.Errorf("export: %w", err)
		}
		pf.renamed = true
		paths = append(paths, pf.final)
	}
	o.closed = true
	return paths, nil
}

// Abort discards every temporary file. It is a no-op after Commit succeeds.
func (o *Outputs) Abort() {
	if o.closed {
		return
	}
	o.closed = true
	for _, pf := range o.files {
		if pf.renamed {
			continue
		}
		pf.f.Close()
		os.Remove(pf.f.Name())
	}
}

func (o *Outputs) open(final string) (*pendingFile, error) {
	f, err := os.CreateTemp(filepath.Dir(final), "."+filepath.Base(final)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("export: create %s: %w", final, err)
	}
	pf := &pendingFile{final: final, f: f, w: bufio.NewWriter(f)}
	o.files = append(o.files, pf)
	return pf, nil
}

type pendingFile struct {
	final   string
	f       *os.File
	w       *bufio.Writer
	renamed bool
}

func (pf *pendingFile) close() error {
	if err := pf.w.Flush(); err != nil {
		pf.f.Close()
		return fmt.Errorf("export: write %s: %w", pf.final, err)
	}
	if err := pf.f.Close(); err != nil {
		return fmt.Errorf("export: close %s: %w", pf.final, err)
	}
	return nil
}
