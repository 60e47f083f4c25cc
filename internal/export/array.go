package export

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/mat"

	"bvh-worldpos/internal/skeleton"
)

// npyMagic starts every .npy file; version 1.0 follows.
const npyMagic = "\x93NUMPY"

// maxPrealloc caps the rows reserved up front; the declared frame count is
// untrusted until the frames have actually been read.
const maxPrealloc = 1 << 16

// ArrayBuffer collects world positions row by row and writes them as a
// float64 .npy array shaped (frames, joints, 3). Unlike the CSV tables it
// must hold every frame before writing.
type ArrayBuffer struct {
	frames, joints int
	rows           int
	data           []float64 // rows × joints·3, row-major
}

// NewArrayBuffer prepares a buffer for the given shape.
func NewArrayBuffer(frames, joints int) *ArrayBuffer {
	return &ArrayBuffer{
		frames: frames,
		joints: joints,
		data:   make([]float64, 0, min(frames, maxPrealloc)*joints*3),
	}
}

// WritePose appends p as the next row. Poses must arrive in frame order.
func (a *ArrayBuffer) WritePose(p skeleton.Pose) error {
	if p.Frame != a.rows || p.Frame >= a.frames {
		return fmt.Errorf("export: frame %d out of sequence for array of %d frames (next %d)", p.Frame, a.frames, a.rows)
	}
	if len(p.Positions) != a.joints {
		return fmt.Errorf("export: frame %d has %d joints, array expects %d", p.Frame, len(p.Positions), a.joints)
	}
	for _, v := range p.Positions {
		a.data = append(a.data, v.X, v.Y, v.Z)
	}
	a.rows++
	return nil
}

// Shape returns (frames, joints, 3).
func (a *ArrayBuffer) Shape() [3]int {
	return [3]int{a.frames, a.joints, 3}
}

// WriteTo writes the .npy encoding of the buffer. Every declared frame must
// have been written.
func (a *ArrayBuffer) WriteTo(w io.Writer) (int64, error) {
	if a.rows != a.frames {
		return 0, fmt.Errorf("export: array holds %d of %d frames", a.rows, a.frames)
	}
	bw := bufio.NewWriter(w)
	cw := &countingWriter{w: bw}

	if _, err := io.WriteString(cw, npyHeader(a.Shape())); err != nil {
		return cw.n, fmt.Errorf("export: write npy header: %w", err)
	}
	if a.rows > 0 && a.joints > 0 {
		m := mat.NewDense(a.rows, a.joints*3, a.data)
		for r := 0; r < a.rows; r++ {
			if err := binary.Write(cw, binary.LittleEndian, m.RawRowView(r)); err != nil {
				return cw.n, fmt.Errorf("export: write npy data: %w", err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return cw.n, fmt.Errorf("export: write npy data: %w", err)
	}
	return cw.n, nil
}

// npyHeader returns magic, version, header length and the dict, padded with
// spaces and a newline so the data starts on a 64-byte boundary.
func npyHeader(shape [3]int) string {
	dict := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%d, %d, %d), }",
		shape[0], shape[1], shape[2])
	const preamble = len(npyMagic) + 2 + 2
	total := preamble + len(dict) + 1
	pad := (64 - total%64) % 64
	dict += strings.Repeat(" ", pad) + "\n"

	var b strings.Builder
	b.WriteString(npyMagic)
	b.WriteByte(1)
	b.WriteByte(0)
	b.WriteByte(byte(len(dict)))
	b.WriteByte(byte(len(dict) >> 8))
	b.WriteString(dict)
	return b.String()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
