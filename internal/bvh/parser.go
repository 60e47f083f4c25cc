package bvh

import (
	"fmt"
	"io"
	"os"
)

// Parse reads a complete BVH stream. On error no partial Motion is returned.
func Parse(r io.Reader) (*Motion, error) {
	dec := NewDecoder(r)
	sk, hdr, err := dec.Header()
	if err != nil {
		return nil, err
	}

	// The declared count is untrusted until the frames are actually read.
	m := &Motion{Skeleton: sk, MotionHeader: hdr, Frames: make([]Frame, 0, min(hdr.FrameCount, 1<<16))}
	for {
		f, err := dec.Next()
		if err == io.EOF {
			return m, nil
		}
		if err != nil {
			return nil, err
		}
		m.Frames = append(m.Frames, f)
	}
}

// ParseFile reads and parses the BVH file at path.
func ParseFile(path string) (*Motion, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bvh: open %s: %w", path, err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
