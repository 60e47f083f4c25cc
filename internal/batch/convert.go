package batch

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"bvh-worldpos/internal/bvh"
	"bvh-worldpos/internal/export"
	"bvh-worldpos/internal/log"
)

// ErrInputNotFound is returned when the input file does not exist.
var ErrInputNotFound = errors.New("input not found")

// Config holds all settings for one conversion.
type Config struct {
	OutputDir string
	Workers   int
	Stream    bool // solve frames while reading instead of parsing everything first
	Manifest  bool
	Compact   bool
	NumPy     bool
	Rotations bool
	Precision int
}

// Result summarizes a successful conversion.
type Result struct {
	Input     string
	Joints    int
	Channels  int
	Frames    int
	FrameTime float64
	Outputs   []string
	Elapsed   time.Duration
}

// Convert turns one BVH file into the selected output artifacts. Any error
// is fatal to the whole run and leaves no output files behind.
func Convert(cfg Config, input string) (Result, error) {
	start := time.Now()

	if _, err := os.Stat(input); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("%w: %s", ErrInputNotFound, input)
		}
		return Result{}, fmt.Errorf("batch: %w", err)
	}

	f, err := os.Open(input)
	if err != nil {
		return Result{}, fmt.Errorf("batch: %w", err)
	}
	defer f.Close()

	dec := bvh.NewDecoder(f)
	sk, hdr, err := dec.Header()
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", input, err)
	}
	lg := log.With("input", input)
	lg.Info("hierarchy parsed", "joints", sk.Len(),
		"channels", sk.ChannelCount(), "frames", hdr.FrameCount, "frame_time", hdr.FrameTime)
	if hdr.FrameTime == 0 && hdr.FrameCount > 1 {
		log.Warn("frame time is zero, every row gets time 0", "input", input)
	}

	opts := export.Options{
		Dir:       cfg.OutputDir,
		Base:      baseName(input),
		Compact:   cfg.Compact,
		NumPy:     cfg.NumPy,
		Rotations: cfg.Rotations,
		Format:    export.Format{Precision: cfg.Precision},
	}

	var out *export.Outputs
	if cfg.Stream {
		if out, err = export.Create(opts, sk, hdr.FrameCount); err != nil {
			return Result{}, err
		}
		defer out.Abort()
		err = Stream(cfg.Workers, dec, out)
	} else {
		// Parse every frame before any FK work or output file exists.
		var frames []bvh.Frame
		if frames, err = readAll(dec, hdr.FrameCount); err != nil {
			return Result{}, fmt.Errorf("%s: %w", input, err)
		}
		if out, err = export.Create(opts, sk, hdr.FrameCount); err != nil {
			return Result{}, err
		}
		defer out.Abort()
		err = Run(cfg.Workers, sk, frames, out)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", input, err)
	}

	// The manifest is staged with the other artifacts so it commits or
	// aborts together with them.
	if cfg.Manifest {
		data, err := MarshalManifest(NewManifest(input, sk, hdr, out.Paths()))
		if err != nil {
			return Result{}, err
		}
		if err := out.AddFile(opts.ManifestPath(), data); err != nil {
			return Result{}, err
		}
	}

	paths, err := out.Commit()
	if err != nil {
		return Result{}, err
	}

	for _, p := range paths {
		lg.Debug("output written", "path", p)
	}

	return Result{
		Input:     input,
		Joints:    sk.Len(),
		Channels:  sk.ChannelCount(),
		Frames:    hdr.FrameCount,
		FrameTime: hdr.FrameTime,
		Outputs:   paths,
		Elapsed:   time.Since(start),
	}, nil
}

func readAll(dec *bvh.Decoder, hint int) ([]bvh.Frame, error) {
	frames := make([]bvh.Frame, 0, min(hint, 1<<16))
	for {
		f, err := dec.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
}
