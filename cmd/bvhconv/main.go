package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"bvh-worldpos/internal/batch"
	"bvh-worldpos/internal/bvh"
	"bvh-worldpos/internal/config"
	"bvh-worldpos/internal/log"
)

func main() {
	// CLI flags
	var compact, numpy, rotation bool
	flag.BoolVar(&compact, "c", false, "Also export only X,Y,Z tuples, one joint per row (shorthand)")
	flag.BoolVar(&compact, "compact", false, "Also export only X,Y,Z tuples, one joint per row")
	flag.BoolVar(&numpy, "n", false, "Also write a (frames, joints, 3) .npy array (shorthand)")
	flag.BoolVar(&numpy, "numpy", false, "Also write a (frames, joints, 3) .npy array")
	flag.BoolVar(&rotation, "r", false, "Also write world rotations to CSV (shorthand)")
	flag.BoolVar(&rotation, "rotation", false, "Also write world rotations to CSV")
	configFile := flag.String("config", "", "Path to config.json file")
	outputDir := flag.String("output", "", "Output directory (default: next to the input)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	precision := flag.Int("precision", -1, "Decimal places in CSV output (default: shortest exact)")
	stream := flag.Bool("stream", false, "Solve frames while reading instead of loading the whole file first")
	manifest := flag.Bool("manifest", false, "Write a JSON manifest describing joints and outputs")
	logLevel := flag.String("log", "", "Log level: debug, info, warn, error")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] file.bvh\n", os.Args[0])
		flag.PrintDefaults()
	}

	inputs := parseInterspersed(os.Args[1:])
	if len(inputs) != 1 {
		flag.Usage()
		os.Exit(2)
	}
	input := inputs[0]

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		OutputDir: *outputDir,
		Workers:   *workers,
		Precision: *precision,
		LogLevel:  *logLevel,
		Compact:   compact,
		NumPy:     numpy,
		Rotations: rotation,
		Manifest:  *manifest,
		Stream:    *stream,
	}, input)

	log.Init(cfg.LogLevel)

	fmt.Printf("Input filename: %s\n", input)

	res, err := batch.Convert(batch.Config{
		OutputDir: cfg.OutputDir,
		Workers:   cfg.Workers,
		Stream:    cfg.Stream,
		Manifest:  cfg.Manifest,
		Compact:   cfg.Compact,
		NumPy:     cfg.NumPy,
		Rotations: cfg.Rotations,
		Precision: cfg.FloatPrecision(),
	}, input)
	if err != nil {
		log.Error("conversion failed", "input", input, "err", err)
		switch {
		case errors.Is(err, batch.ErrInputNotFound):
			fmt.Fprintf(os.Stderr, "Error: file %s not found.\n", input)
		case errors.Is(err, bvh.ErrChannelCountMismatch):
			fmt.Fprintf(os.Stderr, "Error: channel count mismatch: %v\n", err)
		case errors.Is(err, bvh.ErrParse):
			fmt.Fprintf(os.Stderr, "Error: malformed BVH: %v\n", err)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("Joints: %d, Channels: %d, Frames: %d, Workers: %d\n",
		res.Joints, res.Channels, res.Frames, cfg.Workers)
	for _, p := range res.Outputs {
		fmt.Printf("Output: %s\n", p)
	}
	fmt.Printf("Done in %.2fs\n", res.Elapsed.Seconds())
}

// parseInterspersed parses flags that may appear before or after the
// positional arguments and returns the positionals.
func parseInterspersed(args []string) []string {
	var positional []string
	for {
		flag.CommandLine.Parse(args)
		rest := flag.Args()
		if len(rest) == 0 {
			return positional
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}
