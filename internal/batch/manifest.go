package batch

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"bvh-worldpos/internal/bvh"
)

// ManifestJoint describes one joint so that column-less outputs (the .npy
// array, the compact CSV) can be mapped back to the skeleton.
type ManifestJoint struct {
	Index        int        `json:"index"`
	Name         string     `json:"name"`
	Parent       int        `json:"parent"`
	EndSite      bool       `json:"end_site"`
	Offset       [3]float64 `json:"offset"`
	Channels     []string   `json:"channels"`
	ChannelStart int        `json:"channel_start"`
}

// Manifest is the JSON sidecar written next to the outputs.
type Manifest struct {
	Source     string          `json:"source"`
	FrameCount int             `json:"frame_count"`
	FrameTime  float64         `json:"frame_time"`
	Channels   int             `json:"channels"`
	Joints     []ManifestJoint `json:"joints"`
	Outputs    []string        `json:"outputs"`
}

// NewManifest describes sk and the produced outputs.
func NewManifest(source string, sk *bvh.Skeleton, hdr bvh.MotionHeader, outputs []string) Manifest {
	joints := make([]ManifestJoint, sk.Len())
	for i, j := range sk.Joints() {
		chans := make([]string, len(j.Channels))
		for k, c := range j.Channels {
			chans[k] = c.String()
		}
		joints[i] = ManifestJoint{
			Index:        j.Index,
			Name:         j.Name,
			Parent:       j.Parent,
			EndSite:      j.EndSite,
			Offset:       j.Offset.Array(),
			Channels:     chans,
			ChannelStart: j.ChannelStart,
		}
	}

	names := make([]string, len(outputs))
	for i, o := range outputs {
		names[i] = filepath.Base(o)
	}

	return Manifest{
		Source:     filepath.Base(source),
		FrameCount: hdr.FrameCount,
		FrameTime:  hdr.FrameTime,
		Channels:   sk.ChannelCount(),
		Joints:     joints,
		Outputs:    names,
	}
}

// MarshalManifest encodes m as indented JSON.
func MarshalManifest(m Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("batch: encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}

func baseName(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
