package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"bvh-worldpos/internal/bvh"
	"bvh-worldpos/internal/skeleton"
)

// inspect prints the joint table of a BVH file and, when a frame index is
// given, the world position and rotation of every joint in that frame.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s file.bvh [frame]\n", os.Args[0])
		os.Exit(2)
	}
	path := os.Args[1]
	m, err := bvh.ParseFile(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	sk := m.Skeleton
	fmt.Printf("Joints: %d, Channels: %d, Frames: %d, Frame time: %g\n",
		sk.Len(), sk.ChannelCount(), m.FrameCount, m.FrameTime)

	for i, j := range sk.Joints() {
		start, n := sk.ChannelRange(i)
		chans := make([]string, len(j.Channels))
		for k, c := range j.Channels {
			chans[k] = c.String()
		}
		kind := "joint"
		if j.EndSite {
			kind = "end"
		}
		fmt.Printf("  %s[%d] %-5s parent=%d slots=[%d,%d) offset=(%.2f, %.2f, %.2f) len=%.2f %s\n",
			strings.Repeat("  ", sk.Depth(i)), i, kind, j.Parent, start, start+n,
			j.Offset.X, j.Offset.Y, j.Offset.Z, j.Offset.Len(), j.Name)
		if len(chans) > 0 {
			fmt.Printf("  %s     channels: %s\n", strings.Repeat("  ", sk.Depth(i)), strings.Join(chans, " "))
		}
	}

	if len(os.Args) < 3 {
		return
	}
	fi, err := strconv.Atoi(os.Args[2])
	if err != nil || fi < 0 || fi >= len(m.Frames) {
		fmt.Fprintf(os.Stderr, "Error: frame must be in [0, %d)\n", len(m.Frames))
		os.Exit(1)
	}
	pose, err := skeleton.Solve(sk, m.Frames[fi])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Frame %d (t=%.4f)\n", fi, pose.Time)
	for i, j := range sk.Joints() {
		p := pose.Positions[i]
		if j.EndSite {
			fmt.Printf("  %-24s pos=(%.3f, %.3f, %.3f)\n", j.Name, p.X, p.Y, p.Z)
			continue
		}
		r := pose.EulerDegrees(sk, i)
		fmt.Printf("  %-24s pos=(%.3f, %.3f, %.3f) rot=(%.2f, %.2f, %.2f)\n",
			j.Name, p.X, p.Y, p.Z, r.X, r.Y, r.Z)
	}
}
