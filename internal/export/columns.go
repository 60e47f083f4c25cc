package export

import "bvh-worldpos/internal/bvh"

var axisSuffix = [3]string{".X", ".Y", ".Z"}

// PositionHeader names the world-position columns: time, then X/Y/Z for
// every joint in declaration order, End Sites included.
func PositionHeader(sk *bvh.Skeleton) []string {
	cols := make([]string, 0, 1+3*sk.Len())
	cols = append(cols, "time")
	for _, j := range sk.Joints() {
		for _, s := range axisSuffix {
			cols = append(cols, j.Name+s)
		}
	}
	return cols
}

// RotationHeader is PositionHeader restricted to joints that are not End Sites.
func RotationHeader(sk *bvh.Skeleton) []string {
	cols := make([]string, 0, 1+3*sk.RotationJointCount())
	cols = append(cols, "time")
	for _, j := range sk.Joints() {
		if j.EndSite {
			continue
		}
		for _, s := range axisSuffix {
			cols = append(cols, j.Name+s)
		}
	}
	return cols
}
