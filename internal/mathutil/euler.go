package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// gimbalEps is the |cos(middle angle)| below which the first and third
// axes are treated as aligned.
const gimbalEps = 1e-9

// CompleteOrder returns a three-axis Tait-Bryan order that starts with the
// distinct axes of declared (first occurrence wins) and is padded with the
// remaining axes in X, Y, Z order.
func CompleteOrder(declared []Axis) [3]Axis {
	var order [3]Axis
	var seen [3]bool
	n := 0
	for _, a := range declared {
		if a > AxisZ || seen[a] {
			continue
		}
		seen[a] = true
		order[n] = a
		n++
	}
	for a := AxisX; a <= AxisZ && n < 3; a++ {
		if !seen[a] {
			order[n] = a
			n++
		}
	}
	return order
}

// ComposeEuler builds R = R_order[0](angles[0]) · R_order[1](angles[1]) · R_order[2](angles[2]).
// Angles in radians.
func ComposeEuler(order [3]Axis, angles [3]float64) mgl64.Mat3 {
	m := mgl64.Ident3()
	for i, a := range order {
		switch a {
		case AxisX:
			m = m.Mul3(RotX(angles[i]))
		case AxisY:
			m = m.Mul3(RotY(angles[i]))
		default:
			m = m.Mul3(RotZ(angles[i]))
		}
	}
	return m
}

// DecomposeEuler is the inverse of ComposeEuler for a Tait-Bryan order
// (three distinct axes). Returned angles are in radians, indexed like order.
// In gimbal lock the third angle is reported as zero.
func DecomposeEuler(m mgl64.Mat3, order [3]Axis) [3]float64 {
	i, j, k := int(order[0]), int(order[1]), int(order[2])

	// +1 for the cyclic orders XYZ, YZX, ZXY; -1 otherwise.
	s := 1.0
	if (j-i+3)%3 != 1 {
		s = -1
	}

	sinMid := clamp(s*m.At(i, k), -1, 1)
	mid := math.Asin(sinMid)

	var first, third float64
	if math.Sqrt(1-sinMid*sinMid) > gimbalEps {
		first = math.Atan2(-s*m.At(j, k), m.At(k, k))
		third = math.Atan2(-s*m.At(i, j), m.At(i, i))
	} else {
		first = math.Atan2(s*m.At(k, j), m.At(j, j))
	}
	return [3]float64{first, mid, third}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
