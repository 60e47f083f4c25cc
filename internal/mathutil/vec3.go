package mathutil

import "gonum.org/v1/gonum/spatial/r3"

// Vec3 is a 3-component vector (value type, stack-allocated).
type Vec3 struct {
	r3.Vec
}

// V3 builds a Vec3 from its components.
func V3(x, y, z float64) Vec3 {
	return Vec3{r3.Vec{X: x, Y: y, Z: z}}
}

func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{r3.Add(v.Vec, w.Vec)}
}

// Len is the Euclidean length.
func (v Vec3) Len() float64 {
	return r3.Norm(v.Vec)
}

// Component returns the value along axis a.
func (v Vec3) Component(a Axis) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// With returns v with the component along axis a replaced by s.
func (v Vec3) With(a Axis, s float64) Vec3 {
	switch a {
	case AxisX:
		v.X = s
	case AxisY:
		v.Y = s
	default:
		v.Z = s
	}
	return v
}

// Array returns the components as [x, y, z].
func (v Vec3) Array() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
