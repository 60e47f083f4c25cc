package mathutil

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Axis names one of the three coordinate axes.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	}
	return fmt.Sprintf("Axis(%d)", uint8(a))
}

// RotX returns a 3×3 rotation matrix around the X axis. Angle in radians.
func RotX(a float64) mgl64.Mat3 {
	return mgl64.Rotate3DX(a)
}

// RotY returns a 3×3 rotation matrix around the Y axis.
func RotY(a float64) mgl64.Mat3 {
	return mgl64.Rotate3DY(a)
}

// RotZ returns a 3×3 rotation matrix around the Z axis.
func RotZ(a float64) mgl64.Mat3 {
	return mgl64.Rotate3DZ(a)
}

// RotAxis returns the elementary rotation of deg degrees around axis a.
func RotAxis(a Axis, deg float64) mgl64.Mat3 {
	rad := Deg2Rad(deg)
	switch a {
	case AxisX:
		return RotX(rad)
	case AxisY:
		return RotY(rad)
	default:
		return RotZ(rad)
	}
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 {
	return mgl64.DegToRad(d)
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(r float64) float64 {
	return mgl64.RadToDeg(r)
}

// Translation returns the translation column of an affine matrix.
func Translation(m mgl64.Mat4) Vec3 {
	c := m.Col(3)
	return V3(c[0], c[1], c[2])
}
