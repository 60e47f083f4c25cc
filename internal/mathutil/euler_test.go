package mathutil

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

var allOrders = [][3]Axis{
	{AxisX, AxisY, AxisZ},
	{AxisX, AxisZ, AxisY},
	{AxisY, AxisX, AxisZ},
	{AxisY, AxisZ, AxisX},
	{AxisZ, AxisX, AxisY},
	{AxisZ, AxisY, AxisX},
}

func TestDecomposeEuler_RoundTrip(t *testing.T) {
	angles := [3]float64{0.3, -0.7, 1.1}
	for _, order := range allOrders {
		name := order[0].String() + order[1].String() + order[2].String()
		t.Run(name, func(t *testing.T) {
			m := ComposeEuler(order, angles)
			got := DecomposeEuler(m, order)
			for i := range angles {
				assert.InDelta(t, angles[i], got[i], 1e-9, "angle %d", i)
			}
		})
	}
}

func TestDecomposeEuler_GimbalLock(t *testing.T) {
	order := [3]Axis{AxisX, AxisY, AxisZ}
	m := ComposeEuler(order, [3]float64{0.4, math.Pi / 2, 0})

	got := DecomposeEuler(m, order)
	assert.InDelta(t, 0.4, got[0], 1e-9)
	assert.InDelta(t, math.Pi/2, got[1], 1e-9)
	assert.Equal(t, 0.0, got[2])

	// The recovered angles must still describe the same rotation.
	back := ComposeEuler(order, got)
	for i := range m {
		assert.InDelta(t, m[i], back[i], 1e-9)
	}
}

func TestComposeEuler_LeftToRight(t *testing.T) {
	order := [3]Axis{AxisZ, AxisX, AxisY}
	a := [3]float64{0.2, 0.5, -0.9}
	want := RotZ(0.2).Mul3(RotX(0.5)).Mul3(RotY(-0.9))
	assert.Equal(t, want, ComposeEuler(order, a))
}

func TestCompleteOrder(t *testing.T) {
	cases := []struct {
		name     string
		declared []Axis
		want     [3]Axis
	}{
		{"full", []Axis{AxisZ, AxisX, AxisY}, [3]Axis{AxisZ, AxisX, AxisY}},
		{"partial", []Axis{AxisZ, AxisX}, [3]Axis{AxisZ, AxisX, AxisY}},
		{"single", []Axis{AxisY}, [3]Axis{AxisY, AxisX, AxisZ}},
		{"none", nil, [3]Axis{AxisX, AxisY, AxisZ}},
		{"repeated", []Axis{AxisY, AxisY, AxisX}, [3]Axis{AxisY, AxisX, AxisZ}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CompleteOrder(tc.declared))
		})
	}
}

func TestRotAxis_RightHanded(t *testing.T) {
	v := RotAxis(AxisZ, 90).Mul3x1(mgl64.Vec3{1, 0, 0})
	assert.InDelta(t, 0, v[0], 1e-12)
	assert.InDelta(t, 1, v[1], 1e-12)
	assert.InDelta(t, 0, v[2], 1e-12)

	v = RotAxis(AxisX, 90).Mul3x1(mgl64.Vec3{0, 1, 0})
	assert.InDelta(t, 0, v[0], 1e-12)
	assert.InDelta(t, 0, v[1], 1e-12)
	assert.InDelta(t, 1, v[2], 1e-12)

	v = RotAxis(AxisY, 90).Mul3x1(mgl64.Vec3{0, 0, 1})
	assert.InDelta(t, 1, v[0], 1e-12)
	assert.InDelta(t, 0, v[1], 1e-12)
	assert.InDelta(t, 0, v[2], 1e-12)
}

func TestVec3(t *testing.T) {
	a := V3(1, 2, 3)
	b := V3(-1, 0.5, 2)
	assert.Equal(t, V3(0, 2.5, 5), a.Add(b))
	assert.InDelta(t, 5, V3(3, 4, 0).Len(), 1e-12)
	assert.Equal(t, 2.0, a.Component(AxisY))
	assert.Equal(t, V3(1, 2, 9), a.With(AxisZ, 9))
	assert.Equal(t, [3]float64{1, 2, 3}, a.Array())
}

func TestTranslation(t *testing.T) {
	m := mgl64.Translate3D(1, 2, 3).Mul4(RotZ(math.Pi / 2).Mat4())
	assert.Equal(t, V3(1, 2, 3), Translation(m))
}
