package skeleton

import (
	"github.com/go-gl/mathgl/mgl64"

	"bvh-worldpos/internal/bvh"
	"bvh-worldpos/internal/mathutil"
)

// Pose is the forward-kinematics result for one frame. Slices are indexed
// by joint index in the skeleton's declaration order.
type Pose struct {
	Frame     int
	Time      float64
	Positions []mathutil.Vec3
	Rotations []mgl64.Mat3 // world orientation; End Sites carry their parent's
}

// Solve computes world positions and orientations of every joint for frame f.
// It depends only on its arguments.
func Solve(sk *bvh.Skeleton, f bvh.Frame) (Pose, error) {
	if len(f.Values) != sk.ChannelCount() {
		return Pose{}, &bvh.FrameError{Frame: f.Index, Want: sk.ChannelCount(), Got: len(f.Values)}
	}
	worlds, err := WorldMatrices(sk, f.Values)
	if err != nil {
		return Pose{}, err
	}

	p := Pose{
		Frame:     f.Index,
		Time:      f.Time,
		Positions: make([]mathutil.Vec3, len(worlds)),
		Rotations: make([]mgl64.Mat3, len(worlds)),
	}
	for i, w := range worlds {
		p.Positions[i] = mathutil.Translation(w)
		p.Rotations[i] = w.Mat3()
	}
	return p, nil
}

// WorldMatrices computes the world transform of each joint from one frame
// vector, recomputing the whole chain from the root.
// Returns a slice of 4×4 matrices indexed by joint index.
func WorldMatrices(sk *bvh.Skeleton, values []float64) ([]mgl64.Mat4, error) {
	if len(values) != sk.ChannelCount() {
		return nil, &bvh.FrameError{Frame: -1, Want: sk.ChannelCount(), Got: len(values)}
	}

	joints := sk.Joints()
	worlds := make([]mgl64.Mat4, len(joints))

	// Declaration order is depth-first, so every parent precedes its children.
	for i := range joints {
		j := &joints[i]
		start, n := sk.ChannelRange(i)
		local := LocalMatrix(j, values[start:start+n])

		if j.Parent >= 0 {
			worlds[i] = worlds[j.Parent].Mul4(local)
		} else {
			worlds[i] = local
		}
	}
	return worlds, nil
}

// LocalMatrix builds T(offset + positional channels) · R for one joint, where
// R composes the rotation channels left to right in declaration order:
// channels "Z X Y" give R = Rz · Rx · Ry.
func LocalMatrix(j *bvh.Joint, values []float64) mgl64.Mat4 {
	var d mathutil.Vec3
	rot := mgl64.Ident3()
	for k, c := range j.Channels {
		v := values[k]
		if c.IsRotation() {
			rot = rot.Mul3(mathutil.RotAxis(c.Axis(), v))
		} else {
			d = d.With(c.Axis(), d.Component(c.Axis())+v)
		}
	}
	t := j.Offset.Add(d)
	return mgl64.Translate3D(t.X, t.Y, t.Z).Mul4(rot.Mat4())
}

// EulerDegrees returns the world orientation of joint i as angles about
// X, Y and Z in degrees, decomposed in the joint's declared rotation order.
func (p Pose) EulerDegrees(sk *bvh.Skeleton, i int) mathutil.Vec3 {
	order := sk.Joint(i).EulerOrder()
	angles := mathutil.DecomposeEuler(p.Rotations[i], order)

	var out mathutil.Vec3
	for k, a := range order {
		out = out.With(a, mathutil.Rad2Deg(angles[k]))
	}
	return out
}
