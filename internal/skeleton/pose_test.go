package skeleton

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bvh-worldpos/internal/bvh"
	"bvh-worldpos/internal/mathutil"
)

func mustParse(t *testing.T, src string) *bvh.Motion {
	t.Helper()
	m, err := bvh.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return m
}

func assertVec(t *testing.T, want, got mathutil.Vec3, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, 1e-9, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, 1e-9, msgAndArgs...)
}

// hierarchy builds a root with the given channels and a child at childOffset.
func hierarchy(rootChannels, childOffset, childChannels string) string {
	n := len(strings.Fields(rootChannels))
	c := len(strings.Fields(childChannels))
	return "HIERARCHY\nROOT Root\n{\n\tOFFSET 0 0 0\n" +
		"\tCHANNELS " + itoa(n) + " " + rootChannels + "\n" +
		"\tJOINT Child\n\t{\n\t\tOFFSET " + childOffset + "\n" +
		"\t\tCHANNELS " + itoa(c) + " " + childChannels + "\n" +
		"\t\tEnd Site\n\t\t{\n\t\t\tOFFSET 0 0 0\n\t\t}\n\t}\n}\n"
}

func itoa(n int) string {
	return string(rune('0' + n))
}

func motion(frameTime string, lines ...string) string {
	return "MOTION\nFrames: " + itoa(len(lines)) + "\nFrame Time: " + frameTime + "\n" + strings.Join(lines, "\n") + "\n"
}

const scenario = `HIERARCHY
ROOT Hips
{
	OFFSET 0.0 0.0 0.0
	CHANNELS 6 Xposition Yposition Zposition Zrotation Xrotation Yrotation
	JOINT Spine
	{
		OFFSET 0.0 5.0 0.0
		CHANNELS 3 Zrotation Xrotation Yrotation
		End Site
		{
			OFFSET 0.0 2.0 0.0
		}
	}
}
MOTION
Frames: 2
Frame Time: 0.0333
0 0 0 0 0 0 0 0 0
1 2 3 90 0 0 0 0 0
`

func TestSolve_Scenario(t *testing.T) {
	m := mustParse(t, scenario)
	sk := m.Skeleton

	p0, err := Solve(sk, m.Frames[0])
	require.NoError(t, err)
	assert.Equal(t, 0, p0.Frame)
	assert.Equal(t, 0.0, p0.Time)
	assertVec(t, mathutil.V3(0, 0, 0), p0.Positions[0])
	assertVec(t, mathutil.V3(0, 5, 0), p0.Positions[1])
	assertVec(t, mathutil.V3(0, 7, 0), p0.Positions[2])

	// Hips translated to (1,2,3) and rotated 90° about Z: the +Y offset of
	// Spine maps onto -X.
	p1, err := Solve(sk, m.Frames[1])
	require.NoError(t, err)
	assert.Equal(t, 0.0333, p1.Time)
	assertVec(t, mathutil.V3(1, 2, 3), p1.Positions[0])
	assertVec(t, mathutil.V3(-4, 2, 3), p1.Positions[1])
	assertVec(t, mathutil.V3(-6, 2, 3), p1.Positions[2])
}

func TestSolve_ZeroRotationIsOffsetSum(t *testing.T) {
	src := hierarchy("Xposition Yposition Zposition", "1 0 0", "Xposition Yposition Zposition") +
		motion("0.1", "1 2 3 0.5 0.5 0.5", "-1 0 4 0 0 0")
	src = strings.Replace(src, "OFFSET 0 0 0\n\t\t}", "OFFSET 0 0 2\n\t\t}", 1)
	m := mustParse(t, src)

	p, err := Solve(m.Skeleton, m.Frames[0])
	require.NoError(t, err)
	assertVec(t, mathutil.V3(1, 2, 3), p.Positions[0])
	assertVec(t, mathutil.V3(2.5, 2.5, 3.5), p.Positions[1])
	assertVec(t, mathutil.V3(2.5, 2.5, 5.5), p.Positions[2])

	p, err = Solve(m.Skeleton, m.Frames[1])
	require.NoError(t, err)
	assertVec(t, mathutil.V3(-1, 0, 4), p.Positions[0])
	assertVec(t, mathutil.V3(0, 0, 4), p.Positions[1])
	assertVec(t, mathutil.V3(0, 0, 6), p.Positions[2])
}

func TestSolve_ChildFollowsRootTranslation(t *testing.T) {
	src := hierarchy("Xposition Yposition Zposition Zrotation Xrotation Yrotation", "0 1 0", "Zrotation Xrotation Yrotation") +
		motion("0.1", "0 0 0 0 0 0 0 0 0", "7 -3 4 0 0 0 0 0 0", "-2 8 0.5 0 0 0 0 0 0")
	m := mustParse(t, src)

	for _, f := range m.Frames {
		p, err := Solve(m.Skeleton, f)
		require.NoError(t, err)
		root := p.Positions[0]
		assertVec(t, root.Add(mathutil.V3(0, 1, 0)), p.Positions[1], "frame %d", f.Index)
	}

	p, err := Solve(m.Skeleton, m.Frames[0])
	require.NoError(t, err)
	assertVec(t, mathutil.V3(0, 1, 0), p.Positions[1])
}

func TestSolve_RotationSanity(t *testing.T) {
	cases := []struct {
		name     string
		channels string
		offset   string
		values   string
		want     mathutil.Vec3
	}{
		{"Z90 maps +X to +Y", "Zrotation Xrotation Yrotation", "1 0 0", "90 0 0 0 0 0", mathutil.V3(0, 1, 0)},
		{"X90 maps +Y to +Z", "Zrotation Xrotation Yrotation", "0 1 0", "0 90 0 0 0 0", mathutil.V3(0, 0, 1)},
		{"Y90 maps +Z to +X", "Zrotation Xrotation Yrotation", "0 0 1", "0 0 90 0 0 0", mathutil.V3(1, 0, 0)},
		{"Z then X composes Rz·Rx", "Zrotation Xrotation Yrotation", "0 1 0", "90 90 0 0 0 0", mathutil.V3(0, 0, 1)},
		{"X then Z composes Rx·Rz", "Xrotation Zrotation Yrotation", "0 1 0", "90 90 0 0 0 0", mathutil.V3(-1, 0, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := hierarchy(tc.channels, tc.offset, "Zrotation Xrotation Yrotation") + motion("0.1", tc.values)
			m := mustParse(t, src)

			p, err := Solve(m.Skeleton, m.Frames[0])
			require.NoError(t, err)
			assertVec(t, mathutil.V3(0, 0, 0), p.Positions[0])
			assertVec(t, tc.want, p.Positions[1])
		})
	}
}

func TestSolve_ChildRotationDoesNotMoveChild(t *testing.T) {
	// A joint's own rotation only moves its descendants.
	src := hierarchy("Zrotation Xrotation Yrotation", "0 1 0", "Zrotation Xrotation Yrotation") +
		motion("0.1", "0 0 0 90 0 0")
	src = strings.Replace(src, "OFFSET 0 0 0\n\t\t}", "OFFSET 0 1 0\n\t\t}", 1)
	m := mustParse(t, src)

	p, err := Solve(m.Skeleton, m.Frames[0])
	require.NoError(t, err)
	assertVec(t, mathutil.V3(0, 1, 0), p.Positions[1])
	assertVec(t, mathutil.V3(-1, 1, 0), p.Positions[2])
}

func TestSolve_EndSiteInheritsParentRotation(t *testing.T) {
	m := mustParse(t, scenario)

	p, err := Solve(m.Skeleton, m.Frames[1])
	require.NoError(t, err)
	require.Len(t, p.Rotations, 3)
	assert.Equal(t, p.Rotations[1], p.Rotations[2])
}

func TestSolve_Deterministic(t *testing.T) {
	m := mustParse(t, scenario)
	f := bvh.Frame{Index: 5, Time: 0.1665, Values: []float64{0.3, -1.2, 7.7, 13.5, -47.25, 91, 12, 0.001, -33}}

	a, err := Solve(m.Skeleton, f)
	require.NoError(t, err)
	// Interleave another frame; no state may carry over.
	_, err = Solve(m.Skeleton, m.Frames[1])
	require.NoError(t, err)
	b, err := Solve(m.Skeleton, f)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestSolve_ChannelCountMismatch(t *testing.T) {
	m := mustParse(t, scenario)

	_, err := Solve(m.Skeleton, bvh.Frame{Index: 4, Values: []float64{1, 2, 3}})
	require.Error(t, err)
	assert.ErrorIs(t, err, bvh.ErrChannelCountMismatch)

	var fe *bvh.FrameError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 4, fe.Frame)
	assert.Equal(t, 9, fe.Want)
	assert.Equal(t, 3, fe.Got)

	_, err = WorldMatrices(m.Skeleton, make([]float64, 10))
	assert.ErrorIs(t, err, bvh.ErrChannelCountMismatch)
}

func TestPose_EulerDegrees(t *testing.T) {
	src := hierarchy("Zrotation Xrotation Yrotation", "0 1 0", "Zrotation Xrotation Yrotation") +
		motion("0.1", "30 20 10 0 0 0")
	m := mustParse(t, src)

	p, err := Solve(m.Skeleton, m.Frames[0])
	require.NoError(t, err)

	// The root's world rotation is exactly its declared channels.
	assertVec(t, mathutil.V3(20, 10, 30), p.EulerDegrees(m.Skeleton, 0))
	// An unrotated child carries the same world orientation.
	assertVec(t, mathutil.V3(20, 10, 30), p.EulerDegrees(m.Skeleton, 1))
}

func TestPose_EulerDegreesUsesJointOrder(t *testing.T) {
	src := hierarchy("Xrotation Yrotation Zrotation", "0 1 0", "Xrotation Yrotation Zrotation") +
		motion("0.1", "15 -40 70 0 0 0")
	m := mustParse(t, src)

	p, err := Solve(m.Skeleton, m.Frames[0])
	require.NoError(t, err)
	assertVec(t, mathutil.V3(15, -40, 70), p.EulerDegrees(m.Skeleton, 0))
}

func TestLocalMatrix_PositionChannelsAddToOffset(t *testing.T) {
	j := &bvh.Joint{
		Offset:   mathutil.V3(1, 1, 1),
		Channels: []bvh.Channel{bvh.Zposition, bvh.Xposition},
	}
	local := LocalMatrix(j, []float64{3, -2})
	assert.Equal(t, mathutil.V3(-1, 1, 4), mathutil.Translation(local))
}
