package bvh

import (
	"strings"

	"bvh-worldpos/internal/mathutil"
)

// Channel is one animated degree of freedom a joint declares.
type Channel uint8

const (
	Xposition Channel = iota
	Yposition
	Zposition
	Xrotation
	Yrotation
	Zrotation
)

var channelNames = [...]string{"Xposition", "Yposition", "Zposition", "Xrotation", "Yrotation", "Zrotation"}

func (c Channel) String() string {
	if int(c) < len(channelNames) {
		return channelNames[c]
	}
	return "Channel(?)"
}

// IsRotation reports whether c is one of the rotational channels.
func (c Channel) IsRotation() bool { return c >= Xrotation }

// Axis returns the axis the channel translates along or rotates about.
func (c Channel) Axis() mathutil.Axis { return mathutil.Axis(c % 3) }

// ParseChannel maps a channel tag (case-insensitive) to a Channel.
func ParseChannel(s string) (Channel, bool) {
	for i, n := range channelNames {
		if strings.EqualFold(s, n) {
			return Channel(i), true
		}
	}
	return 0, false
}

// Joint is one node of the skeleton arena. Parent and Children hold indices
// into Skeleton.Joints; the root has Parent == -1.
type Joint struct {
	Name     string
	Index    int
	Parent   int
	Children []int
	Offset   mathutil.Vec3
	Channels []Channel
	EndSite  bool

	// ChannelStart is the first slot of this joint in a frame vector.
	ChannelStart int
}

// RotationOrder returns the rotation axes in declaration order.
func (j *Joint) RotationOrder() []mathutil.Axis {
	var axes []mathutil.Axis
	for _, c := range j.Channels {
		if c.IsRotation() {
			axes = append(axes, c.Axis())
		}
	}
	return axes
}

// EulerOrder is RotationOrder completed to three distinct axes.
func (j *Joint) EulerOrder() [3]mathutil.Axis {
	return mathutil.CompleteOrder(j.RotationOrder())
}

// Skeleton owns the joint arena in depth-first declaration order.
// It is read-only once returned by the parser.
type Skeleton struct {
	joints       []Joint
	channelCount int
}

// Joints returns the flattened joint list. Callers must not modify it.
func (s *Skeleton) Joints() []Joint { return s.joints }

// Joint returns the joint at index i.
func (s *Skeleton) Joint(i int) *Joint { return &s.joints[i] }

// Len returns the number of joints, End Sites included.
func (s *Skeleton) Len() int { return len(s.joints) }

// Root returns the root joint.
func (s *Skeleton) Root() *Joint { return &s.joints[0] }

// ChannelCount is the length every frame vector must have.
func (s *Skeleton) ChannelCount() int { return s.channelCount }

// ChannelRange returns the start slot and channel count of joint i.
func (s *Skeleton) ChannelRange(i int) (start, count int) {
	j := &s.joints[i]
	return j.ChannelStart, len(j.Channels)
}

// Parent returns the parent of joint i, or nil for the root.
func (s *Skeleton) Parent(i int) *Joint {
	if p := s.joints[i].Parent; p >= 0 {
		return &s.joints[p]
	}
	return nil
}

// Children returns the child indices of joint i.
func (s *Skeleton) Children(i int) []int { return s.joints[i].Children }

// Depth returns the number of ancestors of joint i.
func (s *Skeleton) Depth(i int) int {
	d := 0
	for p := s.joints[i].Parent; p >= 0; p = s.joints[p].Parent {
		d++
	}
	return d
}

// Find returns the index of the first joint named name, or -1.
// Names are not guaranteed unique.
func (s *Skeleton) Find(name string) int {
	for i := range s.joints {
		if s.joints[i].Name == name {
			return i
		}
	}
	return -1
}

// RotationJointCount returns how many joints are not End Sites.
func (s *Skeleton) RotationJointCount() int {
	n := 0
	for i := range s.joints {
		if !s.joints[i].EndSite {
			n++
		}
	}
	return n
}

// addJoint appends a joint under parent and assigns its index and channel range.
func (s *Skeleton) addJoint(j Joint, parent int) int {
	j.Index = len(s.joints)
	j.Parent = parent
	j.ChannelStart = s.channelCount
	s.joints = append(s.joints, j)
	if parent >= 0 {
		s.joints[parent].Children = append(s.joints[parent].Children, j.Index)
	}
	return j.Index
}

// setChannels records the channel list of joint i. The parser only calls it
// for the most recently added joint, so frame slots stay contiguous.
func (s *Skeleton) setChannels(i int, chans []Channel) {
	s.joints[i].Channels = chans
	s.channelCount += len(chans)
}

// MotionHeader is the timing metadata of the MOTION section.
type MotionHeader struct {
	FrameCount int
	FrameTime  float64
}

// Frame is one sampled channel vector.
type Frame struct {
	Index  int
	Time   float64 // Index × frame time
	Values []float64
}

// Motion is a fully parsed BVH file.
type Motion struct {
	Skeleton *Skeleton
	MotionHeader
	Frames []Frame
}
