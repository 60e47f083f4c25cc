package bvh

import (
	"errors"
	"fmt"
)

var (
	ErrParse                = errors.New("parse error")
	ErrChannelCountMismatch = errors.New("channel count mismatch")
)

// ParseError reports malformed input. It always matches ErrParse and also
// matches Kind when Kind is more specific.
type ParseError struct {
	Kind  error
	Line  int    // 1-based; 0 when unknown
	Joint string // enclosing joint, if any
	Msg   string
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	msg := "bvh: " + e.Kind.Error()
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	if e.Joint != "" {
		msg += fmt.Sprintf(" (joint %q)", e.Joint)
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Kind }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// FrameError reports a frame vector whose length disagrees with the skeleton.
type FrameError struct {
	Frame int
	Want  int
	Got   int
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("bvh: %s in frame %d: want %d values, got %d",
		ErrChannelCountMismatch, e.Frame, e.Want, e.Got)
}

func (e *FrameError) Unwrap() error { return ErrChannelCountMismatch }
