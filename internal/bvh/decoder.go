package bvh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"bvh-worldpos/internal/mathutil"
)

// maxLineSize bounds a single frame line. Wide skeletons exported with full
// precision easily exceed bufio's 64 KiB default.
const maxLineSize = 16 << 20

var errNonFinite = errors.New("non-finite number")

// Decoder reads a BVH stream: the hierarchy and motion header first, then
// one frame per call to Next. Frames are never buffered by the decoder.
type Decoder struct {
	sc   *bufio.Scanner
	line int
	toks []string

	headerDone bool
	sk         *Skeleton
	header     MotionHeader

	next int
	err  error // sticky; io.EOF once all frames were read
}

// NewDecoder returns a decoder reading from r. UTF-8 input with or without a
// BOM and UTF-16 input with a BOM are accepted.
func NewDecoder(r io.Reader) *Decoder {
	tr := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	sc := bufio.NewScanner(tr)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Decoder{sc: sc}
}

// Header parses the HIERARCHY section and the MOTION header. It is
// idempotent; subsequent calls return the first result.
func (d *Decoder) Header() (*Skeleton, MotionHeader, error) {
	if !d.headerDone {
		d.headerDone = true
		sk, hdr, err := d.readHeader()
		if err != nil {
			d.err = err
		} else {
			d.sk, d.header = sk, hdr
		}
	}
	if d.sk == nil {
		return nil, MotionHeader{}, d.err
	}
	return d.sk, d.header, nil
}

// Next returns the next frame, or io.EOF after the declared frame count.
// Missing frames, extra non-blank lines and malformed values are ParseErrors.
func (d *Decoder) Next() (Frame, error) {
	if _, _, err := d.Header(); err != nil {
		return Frame{}, err
	}
	if d.err != nil {
		return Frame{}, d.err
	}

	if d.next >= d.header.FrameCount {
		d.err = d.checkTrailing()
		return Frame{}, d.err
	}

	idx := d.next
	f := Frame{Index: idx, Time: float64(idx) * d.header.FrameTime}
	want := d.sk.ChannelCount()
	if want == 0 {
		d.next++
		return f, nil
	}

	fields, err := d.nextLine()
	if err == io.EOF {
		d.err = d.errorf(ErrParse, "", "expected %d frames, found %d", d.header.FrameCount, idx)
		return Frame{}, d.err
	}
	if err != nil {
		d.err = err
		return Frame{}, err
	}
	if len(fields) != want {
		d.err = d.errorf(ErrChannelCountMismatch, "",
			"frame %d has %d values, skeleton declares %d channels", idx, len(fields), want)
		return Frame{}, d.err
	}

	f.Values = make([]float64, want)
	for i, s := range fields {
		v, err := parseFinite(s)
		if err != nil {
			d.err = d.errorf(ErrParse, "", "frame %d value %d: invalid number %q", idx, i, s)
			return Frame{}, d.err
		}
		f.Values[i] = v
	}
	d.next++
	return f, nil
}

func (d *Decoder) checkTrailing() error {
	for {
		fields, err := d.nextLine()
		if err == io.EOF {
			return io.EOF
		}
		if err != nil {
			return err
		}
		if len(fields) > 0 {
			return d.errorf(ErrParse, "", "unexpected data after %d frames", d.header.FrameCount)
		}
	}
}

func (d *Decoder) readHeader() (*Skeleton, MotionHeader, error) {
	var hdr MotionHeader

	if err := d.expect("HIERARCHY", ""); err != nil {
		return nil, hdr, err
	}
	sk := &Skeleton{}
	tok, err := d.token()
	if err != nil {
		return nil, hdr, d.eof(err, "", "ROOT")
	}
	if tok != "ROOT" {
		return nil, hdr, d.errorf(ErrParse, "", "expected ROOT, got %q", tok)
	}
	if err := d.parseJoint(sk, -1, tok); err != nil {
		return nil, hdr, err
	}

	tok, err = d.token()
	if err != nil {
		return nil, hdr, d.eof(err, "", "MOTION")
	}
	switch tok {
	case "MOTION":
	case "ROOT":
		return nil, hdr, d.errorf(ErrParse, "", "multiple ROOT joints are not supported")
	case "}":
		return nil, hdr, d.errorf(ErrParse, "", "unbalanced '}'")
	default:
		return nil, hdr, d.errorf(ErrParse, "", "expected MOTION, got %q", tok)
	}

	if err := d.expect("Frames:", ""); err != nil {
		return nil, hdr, err
	}
	n, err := d.intToken("")
	if err != nil {
		return nil, hdr, err
	}
	if n < 0 {
		return nil, hdr, d.errorf(ErrParse, "", "negative frame count %d", n)
	}
	hdr.FrameCount = n

	if err := d.expect("Frame", ""); err != nil {
		return nil, hdr, err
	}
	if err := d.expect("Time:", ""); err != nil {
		return nil, hdr, err
	}
	ft, err := d.floatToken("")
	if err != nil {
		return nil, hdr, err
	}
	if ft < 0 {
		return nil, hdr, d.errorf(ErrParse, "", "negative frame time %g", ft)
	}
	hdr.FrameTime = ft

	if rest := d.restOfLine(); len(rest) > 0 {
		return nil, hdr, d.errorf(ErrParse, "", "unexpected %q after frame time", strings.Join(rest, " "))
	}
	return sk, hdr, nil
}

// parseJoint consumes one ROOT, JOINT or End Site block whose keyword has
// already been read.
func (d *Decoder) parseJoint(sk *Skeleton, parent int, keyword string) error {
	j := Joint{}
	rest := d.restOfLine()
	open := len(rest) > 0 && rest[len(rest)-1] == "{"
	if open {
		rest = rest[:len(rest)-1]
	}

	if keyword == "End" {
		if len(rest) == 0 || rest[0] != "Site" {
			return d.errorf(ErrParse, sk.joints[parent].Name, "expected 'End Site'")
		}
		j.EndSite = true
		j.Name = sk.joints[parent].Name + "_End"
	} else {
		j.Name = strings.Join(rest, " ")
		if j.Name == "" {
			return d.errorf(ErrParse, "", "%s without a name", keyword)
		}
	}

	idx := sk.addJoint(j, parent)
	name := sk.joints[idx].Name

	if !open {
		if err := d.expect("{", name); err != nil {
			return err
		}
	}

	seenChannels := false
	for {
		tok, err := d.token()
		if err != nil {
			return d.eof(err, name, "'}'")
		}
		switch tok {
		case "OFFSET":
			var off [3]float64
			for i := range off {
				if off[i], err = d.floatToken(name); err != nil {
					return err
				}
			}
			sk.joints[idx].Offset = mathutil.V3(off[0], off[1], off[2])

		case "CHANNELS":
			switch {
			case sk.joints[idx].EndSite:
				return d.errorf(ErrParse, name, "End Site cannot declare CHANNELS")
			case seenChannels:
				return d.errorf(ErrParse, name, "duplicate CHANNELS")
			case len(sk.joints[idx].Children) > 0:
				return d.errorf(ErrParse, name, "CHANNELS must precede child joints")
			}
			seenChannels = true
			chans, err := d.parseChannels(name)
			if err != nil {
				return err
			}
			sk.setChannels(idx, chans)

		case "JOINT", "End":
			if sk.joints[idx].EndSite {
				return d.errorf(ErrParse, name, "End Site cannot have children")
			}
			if err := d.parseJoint(sk, idx, tok); err != nil {
				return err
			}

		case "}":
			return nil

		default:
			return d.errorf(ErrParse, name, "unexpected token %q", tok)
		}
	}
}

func (d *Decoder) parseChannels(joint string) ([]Channel, error) {
	n, err := d.intToken(joint)
	if err != nil {
		return nil, err
	}
	names := d.restOfLine()
	if n < 0 || len(names) != n {
		return nil, d.errorf(ErrParse, joint, "CHANNELS declares %d channels but lists %d", n, len(names))
	}
	chans := make([]Channel, n)
	for i, s := range names {
		c, ok := ParseChannel(s)
		if !ok {
			return nil, d.errorf(ErrParse, joint, "unknown channel %q", s)
		}
		chans[i] = c
	}
	return chans, nil
}

// nextLine reads the next non-blank line, discarding any buffered tokens.
func (d *Decoder) nextLine() ([]string, error) {
	d.toks = nil
	for d.sc.Scan() {
		d.line++
		if fields := strings.Fields(d.sc.Text()); len(fields) > 0 {
			return fields, nil
		}
	}
	if err := d.sc.Err(); err != nil {
		return nil, fmt.Errorf("bvh: read line %d: %w", d.line+1, err)
	}
	return nil, io.EOF
}

func (d *Decoder) token() (string, error) {
	for len(d.toks) == 0 {
		fields, err := d.nextLine()
		if err != nil {
			return "", err
		}
		d.toks = fields
	}
	t := d.toks[0]
	d.toks = d.toks[1:]
	return t, nil
}

func (d *Decoder) restOfLine() []string {
	rest := d.toks
	d.toks = nil
	return rest
}

func (d *Decoder) expect(want, joint string) error {
	tok, err := d.token()
	if err != nil {
		return d.eof(err, joint, strconv.Quote(want))
	}
	if tok != want {
		return d.errorf(ErrParse, joint, "expected %q, got %q", want, tok)
	}
	return nil
}

func (d *Decoder) intToken(joint string) (int, error) {
	tok, err := d.token()
	if err != nil {
		return 0, d.eof(err, joint, "integer")
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, d.errorf(ErrParse, joint, "invalid integer %q", tok)
	}
	return n, nil
}

func (d *Decoder) floatToken(joint string) (float64, error) {
	tok, err := d.token()
	if err != nil {
		return 0, d.eof(err, joint, "number")
	}
	v, err := parseFinite(tok)
	if err != nil {
		return 0, d.errorf(ErrParse, joint, "invalid number %q", tok)
	}
	return v, nil
}

// parseFinite rejects NaN and infinities along with malformed numbers.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNonFinite
	}
	return v, nil
}

func (d *Decoder) eof(err error, joint, want string) error {
	if err != io.EOF {
		return err
	}
	return d.errorf(ErrParse, joint, "unexpected end of input, expected %s", want)
}

func (d *Decoder) errorf(kind error, joint, format string, args ...any) error {
	return &ParseError{Kind: kind, Line: d.line, Joint: joint, Msg: fmt.Sprintf(format, args...)}
}
