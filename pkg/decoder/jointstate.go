package decoder

import "github.com/Sumatoshi-tech/mcapcheck/pkg/cdr"

// stampSize is header.stamp: int32 sec + uint32 nanosec.
const stampSize = 8

// JointState is a decoded sensor_msgs/JointState.
// Velocity and Effort are nil when absent from the payload.
type JointState struct {
	Names    []string
	Position []float64
	Velocity []float64
	Effort   []float64
}

// Valid reports whether the record carries at least one position.
func (js JointState) Valid() bool {
	return len(js.Position) > 0
}

// DecodeJointState parses a CDR-encoded JointState. Parsing stops at the first
// read that runs past the buffer; fields completed before that point are kept.
// The second result is false only if neither names nor positions were recovered.
func DecodeJointState(payload []byte) (JointState, bool) {
	var js JointState

	c, ok := cdr.NewCursor(payload)
	if !ok {
		return js, false
	}

	if !c.Skip(stampSize) {
		return js, false
	}

	if _, ok = c.String(); !ok {
		return js, false
	}

	names, ok := c.StringSeq()
	js.Names = names

	if !ok {
		return js, len(js.Names) > 0
	}

	if js.Position, ok = c.Float64Seq(); !ok {
		return js, len(js.Names) > 0
	}

	// velocity and effort are optional trailers.
	if js.Velocity, ok = c.Float64Seq(); !ok {
		return js, true
	}

	js.Effort, _ = c.Float64Seq()

	return js, true
}

// EncodeJointState produces the CDR payload DecodeJointState reads.
func EncodeJointState(sec int32, nanosec uint32, frameID string, js JointState) []byte {
	w := cdr.NewWriter()
	w.Int32(sec)
	w.Uint32(nanosec)
	w.String(frameID)
	w.StringSeq(js.Names)
	w.Float64Seq(js.Position)

	if js.Velocity == nil && js.Effort == nil {
		return w.Bytes()
	}

	w.Float64Seq(js.Velocity)

	if js.Effort != nil {
		w.Float64Seq(js.Effort)
	}

	return w.Bytes()
}
