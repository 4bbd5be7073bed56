// Package values implements the numerical rules over decoded joint states:
// validity (E1), motion smoothness (E2), timing stability (F) and the
// advanced placeholders (F1, F2).
package values

import (
	"errors"
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/container"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/decoder"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/topic"
)

const encodingCDR = "cdr"

// Stats counts the joint-state messages seen by a pass.
type Stats struct {
	Decoded        int
	DecodeFailures int
}

// jointStates walks src and calls fn for every joint-state record. Records
// that cannot be decoded into a usable JointState are counted as failures
// and skipped. fn returns false to stop the walk.
func jointStates(src container.Source, fn func(name string, js decoder.JointState) bool) (Stats, error) {
	var st Stats

	for {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			return st, nil
		}

		if err != nil {
			return st, fmt.Errorf("read messages: %w", err)
		}

		if !topic.IsJointState(rec.Channel.Topic) {
			continue
		}

		js, ok := decode(rec)
		if !ok {
			st.DecodeFailures++

			continue
		}

		st.Decoded++

		if !fn(rec.Channel.Topic, js) {
			return st, nil
		}
	}
}

func decode(rec container.Record) (decoder.JointState, bool) {
	if rec.Schema == nil || rec.Channel.MessageEncoding != encodingCDR {
		return decoder.JointState{}, false
	}

	js, ok := decoder.Decode(rec.Schema.Name, rec.Message.Data)
	if !ok || !js.Valid() {
		return decoder.JointState{}, false
	}

	return js, true
}
