// Package structure implements the file and topic integrity rules (A1-A3).
// They run first; a failed A1 means no later pass can trust the file.
package structure

import (
	"fmt"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/config"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/container"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/report"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/topic"
)

// CheckReadable is A1. It reports whether the file is usable at all; false
// means the caller should finalize immediately.
func CheckReadable(s container.Summary, r *report.Report) bool {
	if s.MessageCount == 0 {
		r.Fail("A1: Empty MCAP", "No messages found")

		return false
	}

	if s.ChunkCount == 0 {
		r.Fail("A1: No chunks", "MCAP file has no chunks")

		return false
	}

	if len(s.Channels) == 0 || len(s.Schemas) == 0 {
		r.Warn("A1: Missing index", "MCAP may not support random access")
	}

	r.Pass("A1: MCAP readable", fmt.Sprintf("%d messages, %d chunks", s.MessageCount, s.ChunkCount))

	return true
}

// TopicNames returns the distinct topics of channels in channel order.
func TopicNames(channels []container.Channel) []string {
	seen := make(map[string]struct{}, len(channels))
	names := make([]string, 0, len(channels))

	for _, ch := range channels {
		if _, ok := seen[ch.Topic]; ok {
			continue
		}

		seen[ch.Topic] = struct{}{}
		names = append(names, ch.Topic)
	}

	return names
}

func filter(names []string, keep func(string) bool) []string {
	var out []string

	for _, n := range names {
		if keep(n) {
			out = append(out, n)
		}
	}

	return out
}

// CheckRequiredTopics is A2.
func CheckRequiredTopics(channels []container.Channel, cfg config.Checks, r *report.Report) {
	names := TopicNames(channels)

	joints := filter(names, topic.IsJointState)
	if len(joints) == 0 {
		r.Fail("A2: Missing joint_states topics", "No topics containing 'joint_states' found")

		return
	}

	for _, required := range cfg.RequiredTopics {
		if topic.IsJointState(required) {
			continue
		}

		if len(filter(names, func(n string) bool { return topic.Matches(n, required) })) == 0 {
			r.Fail("A2: Missing required topic", required)
		}
	}

	lead := filter(joints, topic.IsLead)
	follow := filter(joints, topic.IsFollow)
	cameras := filter(names, topic.IsCamera)
	images := filter(cameras, topic.IsImage)
	actions := filter(names, topic.IsAction)

	switch {
	case len(cameras) < cfg.MinCameraCount:
		r.Warn("A2: Insufficient camera topics",
			fmt.Sprintf("Found %d, recommended %d", len(cameras), cfg.MinCameraCount))
	case len(images) < cfg.MinCameraCount:
		r.Warn("A2: Few camera image topics",
			fmt.Sprintf("Found %d image topics, %d camera topics total", len(images), len(cameras)))
	}

	desc := fmt.Sprintf("%d joint_states", len(joints))
	if len(lead) > 0 && len(follow) > 0 {
		desc += fmt.Sprintf(" (%d lead, %d follow)", len(lead), len(follow))
	}

	desc += fmt.Sprintf(", %d cameras", len(cameras))
	if len(actions) > 0 {
		desc += fmt.Sprintf(", %d actions", len(actions))
	}

	r.Pass("A2: Core topics present", desc)
}

// maxListedMissingSchemas bounds the per-channel detail items of A3.
const maxListedMissingSchemas = 3

// CheckSchemas is A3: every channel must reference a known schema.
func CheckSchemas(channels []container.Channel, schemas map[uint16]container.Schema, r *report.Report) {
	var missing []string

	for _, ch := range channels {
		if _, ok := schemas[ch.SchemaID]; !ok {
			missing = append(missing, fmt.Sprintf("%s (schema_id=%d)", ch.Topic, ch.SchemaID))
		}
	}

	if len(missing) > 0 {
		r.Fail("A3: Missing schemas", fmt.Sprintf("%d channels", len(missing)))

		for _, m := range missing[:min(len(missing), maxListedMissingSchemas)] {
			r.Fail("  - Missing schema", m)
		}

		return
	}

	r.Pass("A3: All schemas resolvable", fmt.Sprintf("%d schemas found", len(schemas)))
}
