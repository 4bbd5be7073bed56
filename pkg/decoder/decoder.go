// Package decoder turns raw MCAP message payloads into typed records.
//
// Dispatch is by an explicit table keyed on the normalized schema name rather
// than substring matching, so an unrelated schema that happens to contain
// "jointstate" is never fed to the joint-state parser.
package decoder

import "strings"

// Kind identifies a supported message type.
type Kind int

// Supported schema kinds.
const (
	KindUnknown Kind = iota
	KindJointState
)

// String returns the canonical schema name of the kind.
func (k Kind) String() string {
	switch k {
	case KindJointState:
		return "sensor_msgs/msg/JointState"
	case KindUnknown:
		return "unknown"
	}

	return "unknown"
}

type decodeFunc func(payload []byte) (JointState, bool)

var kinds = map[string]Kind{
	"sensor_msgs/jointstate": KindJointState,
}

var decoders = map[Kind]decodeFunc{
	KindJointState: DecodeJointState,
}

// NormalizeSchemaName canonicalizes ROS2 and DDS type spellings:
// "sensor_msgs/msg/JointState" and "sensor_msgs::msg::dds_::JointState_" both
// become "sensor_msgs/jointstate".
func NormalizeSchemaName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "::", "/")
	n = strings.ReplaceAll(n, "/msg/", "/")
	n = strings.ReplaceAll(n, "/dds_/", "/")

	return strings.TrimSuffix(n, "_")
}

// KindOf returns the kind registered for a schema name.
func KindOf(schemaName string) Kind {
	return kinds[NormalizeSchemaName(schemaName)]
}

// Decode decodes payload according to schemaName. The second result is false
// when the schema is not a supported kind or nothing usable could be parsed.
func Decode(schemaName string, payload []byte) (JointState, bool) {
	fn, ok := decoders[KindOf(schemaName)]
	if !ok {
		return JointState{}, false
	}

	return fn(payload)
}
