// Package topic classifies MCAP topic names into the stream families the
// rule modules reason about. All matching is case-insensitive substring
// matching on the topic name.
package topic

import "strings"

// Substrings that identify each stream family.
const (
	markerJointStates = "joint_states"
	markerImage       = "image"
	markerCamera      = "camera"
	markerAction      = "action"
	markerCommand     = "command"
	markerLead        = "lead"
	markerFollow      = "follow"
)

// IsJointState reports whether name carries joint-state messages.
func IsJointState(name string) bool {
	return contains(name, markerJointStates)
}

// IsImage reports whether name carries image frames.
func IsImage(name string) bool {
	return contains(name, markerImage)
}

// IsCamera reports whether name belongs to a camera, image or not.
func IsCamera(name string) bool {
	return contains(name, markerCamera)
}

// IsAction reports whether name carries action or command messages.
func IsAction(name string) bool {
	return contains(name, markerAction) || contains(name, markerCommand)
}

// IsLead reports whether a joint-state topic belongs to the leader arm of a
// teleoperation pair.
func IsLead(name string) bool {
	return contains(name, markerLead)
}

// IsFollow reports whether a joint-state topic belongs to the follower arm.
func IsFollow(name string) bool {
	return contains(name, markerFollow)
}

// Matches reports whether name contains pattern, ignoring case and a leading slash
// on the pattern.
func Matches(name, pattern string) bool {
	return contains(name, strings.TrimPrefix(pattern, "/"))
}

func contains(name, marker string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(marker))
}
