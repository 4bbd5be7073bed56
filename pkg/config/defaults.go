// Package config builds the immutable checker configuration from defaults, an
// optional .mcapcheck.yaml file, the environment, and CLI overrides.
package config

// Check threshold defaults.
const (
	DefaultMinJointHz            = 45.0
	DefaultMinCameraFPS          = 14.5
	DefaultMaxTimeGapMs          = 200.0
	DefaultMaxSyncMs             = 34.0
	DefaultMaxDesyncRatio        = 0.05
	DefaultMaxJointJump          = 0.5
	DefaultMaxTimingJitter       = 0.02
	DefaultMinCameraCount        = 2
	DefaultMinActionMessages     = 10
	DefaultMaxFutureActionRatio  = 0.1
	DefaultMinStabilitySamples   = 10
	DefaultImageSampleLimit      = 100
)

// Output defaults.
const (
	DefaultReportsDir = "Reports"
	DefaultFormat     = FormatText
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DefaultRequiredTopics lists the topics a file must carry.
func DefaultRequiredTopics() []string {
	return []string{"/joint_states"}
}

// DefaultRequiredMetadataFields lists the governance fields a file should carry.
func DefaultRequiredMetadataFields() []string {
	return []string{"robot_model", "arm_dof", "control_mode", "task_description", "episode_id"}
}

// KnownControlModes are the accepted control_mode metadata values.
func KnownControlModes() []string {
	return []string{"position", "velocity", "torque", "impedance", "cartesian"}
}
