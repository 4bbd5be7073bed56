package config

import (
	"errors"
	"fmt"
	"slices"
)

// Sentinel validation errors.
var (
	ErrNonPositiveThreshold = errors.New("threshold must be positive")
	ErrRatioOutOfRange      = errors.New("ratio must be within [0, 1]")
	ErrNegativeCount        = errors.New("count must not be negative")
	ErrUnknownFormat        = errors.New("unknown output format")
)

// Config is the complete checker configuration. It is built once and passed
// by value; nothing mutates it afterwards.
type Config struct {
	Checks  Checks        `mapstructure:"checks"`
	Modes   Modes         `mapstructure:"modes"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Checks holds rule thresholds.
type Checks struct {
	RequiredTopics         []string `mapstructure:"required_topics"`
	RequiredMetadataFields []string `mapstructure:"required_metadata_fields"`
	MinJointHz             float64  `mapstructure:"min_joint_hz"`
	MinCameraFPS           float64  `mapstructure:"min_camera_fps"`
	MaxTimeGapMs           float64  `mapstructure:"max_time_gap_ms"`
	MaxSyncMs              float64  `mapstructure:"max_sync_ms"`
	MaxDesyncRatio         float64  `mapstructure:"max_desync_ratio"`
	MaxJointJump           float64  `mapstructure:"max_joint_jump"`
	MaxTimingJitter        float64  `mapstructure:"max_timing_jitter"`
	MaxFutureActionRatio   float64  `mapstructure:"max_future_action_ratio"`
	MinCameraCount         int      `mapstructure:"min_camera_count"`
	MinActionMessages      int      `mapstructure:"min_action_messages"`
	MinStabilitySamples    int      `mapstructure:"min_stability_samples"`
	ImageSampleLimit       int      `mapstructure:"image_sample_limit"`
}

// Modes holds the rule switches.
type Modes struct {
	Strict   bool `mapstructure:"strict"`
	Vision   bool `mapstructure:"enable_vision"`
	Advanced bool `mapstructure:"enable_advanced"`
}

// OutputConfig controls where and how reports are written.
type OutputConfig struct {
	ReportsDir string `mapstructure:"reports_dir"`
	Format     string `mapstructure:"format"`
	NoSave     bool   `mapstructure:"no_save"`
	NoColor    bool   `mapstructure:"no_color"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Checks: Checks{
			RequiredTopics:         DefaultRequiredTopics(),
			RequiredMetadataFields: DefaultRequiredMetadataFields(),
			MinJointHz:             DefaultMinJointHz,
			MinCameraFPS:           DefaultMinCameraFPS,
			MaxTimeGapMs:           DefaultMaxTimeGapMs,
			MaxSyncMs:              DefaultMaxSyncMs,
			MaxDesyncRatio:         DefaultMaxDesyncRatio,
			MaxJointJump:           DefaultMaxJointJump,
			MaxTimingJitter:        DefaultMaxTimingJitter,
			MaxFutureActionRatio:   DefaultMaxFutureActionRatio,
			MinCameraCount:         DefaultMinCameraCount,
			MinActionMessages:      DefaultMinActionMessages,
			MinStabilitySamples:    DefaultMinStabilitySamples,
			ImageSampleLimit:       DefaultImageSampleLimit,
		},
		Output: OutputConfig{
			ReportsDir: DefaultReportsDir,
			Format:     DefaultFormat,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Validate checks thresholds and enumerations.
func (c Config) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"min_joint_hz", c.Checks.MinJointHz},
		{"min_camera_fps", c.Checks.MinCameraFPS},
		{"max_time_gap_ms", c.Checks.MaxTimeGapMs},
		{"max_sync_ms", c.Checks.MaxSyncMs},
		{"max_joint_jump", c.Checks.MaxJointJump},
		{"max_timing_jitter", c.Checks.MaxTimingJitter},
	}

	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s=%v", ErrNonPositiveThreshold, p.name, p.value)
		}
	}

	ratios := []struct {
		name  string
		value float64
	}{
		{"max_desync_ratio", c.Checks.MaxDesyncRatio},
		{"max_future_action_ratio", c.Checks.MaxFutureActionRatio},
	}

	for _, r := range ratios {
		if r.value < 0 || r.value > 1 {
			return fmt.Errorf("%w: %s=%v", ErrRatioOutOfRange, r.name, r.value)
		}
	}

	counts := []struct {
		name  string
		value int
	}{
		{"min_camera_count", c.Checks.MinCameraCount},
		{"min_action_messages", c.Checks.MinActionMessages},
		{"min_stability_samples", c.Checks.MinStabilitySamples},
		{"image_sample_limit", c.Checks.ImageSampleLimit},
	}

	for _, n := range counts {
		if n.value < 0 {
			return fmt.Errorf("%w: %s=%d", ErrNegativeCount, n.name, n.value)
		}
	}

	if !slices.Contains([]string{FormatText, FormatJSON, FormatYAML}, c.Output.Format) {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, c.Output.Format)
	}

	return nil
}

// Overrides are CLI-supplied values applied over the loaded configuration.
// Nil fields leave the loaded value in place.
type Overrides struct {
	Strict     *bool
	Vision     *bool
	Advanced   *bool
	Format     *string
	ReportsDir *string
	NoSave     *bool
	NoColor    *bool
	LogLevel   *string
}

// With returns a copy of c with the overrides applied.
func (c Config) With(o Overrides) Config {
	c.Checks.RequiredTopics = slices.Clone(c.Checks.RequiredTopics)
	c.Checks.RequiredMetadataFields = slices.Clone(c.Checks.RequiredMetadataFields)

	setIf(&c.Modes.Strict, o.Strict)
	setIf(&c.Modes.Vision, o.Vision)
	setIf(&c.Modes.Advanced, o.Advanced)
	setIf(&c.Output.Format, o.Format)
	setIf(&c.Output.ReportsDir, o.ReportsDir)
	setIf(&c.Output.NoSave, o.NoSave)
	setIf(&c.Output.NoColor, o.NoColor)
	setIf(&c.Logging.Level, o.LogLevel)

	return c
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
