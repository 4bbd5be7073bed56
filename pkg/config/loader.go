package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	configName      = ".mcapcheck"
	configType      = "yaml"
	envPrefix       = "MCAPCHECK"
	envKeySeparator = "_"
)

// bareEnv maps config keys to the unprefixed environment names accepted
// alongside MCAPCHECK_<SECTION>_<KEY>.
var bareEnv = []struct{ key, env string }{
	{"checks.min_joint_hz", "MIN_JOINT_HZ"},
	{"checks.min_camera_fps", "MIN_CAMERA_FPS"},
	{"checks.max_time_gap_ms", "MAX_TIME_GAP_MS"},
	{"checks.max_sync_ms", "MAX_SYNC_MS"},
	{"checks.max_desync_ratio", "MAX_DESYNC_RATIO"},
	{"checks.max_joint_jump", "MAX_JOINT_JUMP"},
	{"checks.max_timing_jitter", "MAX_TIMING_JITTER"},
	{"checks.min_camera_count", "MIN_CAMERA_COUNT"},
	{"checks.required_topics", "REQUIRED_TOPICS"},
	{"checks.required_metadata_fields", "REQUIRED_METADATA_FIELDS"},
	{"modes.strict", "ENABLE_STRICT_MODE"},
	{"modes.enable_vision", "ENABLE_VISION_CHECKS"},
	{"modes.enable_advanced", "ENABLE_ADVANCED_CHECKS"},
}

// Load builds the configuration from defaults, the config file, and the
// environment. If configPath is empty, .mcapcheck.yaml is searched in the
// working directory and $HOME; a missing file is not an error.
func Load(configPath string) (Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	for _, b := range bareEnv {
		prefixed := envPrefix + envKeySeparator + strings.ToUpper(strings.ReplaceAll(b.key, ".", envKeySeparator))
		if err := v.BindEnv(b.key, prefixed, b.env); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", b.env, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Checks.RequiredTopics = trimAll(cfg.Checks.RequiredTopics)
	cfg.Checks.RequiredMetadataFields = trimAll(cfg.Checks.RequiredMetadataFields)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("checks.required_topics", d.Checks.RequiredTopics)
	v.SetDefault("checks.required_metadata_fields", d.Checks.RequiredMetadataFields)
	v.SetDefault("checks.min_joint_hz", d.Checks.MinJointHz)
	v.SetDefault("checks.min_camera_fps", d.Checks.MinCameraFPS)
	v.SetDefault("checks.max_time_gap_ms", d.Checks.MaxTimeGapMs)
	v.SetDefault("checks.max_sync_ms", d.Checks.MaxSyncMs)
	v.SetDefault("checks.max_desync_ratio", d.Checks.MaxDesyncRatio)
	v.SetDefault("checks.max_joint_jump", d.Checks.MaxJointJump)
	v.SetDefault("checks.max_timing_jitter", d.Checks.MaxTimingJitter)
	v.SetDefault("checks.max_future_action_ratio", d.Checks.MaxFutureActionRatio)
	v.SetDefault("checks.min_camera_count", d.Checks.MinCameraCount)
	v.SetDefault("checks.min_action_messages", d.Checks.MinActionMessages)
	v.SetDefault("checks.min_stability_samples", d.Checks.MinStabilitySamples)
	v.SetDefault("checks.image_sample_limit", d.Checks.ImageSampleLimit)

	v.SetDefault("modes.strict", false)
	v.SetDefault("modes.enable_vision", false)
	v.SetDefault("modes.enable_advanced", false)

	v.SetDefault("output.reports_dir", d.Output.ReportsDir)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.no_save", false)
	v.SetDefault("output.no_color", false)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))

	for _, s := range values {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	return out
}
