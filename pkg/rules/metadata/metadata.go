// Package metadata implements the governance rules (I1) over the merged
// metadata records of a file.
package metadata

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/config"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/container"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/report"
)

// Well-known metadata keys.
const (
	KeyTaskName    = "task_name"
	KeyTaskID      = "task_id"
	KeyOperator    = "operator"
	KeyStation     = "station"
	KeyEpisodeID   = "episode_id"
	KeyArmDOF      = "arm_dof"
	KeyControlMode = "control_mode"
)

// Typical arm degrees of freedom.
const (
	minDOF = 3
	maxDOF = 10
)

var informational = []struct {
	key  string
	name string
}{
	{KeyTaskName, "I1: Task name"},
	{KeyTaskID, "I1: Task ID"},
	{KeyOperator, "I1: Operator"},
	{KeyStation, "I1: Station"},
	{KeyEpisodeID, "I1: Episode ID"},
}

// CheckMetadata is I1. It merges records in file order and checks the
// required fields; task_id substitutes for a missing episode_id. The merged
// fields are returned for CheckConsistency.
func CheckMetadata(records []container.Metadata, cfg config.Checks, r *report.Report) map[string]string {
	if len(records) == 0 {
		r.Warn("I1: No metadata found", "MCAP has no metadata section")

		return nil
	}

	fields := container.MergeMetadata(records)
	r.Pass("I1: Metadata found", fmt.Sprintf("%d metadata records, %d fields", len(records), len(fields)))

	_, hasTaskID := fields[KeyTaskID]

	var missing, found []string

	for _, field := range cfg.RequiredMetadataFields {
		if field == KeyEpisodeID && hasTaskID {
			continue
		}

		if _, ok := fields[field]; ok {
			found = append(found, field)
		} else {
			missing = append(missing, field)
		}
	}

	if len(missing) > 0 {
		r.Warn("I1: Missing required metadata fields", strings.Join(missing, ", "))
	}

	if len(found) > 0 {
		r.Pass("I1: Found metadata fields", strings.Join(found, ", "))
	}

	for _, item := range informational {
		if v := container.Unquote(fields[item.key]); v != "" {
			r.Pass(item.name, v)
		}
	}

	return fields
}

// CheckConsistency warns on an arm_dof that is not an integer in the
// typical range and on an unknown control_mode.
func CheckConsistency(fields map[string]string, r *report.Report) {
	if raw := container.Unquote(fields[KeyArmDOF]); raw != "" {
		dof, err := strconv.Atoi(raw)

		switch {
		case err != nil:
			r.Warn("I1: Invalid arm_dof type", fmt.Sprintf("Expected int, got %q", raw))
		case dof < minDOF || dof > maxDOF:
			r.Warn("I1: Unusual arm_dof", fmt.Sprintf("%d DOF (typical range: %d-%d)", dof, minDOF, maxDOF))
		}
	}

	mode := container.Unquote(fields[KeyControlMode])
	if mode == "" {
		return
	}

	known := config.KnownControlModes()
	if !slices.Contains(known, strings.ToLower(mode)) {
		r.Warn("I1: Unknown control_mode", fmt.Sprintf("%s (expected: %s)", mode, strings.Join(known, ", ")))
	}
}
