package version //nolint:testpackage // mutates package state.

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	saved := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = saved[0], saved[1], saved[2] })

	Version, Commit, Date = "dev", unknown, unknown

	apply(&debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	})

	assert.Equal(t, "mcapcheck v0.3.1 (commit: abc123, built: 2026-01-02T03:04:05Z)", String())

	Version = "v9"
	apply(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	assert.Equal(t, "v9", Version)
}
