package report

// Level is the severity of a finding and the grade of a report.
type Level string

// Levels, from best to worst.
const (
	LevelPass Level = "PASS"
	LevelWarn Level = "WARN"
	LevelFail Level = "FAIL"
)

// Process exit codes per grade. WARN is nonzero but distinct from FAIL.
const (
	ExitPass = 0
	ExitFail = 1
	ExitWarn = 2
)

func (l Level) rank() int {
	switch l {
	case LevelPass:
		return 1
	case LevelWarn:
		return 2
	case LevelFail:
		return 3
	}

	return 0
}

// Worse returns the more severe of l and other.
func (l Level) Worse(other Level) Level {
	if other.rank() > l.rank() {
		return other
	}

	return l
}

// ExitCode maps the level to the CLI exit code.
func (l Level) ExitCode() int {
	switch l {
	case LevelFail:
		return ExitFail
	case LevelWarn:
		return ExitWarn
	case LevelPass:
		return ExitPass
	}

	return ExitPass
}

// Icon returns the glyph shown next to the level in text output.
func (l Level) Icon() string {
	switch l {
	case LevelPass:
		return "✓"
	case LevelWarn:
		return "⚠"
	case LevelFail:
		return "✗"
	}

	return "?"
}
