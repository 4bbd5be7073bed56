// Package report collects check findings and grades them.
//
// A Report starts collecting, accepts findings from every rule, and is
// finalized exactly once. Finalize computes the grade: FAIL if any finding
// failed, else WARN if any warned, else PASS. A finalized report is read-only.
package report

import (
	"errors"
	"strconv"
	"strings"
)

// ErrFinalized is the panic value when a finding is added after Finalize.
var ErrFinalized = errors.New("report already finalized")

// Finding is one rule outcome. Info is nil when the rule has no detail.
type Finding struct {
	Level Level
	Name  string
	Info  *string
}

// Detail returns the info text, or "" when absent.
func (f Finding) Detail() string {
	if f.Info == nil {
		return ""
	}

	return *f.Info
}

// Summary counts findings per level.
type Summary struct {
	Passed   int `json:"passed"   yaml:"passed"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Failed   int `json:"failed"   yaml:"failed"`
}

// Report accumulates findings for one file.
type Report struct {
	file      string
	items     []Finding
	level     Level
	hardFail  bool
	strict    bool
	finalized bool
}

// New returns an empty report for file. In strict mode Soft findings are
// recorded as FAIL instead of WARN.
func New(file string, strict bool) *Report {
	return &Report{file: file, strict: strict}
}

// Pass records a passing check.
func (r *Report) Pass(name, info string) { r.add(LevelPass, name, info) }

// Warn records a soft failure.
func (r *Report) Warn(name, info string) { r.add(LevelWarn, name, info) }

// Fail records a hard failure.
func (r *Report) Fail(name, info string) { r.add(LevelFail, name, info) }

// Soft records a quality finding: WARN normally, FAIL in strict mode.
func (r *Report) Soft(name, info string) {
	if r.strict {
		r.Fail(name, info)

		return
	}

	r.Warn(name, info)
}

// Strict reports whether soft findings escalate to FAIL.
func (r *Report) Strict() bool { return r.strict }

func (r *Report) add(level Level, name, info string) {
	if r.finalized {
		panic(ErrFinalized)
	}

	f := Finding{Level: level, Name: name}
	if info != "" {
		f.Info = &info
	}

	r.items = append(r.items, f)

	if level == LevelFail {
		r.hardFail = true
	}
}

// HardFail reports whether any FAIL has been recorded.
func (r *Report) HardFail() bool { return r.hardFail }

// Finalize grades the report and freezes it. Later calls return the same level.
func (r *Report) Finalize() Level {
	if r.finalized {
		return r.level
	}

	r.level = LevelPass

	for _, f := range r.items {
		r.level = r.level.Worse(f.Level)
	}

	r.finalized = true

	return r.level
}

// Finalized reports whether Finalize has run.
func (r *Report) Finalized() bool { return r.finalized }

// Level returns the grade, or "" before Finalize.
func (r *Report) Level() Level { return r.level }

// File returns the checked path.
func (r *Report) File() string { return r.file }

// Items returns a copy of the findings in insertion order.
func (r *Report) Items() []Finding {
	out := make([]Finding, len(r.items))
	copy(out, r.items)

	return out
}

// Summary counts findings per level.
func (r *Report) Summary() Summary {
	var s Summary

	for _, f := range r.items {
		switch f.Level {
		case LevelPass:
			s.Passed++
		case LevelWarn:
			s.Warnings++
		case LevelFail:
			s.Failed++
		}
	}

	return s
}

// FormatFloat renders a threshold the way it appears in finding details:
// shortest form, always with a decimal point ("45.0", "14.5", "0.05").
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if strings.ContainsAny(s, ".NI") {
		return s
	}

	return s + ".0"
}
