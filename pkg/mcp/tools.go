package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/checker"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/config"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/history"
)

// Tool name constants.
const (
	ToolNameCheck   = "mcap_check"
	ToolNameHistory = "mcap_history"
)

const (
	checkToolDescription = "Check an MCAP robot-arm recording for structural, timing, " +
		"numerical and metadata quality. Returns the JSON report with a PASS, WARN or FAIL grade."
	historyToolDescription = "List previous mcapcheck runs stored in a SQLite history database."

	defaultHistoryLimit = 20
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyPath indicates the path parameter is empty.
	ErrEmptyPath = errors.New("path parameter is required and must not be empty")
	// ErrPathNotAbsolute indicates the path is not absolute.
	ErrPathNotAbsolute = errors.New("path must be an absolute path")
)

// CheckInput is the input schema for the mcap_check tool.
type CheckInput struct {
	Path           string `json:"path"                      jsonschema:"absolute path to an .mcap file"`
	Strict         bool   `json:"strict,omitempty"          jsonschema:"report quality warnings as failures"`
	EnableVision   bool   `json:"enable_vision,omitempty"   jsonschema:"run the image sampling checks"`
	EnableAdvanced bool   `json:"enable_advanced,omitempty" jsonschema:"run the trajectory and vibration checks"`
}

// HistoryInput is the input schema for the mcap_history tool.
type HistoryInput struct {
	DB    string `json:"db"              jsonschema:"absolute path to the history database"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of runs (default: 20)"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

func validatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	if !filepath.IsAbs(path) {
		return fmt.Errorf("%w: %s", ErrPathNotAbsolute, path)
	}

	return nil
}

// handleCheck processes mcap_check tool calls. A file that cannot be read
// is not a tool error: the report carries the FAIL finding.
func (s *Server) handleCheck(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input CheckInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := validatePath(input.Path); err != nil {
		return errorResult(err)
	}

	base := s.deps.Config
	cfg := base.With(config.Overrides{
		Strict:   orTrue(base.Modes.Strict, input.Strict),
		Vision:   orTrue(base.Modes.Vision, input.EnableVision),
		Advanced: orTrue(base.Modes.Advanced, input.EnableAdvanced),
	})

	c := checker.New(cfg)
	c.Logger = s.deps.Logger
	c.Metrics = s.deps.Metrics
	c.Tracer = s.deps.Tracer

	out := c.Run(ctx, input.Path)

	return jsonResult(out.Report.Document())
}

func orTrue(base, requested bool) *bool {
	v := base || requested

	return &v
}

// handleHistory processes mcap_history tool calls.
func handleHistory(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input HistoryInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := validatePath(input.DB); err != nil {
		return errorResult(err)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	store, err := history.Open(ctx, input.DB)
	if err != nil {
		return errorResult(err)
	}
	defer store.Close()

	runs, err := store.List(ctx, limit)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(runs)
}
