// Package tools defines the tool model and the registry that dispatches
// chat commands to their handlers.
//
// A tool bundles a declared parameter schema with one handler function.
// Dispatch is always by explicit tool name: a Request names the tool it
// targets, so two tools can never be matched by argument shape alone.
package tools

import (
	"context"
)

// Cog groups related tools that are registered together with the bot.
type Cog string

const (
	// CogCrypto covers cryptocurrency price lookups.
	CogCrypto Cog = "crypto"

	// CogExchange covers fiat currency conversion and rate tables.
	CogExchange Cog = "exchange"

	// CogImage covers image generation.
	CogImage Cog = "image"

	// CogSettings covers per-user/guild configuration such as the
	// default tool flag.
	CogSettings Cog = "settings"
)

// Property describes a single parameter for the declared schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	// Items describes array element schema (required for type="array")
	Items *PropertyItems `json:"items,omitempty"`
}

// PropertyItems describes the schema for array elements.
type PropertyItems struct {
	Type string `json:"type"`
}

// Schema declares the expected arguments of a tool.
type Schema struct {
	// Required lists parameters that must be provided.
	Required []string `json:"required"`

	// Properties describes each parameter.
	Properties map[string]Property `json:"properties"`
}

// File is a binary attachment produced by a tool, returned to the chat
// platform as a file upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Field is a single name/value pair for rich message rendering.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Output is what a tool hands back: a formatted text message, optional
// embed fields, an optional attachment.
type Output struct {
	// Text is the user-facing message body.
	Text string

	// Fields are optional name/value pairs rendered as embed fields.
	Fields []Field

	// File is an optional binary attachment.
	File *File
}

// ExecuteFunc is the signature for tool execution.
type ExecuteFunc func(ctx context.Context, args map[string]any) (*Output, error)

// Tool bundles a declared parameter schema with one handler.
type Tool struct {
	// Name is the unique identifier, as exposed to the chat platform.
	Name string

	// Description explains what the tool does, shown in command listings.
	Description string

	// Cog names the group this tool is registered under.
	Cog Cog

	// Execute runs the tool with validated arguments.
	Execute ExecuteFunc

	// Schema declares the expected arguments.
	Schema Schema
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// Request is a dispatch request. The target tool is named by an explicit
// discriminant rather than inferred from which optional arguments happen
// to be present.
type Request struct {
	// Tool is the registered tool name.
	Tool string

	// Args are the named arguments for the tool.
	Args map[string]any
}

// Result wraps the outcome of one tool invocation.
type Result struct {
	// ToolName identifies which tool was executed.
	ToolName string

	// Output is the tool's output, nil when Err is set.
	Output *Output

	// Err is set if the tool failed.
	Err error

	// DurationMs is how long execution took.
	DurationMs int64
}

// IsSuccess returns true if the tool executed without error.
func (r *Result) IsSuccess() bool {
	return r.Err == nil
}
