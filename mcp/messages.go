// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// This file holds the params/result types for every method in spec.md §4:
// tools, resources, prompts, completions, roots, sampling, elicitation, and
// logging. Tool, Resource, ResourceTemplate, and Prompt declarations (the
// feature definitions themselves) live in tool.go, resource.go, and
// prompt.go alongside their registration logic.

package mcp

import (
	"github.com/corewire/mcp-go/internal/json"
	"github.com/google/jsonschema-go/jsonschema"
)

// metaField is embedded in Params types to provide "_meta" plumbing without
// repeating GetMeta/SetMeta on every type.
type metaField struct {
	Meta_ Meta `json:"_meta,omitempty"`
}

func (m *metaField) GetMeta() Meta  { return m.Meta_ }
func (m *metaField) SetMeta(v Meta) { m.Meta_ = v }

// --- tools/* ---

// CallToolParams are the params of tools/call.
type CallToolParams struct {
	metaField
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResult is the result of tools/call (spec.md §6, "Tool result
// shape").
type CallToolResult struct {
	Content           []Content `json:"content"`
	StructuredContent any       `json:"structuredContent,omitempty"`
	IsError           bool      `json:"isError,omitempty"`
	Meta              Meta      `json:"_meta,omitempty"`
}

// UnmarshalJSON decodes the wire content array into concrete Content values
// before assigning it, since Content is an interface and the standard
// decoder has no way to pick a concrete type on its own.
func (r *CallToolResult) UnmarshalJSON(data []byte) error {
	type result CallToolResult
	var wire struct {
		result
		Content []*wireContent `json:"content"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	content, err := contentsFromWire(wire.Content)
	if err != nil {
		return err
	}
	*r = CallToolResult(wire.result)
	r.Content = content
	return nil
}

// ListToolsParams are the params of tools/list.
type ListToolsParams struct {
	metaField
	Cursor string `json:"cursor,omitempty"`
}

// ListToolsResult is the result of tools/list.
type ListToolsResult struct {
	Tools      []*Tool `json:"tools"`
	NextCursor string  `json:"nextCursor,omitempty"`
}

// --- resources/* ---

// ListResourcesParams are the params of resources/list.
type ListResourcesParams struct {
	metaField
	Cursor string `json:"cursor,omitempty"`
}

// ListResourcesResult is the result of resources/list.
type ListResourcesResult struct {
	Resources  []*Resource `json:"resources"`
	NextCursor string      `json:"nextCursor,omitempty"`
}

// ListResourceTemplatesParams are the params of resources/templates/list.
type ListResourceTemplatesParams struct {
	metaField
	Cursor string `json:"cursor,omitempty"`
}

// ListResourceTemplatesResult is the result of resources/templates/list.
type ListResourceTemplatesResult struct {
	ResourceTemplates []*ResourceTemplate `json:"resourceTemplates"`
	NextCursor        string              `json:"nextCursor,omitempty"`
}

// ReadResourceParams are the params of resources/read.
type ReadResourceParams struct {
	metaField
	URI string `json:"uri"`
}

// ReadResourceResult is the result of resources/read.
type ReadResourceResult struct {
	Contents []*ResourceContents `json:"contents"`
}

// SubscribeParams are the params of resources/subscribe.
type SubscribeParams struct {
	metaField
	URI string `json:"uri"`
}

// UnsubscribeParams are the params of resources/unsubscribe.
type UnsubscribeParams struct {
	metaField
	URI string `json:"uri"`
}

// ResourceUpdatedNotificationParams are the params of
// notifications/resources/updated.
type ResourceUpdatedNotificationParams struct {
	URI string `json:"uri"`
}

// --- prompts/* ---

// PromptArgument describes one templated argument a prompt accepts.
type PromptArgument struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// PromptMessage is one message in a GetPromptResult.
type PromptMessage struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}

// UnmarshalJSON decodes the wire content object into a concrete Content
// value before assigning it.
func (m *PromptMessage) UnmarshalJSON(data []byte) error {
	type msg PromptMessage
	var wire struct {
		msg
		Content *wireContent `json:"content"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	content, err := contentFromWire(wire.Content)
	if err != nil {
		return err
	}
	*m = PromptMessage(wire.msg)
	m.Content = content
	return nil
}

// GetPromptParams are the params of prompts/get.
type GetPromptParams struct {
	metaField
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

// GetPromptResult is the result of prompts/get.
type GetPromptResult struct {
	Description string           `json:"description,omitempty"`
	Messages    []*PromptMessage `json:"messages"`
}

// ListPromptsParams are the params of prompts/list.
type ListPromptsParams struct {
	metaField
	Cursor string `json:"cursor,omitempty"`
}

// ListPromptsResult is the result of prompts/list.
type ListPromptsResult struct {
	Prompts    []*Prompt `json:"prompts"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

// --- completion/complete ---

// CompleteReference identifies what is being completed: a tagged variant of
// {promptRef(name) | resourceRef(uri)} (spec.md §4.3 Data Model).
type CompleteReference struct {
	Type string `json:"type"` // "ref/prompt" or "ref/resource"
	Name string `json:"name,omitempty"`
	URI  string `json:"uri,omitempty"`
}

// key returns a value usable as a map key for the completions registry.
func (r CompleteReference) key() (string, bool) {
	switch r.Type {
	case "ref/prompt":
		return "prompt:" + r.Name, true
	case "ref/resource":
		return "resource:" + r.URI, true
	default:
		return "", false
	}
}

// CompleteArgument is the argument being completed.
type CompleteArgument struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CompleteParams are the params of completion/complete.
type CompleteParams struct {
	metaField
	Ref      *CompleteReference `json:"ref"`
	Argument CompleteArgument   `json:"argument"`
}

// CompletionResultData is the payload of a CompleteResult.
type CompletionResultData struct {
	Values  []string `json:"values"`
	Total   int      `json:"total,omitempty"`
	HasMore bool     `json:"hasMore,omitempty"`
}

// CompleteResult is the result of completion/complete.
type CompleteResult struct {
	Completion CompletionResultData `json:"completion"`
}

// --- roots/* ---

// Root is a filesystem or workspace root the client exposes to the server.
type Root struct {
	URI  string `json:"uri"`
	Name string `json:"name,omitempty"`
}

// ListRootsParams are the (empty) params of roots/list.
type ListRootsParams struct {
	metaField
}

// ListRootsResult is the result of roots/list.
type ListRootsResult struct {
	Roots []*Root `json:"roots"`
}

// RootsListChangedParams are the params of notifications/roots/list_changed.
type RootsListChangedParams struct{}

// --- sampling/createMessage ---

// SamplingMessage is one message in a sampling request or result.
type SamplingMessage struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}

// UnmarshalJSON decodes the wire content object into a concrete Content
// value before assigning it.
func (m *SamplingMessage) UnmarshalJSON(data []byte) error {
	type msg SamplingMessage
	var wire struct {
		msg
		Content *wireContent `json:"content"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	content, err := contentFromWire(wire.Content)
	if err != nil {
		return err
	}
	*m = SamplingMessage(wire.msg)
	m.Content = content
	return nil
}

// ModelHint names a model family the caller would prefer.
type ModelHint struct {
	Name string `json:"name,omitempty"`
}

// ModelPreferences guides the client's model selection for sampling.
type ModelPreferences struct {
	Hints                []*ModelHint `json:"hints,omitempty"`
	CostPriority         float64      `json:"costPriority,omitempty"`
	SpeedPriority        float64      `json:"speedPriority,omitempty"`
	IntelligencePriority float64      `json:"intelligencePriority,omitempty"`
}

// CreateMessageParams are the params of sampling/createMessage.
type CreateMessageParams struct {
	metaField
	Messages         []*SamplingMessage `json:"messages"`
	ModelPreferences *ModelPreferences  `json:"modelPreferences,omitempty"`
	SystemPrompt     string             `json:"systemPrompt,omitempty"`
	MaxTokens        int                `json:"maxTokens"`
}

// CreateMessageResult is the result of sampling/createMessage.
type CreateMessageResult struct {
	Role       Role    `json:"role"`
	Content    Content `json:"content"`
	Model      string  `json:"model"`
	StopReason string  `json:"stopReason,omitempty"`
}

// UnmarshalJSON decodes the wire content object into a concrete Content
// value before assigning it.
func (r *CreateMessageResult) UnmarshalJSON(data []byte) error {
	type result CreateMessageResult
	var wire struct {
		result
		Content *wireContent `json:"content"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	content, err := contentFromWire(wire.Content)
	if err != nil {
		return err
	}
	*r = CreateMessageResult(wire.result)
	r.Content = content
	return nil
}

// --- elicitation/create ---

// ElicitParams are the params of elicitation/create.
type ElicitParams struct {
	metaField
	Message         string             `json:"message"`
	RequestedSchema *jsonschema.Schema `json:"requestedSchema"`
}

// ElicitResult is the result of elicitation/create.
type ElicitResult struct {
	Action  string         `json:"action"` // "accept", "decline", or "cancel"
	Content map[string]any `json:"content,omitempty"`
}

// --- logging/* ---

// SetLevelParams are the params of logging/setLevel.
type SetLevelParams struct {
	metaField
	Level LoggingLevel `json:"level"`
}

// LoggingMessageParams are the params of notifications/message.
type LoggingMessageParams struct {
	Level  LoggingLevel `json:"level"`
	Logger string       `json:"logger,omitempty"`
	Data   any          `json:"data"`
}

// --- generic list-changed / progress notifications ---

type ToolListChangedParams struct{}
type ResourceListChangedParams struct{}
type PromptListChangedParams struct{}

// ProgressNotificationParams are the params of notifications/progress.
type ProgressNotificationParams struct {
	ProgressToken any     `json:"progressToken"`
	Progress      float64 `json:"progress"`
	Total         float64 `json:"total,omitempty"`
	Message       string  `json:"message,omitempty"`
}
