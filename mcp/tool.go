// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Tool declaration and registration (spec.md §4.1, component C1 and C3).

package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/corewire/mcp-go/internal/json"
	"github.com/google/jsonschema-go/jsonschema"
)

// ToolAnnotations are hints describing a tool's behavior. Clients must never
// make tool-use decisions based on annotations from an untrusted server.
type ToolAnnotations struct {
	DestructiveHint *bool  `json:"destructiveHint,omitempty"`
	IdempotentHint  bool   `json:"idempotentHint,omitempty"`
	OpenWorldHint   *bool  `json:"openWorldHint,omitempty"`
	ReadOnlyHint    bool   `json:"readOnlyHint,omitempty"`
	Title           string `json:"title,omitempty"`
}

// Tool is the definition of a tool the client can call (spec.md §4.1 Data
// Model: Tool{name, description, inputSchema, outputSchema?, annotations?}).
type Tool struct {
	Name         string             `json:"name"`
	Title        string             `json:"title,omitempty"`
	Description  string             `json:"description,omitempty"`
	InputSchema  *jsonschema.Schema `json:"inputSchema"`
	OutputSchema *jsonschema.Schema `json:"outputSchema,omitempty"`
	Annotations  *ToolAnnotations   `json:"annotations,omitempty"`
	Icons        []Icon             `json:"icons,omitempty"`
	Meta         Meta               `json:"_meta,omitempty"`

	// newArgs constructs a fresh destination value for unmarshaling
	// arguments. Set by AddTool/newTypedServerTool; never marshaled.
	newArgs func() any
}

// ToolHandler handles a tools/call after its arguments have been validated
// against the tool's input schema. args holds the validated, unmarshaled
// value (its concrete type depends on how the tool was registered).
type ToolHandler func(ctx context.Context, req *ServerRequest[*CallToolParams], args any) (*CallToolResult, error)

// TypedToolHandler handles a tools/call with a statically typed argument and
// a statically typed structured result, as used by AddTool[In, Out].
type TypedToolHandler[In, Out any] func(context.Context, *ServerRequest[*CallToolParams], In) (*CallToolResult, Out, error)

type rawToolHandler func(ctx context.Context, req *ServerRequest[*CallToolParams]) (*CallToolResult, error)

// serverTool binds a Tool's declaration to its dispatchable handler and its
// compiled schemas. outputVal is component C1 of spec.md: it checks
// StructuredContent against the tool's output schema before a result leaves
// the server. Per spec.md §4.1/§7, a violation never becomes a transport
// error; it is folded into the CallToolResult as IsError:true.
type serverTool struct {
	tool          *Tool
	handler       rawToolHandler
	inputResolved *jsonschema.Resolved
	outputVal     *outputValidator
}

var errMissingInputSchema = errors.New("missing input schema")

// newServerTool builds a serverTool from an explicit Tool declaration and an
// untyped handler.
func newServerTool(t *Tool, h ToolHandler, cache *schemaCache) (*serverTool, error) {
	st := &serverTool{tool: t}
	if t.newArgs == nil {
		t.newArgs = func() any { return &map[string]any{} }
	}
	if t.InputSchema == nil {
		// A tool author who forgets a schema would otherwise get the empty
		// schema, which validates anything; the bad input would only surface
		// at runtime once a model sends it. Fail at registration instead.
		return nil, errMissingInputSchema
	}
	var err error
	st.inputResolved, err = t.InputSchema.Resolve(&jsonschema.ResolveOptions{ValidateDefaults: true})
	if err != nil {
		return nil, fmt.Errorf("input schema: %w", err)
	}
	st.outputVal, err = newOutputValidator(cache, t.OutputSchema)
	if err != nil {
		return nil, fmt.Errorf("output schema: %w", err)
	}

	st.handler = func(ctx context.Context, req *ServerRequest[*CallToolParams]) (*CallToolResult, error) {
		args := t.newArgs()
		if err := unmarshalSchema(req.Params.Arguments, st.inputResolved, args); err != nil {
			return nil, jsonrpcInvalidParams(err)
		}
		res, err := h(ctx, req, args)
		if err != nil {
			return &CallToolResult{
				Content: []Content{&TextContent{Text: err.Error()}},
				IsError: true,
			}, nil
		}
		if t.OutputSchema != nil {
			if res.StructuredContent == nil {
				return &CallToolResult{
					Content: []Content{&TextContent{Text: "tool declares an outputSchema but returned no structuredContent"}},
					IsError: true,
				}, nil
			}
			if v := st.outputVal.check(res.StructuredContent); !v.Valid() {
				return &CallToolResult{
					Content: []Content{&TextContent{Text: v.ErrorMessage()}},
					IsError: true,
				}, nil
			}
		}
		return res, nil
	}
	return st, nil
}

// newTypedServerTool builds a serverTool whose input/output schemas are
// inferred from the In/Out type parameters when the caller hasn't already
// set them explicitly on t.
func newTypedServerTool[In, Out any](t *Tool, h TypedToolHandler[In, Out], cache *schemaCache) (*serverTool, error) {
	assert(t.newArgs == nil, "newArgs already set")
	t.newArgs = func() any { var x In; return &x }

	var err error
	if t.InputSchema == nil {
		t.InputSchema, err = jsonschema.For[In](nil)
		if err != nil {
			return nil, err
		}
	}
	if t.OutputSchema == nil && reflect.TypeFor[Out]() != reflect.TypeFor[any]() {
		t.OutputSchema, err = jsonschema.For[Out](nil)
		if err != nil {
			return nil, err
		}
	}

	toolHandler := func(ctx context.Context, req *ServerRequest[*CallToolParams], args any) (*CallToolResult, error) {
		res, out, err := h(ctx, req, *args.(*In))
		if err != nil {
			return nil, err
		}
		if res == nil {
			res = &CallToolResult{}
		}
		res.StructuredContent = out
		return res, nil
	}
	return newServerTool(t, toolHandler, cache)
}

// unmarshalSchema unmarshals data into v, rejecting unknown fields up front
// so extra arguments a client sends can't silently bypass input validation,
// then applies schema defaults and validates the result.
func unmarshalSchema(data json.RawMessage, resolved *jsonschema.Resolved, v any) error {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("unmarshaling arguments: %w", err)
	}
	if resolved != nil {
		if err := resolved.ApplyDefaults(v); err != nil {
			return fmt.Errorf("applying schema defaults: %w", err)
		}
		if err := resolved.Validate(v); err != nil {
			return fmt.Errorf("validating arguments against input schema: %w", err)
		}
	}
	return nil
}
