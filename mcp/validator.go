// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package-level structured-output validator (spec.md §4.1, component C1).
//
// It compiles a tool's declared outputSchema with google/jsonschema-go and
// checks a tool's structuredContent against it before the result is
// returned to the caller. A violation never becomes a JSON-RPC error: per
// spec.md §7, it is folded into a tool-level CallToolResult with
// IsError=true, so the caller's protocol session stays healthy.

package mcp

import (
	"fmt"

	"github.com/corewire/mcp-go/internal/json"
	"github.com/google/jsonschema-go/jsonschema"
)

// ValidationResponse is the sum type {Valid{jsonOutput} | Invalid{errorMessage}}
// described in spec.md's Data Model: never both, never neither.
type ValidationResponse struct {
	valid       bool
	jsonOutput  json.RawMessage
	errorMessage string
}

// Valid reports whether content conformed to the schema.
func (r ValidationResponse) Valid() bool { return r.valid }

// JSONOutput returns the serialized content when Valid is true. It panics
// if called on an Invalid response, the same discipline Go's (v, ok) idiom
// enforces for a map lookup.
func (r ValidationResponse) JSONOutput() json.RawMessage {
	assert(r.valid, "JSONOutput called on an Invalid ValidationResponse")
	return r.jsonOutput
}

// ErrorMessage returns the diagnostic when Valid is false.
func (r ValidationResponse) ErrorMessage() string {
	assert(!r.valid, "ErrorMessage called on a Valid ValidationResponse")
	return r.errorMessage
}

func validResponse(content any) ValidationResponse {
	data, err := json.Marshal(content)
	if err != nil {
		// Marshaling a value that already round-tripped through JSON should
		// never fail; treat it as a validator bug rather than invent a
		// separate return path for it.
		return invalidResponse(fmt.Sprintf("Error parsing tool JSON Schema: %v", err))
	}
	return ValidationResponse{valid: true, jsonOutput: data}
}

func invalidResponse(msg string) ValidationResponse {
	return ValidationResponse{valid: false, errorMessage: msg}
}

// outputValidator compiles and caches a tool's output schema, and validates
// structured content against it. One outputValidator is created per
// serverTool at registration time.
type outputValidator struct {
	resolved *jsonschema.Resolved
}

// newOutputValidator resolves schema (which may be nil, meaning the tool
// declares no output schema) against Draft 2020-12, forcing
// additionalProperties:false on every object schema that doesn't say
// otherwise (spec.md §4.1 policy: "strict-by-default for tool outputs").
func newOutputValidator(cache *schemaCache, schema *jsonschema.Schema) (*outputValidator, error) {
	if schema == nil {
		return &outputValidator{}, nil
	}
	if cache != nil {
		if resolved, ok := cache.getBySchema(schema); ok {
			return &outputValidator{resolved: resolved}, nil
		}
	}
	strict := strictenAdditionalProperties(schema)
	resolved, err := strict.Resolve(&jsonschema.ResolveOptions{ValidateDefaults: true})
	if err != nil {
		return nil, fmt.Errorf("Error parsing tool JSON Schema: %w", err)
	}
	if cache != nil {
		cache.setBySchema(schema, resolved)
	}
	return &outputValidator{resolved: resolved}, nil
}

// disallowAdditionalProperties is the {"not": {}} idiom this schema library
// uses to encode a boolean-false sub-schema (see jsonschema/infer_test.go's
// falseSchema helper): it matches no value, so no additional property can
// ever validate.
func disallowAdditionalProperties() *jsonschema.Schema {
	return &jsonschema.Schema{Not: &jsonschema.Schema{}}
}

// strictenAdditionalProperties returns a schema equal to s, except that s and
// every object schema reachable from it through properties and items that
// does not set AdditionalProperties gets additionalProperties: false. Other
// subschemas ($defs, allOf, anyOf, oneOf and the like) are left as they are.
// s is not mutated (spec.md §4.1 policy).
func strictenAdditionalProperties(s *jsonschema.Schema) *jsonschema.Schema {
	if s == nil {
		return nil
	}
	clone := *s
	isObject := s.Type == "object" || containsString(s.Types, "object")
	if isObject && clone.AdditionalProperties == nil {
		clone.AdditionalProperties = disallowAdditionalProperties()
	}
	if clone.Properties != nil {
		props := make(map[string]*jsonschema.Schema, len(clone.Properties))
		for k, v := range clone.Properties {
			props[k] = strictenAdditionalProperties(v)
		}
		clone.Properties = props
	}
	if clone.Items != nil {
		clone.Items = strictenAdditionalProperties(clone.Items)
	}
	return &clone
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// validate is the pure C1 contract: validate(schema, content) -> ValidationResponse.
// It is used directly by tests and indirectly through outputValidator.check
// during tools/call dispatch.
func validate(schema *jsonschema.Schema, content any) ValidationResponse {
	strict := strictenAdditionalProperties(schema)
	resolved, err := strict.Resolve(&jsonschema.ResolveOptions{ValidateDefaults: true})
	if err != nil {
		return invalidResponse(fmt.Sprintf("Error parsing tool JSON Schema: %v", err))
	}
	v := &outputValidator{resolved: resolved}
	return v.check(content)
}

// check validates content against the compiled schema. A nil resolved
// schema (tool declared no outputSchema) always succeeds.
func (v *outputValidator) check(content any) ValidationResponse {
	if v == nil || v.resolved == nil {
		return validResponse(content)
	}
	if err := v.resolved.Validate(content); err != nil {
		return invalidResponse(fmt.Sprintf(
			"Validation failed: structuredContent does not match tool outputSchema: %s", err))
	}
	return validResponse(content)
}
