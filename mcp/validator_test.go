// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"strings"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
)

// TestValidateStrictness exercises Inv.5 / Scenarios S5 and S6: validate
// enforces both the schema's declared constraints and the package's
// strict-by-default additionalProperties policy.
func TestValidateStrictness(t *testing.T) {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"name": {Type: "string"},
			"age":  {Type: "integer"},
		},
		Required: []string{"name"},
	}

	tests := []struct {
		name    string
		content any
		wantErr string
	}{
		{
			name:    "valid",
			content: map[string]any{"name": "ada", "age": 30},
		},
		{
			name:    "wrong type",
			content: map[string]any{"name": "ada", "age": "thirty"},
			wantErr: "does not match",
		},
		{
			name:    "missing required field",
			content: map[string]any{"age": 30},
			wantErr: "does not match",
		},
		{
			name:    "extra field rejected under strict additionalProperties",
			content: map[string]any{"name": "ada", "extra": "nope"},
			wantErr: "does not match",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := validate(schema, tc.content)
			if tc.wantErr == "" {
				if !got.Valid() {
					t.Fatalf("validate() = invalid (%s), want valid", got.ErrorMessage())
				}
				return
			}
			if got.Valid() {
				t.Fatalf("validate() = valid, want invalid containing %q", tc.wantErr)
			}
			if !strings.Contains(got.ErrorMessage(), tc.wantErr) {
				t.Errorf("ErrorMessage() = %q, want substring %q", got.ErrorMessage(), tc.wantErr)
			}
		})
	}
}

// TestValidateNoSchema exercises the nil-schema path: a tool that declares no
// outputSchema accepts any structured content.
func TestValidateNoSchema(t *testing.T) {
	v := (*outputValidator)(nil)
	if got := v.check(map[string]any{"anything": true}); !got.Valid() {
		t.Fatalf("nil outputValidator.check() = invalid (%s), want valid", got.ErrorMessage())
	}
}
