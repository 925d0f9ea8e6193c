// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"fmt"

	"github.com/corewire/mcp-go/jsonrpc"
)

// CodeResourceNotFound is returned when resources/read names a URI the
// server doesn't have (spec.md §4.2 edge case). resources/subscribe and
// resources/unsubscribe accept any URI and never return it.
const CodeResourceNotFound = jsonrpc.CodeResourceNotFound

// ResourceNotFoundError builds the jsonrpc.Error a resource handler returns
// when the requested URI isn't registered.
func ResourceNotFoundError(uri string) error {
	return &jsonrpc.Error{
		Code:    CodeResourceNotFound,
		Message: fmt.Sprintf("resource %q not found", uri),
	}
}

// invalidParamsError formats its arguments into a jsonrpc.Error with CodeInvalidParams, the
// code a session returns for malformed or unresolvable request params
// (spec.md §7: unknown tool/prompt/resource name, schema validation failure).
func invalidParamsError(format string, args ...any) error {
	return &jsonrpc.Error{
		Code:    jsonrpc.CodeInvalidParams,
		Message: fmt.Sprintf(format, args...),
	}
}

func jsonrpcInvalidParams(err error) error {
	if err == nil {
		return nil
	}
	return &jsonrpc.Error{Code: jsonrpc.CodeInvalidParams, Message: err.Error()}
}
