// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Resource and resource-template declarations (spec.md §4.2, component C3).

package mcp

import (
	"context"
	"fmt"

	"github.com/yosida95/uritemplate/v3"
)

// Resource is a concrete, URI-addressed piece of content the server can read
// (spec.md §4.2 Data Model).
type Resource struct {
	URI         string       `json:"uri"`
	Name        string       `json:"name"`
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	MIMEType    string       `json:"mimeType,omitempty"`
	Size        int64        `json:"size,omitempty"`
	Icons       []Icon       `json:"icons,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty"`
	Meta        Meta         `json:"_meta,omitempty"`
}

// ResourceTemplate describes a family of resources addressed by an RFC 6570
// URI template (spec.md §4.2 Data Model).
type ResourceTemplate struct {
	URITemplate string       `json:"uriTemplate"`
	Name        string       `json:"name"`
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	MIMEType    string       `json:"mimeType,omitempty"`
	Icons       []Icon       `json:"icons,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty"`
	Meta        Meta         `json:"_meta,omitempty"`
}

// ResourceHandler reads the contents named by req.Params.URI.
type ResourceHandler func(ctx context.Context, req *ServerRequest[*ReadResourceParams]) (*ReadResourceResult, error)

// serverResource binds a Resource declaration to its handler.
type serverResource struct {
	resource *Resource
	handler  ResourceHandler
}

// serverResourceTemplate binds a ResourceTemplate to its handler and its
// compiled matcher. A template's handler is invoked for any URI matching the
// template that isn't already covered by a concrete Resource (spec.md §4.2
// edge case: exact-URI resources take precedence over templates).
type serverResourceTemplate struct {
	template *ResourceTemplate
	matcher  *uritemplate.Template
	handler  ResourceHandler
}

func newServerResourceTemplate(t *ResourceTemplate, h ResourceHandler) (*serverResourceTemplate, error) {
	tmpl, err := uritemplate.New(t.URITemplate)
	if err != nil {
		return nil, fmt.Errorf("invalid uriTemplate %q: %w", t.URITemplate, err)
	}
	return &serverResourceTemplate{template: t, matcher: tmpl, handler: h}, nil
}

func (t *serverResourceTemplate) match(uri string) bool {
	return t.matcher.Match(uri) != nil
}
