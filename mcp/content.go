// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"fmt"

	"github.com/corewire/mcp-go/internal/json"
)

// Content is a block of tool, prompt, or sampling-message content: a
// [TextContent], [ImageContent], [AudioContent], [ResourceLink], or
// [EmbeddedResource] (spec.md §6, "Tool result shape").
type Content interface {
	MarshalJSON() ([]byte, error)
	fromWire(*wireContent)
}

// TextContent is plain text.
type TextContent struct {
	Text        string
	Meta        Meta
	Annotations *Annotations
}

func (c *TextContent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type        string       `json:"type"`
		Text        string       `json:"text"`
		Meta        Meta         `json:"_meta,omitempty"`
		Annotations *Annotations `json:"annotations,omitempty"`
	}{"text", c.Text, c.Meta, c.Annotations})
}

func (c *TextContent) fromWire(w *wireContent) {
	c.Text, c.Meta, c.Annotations = w.Text, w.Meta, w.Annotations
}

// ImageContent is base64-encoded image data.
type ImageContent struct {
	Data        []byte
	MIMEType    string
	Meta        Meta
	Annotations *Annotations
}

func (c *ImageContent) MarshalJSON() ([]byte, error) {
	return marshalBinaryContent("image", c.MIMEType, c.Data, c.Meta, c.Annotations)
}

func (c *ImageContent) fromWire(w *wireContent) {
	c.Data, c.MIMEType, c.Meta, c.Annotations = w.Data, w.MIMEType, w.Meta, w.Annotations
}

// AudioContent is base64-encoded audio data.
type AudioContent struct {
	Data        []byte
	MIMEType    string
	Meta        Meta
	Annotations *Annotations
}

func (c *AudioContent) MarshalJSON() ([]byte, error) {
	return marshalBinaryContent("audio", c.MIMEType, c.Data, c.Meta, c.Annotations)
}

func (c *AudioContent) fromWire(w *wireContent) {
	c.Data, c.MIMEType, c.Meta, c.Annotations = w.Data, w.MIMEType, w.Meta, w.Annotations
}

func marshalBinaryContent(typ, mimeType string, data []byte, meta Meta, ann *Annotations) ([]byte, error) {
	if data == nil {
		data = []byte{} // required field: never render as JSON null
	}
	return json.Marshal(struct {
		Type        string       `json:"type"`
		MIMEType    string       `json:"mimeType"`
		Data        []byte       `json:"data"`
		Meta        Meta         `json:"_meta,omitempty"`
		Annotations *Annotations `json:"annotations,omitempty"`
	}{typ, mimeType, data, meta, ann})
}

// ResourceLink points at a resource without embedding its contents.
type ResourceLink struct {
	URI         string
	Name        string
	Title       string
	Description string
	MIMEType    string
	Size        *int64
	Icons       []Icon
	Meta        Meta
	Annotations *Annotations
}

func (c *ResourceLink) MarshalJSON() ([]byte, error) {
	return json.Marshal(&wireContent{
		Type: "resource_link", URI: c.URI, Name: c.Name, Title: c.Title,
		Description: c.Description, MIMEType: c.MIMEType, Size: c.Size,
		Icons: c.Icons, Meta: c.Meta, Annotations: c.Annotations,
	})
}

func (c *ResourceLink) fromWire(w *wireContent) {
	c.URI, c.Name, c.Title, c.Description = w.URI, w.Name, w.Title, w.Description
	c.MIMEType, c.Size, c.Icons = w.MIMEType, w.Size, w.Icons
	c.Meta, c.Annotations = w.Meta, w.Annotations
}

// EmbeddedResource inlines the contents of a resource.
type EmbeddedResource struct {
	Resource    *ResourceContents
	Meta        Meta
	Annotations *Annotations
}

func (c *EmbeddedResource) MarshalJSON() ([]byte, error) {
	return json.Marshal(&wireContent{Type: "resource", Resource: c.Resource, Meta: c.Meta, Annotations: c.Annotations})
}

func (c *EmbeddedResource) fromWire(w *wireContent) {
	c.Resource, c.Meta, c.Annotations = w.Resource, w.Meta, w.Annotations
}

// ResourceContents is the body of a resource returned by resources/read or
// embedded in a tool/prompt result. Exactly one of Text or Blob is set.
type ResourceContents struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     []byte `json:"blob,omitzero"`
	Meta     Meta   `json:"_meta,omitempty"`
}

// wireContent is the union wire shape for every Content variant; Type
// discriminates which fields apply.
type wireContent struct {
	Type        string            `json:"type"`
	Text        string            `json:"text,omitempty"`
	MIMEType    string            `json:"mimeType,omitempty"`
	Data        []byte            `json:"data,omitempty"`
	Resource    *ResourceContents `json:"resource,omitempty"`
	URI         string            `json:"uri,omitempty"`
	Name        string            `json:"name,omitempty"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Size        *int64            `json:"size,omitempty"`
	Icons       []Icon            `json:"icons,omitempty"`
	Meta        Meta              `json:"_meta,omitempty"`
	Annotations *Annotations      `json:"annotations,omitempty"`
}

func contentsFromWire(wires []*wireContent) ([]Content, error) {
	out := make([]Content, 0, len(wires))
	for _, w := range wires {
		c, err := contentFromWire(w)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func contentFromWire(w *wireContent) (Content, error) {
	if w == nil {
		return nil, fmt.Errorf("nil content")
	}
	var c Content
	switch w.Type {
	case "text":
		c = new(TextContent)
	case "image":
		c = new(ImageContent)
	case "audio":
		c = new(AudioContent)
	case "resource_link":
		c = new(ResourceLink)
	case "resource":
		c = new(EmbeddedResource)
	default:
		return nil, fmt.Errorf("unrecognized content type %q", w.Type)
	}
	c.fromWire(w)
	return c, nil
}
