// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package json provides internal JSON utilities.
//
// It wraps github.com/segmentio/encoding/json rather than the standard
// library so that field matching is case-sensitive, as JSON-RPC 2.0 and the
// MCP wire schema require. encoding/json's case-insensitive fallback lets a
// peer smuggle "Name" past a "name" field; segmentio's decoder does not.
package json

import (
	"bytes"
	"io"

	segjson "github.com/segmentio/encoding/json"
)

// RawMessage is a raw encoded JSON value.
type RawMessage = segjson.RawMessage

func Marshal(v any) ([]byte, error) {
	return segjson.Marshal(v)
}

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return segjson.MarshalIndent(v, prefix, indent)
}

func Unmarshal(data []byte, v any) error {
	return NewDecoder(bytes.NewReader(data)).Decode(v)
}

func NewEncoder(w io.Writer) *segjson.Encoder {
	return segjson.NewEncoder(w)
}

func NewDecoder(r io.Reader) *segjson.Decoder {
	dec := segjson.NewDecoder(r)
	dec.DontMatchCaseInsensitiveStructFields()
	return dec
}
