// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package mcp implements the Model Context Protocol: a JSON-RPC 2.0 dialect
// for exposing tools, resources, prompts, and completions to AI clients.
//
// The package is organized around seven collaborating pieces: a schema
// validator for structured tool output, a transport abstraction, a feature
// registry for tools/resources/prompts/completions, a sync-to-async bridge
// for user handlers, a session state machine that drives the handshake and
// request/response correlation, and client and server cores built on top of
// the session.
package mcp

// LatestProtocolVersion is offered by this package's Client and Server when
// the caller does not specify one.
const LatestProtocolVersion = "2025-06-18"

// SupportedProtocolVersions lists, oldest first, every protocol version this
// implementation can negotiate.
var SupportedProtocolVersions = []string{
	"2024-11-05",
	"2025-03-26",
	LatestProtocolVersion,
}

// Implementation describes a client or server's name and version, sent
// during the initialize handshake.
type Implementation struct {
	Name    string `json:"name"`
	Title   string `json:"title,omitempty"`
	Version string `json:"version"`
}

// Meta carries the protocol's "_meta" out-of-band metadata, attached to many
// request and result types.
type Meta map[string]any

// progressTokenKey is the well-known _meta key carrying a progress token on
// an outgoing request (spec.md §4.6, §6).
const progressTokenKey = "progressToken"

// Icon describes an icon that may be associated with a tool, prompt, or
// resource.
type Icon struct {
	Src      string `json:"src"`
	MIMEType string `json:"mimeType,omitempty"`
	Sizes    string `json:"sizes,omitempty"`
}

// Annotations give clients hints about how to present content or a tool.
type Annotations struct {
	Audience     []Role  `json:"audience,omitempty"`
	Priority     float64 `json:"priority,omitempty"`
	LastModified string  `json:"lastModified,omitempty"`
}

// Role is the originator of a message: "user" or "assistant".
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// LoggingLevel is one of the RFC 5424 syslog severities used by
// logging/setLevel and notifications/message (spec.md §4.5).
type LoggingLevel string

const (
	LevelDebug     LoggingLevel = "debug"
	LevelInfo      LoggingLevel = "info"
	LevelNotice    LoggingLevel = "notice"
	LevelWarning   LoggingLevel = "warning"
	LevelError     LoggingLevel = "error"
	LevelCritical  LoggingLevel = "critical"
	LevelAlert     LoggingLevel = "alert"
	LevelEmergency LoggingLevel = "emergency"
)

var levelSeverity = map[LoggingLevel]int{
	LevelDebug: 0, LevelInfo: 1, LevelNotice: 2, LevelWarning: 3,
	LevelError: 4, LevelCritical: 5, LevelAlert: 6, LevelEmergency: 7,
}

// allows reports whether a message at level msg should be delivered given a
// session filter currently set to the receiver level.
func (floor LoggingLevel) allows(msg LoggingLevel) bool {
	f, ok := levelSeverity[floor]
	if !ok {
		f = 0
	}
	m, ok := levelSeverity[msg]
	if !ok {
		m = 0
	}
	return m >= f
}

// ToolsCapability advertises the tools feature and whether the server emits
// notifications/tools/list_changed.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ResourcesCapability advertises the resources feature.
type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe,omitempty"`
	ListChanged bool `json:"listChanged,omitempty"`
}

// PromptsCapability advertises the prompts feature.
type PromptsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// LoggingCapability advertises support for logging/setLevel.
type LoggingCapability struct{}

// CompletionsCapability advertises support for completion/complete.
type CompletionsCapability struct{}

// ServerCapabilities is the set of capabilities a server may offer. A nil
// field means the corresponding feature is not offered (spec.md §6).
type ServerCapabilities struct {
	Tools        *ToolsCapability       `json:"tools,omitempty"`
	Resources    *ResourcesCapability   `json:"resources,omitempty"`
	Prompts      *PromptsCapability     `json:"prompts,omitempty"`
	Logging      *LoggingCapability     `json:"logging,omitempty"`
	Completions  *CompletionsCapability `json:"completions,omitempty"`
	Experimental map[string]any         `json:"experimental,omitempty"`
}

// RootsCapability advertises that the client can list filesystem roots.
type RootsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// SamplingCapability advertises that the client can service
// sampling/createMessage.
type SamplingCapability struct{}

// ElicitationCapability advertises that the client can service
// elicitation/create.
type ElicitationCapability struct{}

// ClientCapabilities is the set of capabilities a client may offer.
type ClientCapabilities struct {
	Roots        *RootsCapability       `json:"roots,omitempty"`
	Sampling     *SamplingCapability    `json:"sampling,omitempty"`
	Elicitation  *ElicitationCapability `json:"elicitation,omitempty"`
	Experimental map[string]any         `json:"experimental,omitempty"`
}

// withMeta is implemented by every Params type that carries "_meta".
type withMeta interface {
	GetMeta() Meta
	SetMeta(Meta)
}

// InitializeParams are the params of the initialize request, sent by
// whichever peer opens the session.
type InitializeParams struct {
	ProtocolVersion string              `json:"protocolVersion"`
	Capabilities    *ClientCapabilities `json:"capabilities"`
	ClientInfo      *Implementation     `json:"clientInfo"`
	Meta_           Meta                `json:"_meta,omitempty"`
}

func (p *InitializeParams) GetMeta() Meta  { return p.Meta_ }
func (p *InitializeParams) SetMeta(m Meta) { p.Meta_ = m }

// InitializeResult is the responder's reply to initialize.
type InitializeResult struct {
	ProtocolVersion string              `json:"protocolVersion"`
	Capabilities    *ServerCapabilities `json:"capabilities"`
	ServerInfo      *Implementation     `json:"serverInfo"`
	Instructions    string              `json:"instructions,omitempty"`
}

// InitializedParams are the (empty) params of notifications/initialized.
type InitializedParams struct {
	Meta_ Meta `json:"_meta,omitempty"`
}

func (p *InitializedParams) GetMeta() Meta  { return p.Meta_ }
func (p *InitializedParams) SetMeta(m Meta) { p.Meta_ = m }

// PingParams are the (empty) params of ping.
type PingParams struct {
	Meta_ Meta `json:"_meta,omitempty"`
}

func (p *PingParams) GetMeta() Meta  { return p.Meta_ }
func (p *PingParams) SetMeta(m Meta) { p.Meta_ = m }

// EmptyResult is returned by methods with no interesting result, e.g. ping.
type EmptyResult struct{}

// Result is the minimal interface satisfied by every typed *Result type: it
// exists so dispatch code can return `(Result, error)` generically from a
// single method-routing switch.
type Result any

// CancelledParams are the params of notifications/cancelled (spec.md §4.5,
// §5).
type CancelledParams struct {
	RequestID any    `json:"requestId"`
	Reason    string `json:"reason,omitempty"`
}
