// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// featureRegistry is component C3 of spec.md: the server-side collection of
// tools, resources, resource templates, prompts, and completions. Tools,
// resources, and prompts preserve registration order for listing; resources
// are additionally keyed by URI and prompts by name for O(1) dispatch.

package mcp

import (
	"fmt"
	"sort"
	"sync"
)

type featureRegistry struct {
	mu sync.RWMutex

	tools     []*serverTool
	toolIndex map[string]int // tool name -> index into tools

	resources     map[string]*serverResource // URI -> resource
	resourceOrder []string

	templates []*serverResourceTemplate

	prompts     map[string]*serverPrompt
	promptOrder []string

	completions map[string]*serverCompletion // CompleteReference.key() -> completion

	schemaCache *schemaCache
}

func newFeatureRegistry() *featureRegistry {
	return &featureRegistry{
		toolIndex:   make(map[string]int),
		resources:   make(map[string]*serverResource),
		prompts:     make(map[string]*serverPrompt),
		completions: make(map[string]*serverCompletion),
		schemaCache: NewSchemaCache(),
	}
}

// addTool registers st. A tool name already present is rejected rather than
// replaced, so a server accidentally registering the same tool twice finds
// out at registration time instead of silently losing the first definition
// (spec.md Testable Property 6: registry rejects duplicate registrations).
func (r *featureRegistry) addTool(st *serverTool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.toolIndex[st.tool.Name]; ok {
		return fmt.Errorf("tool %q already registered", st.tool.Name)
	}
	r.toolIndex[st.tool.Name] = len(r.tools)
	r.tools = append(r.tools, st)
	return nil
}

func (r *featureRegistry) removeTools(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	remove := make(map[string]bool, len(names))
	for _, n := range names {
		remove[n] = true
	}
	kept := r.tools[:0]
	r.toolIndex = make(map[string]int)
	for _, st := range r.tools {
		if remove[st.tool.Name] {
			continue
		}
		r.toolIndex[st.tool.Name] = len(kept)
		kept = append(kept, st)
	}
	r.tools = kept
}

func (r *featureRegistry) tool(name string) (*serverTool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.toolIndex[name]
	if !ok {
		return nil, false
	}
	return r.tools[i], true
}

func (r *featureRegistry) listTools() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Tool, len(r.tools))
	for i, st := range r.tools {
		out[i] = st.tool
	}
	return out
}

func (r *featureRegistry) hasTools() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools) > 0
}

// addResource registers sr. A URI already present is rejected rather than
// replaced (spec.md Testable Property 6).
func (r *featureRegistry) addResource(sr *serverResource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.resources[sr.resource.URI]; exists {
		return fmt.Errorf("resource %q already registered", sr.resource.URI)
	}
	r.resourceOrder = append(r.resourceOrder, sr.resource.URI)
	r.resources[sr.resource.URI] = sr
	return nil
}

func (r *featureRegistry) removeResources(uris ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range uris {
		delete(r.resources, u)
	}
	kept := r.resourceOrder[:0]
	for _, u := range r.resourceOrder {
		if _, ok := r.resources[u]; ok {
			kept = append(kept, u)
		}
	}
	r.resourceOrder = kept
}

// resource returns the exact-URI resource, falling back to the first
// resource template whose pattern matches (spec.md §4.2: concrete
// registrations take precedence over templates for the same URI).
func (r *featureRegistry) resource(uri string) (*serverResource, *serverResourceTemplate) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if sr, ok := r.resources[uri]; ok {
		return sr, nil
	}
	for _, t := range r.templates {
		if t.match(uri) {
			return nil, t
		}
	}
	return nil, nil
}

func (r *featureRegistry) listResources() []*Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Resource, 0, len(r.resourceOrder))
	for _, u := range r.resourceOrder {
		out = append(out, r.resources[u].resource)
	}
	return out
}

func (r *featureRegistry) addResourceTemplate(t *serverResourceTemplate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.templates {
		if existing.template.URITemplate == t.template.URITemplate {
			r.templates[i] = t
			return
		}
	}
	r.templates = append(r.templates, t)
}

func (r *featureRegistry) listResourceTemplates() []*ResourceTemplate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ResourceTemplate, len(r.templates))
	for i, t := range r.templates {
		out[i] = t.template
	}
	return out
}

func (r *featureRegistry) hasResources() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resources) > 0 || len(r.templates) > 0
}

// addPrompt registers sp. A prompt name already present is rejected rather
// than replaced (spec.md Testable Property 6).
func (r *featureRegistry) addPrompt(sp *serverPrompt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.prompts[sp.prompt.Name]; exists {
		return fmt.Errorf("prompt %q already registered", sp.prompt.Name)
	}
	r.promptOrder = append(r.promptOrder, sp.prompt.Name)
	r.prompts[sp.prompt.Name] = sp
	return nil
}

func (r *featureRegistry) removePrompts(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range names {
		delete(r.prompts, n)
	}
	kept := r.promptOrder[:0]
	for _, n := range r.promptOrder {
		if _, ok := r.prompts[n]; ok {
			kept = append(kept, n)
		}
	}
	r.promptOrder = kept
}

func (r *featureRegistry) prompt(name string) (*serverPrompt, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sp, ok := r.prompts[name]
	return sp, ok
}

func (r *featureRegistry) listPrompts() []*Prompt {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Prompt, 0, len(r.promptOrder))
	for _, n := range r.promptOrder {
		out = append(out, r.prompts[n].prompt)
	}
	return out
}

func (r *featureRegistry) hasPrompts() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.prompts) > 0
}

// addCompletion registers a completion handler for ref. It returns an error
// if ref doesn't identify a prompt or resource, so a malformed registration
// fails at startup rather than silently never matching (spec.md Testable
// Property 6: registry rejects invalid registrations).
func (r *featureRegistry) addCompletion(ref *CompleteReference, h CompletionHandler) error {
	key, ok := ref.key()
	if !ok {
		return fmt.Errorf("invalid completion reference type %q", ref.Type)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions[key] = &serverCompletion{ref: ref, handler: h}
	return nil
}

func (r *featureRegistry) completion(ref *CompleteReference) (*serverCompletion, bool) {
	key, ok := ref.key()
	if !ok {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	sc, ok := r.completions[key]
	return sc, ok
}

func (r *featureRegistry) hasCompletions() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.completions) > 0
}

// sortedToolNames returns tool names in lexical order, for tests asserting
// on a registry's contents without depending on registration order.
func (r *featureRegistry) sortedToolNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.tools))
	for i, st := range r.tools {
		names[i] = st.tool.Name
	}
	sort.Strings(names)
	return names
}
