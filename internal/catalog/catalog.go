// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog manages the registry of known LLM models.
//
// The catalog is declarative data, not live state: it records which
// models exist, which provider serves each one, and what tasks a model
// is suited for. Whether a provider is actually reachable is the
// router's problem.
package catalog

import (
	"log"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Provider identifies which backend serves a model.
type Provider string

const (
	// ProviderLocal is the local OpenAI-compatible server.
	ProviderLocal Provider = "local"

	// ProviderOpenRouter is the remote OpenRouter API.
	ProviderOpenRouter Provider = "openrouter"
)

// TagPublicChat marks models approved for requests that may leave the
// machine.
const TagPublicChat = "public_chat"

// Entry describes one model in the catalog.
type Entry struct {
	// Name is a human-readable label, unique within the catalog.
	Name string `toml:"name"`

	// Provider is "local" or "openrouter".
	Provider Provider `toml:"provider"`

	// ModelID is the identifier sent to the provider's API.
	ModelID string `toml:"model_id"`

	// TaskTags lists the request kinds this model is suited for.
	TaskTags []string `toml:"task_tags"`

	// Priority orders models within a provider; lower is preferred.
	Priority int `toml:"priority"`

	// Enabled gates the entry without deleting it.
	Enabled bool `toml:"enabled"`
}

// HasTag reports whether the entry carries the given task tag.
func (e *Entry) HasTag(tag string) bool {
	for _, t := range e.TaskTags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Catalog is an immutable collection of model entries.
type Catalog struct {
	entries []Entry
}

// New builds a catalog from the given entries.
func New(entries []Entry) *Catalog {
	return &Catalog{entries: entries}
}

// catalogFile is the on-disk TOML shape.
type catalogFile struct {
	Models []Entry `toml:"models"`
}

// Load reads a catalog from a TOML file. A missing or malformed file
// yields an empty catalog rather than an error: the assistant must keep
// answering with whatever models it can find, and the router reports
// the resulting "no model" condition per request.
func Load(path string) *Catalog {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("CATALOG: cannot read %s: %v (using empty catalog)", path, err)
		return &Catalog{}
	}

	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		log.Printf("CATALOG: cannot parse %s: %v (using empty catalog)", path, err)
		return &Catalog{}
	}

	log.Printf("CATALOG: loaded %d models from %s", len(file.Models), path)
	return &Catalog{entries: file.Models}
}

// Entries returns a copy of all entries, enabled or not.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries in the catalog.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// LocalModel returns the first enabled local entry in catalog order.
// Priority is not consulted on the local side: at most one local entry
// matters per routing decision, first match wins. Returns false when no
// enabled local model exists.
func (c *Catalog) LocalModel() (Entry, bool) {
	for _, e := range c.entries {
		if e.Enabled && e.Provider == ProviderLocal {
			return e, true
		}
	}
	return Entry{}, false
}

// BestPublicModel returns the preferred enabled remote model tagged for
// public chat: lowest priority wins, catalog order breaks ties. Returns
// false when no such model exists.
func (c *Catalog) BestPublicModel() (Entry, bool) {
	return c.pick(func(e Entry) bool {
		return e.Enabled && e.Provider == ProviderOpenRouter && e.HasTag(TagPublicChat)
	})
}

// pick filters entries and returns the best by ascending priority,
// preserving catalog order among equals.
func (c *Catalog) pick(keep func(Entry) bool) (Entry, bool) {
	var candidates []Entry
	for _, e := range c.entries {
		if keep(e) {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return Entry{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority < candidates[j].Priority
	})
	return candidates[0], true
}
