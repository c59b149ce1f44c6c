// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router decides, per request, which LLM backend may see the
// user's text.
//
// SECURITY CRITICAL: private content may ONLY go to the local backend.
// When the local backend is down a private request fails rather than
// falling back to the cloud. The privacy check is the FIRST check in
// the routing logic, before model selection or anything else.
//
// Every failure path returns an error, never a panic; callers treat
// any error as "could not fulfill, try again."
package router

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mkuznets/sekretar/internal/catalog"
	"github.com/mkuznets/sekretar/internal/llm"
	"github.com/mkuznets/sekretar/internal/privacy"
)

// Sentinel errors for routing failures.
var (
	// ErrLocalUnavailable indicates the local backend did not answer its
	// availability probe.
	ErrLocalUnavailable = errors.New("local backend unavailable")

	// ErrRemoteUnavailable indicates no remote credential is configured.
	ErrRemoteUnavailable = errors.New("remote backend unavailable")

	// ErrNoLocalModel indicates the catalog has no enabled local entry.
	ErrNoLocalModel = errors.New("no local model configured")

	// ErrNoRemoteModel indicates the catalog has no enabled remote entry
	// tagged for public chat.
	ErrNoRemoteModel = errors.New("no remote model configured")
)

// Router picks a backend and model for each request and obtains the
// generated text. Safe for concurrent use: the catalog is read-only and
// both backends are concurrency-safe clients.
type Router struct {
	local   llm.Backend
	remote  llm.Backend
	catalog *catalog.Catalog
}

// New creates a router over the given backends and catalog.
func New(local, remote llm.Backend, cat *catalog.Catalog) *Router {
	return &Router{local: local, remote: remote, catalog: cat}
}

// IsPrivate classifies the text with the privacy detector. Exposed so
// callers can compute the flag once and pass it through both stages.
func (r *Router) IsPrivate(text string) bool {
	return privacy.IsPrivate(text)
}

// Generate routes the (systemPrompt, text) pair to a backend and
// returns the generated text.
//
// When isPrivate is nil the privacy detector decides. Availability is
// re-checked on every call, no caching: catching a backend that just
// went down matters more than saving the probe at interactive rates.
func (r *Router) Generate(ctx context.Context, text, systemPrompt string, isPrivate *bool) (string, error) {
	var private bool
	if isPrivate != nil {
		private = *isPrivate
	} else {
		private = privacy.IsPrivate(text)
	}

	var messages []llm.Message
	if systemPrompt != "" {
		messages = append(messages, llm.NewSystemMessage(systemPrompt))
	}
	messages = append(messages, llm.NewUserMessage(text))

	if private {
		return r.generateLocal(ctx, messages)
	}
	return r.generateRemote(ctx, messages)
}

// generateLocal handles the private path. Fail closed: a private
// request never falls back to the remote backend.
func (r *Router) generateLocal(ctx context.Context, messages []llm.Message) (string, error) {
	if !r.local.Available(ctx) {
		log.Printf("ROUTER: local backend down, refusing private request")
		return "", ErrLocalUnavailable
	}

	entry, ok := r.catalog.LocalModel()
	if !ok {
		log.Printf("ROUTER: no enabled local model in catalog")
		return "", ErrNoLocalModel
	}

	log.Printf("ROUTER: private -> local model %s", entry.Name)
	out, err := r.local.Generate(ctx, entry.ModelID, messages)
	if err != nil {
		return "", fmt.Errorf("local generate (%s): %w", entry.Name, err)
	}
	return out, nil
}

// generateRemote handles the public path.
func (r *Router) generateRemote(ctx context.Context, messages []llm.Message) (string, error) {
	if !r.remote.Available(ctx) {
		log.Printf("ROUTER: remote backend not configured, refusing public request")
		return "", ErrRemoteUnavailable
	}

	entry, ok := r.catalog.BestPublicModel()
	if !ok {
		log.Printf("ROUTER: no enabled public model in catalog")
		return "", ErrNoRemoteModel
	}

	log.Printf("ROUTER: public -> remote model %s", entry.Name)
	out, err := r.remote.Generate(ctx, entry.ModelID, messages)
	if err != nil {
		return "", fmt.Errorf("remote generate (%s): %w", entry.Name, err)
	}
	return out, nil
}

// Status describes the router's current view of its backends, for
// operator display.
type Status struct {
	LocalAvailable  bool
	RemoteAvailable bool
	LocalModel      string
	RemoteModel     string
	CatalogSize     int
}

// Status probes both backends and reports which models would be chosen
// right now.
func (r *Router) Status(ctx context.Context) Status {
	s := Status{
		LocalAvailable:  r.local.Available(ctx),
		RemoteAvailable: r.remote.Available(ctx),
		CatalogSize:     r.catalog.Len(),
	}
	if entry, ok := r.catalog.LocalModel(); ok {
		s.LocalModel = entry.Name
	}
	if entry, ok := r.catalog.BestPublicModel(); ok {
		s.RemoteModel = entry.Name
	}
	return s
}
