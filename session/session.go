// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package session owns the lifecycle of generative sessions: registration
// with create-or-merge semantics, lookup, and expiry of stale entries. The
// registry is the only shared mutable state in the service; every mutation
// completes atomically under its lock.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GoogleCloudPlatform/genai-product-catalog/gemini"
	"github.com/GoogleCloudPlatform/genai-product-catalog/log"
	"github.com/GoogleCloudPlatform/genai-product-catalog/model"
	"github.com/GoogleCloudPlatform/genai-product-catalog/persist"
)

const (
	// DefaultRetention is how long a session stays resolvable after creation.
	DefaultRetention = 20 * time.Minute
	// DefaultSweepInterval is how often expired sessions are collected.
	DefaultSweepInterval = time.Minute
)

// Handles groups the derived, stateless model handles for one session.
// They are rebuilt from scratch whenever the configuration changes.
type Handles struct {
	// Model is the plain structured-JSON handle.
	Model gemini.Invoker
	// GroundedModel adds Google Search retrieval to the same sampling config.
	GroundedModel gemini.Invoker
	// Images generates product images.
	Images gemini.ImageGenerator
}

// HandleFactory derives the handle set from a generative configuration.
type HandleFactory func(cfg model.GenerativeConfig) (Handles, error)

// Session binds an identifier to its configuration and derived handles.
type Session struct {
	ID        string
	CreatedAt time.Time
	Config    model.Config
	Handles
}

// Status reports the outcome of a registration.
type Status string

// Registration outcomes.
const (
	StatusCreated Status = "created"
	StatusUpdated Status = "updated"
)

// Registry is a mutex guarded session map with periodic expiry.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	factory   HandleFactory
	store     persist.Store
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithStore attaches a best-effort configuration store. Write failures are
// logged and never surface to registration callers.
func WithStore(store persist.Store) Option {
	return func(r *Registry) {
		r.store = store
	}
}

// WithRetention overrides the session retention window.
func WithRetention(retention time.Duration) Option {
	return func(r *Registry) {
		r.retention = retention
	}
}

// WithSweepInterval overrides the sweep cadence.
func WithSweepInterval(interval time.Duration) Option {
	return func(r *Registry) {
		r.interval = interval
	}
}

// WithClock overrides the time source. Tests use this to age sessions.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates a registry that derives model handles with factory.
func NewRegistry(factory HandleFactory, opts ...Option) *Registry {
	r := &Registry{
		sessions:  make(map[string]*Session),
		factory:   factory,
		retention: DefaultRetention,
		interval:  DefaultSweepInterval,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register creates a session for an absent, blank or unknown identifier and
// merges the supplied configuration into an existing one otherwise. On every
// write the handle pair is rebuilt from the effective configuration, and a
// redacted copy is persisted best-effort.
func (r *Registry) Register(ctx context.Context, requestedID string, cfg model.Config) (string, Status, error) {
	id := strings.TrimSpace(requestedID)

	existing, ok := r.Resolve(id)
	if !ok {
		// A blank or unknown id (including one that was swept) always
		// yields a freshly minted session.
		id = uuid.New().String()
		return id, StatusCreated, r.put(ctx, id, cfg, r.now())
	}

	merged := existing.Config
	merged.GenerativeConfig = existing.Config.GenerativeConfig.Merge(cfg.GenerativeConfig)
	return id, StatusUpdated, r.put(ctx, id, merged, existing.CreatedAt)
}

// put rebuilds handles and installs the session as one atomic map write.
func (r *Registry) put(ctx context.Context, id string, cfg model.Config, createdAt time.Time) error {
	handles, err := r.factory(cfg.GenerativeConfig)
	if err != nil {
		return err
	}

	sess := &Session{
		ID:        id,
		CreatedAt: createdAt,
		Config:    cfg,
		Handles:   handles,
	}

	r.mu.Lock()
	r.sessions[id] = sess
	r.mu.Unlock()

	if r.store != nil {
		if err := r.store.SaveConfig(ctx, id, cfg.Redacted()); err != nil {
			log.Warnf("session %s: config not persisted: %v", id, err)
		}
	}
	return nil
}

// Resolve looks up a session. An unknown, empty or never registered id is a
// normal absent outcome, not an error; callers map it to a dependency
// failure response.
func (r *Registry) Resolve(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	return sess, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes every session older than the retention window and returns
// how many were dropped. In-flight operations holding a swept session keep
// their handle references; only new resolves fail.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.retention)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, sess := range r.sessions {
		if sess.CreatedAt.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on the configured interval until ctx is done.
func (r *Registry) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := r.Sweep(); removed > 0 {
					log.Infof("session sweep removed %d expired sessions", removed)
				}
			}
		}
	}()
}
