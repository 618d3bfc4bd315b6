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

// Package gemini wraps the Google generative language API. It builds the
// plain and grounded model handle pair from a session configuration and
// normalizes model output into parseable JSON text.
package gemini

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/GoogleCloudPlatform/genai-product-catalog/model"
	"github.com/GoogleCloudPlatform/genai-product-catalog/telemetry"
)

const (
	defaultTimeout    = 120 * time.Second
	defaultImageModel = "imagen-3.0-generate-002"
)

// Invoker issues a single generation request against a configured model.
// The returned text has already passed through NormalizeJSON.
type Invoker interface {
	Invoke(ctx context.Context, prompt string, parts ...*genai.Part) (string, error)
}

// ImageGenerator produces product images from a text prompt.
type ImageGenerator interface {
	GenerateImages(ctx context.Context, prompt string) ([]model.Image, error)
}

// Client owns a connection to the generative language API for one credential.
type Client struct {
	genai      *genai.Client
	timeout    time.Duration
	imageModel string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the flat per-call timeout applied to every outbound request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithImageModel sets the image generation model name.
func WithImageModel(name string) Option {
	return func(c *Client) {
		c.imageModel = name
	}
}

// NewClient creates a client authenticated with the given API token.
func NewClient(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("generative API token is required")
	}
	c := &Client{
		timeout:    defaultTimeout,
		imageModel: defaultImageModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	c.genai = client
	return c, nil
}

// Handles derives the plain and grounded handle pair from a session
// configuration. Both share identical sampling parameters; the grounded
// handle additionally enables Google Search retrieval.
func (c *Client) Handles(cfg model.GenerativeConfig) (plain, grounded *Handle) {
	plain = &Handle{
		client: c,
		model:  cfg.ModelName,
		config: generationConfig(cfg),
	}
	groundedConfig := generationConfig(cfg)
	groundedConfig.Tools = []*genai.Tool{
		{GoogleSearch: &genai.GoogleSearch{}},
	}
	grounded = &Handle{
		client:   c,
		model:    cfg.GroundedModelName,
		grounded: true,
		config:   groundedConfig,
	}
	return plain, grounded
}

// generationConfig maps the session configuration onto the API request
// configuration: structured JSON output, single candidate, caller supplied
// sampling parameters and safety thresholds.
func generationConfig(cfg model.GenerativeConfig) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		CandidateCount:   1,
		MaxOutputTokens:  cfg.MaxTokenCount,
		Temperature:      genai.Ptr(cfg.Temperature),
		TopP:             genai.Ptr(cfg.TopP),
		TopK:             genai.Ptr(float32(cfg.TopK)),
		ResponseMIMEType: "application/json",
	}
	if cfg.Instructions != "" {
		gc.SystemInstruction = genai.NewContentFromText(cfg.Instructions, genai.RoleUser)
	}
	for _, s := range cfg.SafetySettings {
		gc.SafetySettings = append(gc.SafetySettings, &genai.SafetySetting{
			Category:  genai.HarmCategory(s.Category),
			Threshold: genai.HarmBlockThreshold(s.Threshold),
		})
	}
	return gc
}

// Handle is a stateless model invocation configuration derived from a
// session config. Handles are recreated whenever the config changes.
type Handle struct {
	client   *Client
	model    string
	grounded bool
	config   *genai.GenerateContentConfig
}

var _ Invoker = (*Handle)(nil)

// Invoke sends the prompt plus any auxiliary parts and returns the first
// candidate's text after normalization. It never fails on malformed model
// text; only transport level problems surface as errors.
func (h *Handle) Invoke(ctx context.Context, prompt string, parts ...*genai.Part) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, h.client.timeout)
	defer cancel()

	ctx, span := telemetry.Tracer.Start(ctx, "gemini.generate",
		trace.WithAttributes(
			attribute.String("gemini.model", h.model),
			attribute.Bool("gemini.grounded", h.grounded),
		))
	defer span.End()

	all := append([]*genai.Part{genai.NewPartFromText(prompt)}, parts...)
	content := genai.NewContentFromParts(all, genai.RoleUser)

	resp, err := h.client.genai.Models.GenerateContent(ctx, h.model, []*genai.Content{content}, h.config)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	return ExtractTextCandidates(resp), nil
}

// InlineData builds an inline binary part (image or audio bytes).
func InlineData(data []byte, mimeType string) *genai.Part {
	return genai.NewPartFromBytes(data, mimeType)
}

// FileData builds a part referencing an uploaded media object by URI.
func FileData(uri, mimeType string) *genai.Part {
	return genai.NewPartFromURI(uri, mimeType)
}
