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

package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/GoogleCloudPlatform/genai-product-catalog/gemini"
	"github.com/GoogleCloudPlatform/genai-product-catalog/log"
	"github.com/GoogleCloudPlatform/genai-product-catalog/media"
	"github.com/GoogleCloudPlatform/genai-product-catalog/model"
	"github.com/GoogleCloudPlatform/genai-product-catalog/prompt"
	"github.com/GoogleCloudPlatform/genai-product-catalog/session"
	"github.com/GoogleCloudPlatform/genai-product-catalog/telemetry"
)

const videoFileExtension = "mp4"

// MalformedOutputError reports model text that failed JSON validation at a
// named pipeline stage. The linear pipeline never retries; the error goes
// straight back to the caller.
type MalformedOutputError struct {
	Stage string
	Err   error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("stage %s returned malformed output: %v", e.Stage, e.Err)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Err
}

// VideoRequest is one linear pipeline invocation: a recorded video plus the
// three stage prompts.
type VideoRequest struct {
	MIMEType            string
	DataURL             string
	Prompt              string
	CategoryPrompt      string
	ProductDetailPrompt string
}

// VideoPipeline runs the strictly sequential video → description →
// category → attribute extraction chain. The uploaded media object is owned
// by one Run invocation and deleted on every exit path.
type VideoPipeline struct {
	media media.Store
}

// NewVideoPipeline creates a pipeline storing temporary uploads in store.
func NewVideoPipeline(store media.Store) *VideoPipeline {
	return &VideoPipeline{media: store}
}

// Run executes the pipeline for one session and returns the final product
// JSON text. Stage N+1 never starts before stage N's output parsed; the
// first malformed stage output terminates the pipeline.
func (p *VideoPipeline) Run(ctx context.Context, sess *session.Session, req VideoRequest) (string, error) {
	ctx, span := telemetry.Tracer.Start(ctx, "workflow.video",
		trace.WithAttributes(attribute.String("session.id", sess.ID)))
	defer span.End()

	data, err := media.DecodeDataURL(req.DataURL)
	if err != nil {
		return "", err
	}

	mimeType := media.CleanMIME(req.MIMEType)
	name := media.ObjectName("video-request", sess.ID, videoFileExtension)
	uri, err := p.media.Save(ctx, name, mimeType, data)
	if err != nil {
		return "", fmt.Errorf("save video upload: %w", err)
	}
	defer func() {
		// Cleanup is best-effort and must run on every exit path.
		if err := p.media.Delete(ctx, uri); err != nil {
			log.Warnf("video pipeline: temporary object %s not deleted: %v", uri, err)
		}
	}()

	description, err := sess.Model.Invoke(ctx, req.Prompt, gemini.FileData(uri, mimeType))
	if err != nil {
		return "", err
	}
	log.Debugf("video description: %s", description)

	categoryText, err := sess.GroundedModel.Invoke(ctx, req.CategoryPrompt+"Product Information: "+description)
	if err != nil {
		return "", err
	}

	var categories []model.Category
	if err := json.Unmarshal([]byte(categoryText), &categories); err != nil {
		return "", &MalformedOutputError{Stage: "category-detection", Err: err}
	}
	if len(categories) == 0 {
		return "", &MalformedOutputError{Stage: "category-detection", Err: fmt.Errorf("no categories detected")}
	}

	detail := productDetailPrompt(req.ProductDetailPrompt, categories[0])
	productText, err := sess.GroundedModel.Invoke(ctx, detail)
	if err != nil {
		return "", err
	}
	return productText, nil
}

// productDetailPrompt fills the attribute extraction template with the
// detected category's attributes and an empty attribute-value skeleton.
func productDetailPrompt(template string, category model.Category) string {
	skeleton := make([]model.ProductAttributeValue, 0, len(category.Attributes))
	for _, attr := range category.Attributes {
		skeleton = append(skeleton, model.ProductAttributeValue{Name: attr.Name})
	}
	return prompt.Apply(template, map[string]any{
		"category_attributes":           category.Attributes,
		"product_attribute_value_model": skeleton,
	})
}
