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
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/GoogleCloudPlatform/genai-product-catalog/log"
	"github.com/GoogleCloudPlatform/genai-product-catalog/model"
	"github.com/GoogleCloudPlatform/genai-product-catalog/prompt"
	"github.com/GoogleCloudPlatform/genai-product-catalog/session"
	"github.com/GoogleCloudPlatform/genai-product-catalog/telemetry"
)

const (
	// maxAttempts bounds structured extraction per item: one initial call
	// plus two retries.
	maxAttempts = 3

	defaultPoolSize   = 8
	defaultBufferSize = 64
)

// Batch runs the fan-out enrichment workflow. Every submitted item advances
// independently to a terminal state; the completion event fires exactly once
// when the count of terminal items equals the submitted count.
type Batch struct {
	pool     *ants.Pool
	poolSize int
}

// BatchOption configures the batch workflow.
type BatchOption func(*Batch)

// WithPoolSize sets the number of items processed concurrently.
func WithPoolSize(size int) BatchOption {
	return func(b *Batch) {
		b.poolSize = size
	}
}

// NewBatch creates the batch workflow with its worker pool.
func NewBatch(opts ...BatchOption) (*Batch, error) {
	b := &Batch{poolSize: defaultPoolSize}
	for _, opt := range opts {
		opt(b)
	}
	pool, err := ants.NewPool(b.poolSize)
	if err != nil {
		return nil, fmt.Errorf("create batch worker pool: %w", err)
	}
	b.pool = pool
	return b, nil
}

// Release shuts down the worker pool.
func (b *Batch) Release() {
	b.pool.Release()
}

// Run schedules every item on the worker pool and returns the event stream.
// The channel closes after the single completion event. Items complete in
// any order; each event identifies its item by name rather than position.
func (b *Batch) Run(ctx context.Context, sess *session.Session, items []model.BatchProduct) <-chan Event {
	events := make(chan Event, defaultBufferSize)

	var wg sync.WaitGroup
	wg.Add(len(items))
	for _, item := range items {
		item := item
		task := func() {
			defer wg.Done()
			b.processItem(ctx, sess, item, events)
		}
		if err := b.pool.Submit(task); err != nil {
			// Pool saturated or released; degrade to inline execution so the
			// item still reaches a terminal state.
			task()
		}
	}

	go func() {
		wg.Wait()
		events <- event(EventBatchComplete, fmt.Sprintf("Processed: %d of %d", len(items), len(items)))
		close(events)
	}()
	return events
}

// processItem drives one item to a terminal state: bounded-retry structured
// extraction, then non-fatal image generation.
func (b *Batch) processItem(ctx context.Context, sess *session.Session, item model.BatchProduct, events chan<- Event) {
	ctx, span := telemetry.Tracer.Start(ctx, "workflow.batchItem",
		trace.WithAttributes(attribute.String("item.name", item.Name)))
	defer span.End()

	extractionPrompt := prompt.BatchExtraction(item)

	var extracted model.SimpleProduct
	ok := false
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := sess.GroundedModel.Invoke(ctx, extractionPrompt)
		if err != nil {
			// Upstream failure is terminal for the item but must not halt
			// sibling items.
			span.RecordError(err)
			events <- event(EventBatchError, fmt.Sprintf("Failed to process: %s", item.Name))
			return
		}
		if err := json.Unmarshal([]byte(text), &extracted); err == nil {
			ok = true
			break
		}
		if attempt < maxAttempts {
			events <- event(EventBatchWarn, fmt.Sprintf("Retrying process for item: %s", item.Name))
		}
	}
	if !ok {
		events <- event(EventBatchError, fmt.Sprintf("Failed to process: %s", item.Name))
		return
	}

	product := extracted.Product()
	b.generateImage(ctx, sess, &product, events)
	events <- event(EventBatchResponse, product)
}

// generateImage runs the image stage. Failure is reported as a separate
// event; the item is still emitted with whatever fields it has.
func (b *Batch) generateImage(ctx context.Context, sess *session.Session, product *model.Product, events chan<- Event) {
	if sess.Images == nil {
		return
	}
	images, err := sess.Images.GenerateImages(ctx, prompt.ProductImage(*product))
	if err != nil {
		log.Errorf("batch: image generation for %s failed: %v", product.Base.Name, err)
		events <- event(EventBatchError, fmt.Sprintf("Failed to generate image for: %s", product.Base.Name))
		return
	}
	product.Images = append(product.Images, images...)
}
