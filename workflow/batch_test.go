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
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/GoogleCloudPlatform/genai-product-catalog/model"
	"github.com/GoogleCloudPlatform/genai-product-catalog/session"
)

// scriptedInvoker returns canned replies in order for each matching
// substring of the prompt. Safe for concurrent use.
type scriptedInvoker struct {
	mu      sync.Mutex
	scripts map[string][]reply
}

type reply struct {
	text string
	err  error
}

func newScriptedInvoker() *scriptedInvoker {
	return &scriptedInvoker{scripts: make(map[string][]reply)}
}

func (s *scriptedInvoker) script(key string, replies ...reply) {
	s.scripts[key] = replies
}

func (s *scriptedInvoker) Invoke(ctx context.Context, prompt string, parts ...*genai.Part) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, replies := range s.scripts {
		if !strings.Contains(prompt, key) {
			continue
		}
		if len(replies) == 0 {
			return "", fmt.Errorf("script for %q exhausted", key)
		}
		next := replies[0]
		s.scripts[key] = replies[1:]
		return next.text, next.err
	}
	return "", fmt.Errorf("no script matches prompt %q", prompt)
}

type fakeImageGenerator struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeImageGenerator) GenerateImages(ctx context.Context, prompt string) ([]model.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []model.Image{{Base64: "aW1n", Type: "image/png"}}, nil
}

func testSession(invoker *scriptedInvoker, images *fakeImageGenerator) *session.Session {
	sess := &session.Session{ID: "test-session"}
	sess.Model = invoker
	sess.GroundedModel = invoker
	if images != nil {
		sess.Images = images
	}
	return sess
}

func collect(t *testing.T, events <-chan Event) map[EventType][]Event {
	t.Helper()
	byType := make(map[EventType][]Event)
	for e := range events {
		byType[e.Type] = append(byType[e.Type], e)
	}
	return byType
}

func validProductJSON(name string) string {
	p := model.SimpleProduct{
		Language: "EN-US",
		Name:     name,
		Category: "Electronics > Audio > Headphones > Over-Ear",
	}
	b, _ := json.Marshal(p)
	return string(b)
}

func TestBatchRetriesThenSucceeds(t *testing.T) {
	invoker := newScriptedInvoker()
	invoker.script("Desk Lamp", reply{text: validProductJSON("Desk Lamp")})
	invoker.script("Headphones",
		reply{text: "not json"},
		reply{text: "still not json"},
		reply{text: validProductJSON("Headphones")},
	)
	images := &fakeImageGenerator{}

	batch, err := NewBatch()
	require.NoError(t, err)
	defer batch.Release()

	items := []model.BatchProduct{
		{Name: "Desk Lamp", ShortDescription: "a lamp"},
		{Name: "Headphones", ShortDescription: "headphones"},
	}
	byType := collect(t, batch.Run(context.Background(), testSession(invoker, images), items))

	assert.Len(t, byType[EventBatchResponse], 2)
	require.Len(t, byType[EventBatchWarn], 2)
	for _, e := range byType[EventBatchWarn] {
		assert.Equal(t, "Retrying process for item: Headphones", e.Data.(Message).Message)
	}
	assert.Empty(t, byType[EventBatchError])

	require.Len(t, byType[EventBatchComplete], 1)
	assert.Equal(t, "Processed: 2 of 2", byType[EventBatchComplete][0].Data.(Message).Message)
}

func TestBatchGivesUpAfterMaxAttempts(t *testing.T) {
	invoker := newScriptedInvoker()
	invoker.script("Hopeless",
		reply{text: "garbage"},
		reply{text: "garbage"},
		reply{text: "garbage"},
	)

	batch, err := NewBatch()
	require.NoError(t, err)
	defer batch.Release()

	items := []model.BatchProduct{{Name: "Hopeless"}}
	byType := collect(t, batch.Run(context.Background(), testSession(invoker, nil), items))

	assert.Empty(t, byType[EventBatchResponse])
	assert.Len(t, byType[EventBatchWarn], 2)
	require.Len(t, byType[EventBatchError], 1)
	assert.Equal(t, "Failed to process: Hopeless", byType[EventBatchError][0].Data.(Message).Message)

	// The give-up still counts toward completion.
	require.Len(t, byType[EventBatchComplete], 1)
	assert.Equal(t, "Processed: 1 of 1", byType[EventBatchComplete][0].Data.(Message).Message)
}

// An upstream invocation error is terminal for the item without retries.
func TestBatchInvokeErrorTerminal(t *testing.T) {
	invoker := newScriptedInvoker()
	invoker.script("Broken", reply{err: errors.New("rpc unavailable")})

	batch, err := NewBatch()
	require.NoError(t, err)
	defer batch.Release()

	items := []model.BatchProduct{{Name: "Broken"}}
	byType := collect(t, batch.Run(context.Background(), testSession(invoker, nil), items))

	assert.Empty(t, byType[EventBatchWarn])
	require.Len(t, byType[EventBatchError], 1)
	assert.Equal(t, "Failed to process: Broken", byType[EventBatchError][0].Data.(Message).Message)
	assert.Len(t, byType[EventBatchComplete], 1)
}

// Image generation failure is reported but does not suppress the item.
func TestBatchImageFailureNonFatal(t *testing.T) {
	invoker := newScriptedInvoker()
	invoker.script("Desk Lamp", reply{text: validProductJSON("Desk Lamp")})
	images := &fakeImageGenerator{err: errors.New("quota exceeded")}

	batch, err := NewBatch()
	require.NoError(t, err)
	defer batch.Release()

	items := []model.BatchProduct{{Name: "Desk Lamp"}}
	byType := collect(t, batch.Run(context.Background(), testSession(invoker, images), items))

	require.Len(t, byType[EventBatchError], 1)
	assert.Equal(t, "Failed to generate image for: Desk Lamp", byType[EventBatchError][0].Data.(Message).Message)

	require.Len(t, byType[EventBatchResponse], 1)
	product := byType[EventBatchResponse][0].Data.(Message).Message.(model.Product)
	assert.Equal(t, "Desk Lamp", product.Base.Name)
	assert.Empty(t, product.Images)

	assert.Len(t, byType[EventBatchComplete], 1)
}

func TestBatchSuccessAttachesImage(t *testing.T) {
	invoker := newScriptedInvoker()
	invoker.script("Desk Lamp", reply{text: validProductJSON("Desk Lamp")})
	images := &fakeImageGenerator{}

	batch, err := NewBatch()
	require.NoError(t, err)
	defer batch.Release()

	items := []model.BatchProduct{{Name: "Desk Lamp"}}
	byType := collect(t, batch.Run(context.Background(), testSession(invoker, images), items))

	require.Len(t, byType[EventBatchResponse], 1)
	product := byType[EventBatchResponse][0].Data.(Message).Message.(model.Product)
	require.Len(t, product.Images, 1)
	assert.Equal(t, "image/png", product.Images[0].Type)
	assert.Equal(t, 1, images.calls)
}

func TestBatchEmptyInput(t *testing.T) {
	batch, err := NewBatch(WithPoolSize(2))
	require.NoError(t, err)
	defer batch.Release()

	byType := collect(t, batch.Run(context.Background(), testSession(newScriptedInvoker(), nil), nil))

	require.Len(t, byType[EventBatchComplete], 1)
	assert.Equal(t, "Processed: 0 of 0", byType[EventBatchComplete][0].Data.(Message).Message)
}
