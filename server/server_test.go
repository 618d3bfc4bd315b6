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

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/GoogleCloudPlatform/genai-product-catalog/media/inmemory"
	"github.com/GoogleCloudPlatform/genai-product-catalog/model"
	"github.com/GoogleCloudPlatform/genai-product-catalog/session"
)

// countingInvoker returns a fixed reply and counts invocations.
type countingInvoker struct {
	calls atomic.Int64
	text  string
}

func (c *countingInvoker) Invoke(ctx context.Context, prompt string, parts ...*genai.Part) (string, error) {
	c.calls.Add(1)
	return c.text, nil
}

func newTestServer(t *testing.T, invoker *countingInvoker) (*Server, *session.Registry) {
	t.Helper()
	factory := func(cfg model.GenerativeConfig) (session.Handles, error) {
		return session.Handles{Model: invoker, GroundedModel: invoker}, nil
	}
	registry := session.NewRegistry(factory)
	srv, err := New(registry, inmemory.New())
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return srv, registry
}

func postJSON(t *testing.T, handler http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, handler http.Handler) string {
	t.Helper()
	rec := postJSON(t, handler, "/api/registration", ConfigurationRequest{
		Config: model.Config{GenerativeConfig: model.NewGenerativeConfig("test")},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp ConfigurationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.SessionID
}

func TestDefaultRoutes(t *testing.T) {
	srv, _ := newTestServer(t, &countingInvoker{})

	for _, path := range []string{"/", "/api"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, path)
		var info ServiceInfo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
		assert.Equal(t, serviceName, info.Name)
	}
}

func TestRegistrationCreateThenUpdate(t *testing.T) {
	srv, _ := newTestServer(t, &countingInvoker{})

	rec := postJSON(t, srv.Handler(), "/api/registration", ConfigurationRequest{})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created ConfigurationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "created", created.Message)
	assert.NotEmpty(t, created.SessionID)

	rec = postJSON(t, srv.Handler(), "/api/registration", ConfigurationRequest{
		SessionID: created.SessionID,
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	var updated ConfigurationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "updated", updated.Message)
	assert.Equal(t, created.SessionID, updated.SessionID)
}

func TestRegistrationBadBody(t *testing.T) {
	srv, _ := newTestServer(t, &countingInvoker{})

	req := httptest.NewRequest(http.MethodPost, "/api/registration", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Every prompt endpoint answers an unknown session with the 424 envelope
// without touching the model.
func TestUnknownSessionFailedDependency(t *testing.T) {
	invoker := &countingInvoker{text: "{}"}
	srv, _ := newTestServer(t, invoker)

	paths := []string{"/api/text", "/api/images", "/api/audio", "/api/voice", "/api/video", "/api/batch/stream"}
	for _, path := range paths {
		rec := postJSON(t, srv.Handler(), path, map[string]any{"sessionID": "no-such-session"})

		require.Equal(t, http.StatusFailedDependency, rec.Code, path)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), path)
		assert.Equal(t, codeSessionNotFound, resp.Code, path)
		assert.Equal(t, "failed to find session", resp.Error, path)
	}
	assert.Equal(t, int64(0), invoker.calls.Load())
}

func TestTextPrompt(t *testing.T) {
	invoker := &countingInvoker{text: `{"prompt":"hi","response":"**hello**"}`}
	srv, _ := newTestServer(t, invoker)
	id := register(t, srv.Handler())

	rec := postJSON(t, srv.Handler(), "/api/text", TextPromptRequest{
		SessionID: id,
		Prompt:    "hi",
		Value:     map[string]any{"name": "Desk Lamp"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, invoker.text, rec.Body.String())
	assert.Equal(t, int64(1), invoker.calls.Load())
}

func TestImagesPrompt(t *testing.T) {
	invoker := &countingInvoker{text: `[{"name":"Home > Decor > Lighting > Lamps"}]`}
	srv, _ := newTestServer(t, invoker)
	id := register(t, srv.Handler())

	rec := postJSON(t, srv.Handler(), "/api/images", ImagePromptRequest{
		SessionID: id,
		Prompt:    "detect categories",
		Value: []model.Image{
			{Base64: "data:image/png;base64,aW1hZ2U=", Type: "image/png"},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, invoker.text, rec.Body.String())
}

func TestImagesPromptBadPayload(t *testing.T) {
	srv, _ := newTestServer(t, &countingInvoker{})
	id := register(t, srv.Handler())

	rec := postJSON(t, srv.Handler(), "/api/images", ImagePromptRequest{
		SessionID: id,
		Value:     []model.Image{{Base64: "%%%", Type: "image/png"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Audio and voice report unavailability rather than panicking when no
// recognizer is wired.
func TestAudioWithoutRecognizer(t *testing.T) {
	srv, _ := newTestServer(t, &countingInvoker{})
	id := register(t, srv.Handler())

	rec := postJSON(t, srv.Handler(), "/api/audio", AudioPromptRequest{SessionID: id})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBatchSeedList(t *testing.T) {
	srv, _ := newTestServer(t, &countingInvoker{})

	req := httptest.NewRequest(http.MethodGet, "/api/batch", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var items []model.BatchProduct
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 10)
	assert.Equal(t, "Apple iPhone 15 Pro Max", items[0].Name)
	assert.Equal(t, "00012345678905", items[0].GTIN)
}

func TestBatchStream(t *testing.T) {
	product := model.SimpleProduct{Language: "EN-US", Name: "Desk Lamp"}
	text, err := json.Marshal(product)
	require.NoError(t, err)
	invoker := &countingInvoker{text: string(text)}
	srv, _ := newTestServer(t, invoker)
	id := register(t, srv.Handler())

	rec := postJSON(t, srv.Handler(), "/api/batch/stream", BatchPromptRequest{
		SessionID: id,
		Values:    []model.BatchProduct{{Name: "Desk Lamp"}},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `"type":"batch:response"`)
	assert.Contains(t, body, `"type":"batch:complete"`)
	assert.Contains(t, body, "Processed: 1 of 1")
}
