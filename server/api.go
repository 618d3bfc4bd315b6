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

import "github.com/GoogleCloudPlatform/genai-product-catalog/model"

// ErrorResponse is the envelope for every non-2xx JSON reply.
type ErrorResponse struct {
	Code  int    `json:"code,omitempty"`
	Error string `json:"error"`
}

// codeSessionNotFound identifies the absent-session outcome in the 424
// envelope.
const codeSessionNotFound = 1001

// ConfigurationRequest registers or reconfigures a session.
type ConfigurationRequest struct {
	SessionID string       `json:"sessionID,omitempty"`
	Config    model.Config `json:"config"`
}

// ConfigurationResponse acknowledges a registration write.
type ConfigurationResponse struct {
	SessionID string `json:"sessionID"`
	Message   string `json:"message"`
}

// TextPromptRequest is one chat turn. Value carries the session's working
// product state and is echoed into the prompt.
type TextPromptRequest struct {
	SessionID string `json:"sessionID"`
	Prompt    string `json:"prompt"`
	Value     any    `json:"value,omitempty"`
}

// ImagePromptRequest asks for category detection over one or more inline
// images.
type ImagePromptRequest struct {
	SessionID string        `json:"sessionID"`
	Prompt    string        `json:"prompt"`
	Value     []model.Image `json:"value"`
}

// AudioPromptRequest carries one recorded audio prompt as a data URL.
type AudioPromptRequest struct {
	SessionID string `json:"sessionID"`
	Type      string `json:"type"`
	Value     string `json:"value"`
	Prompt    any    `json:"prompt,omitempty"`
}

// AudioPromptResponse is the synchronous audio reply.
type AudioPromptResponse struct {
	Transcript string `json:"transcript"`
	Value      string `json:"value"`
}

// VideoPromptRequest drives the linear video pipeline.
type VideoPromptRequest struct {
	SessionID           string `json:"sessionID"`
	Type                string `json:"type"`
	Value               string `json:"value"`
	Prompt              string `json:"prompt"`
	CategoryPrompt      string `json:"categoryPrompt"`
	ProductDetailPrompt string `json:"productDetailPrompt"`
}

// BatchPromptRequest submits items for fan-out enrichment.
type BatchPromptRequest struct {
	SessionID string               `json:"sessionID"`
	Values    []model.BatchProduct `json:"values"`
}

// ServiceInfo is the health/identity payload on the default routes.
type ServiceInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
