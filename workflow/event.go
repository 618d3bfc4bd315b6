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

// Package workflow sequences multi-stage model invocations: the linear
// video-to-product pipeline and the fan-out batch enrichment workflow with
// bounded per-item retry.
package workflow

// EventType names a streamed workflow event.
type EventType string

// Streamed event types.
const (
	// EventBatchResponse carries a finished product for one batch item.
	EventBatchResponse EventType = "batch:response"
	// EventBatchWarn signals a retry after malformed model output.
	EventBatchWarn EventType = "batch:warn"
	// EventBatchError reports a per-item failure; sibling items continue.
	EventBatchError EventType = "batch:error"
	// EventBatchComplete fires exactly once when every item is terminal.
	EventBatchComplete EventType = "batch:complete"

	// EventVoiceTranscript carries the intermediate transcript.
	EventVoiceTranscript EventType = "voice:transcript"
	// EventVoiceResponse carries the generated voice agent reply.
	EventVoiceResponse EventType = "voice:response"
	// EventVoiceError reports a voice request failure.
	EventVoiceError EventType = "voice:error"
)

// Event is a single entry in a workflow's progress stream.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// Message is the common event payload shape.
type Message struct {
	Message any `json:"message"`
}

func event(t EventType, message any) Event {
	return Event{Type: t, Data: Message{Message: message}}
}
