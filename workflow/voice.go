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
	"fmt"

	"github.com/GoogleCloudPlatform/genai-product-catalog/log"
	"github.com/GoogleCloudPlatform/genai-product-catalog/media"
	"github.com/GoogleCloudPlatform/genai-product-catalog/prompt"
	"github.com/GoogleCloudPlatform/genai-product-catalog/session"
	"github.com/GoogleCloudPlatform/genai-product-catalog/speech"
	"github.com/GoogleCloudPlatform/genai-product-catalog/telemetry"
)

// VoiceRequest is one recorded audio prompt plus the product context the
// reply should be grounded in.
type VoiceRequest struct {
	// MIMEType is the recording's declared type; webm/opus is assumed when
	// blank.
	MIMEType string
	// DataURL is the base64 recording, optionally with a data-URL header.
	DataURL string
	// ProductData is the session's working product state, echoed into the
	// prompt so the reply stays on topic.
	ProductData any
}

// VoiceResult is the synchronous form of a voice turn.
type VoiceResult struct {
	Transcript string `json:"transcript"`
	Value      string `json:"value"`
}

// Voice turns a recorded audio prompt into a model reply: upload the
// recording, transcribe it, then run the transcript through the session's
// chat prompt. The uploaded object is deleted on every exit path.
type Voice struct {
	media      media.Store
	recognizer speech.Recognizer
}

// NewVoice creates the voice workflow.
func NewVoice(store media.Store, recognizer speech.Recognizer) *Voice {
	return &Voice{media: store, recognizer: recognizer}
}

// transcribe uploads the recording and returns its transcript.
func (v *Voice) transcribe(ctx context.Context, sess *session.Session, req VoiceRequest) (string, error) {
	data, err := media.DecodeDataURL(req.DataURL)
	if err != nil {
		return "", err
	}

	mimeType := media.CleanMIME(req.MIMEType)
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	name := media.ObjectName("audio-request", sess.ID, "webm")
	uri, err := v.media.Save(ctx, name, mimeType, data)
	if err != nil {
		return "", fmt.Errorf("save audio object: %w", err)
	}
	defer func() {
		if err := v.media.Delete(ctx, uri); err != nil {
			log.Warnf("voice: delete audio object %s: %v", uri, err)
		}
	}()

	transcript, err := v.recognizer.Transcribe(ctx, uri)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	return transcript, nil
}

// Respond runs one synchronous voice turn and returns both the transcript
// and the reply.
func (v *Voice) Respond(ctx context.Context, sess *session.Session, req VoiceRequest) (VoiceResult, error) {
	ctx, span := telemetry.Tracer.Start(ctx, "workflow.voiceRespond")
	defer span.End()

	transcript, err := v.transcribe(ctx, sess, req)
	if err != nil {
		span.RecordError(err)
		return VoiceResult{}, err
	}

	reply, err := sess.Model.Invoke(ctx, prompt.TranscriptWithContext(transcript, req.ProductData))
	if err != nil {
		span.RecordError(err)
		return VoiceResult{}, fmt.Errorf("voice prompt: %w", err)
	}
	return VoiceResult{Transcript: transcript, Value: reply}, nil
}

// Stream runs one voice turn and emits the transcript as soon as it is
// available, then the model reply. Errors surface as a voice:error event and
// end the stream.
func (v *Voice) Stream(ctx context.Context, sess *session.Session, req VoiceRequest) <-chan Event {
	events := make(chan Event, 2)
	go func() {
		defer close(events)

		ctx, span := telemetry.Tracer.Start(ctx, "workflow.voiceStream")
		defer span.End()

		transcript, err := v.transcribe(ctx, sess, req)
		if err != nil {
			span.RecordError(err)
			events <- event(EventVoiceError, err.Error())
			return
		}
		events <- event(EventVoiceTranscript, transcript)

		reply, err := sess.Model.Invoke(ctx, prompt.TranscriptWithContext(transcript, req.ProductData))
		if err != nil {
			span.RecordError(err)
			events <- event(EventVoiceError, err.Error())
			return
		}
		events <- event(EventVoiceResponse, reply)
	}()
	return events
}
