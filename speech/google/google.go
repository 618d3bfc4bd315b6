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

// Package google provides a Cloud Speech-to-Text implementation of the
// transcription boundary.
package google

import (
	"context"
	"fmt"
	"strings"

	speechapi "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/GoogleCloudPlatform/genai-product-catalog/speech"
)

var _ speech.Recognizer = (*Recognizer)(nil)

// Recognizer transcribes voice payloads through the Cloud Speech API.
type Recognizer struct {
	client       *speechapi.Client
	languageCode string
}

// Option configures the recognizer.
type Option func(*Recognizer)

// WithLanguageCode sets the recognition language (default en-US).
func WithLanguageCode(code string) Option {
	return func(r *Recognizer) {
		r.languageCode = code
	}
}

// New creates a recognizer using application default credentials.
func New(ctx context.Context, opts ...Option) (*Recognizer, error) {
	client, err := speechapi.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	r := &Recognizer{
		client:       client,
		languageCode: "en-US",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Transcribe recognizes a webm/opus 48kHz recording and joins the segment
// transcripts with newlines.
func (r *Recognizer) Transcribe(ctx context.Context, uri string) (string, error) {
	resp, err := r.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_WEBM_OPUS,
			SampleRateHertz:            48000,
			LanguageCode:               r.languageCode,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Uri{Uri: uri},
		},
	})
	if err != nil {
		return "", fmt.Errorf("speech recognition failed: %w", err)
	}

	var segments []string
	for _, result := range resp.GetResults() {
		if alts := result.GetAlternatives(); len(alts) > 0 {
			segments = append(segments, alts[0].GetTranscript())
		}
	}
	return strings.Join(segments, "\n"), nil
}

// Close releases the underlying client.
func (r *Recognizer) Close() error {
	return r.client.Close()
}
