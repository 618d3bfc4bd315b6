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

// Package speech defines the transcription boundary for voice prompts.
package speech

import "context"

// Recognizer transcribes a recorded audio object addressed by URI. The
// expected payload is webm/opus at 48kHz; transcription results from
// multiple segments are joined with newlines.
type Recognizer interface {
	Transcribe(ctx context.Context, uri string) (string, error)
}
