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

package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestNormalizeJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "valid object untouched",
			input: `{"name":"Desk Lamp"}`,
			want:  `{"name":"Desk Lamp"}`,
		},
		{
			name:  "valid array untouched",
			input: `[{"name":"Home > Decor > Lighting > Lamps"}]`,
			want:  `[{"name":"Home > Decor > Lighting > Lamps"}]`,
		},
		{
			name:  "trailing brace dropped from array",
			input: `[{"name":"a"}]}`,
			want:  `[{"name":"a"}]`,
		},
		{
			name:  "invalid escape doubled",
			input: `{"name":"5\,5 cm"}`,
			want:  `{"name":"5\\,5 cm"}`,
		},
		{
			name:  "valid escapes preserved",
			input: `{"name":"line\nbreak \"quoted\""}`,
			want:  `{"name":"line\nbreak \"quoted\""}`,
		},
		{
			name:  "unrepairable text yields sentinel",
			input: "Sure! Here is your JSON:",
			want:  MalformedPayload,
		},
		{
			name:  "empty text yields sentinel",
			input: "",
			want:  MalformedPayload,
		},
		{
			name:  "array with trailing brace and bad escape",
			input: `[{"size":"6\.5"}]}`,
			want:  `[{"size":"6\\.5"}]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeJSON(tt.input))
		})
	}
}

// Normalization must be a fixpoint: running it twice never changes the
// result of running it once.
func TestNormalizeJSONIdempotent(t *testing.T) {
	inputs := []string{
		`{"name":"Desk Lamp"}`,
		`[{"name":"a"}]}`,
		`{"name":"5\,5 cm"}`,
		`{"name":"tab\there"}`,
		"not json at all",
		"",
		`[{"size":"6\.5"}]}`,
	}
	for _, input := range inputs {
		once := NormalizeJSON(input)
		assert.Equal(t, once, NormalizeJSON(once), "input %q", input)
	}
}

func TestExtractTextCandidates(t *testing.T) {
	t.Run("nil response", func(t *testing.T) {
		assert.Equal(t, NoContent, ExtractTextCandidates(nil))
	})

	t.Run("no candidates", func(t *testing.T) {
		assert.Equal(t, NoContent, ExtractTextCandidates(&genai.GenerateContentResponse{}))
	})

	t.Run("empty content", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{}},
		}
		assert.Equal(t, NoContent, ExtractTextCandidates(resp))
	})

	t.Run("concatenates parts and normalizes", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: `[{"name":"a"}`},
					{Text: `]}`},
				}},
			}},
		}
		assert.Equal(t, `[{"name":"a"}]`, ExtractTextCandidates(resp))
	})

	t.Run("malformed parts yield sentinel", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: "I could not comply"}}},
			}},
		}
		assert.Equal(t, MalformedPayload, ExtractTextCandidates(resp))
	})
}

func TestEscapeInvalidSequences(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`no escapes`, `no escapes`},
		{`a\nb`, `a\nb`},
		{`a\,b`, `a\\,b`},
		{`tail\`, `tail\\`},
		{`pair\\kept`, `pair\\kept`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeInvalidSequences(tt.input), "input %q", tt.input)
	}
}
