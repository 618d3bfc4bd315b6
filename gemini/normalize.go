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
	"encoding/json"
	"strings"

	"google.golang.org/genai"

	"github.com/GoogleCloudPlatform/genai-product-catalog/log"
)

// MalformedPayload is returned when model text fails JSON validation. It is
// deliberately invalid JSON so downstream parsers fail predictably instead
// of silently consuming garbage.
const MalformedPayload = "[{name='error'}]"

// NoContent is returned when a response carries no candidates at all.
const NoContent = "no content"

// ExtractTextCandidates pulls the first candidate's text out of a response
// and normalizes it. It never panics and always returns some string.
func ExtractTextCandidates(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return NoContent
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return NoContent
	}
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}
	return NormalizeJSON(sb.String())
}

// NormalizeJSON repairs the JSON defects the model is known to emit and
// validates the result:
//
//  1. An array opener paired with an object closer (a truncation artifact)
//     loses the trailing character.
//  2. Backslashes that do not start a valid JSON escape are doubled.
//  3. The repaired string must parse as JSON; the parsed value is discarded
//     and the string itself is returned.
//
// Text that still fails validation collapses to MalformedPayload rather
// than an error. The escape repair is idempotent.
func NormalizeJSON(text string) string {
	if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "}") {
		text = text[:len(text)-1]
	}
	text = escapeInvalidSequences(text)
	if !json.Valid([]byte(text)) {
		log.Warnf("invalid JSON response from model: %q", truncateForLog(text))
		return MalformedPayload
	}
	return text
}

// validEscapes are the characters that may legally follow a backslash in a
// JSON string.
const validEscapes = `"\/bfnrt`

// escapeInvalidSequences doubles every backslash that does not begin a valid
// JSON escape sequence. A backslash followed by a valid escape character is
// consumed as a pair, so repeated application leaves the text unchanged.
func escapeInvalidSequences(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		if i+1 < len(text) && strings.IndexByte(validEscapes, text[i+1]) >= 0 {
			sb.WriteByte(c)
			sb.WriteByte(text[i+1])
			i++
			continue
		}
		sb.WriteString(`\\`)
	}
	return sb.String()
}

func truncateForLog(text string) string {
	const max = 256
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
