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

// Package media stores the temporary audio and video objects a pipeline
// uploads before invoking the model. Each object is owned by exactly one
// pipeline invocation, which deletes it on every exit path; deletion is
// best-effort and never surfaces to the original caller.
package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// Store saves and deletes temporary media objects.
type Store interface {
	// Save writes the object and returns the URI the model can reference.
	Save(ctx context.Context, name, mimeType string, data []byte) (string, error)
	// Delete removes the object behind a URI returned by Save.
	Delete(ctx context.Context, uri string) error
}

// DecodeDataURL strips an optional "<prefix>;base64," header and decodes the
// remainder.
func DecodeDataURL(dataURL string) ([]byte, error) {
	payload := dataURL
	if idx := strings.Index(payload, ","); idx >= 0 {
		payload = payload[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode media payload: %w", err)
	}
	return data, nil
}

// CleanMIME drops any parameters from a MIME type ("video/mp4;codecs=avc1"
// becomes "video/mp4").
func CleanMIME(mimeType string) string {
	if idx := strings.IndexByte(mimeType, ';'); idx > 0 {
		return mimeType[:idx]
	}
	return mimeType
}

// ObjectName builds a unique object name for one upload. Underscores are not
// allowed in object names, so they are folded to dashes.
func ObjectName(job, id, extension string) string {
	name := fmt.Sprintf("%s-%s-%d.%s", job, id, time.Now().UnixMilli(), extension)
	return strings.ReplaceAll(name, "_", "-")
}
