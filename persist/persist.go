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

// Package persist defines the best-effort document store side channel for
// session configurations. Persistence is advisory: a failed write must never
// prevent a session from becoming usable, so callers log errors and move on.
package persist

import (
	"context"

	"github.com/GoogleCloudPlatform/genai-product-catalog/model"
)

// Store writes redacted session configurations keyed by session id.
// Implementations must tolerate repeated writes for the same id.
type Store interface {
	SaveConfig(ctx context.Context, id string, cfg model.Config) error
}
