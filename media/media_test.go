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

package media

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURL(t *testing.T) {
	payload := []byte("raw media bytes")
	encoded := base64.StdEncoding.EncodeToString(payload)

	t.Run("with data URL header", func(t *testing.T) {
		got, err := DecodeDataURL("data:video/mp4;base64," + encoded)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("bare base64", func(t *testing.T) {
		got, err := DecodeDataURL(encoded)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("invalid payload", func(t *testing.T) {
		_, err := DecodeDataURL("data:video/mp4;base64,%%%")
		assert.Error(t, err)
	})
}

func TestCleanMIME(t *testing.T) {
	assert.Equal(t, "video/mp4", CleanMIME("video/mp4;codecs=avc1"))
	assert.Equal(t, "video/mp4", CleanMIME("video/mp4"))
	assert.Equal(t, "audio/webm", CleanMIME("audio/webm;codecs=opus"))
}

func TestObjectName(t *testing.T) {
	name := ObjectName("video-request", "session_one", "mp4")

	assert.True(t, strings.HasPrefix(name, "video-request-session-one-"))
	assert.True(t, strings.HasSuffix(name, ".mp4"))
	assert.NotContains(t, name, "_")
}
