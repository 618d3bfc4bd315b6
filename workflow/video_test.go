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
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/genai-product-catalog/media/inmemory"
	"github.com/GoogleCloudPlatform/genai-product-catalog/model"
)

func videoDataURL() string {
	return "data:video/mp4;base64," + base64.StdEncoding.EncodeToString([]byte("video-bytes"))
}

func videoRequest() VideoRequest {
	return VideoRequest{
		MIMEType:            "video/mp4",
		DataURL:             videoDataURL(),
		Prompt:              "Describe the product in this video",
		CategoryPrompt:      "Detect the category. ",
		ProductDetailPrompt: "Attributes: ${category_attributes} Skeleton: ${product_attribute_value_model}",
	}
}

func TestVideoPipeline(t *testing.T) {
	invoker := newScriptedInvoker()
	invoker.script("Describe the product", reply{text: "A black desk lamp with a steel arm."})
	invoker.script("Detect the category",
		reply{text: `[{"name":"Home > Decor > Lighting > Lamps","attributes":[{"name":"Color"},{"name":"Material"}]}]`})
	invoker.script("Attributes:", reply{text: `{"base":{"name":"Desk Lamp"}}`})

	store := inmemory.New()
	pipeline := NewVideoPipeline(store)

	got, err := pipeline.Run(context.Background(), testSession(invoker, nil), videoRequest())
	require.NoError(t, err)
	assert.Equal(t, `{"base":{"name":"Desk Lamp"}}`, got)

	// The temporary upload is gone.
	assert.Equal(t, 0, store.Len())
}

func TestVideoPipelineMalformedCategories(t *testing.T) {
	invoker := newScriptedInvoker()
	invoker.script("Describe the product", reply{text: "A black desk lamp."})
	invoker.script("Detect the category", reply{text: "[{name='error'}]"})
	// No script for the attribute stage: reaching it would fail the test.

	store := inmemory.New()
	pipeline := NewVideoPipeline(store)

	_, err := pipeline.Run(context.Background(), testSession(invoker, nil), videoRequest())

	var malformed *MalformedOutputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "category-detection", malformed.Stage)
	assert.Equal(t, 0, store.Len())
}

func TestVideoPipelineEmptyCategories(t *testing.T) {
	invoker := newScriptedInvoker()
	invoker.script("Describe the product", reply{text: "A black desk lamp."})
	invoker.script("Detect the category", reply{text: "[]"})

	pipeline := NewVideoPipeline(inmemory.New())

	_, err := pipeline.Run(context.Background(), testSession(invoker, nil), videoRequest())

	var malformed *MalformedOutputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "category-detection", malformed.Stage)
}

func TestVideoPipelineDescriptionError(t *testing.T) {
	invoker := newScriptedInvoker()
	invoker.script("Describe the product", reply{err: errors.New("rpc unavailable")})

	store := inmemory.New()
	pipeline := NewVideoPipeline(store)

	_, err := pipeline.Run(context.Background(), testSession(invoker, nil), videoRequest())
	require.Error(t, err)
	// Cleanup still ran.
	assert.Equal(t, 0, store.Len())
}

func TestVideoPipelineBadPayload(t *testing.T) {
	pipeline := NewVideoPipeline(inmemory.New())

	req := videoRequest()
	req.DataURL = "data:video/mp4;base64,%%%not-base64%%%"
	_, err := pipeline.Run(context.Background(), testSession(newScriptedInvoker(), nil), req)
	require.Error(t, err)
}

func TestProductDetailPrompt(t *testing.T) {
	category := model.Category{
		Name: "Home > Decor > Lighting > Lamps",
		Attributes: []model.Attribute{
			{Name: "Color", Description: "primary color"},
		},
	}
	got := productDetailPrompt("a=${category_attributes} s=${product_attribute_value_model}", category)

	assert.Contains(t, got, `"name":"Color"`)
	assert.Contains(t, got, `"value":""`)
	assert.NotContains(t, got, "${")
}
