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
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/genai"

	"github.com/GoogleCloudPlatform/genai-product-catalog/model"
	"github.com/GoogleCloudPlatform/genai-product-catalog/telemetry"
)

var _ ImageGenerator = (*Client)(nil)

// GenerateImages renders a single product image for the prompt and returns
// it inline as base64.
func (c *Client) GenerateImages(ctx context.Context, prompt string) ([]model.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := telemetry.Tracer.Start(ctx, "gemini.generateImages")
	defer span.End()

	resp, err := c.genai.Models.GenerateImages(ctx, c.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	var images []model.Image
	for _, generated := range resp.GeneratedImages {
		if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
			continue
		}
		images = append(images, model.Image{
			Base64: base64.StdEncoding.EncodeToString(generated.Image.ImageBytes),
			Type:   generated.Image.MIMEType,
		})
	}
	return images, nil
}
