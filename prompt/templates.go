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

package prompt

import (
	"encoding/json"

	"github.com/GoogleCloudPlatform/genai-product-catalog/model"
)

// batchExtractionTemplate is the structured-extraction prompt issued once
// per batch item. The example output skeleton fixes the exact field names
// and nesting the model must imitate.
const batchExtractionTemplate = `Given the following product information follow the steps outlined below and produce a valid JSON response using the example output:
GTIN: ${gtin}
Product Name: ${name}
Short description: ${short_description}

- Find the top category and it's top 25 attributes and all matching values for this product, if there is not a matching value, do not include the attribute.
- The category hierarchy must be 4 levels deep, separated by ' > ' character as the category name.
- Write an enriched product description in markdown format for a retailers online catalog as the description.
- Write the HTML SEO description and keywords the product in plain text/html no Markdown as seoHtmlHeader.
- If the product is edible, include nutritional as additional attributeValues.

Example Output:
${example}`

// productImageTemplate drives the image generation stage after structured
// extraction succeeds.
const productImageTemplate = `Given the following JSON product details create an image of the product in an environment suitable for selling the product on an e-commerce web site. Natural Lighting, High Contrast, 35mm, Vivid.
Product Details:
${product}`

// chatTemplate shapes the conversational responses for the text and voice
// agents. The response value is expected in markdown.
const chatTemplate = `${prompt}
Product Data JSON: ${product}
Example JSON output: {prompt: '${prompt}', response: 'Some generated response'} where the response value is in markdown format.`

// audioContextSuffix appends caller product data to a voice transcript.
const audioContextSuffix = `
Use the following Product Data for additional information: ${product}`

// BatchExtraction renders the per-item structured extraction prompt.
func BatchExtraction(item model.BatchProduct) string {
	return Apply(batchExtractionTemplate, map[string]any{
		"gtin":              item.GTIN,
		"name":              item.Name,
		"short_description": item.ShortDescription,
		"example":           SimpleProductExample(),
	})
}

// ProductImage renders the image generation prompt for an extracted product.
func ProductImage(product model.Product) string {
	return Apply(productImageTemplate, map[string]any{
		"product": product,
	})
}

// Chat renders the conversational prompt with embedded product data.
func Chat(userPrompt string, productData any) string {
	return Apply(chatTemplate, map[string]any{
		"prompt":  userPrompt,
		"product": productData,
	})
}

// TranscriptWithContext appends the caller's product data to a transcript.
func TranscriptWithContext(transcript string, productData any) string {
	return transcript + Apply(audioContextSuffix, map[string]any{
		"product": productData,
	})
}

// SimpleProductExample returns the flat product JSON skeleton embedded in
// extraction prompts so the model mirrors the schema exactly.
func SimpleProductExample() string {
	example := model.SimpleProduct{
		Language:        "EN-US",
		AttributeValues: []model.ProductAttributeValue{{}},
	}
	b, _ := json.Marshal(example)
	return string(b)
}
