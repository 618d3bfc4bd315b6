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

package model

import "strings"

// HarmCategory identifies a safety filtering category.
type HarmCategory string

// Safety filtering categories.
const (
	HarmCategoryUnspecified      HarmCategory = "HARM_CATEGORY_UNSPECIFIED"
	HarmCategoryHateSpeech       HarmCategory = "HARM_CATEGORY_HATE_SPEECH"
	HarmCategoryDangerousContent HarmCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
	HarmCategoryHarassment       HarmCategory = "HARM_CATEGORY_HARASSMENT"
	HarmCategorySexuallyExplicit HarmCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
)

// HarmBlockThreshold is a probability based blocking level.
type HarmBlockThreshold string

// Blocking thresholds, from unspecified to block-none.
const (
	HarmBlockThresholdUnspecified HarmBlockThreshold = "HARM_BLOCK_THRESHOLD_UNSPECIFIED"
	HarmBlockLowAndAbove          HarmBlockThreshold = "BLOCK_LOW_AND_ABOVE"
	HarmBlockMediumAndAbove       HarmBlockThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	HarmBlockOnlyHigh             HarmBlockThreshold = "BLOCK_ONLY_HIGH"
	HarmBlockNone                 HarmBlockThreshold = "BLOCK_NONE"
)

// SafetySetting pairs a harm category with its blocking threshold.
type SafetySetting struct {
	Category  HarmCategory       `json:"category"`
	Threshold HarmBlockThreshold `json:"threshold"`
}

// GenerativeConfig holds the per-session model configuration. GenAIToken is
// the caller's API credential and must never appear in logs or persisted
// copies; use Redacted before handing the config to any side channel.
type GenerativeConfig struct {
	ModelName         string          `json:"modelName"`
	GroundedModelName string          `json:"groundedModelName"`
	GenAIToken        string          `json:"genAIToken"`
	Instructions      string          `json:"instructions"`
	Temperature       float32         `json:"temperature"`
	TopP              float32         `json:"topP"`
	TopK              int32           `json:"topK"`
	MaxTokenCount     int32           `json:"maxTokenCount"`
	SafetySettings    []SafetySetting `json:"safetySettings"`
}

// Config is the full registration payload: customer identity, language
// selection and the prompt templates alongside the generative configuration.
type Config struct {
	CustomerName                 string           `json:"customerName"`
	EngineerLdap                 string           `json:"engineerLdap"`
	DefaultLanguage              string           `json:"defaultLanguage"`
	SupportedLanguages           []string         `json:"supportedLanguages"`
	PromptDetectCategories       string           `json:"promptDetectCategories"`
	PromptExtractProductDetail   string           `json:"promptExtractProductDetail"`
	PromptTranslateProductDetail string           `json:"promptTranslateProductDetail"`
	PromptVideo                  string           `json:"promptVideo"`
	GenerativeConfig             GenerativeConfig `json:"generativeConfig"`
}

// TokenMask replaces the credential token in redacted copies.
const TokenMask = "xxxxxxxx"

// Redacted returns a copy of the config with the credential token masked.
func (c Config) Redacted() Config {
	c.GenerativeConfig.GenAIToken = TokenMask
	return c
}

// Merge overlays the caller supplied fields of overlay onto base and returns
// the result. The merge is shallow: a field set in overlay replaces the same
// field in base, zero valued (omitted) fields keep the stored value.
func (c GenerativeConfig) Merge(overlay GenerativeConfig) GenerativeConfig {
	merged := c
	if overlay.ModelName != "" {
		merged.ModelName = overlay.ModelName
	}
	if overlay.GroundedModelName != "" {
		merged.GroundedModelName = overlay.GroundedModelName
	}
	if overlay.GenAIToken != "" {
		merged.GenAIToken = overlay.GenAIToken
	}
	if overlay.Instructions != "" {
		merged.Instructions = overlay.Instructions
	}
	if overlay.Temperature != 0 {
		merged.Temperature = overlay.Temperature
	}
	if overlay.TopP != 0 {
		merged.TopP = overlay.TopP
	}
	if overlay.TopK != 0 {
		merged.TopK = overlay.TopK
	}
	if overlay.MaxTokenCount != 0 {
		merged.MaxTokenCount = overlay.MaxTokenCount
	}
	if overlay.SafetySettings != nil {
		merged.SafetySettings = overlay.SafetySettings
	}
	return merged
}

// NewGenerativeConfig returns the default generative configuration with the
// given system instructions.
func NewGenerativeConfig(instructions string) GenerativeConfig {
	return GenerativeConfig{
		ModelName:         "gemini-1.5-flash",
		GroundedModelName: "gemini-1.5-flash",
		Instructions:      instructions,
		Temperature:       0.2,
		TopP:              0.94,
		TopK:              32,
		MaxTokenCount:     8192,
		SafetySettings: []SafetySetting{
			{Category: HarmCategoryDangerousContent, Threshold: HarmBlockThresholdUnspecified},
			{Category: HarmCategoryHarassment, Threshold: HarmBlockThresholdUnspecified},
			{Category: HarmCategoryHateSpeech, Threshold: HarmBlockThresholdUnspecified},
			{Category: HarmCategorySexuallyExplicit, Threshold: HarmBlockThresholdUnspecified},
		},
	}
}

// CategoryLabel returns the display label for a harm category.
func CategoryLabel(category HarmCategory) string {
	switch category {
	case HarmCategoryDangerousContent:
		return "Dangerous Content"
	case HarmCategoryHateSpeech:
		return "Hate Speech"
	case HarmCategoryHarassment:
		return "Harassment"
	case HarmCategorySexuallyExplicit:
		return "Sexually Explicit"
	default:
		return "Undefined"
	}
}

// ThresholdLabel returns the display label for a numeric threshold level.
func ThresholdLabel(threshold int) string {
	switch threshold {
	case 1:
		return "Low and Above"
	case 2:
		return "Medium and Above"
	case 3:
		return "Block High Only"
	case 4:
		return "Block None"
	default:
		return "Unspecified"
	}
}

// ThresholdToNumber converts a blocking threshold to its slider position.
func ThresholdToNumber(threshold HarmBlockThreshold) int {
	switch threshold {
	case HarmBlockLowAndAbove:
		return 1
	case HarmBlockMediumAndAbove:
		return 2
	case HarmBlockOnlyHigh:
		return 3
	case HarmBlockNone:
		return 4
	default:
		return 0
	}
}

// NumberToThreshold converts a slider position back to a blocking threshold.
func NumberToThreshold(value int) HarmBlockThreshold {
	switch value {
	case 1:
		return HarmBlockLowAndAbove
	case 2:
		return HarmBlockMediumAndAbove
	case 3:
		return HarmBlockOnlyHigh
	case 4:
		return HarmBlockNone
	default:
		return HarmBlockThresholdUnspecified
	}
}

// ParseHarmCategory normalizes a wire string into a HarmCategory.
func ParseHarmCategory(s string) HarmCategory {
	switch HarmCategory(strings.ToUpper(strings.TrimSpace(s))) {
	case HarmCategoryHateSpeech:
		return HarmCategoryHateSpeech
	case HarmCategoryDangerousContent:
		return HarmCategoryDangerousContent
	case HarmCategoryHarassment:
		return HarmCategoryHarassment
	case HarmCategorySexuallyExplicit:
		return HarmCategorySexuallyExplicit
	default:
		return HarmCategoryUnspecified
	}
}
