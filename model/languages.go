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

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is the fallback product language code.
const DefaultLanguage = "EN"

// Language pairs a display name with its ISO code.
type Language struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SupportedLanguages lists the translation targets offered to callers.
var SupportedLanguages = []Language{
	{Name: "Arabic", Value: "AR"},
	{Name: "Bengali", Value: "BN"},
	{Name: "Bulgarian", Value: "BG"},
	{Name: "Chinese", Value: "ZH"},
	{Name: "Croatian", Value: "HR"},
	{Name: "Czech", Value: "CS"},
	{Name: "Danish", Value: "DA"},
	{Name: "Dutch", Value: "NL"},
	{Name: "English", Value: "EN"},
	{Name: "Estonian", Value: "ET"},
	{Name: "Finnish", Value: "FI"},
	{Name: "French", Value: "FR"},
	{Name: "German", Value: "DE"},
	{Name: "Greek", Value: "EL"},
	{Name: "Hebrew", Value: "IW"},
	{Name: "Hindi", Value: "HI"},
	{Name: "Hungarian", Value: "HU"},
	{Name: "Indonesian", Value: "ID"},
	{Name: "Italian", Value: "IT"},
	{Name: "Japanese", Value: "JA"},
	{Name: "Korean", Value: "KO"},
	{Name: "Latvian", Value: "LV"},
	{Name: "Norwegian", Value: "NO"},
	{Name: "Polish", Value: "PL"},
	{Name: "Portuguese", Value: "PT"},
	{Name: "Romanian", Value: "RO"},
	{Name: "Russian", Value: "RU"},
	{Name: "Serbian", Value: "SR"},
	{Name: "Slovak", Value: "SK"},
	{Name: "Slovenian", Value: "SL"},
	{Name: "Spanish", Value: "ES"},
	{Name: "Swahili", Value: "SW"},
	{Name: "Swedish", Value: "SV"},
	{Name: "Thai", Value: "TH"},
	{Name: "Turkish", Value: "TR"},
	{Name: "Ukrainian", Value: "UK"},
	{Name: "Vietnamese", Value: "VI"},
}

// IsSupportedLanguage reports whether code is one of the supported targets.
func IsSupportedLanguage(code string) bool {
	for _, l := range SupportedLanguages {
		if l.Value == code {
			return true
		}
	}
	return false
}

// NormalizeLanguage parses an ISO language tag and returns the canonical
// upper-cased base code, falling back to DefaultLanguage for unparseable input.
func NormalizeLanguage(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return DefaultLanguage
	}
	base, conf := tag.Base()
	if conf == language.No {
		return DefaultLanguage
	}
	normalized := base.String()
	if len(normalized) >= 2 {
		normalized = normalized[:2]
	}
	return strings.ToUpper(normalized)
}
