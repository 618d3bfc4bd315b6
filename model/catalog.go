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

// Package model defines the product catalog domain types shared across the
// catalog assistant: categories, products, batch inputs and the generative
// model configuration bound to a session.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CategoryDepth is the number of hierarchy levels in a category name.
const CategoryDepth = 4

// CategorySeparator joins the hierarchy segments of a category name.
const CategorySeparator = " > "

// Attribute describes a single category attribute and its allowed values.
type Attribute struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ValueRange  []string `json:"valueRange"`
}

// Category is a retail product category. Name is hierarchical with segments
// joined by " > " at a fixed depth of four levels.
type Category struct {
	Name       string      `json:"name"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

// Segments splits the hierarchical category name into its levels.
func (c Category) Segments() []string {
	if c.Name == "" {
		return nil
	}
	return strings.Split(c.Name, CategorySeparator)
}

// ProductAttributeValue carries a resolved attribute value on a product.
type ProductAttributeValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Image is a product image, either inline base64 or addressable by URI.
type Image struct {
	URI    string `json:"uri,omitempty"`
	Base64 string `json:"base64"`
	Type   string `json:"type"`
}

// BatchProduct is a single batch enrichment input supplied by the caller.
// GTIN is a numeric GTIN-13/14 string and may be malformed.
type BatchProduct struct {
	ID               int    `json:"id,omitempty"`
	IsNew            bool   `json:"isNew,omitempty"`
	GTIN             string `json:"gtin,omitempty"`
	Name             string `json:"name"`
	ShortDescription string `json:"short_description"`
}

// BaseProduct is the language scoped portion of a product.
type BaseProduct struct {
	Language        string                  `json:"language"`
	Name            string                  `json:"name"`
	Description     string                  `json:"description"`
	SEOHTMLHeader   string                  `json:"seoHtmlHeader"`
	AttributeValues []ProductAttributeValue `json:"attributeValues"`
}

// Product is an enriched catalog product. Alternatives hold translations of
// the base product; their languages must be pairwise distinct.
type Product struct {
	Base         BaseProduct `json:"base"`
	Category     Category    `json:"category"`
	Images       []Image     `json:"images"`
	Alternatives []Product   `json:"alternatives,omitempty"`
}

// SimpleProduct is the flat structured-extraction shape the batch workflow
// asks the model to produce before it is folded into a Product.
type SimpleProduct struct {
	Language        string                  `json:"language"`
	Name            string                  `json:"name"`
	Category        string                  `json:"category"`
	Description     string                  `json:"description"`
	SEOHTMLHeader   string                  `json:"seoHtmlHeader"`
	AttributeValues []ProductAttributeValue `json:"attributeValues"`
}

// Product folds the flat extraction result into the nested product shape.
func (s SimpleProduct) Product() Product {
	return Product{
		Base: BaseProduct{
			Language:        s.Language,
			Name:            s.Name,
			Description:     s.Description,
			SEOHTMLHeader:   s.SEOHTMLHeader,
			AttributeValues: s.AttributeValues,
		},
		Category: Category{Name: s.Category},
	}
}

// NewProduct returns an empty product for the given language.
func NewProduct(language string) Product {
	if language == "" {
		language = DefaultLanguage
	}
	return Product{
		Base: BaseProduct{
			Language:        language,
			AttributeValues: []ProductAttributeValue{},
		},
		Images:       []Image{},
		Alternatives: []Product{},
	}
}

// ProductAsJSONString renders the empty product skeleton. Prompts embed it so
// the model has a concrete output shape to imitate.
func ProductAsJSONString() string {
	b, _ := json.Marshal(NewProduct(DefaultLanguage))
	return string(b)
}

// AddAlternative appends a translation to the product. Each alternative must
// carry a language distinct from the base product and every other alternative.
func (p *Product) AddAlternative(alt Product) error {
	if alt.Base.Language == p.Base.Language {
		return fmt.Errorf("alternative language %q duplicates base product", alt.Base.Language)
	}
	for _, existing := range p.Alternatives {
		if existing.Base.Language == alt.Base.Language {
			return fmt.Errorf("alternative language %q already present", alt.Base.Language)
		}
	}
	p.Alternatives = append(p.Alternatives, alt)
	return nil
}
