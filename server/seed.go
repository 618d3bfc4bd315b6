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

package server

import "github.com/GoogleCloudPlatform/genai-product-catalog/model"

// seedProducts is the demo item list served on GET /api/batch. Callers add
// their own rows in the UI before submitting the stream request.
var seedProducts = []model.BatchProduct{
	{ID: 1, GTIN: "00012345678905", Name: "Apple iPhone 15 Pro Max", ShortDescription: "Smartphone with A17 Pro chip and Super Retina XDR display"},
	{ID: 2, GTIN: "00023456789014", Name: "Samsung Galaxy Tab S9 Ultra", ShortDescription: "Tablet with Dynamic AMOLED 2X display and Snapdragon 8 Gen 2 for Galaxy processor"},
	{ID: 3, GTIN: "0003456789013", Name: "Sony WH-1000XM5", ShortDescription: "Wireless noise-cancelling headphones with industry-leading noise cancellation"},
	{ID: 4, GTIN: "0004567890122", Name: "Bose QuietComfort Earbuds II", ShortDescription: "True wireless noise-cancelling earbuds with CustomTune technology"},
	{ID: 5, GTIN: "0005678901231", Name: "LG C3 OLED TV", ShortDescription: "Smart TV with α9 AI Processor Gen6 and 4K self-lit OLED evo panel"},
	{ID: 6, GTIN: "0006789012340", Name: "Dyson V15 Detect Absolute", ShortDescription: "Cordless vacuum cleaner with laser dust detection and HEPA filtration"},
	{ID: 7, GTIN: "0007890123459", Name: "KitchenAid Artisan Stand Mixer", ShortDescription: "5-quart stand mixer with 10 speeds and tilt-head design"},
	{ID: 8, GTIN: "0008901234568", Name: "Nespresso Vertuo Next", ShortDescription: "Single-serve coffee machine with centrifusion technology"},
	{ID: 9, GTIN: "0009012345677", Name: "Nike Air Zoom Pegasus 40", ShortDescription: "Running shoes with React foam and Zoom Air unit"},
	{ID: 10, GTIN: "0010123456786", Name: "LEGO Star Wars Millennium Falcon", ShortDescription: "7,541-piece LEGO set of the iconic Star Wars spaceship"},
}
