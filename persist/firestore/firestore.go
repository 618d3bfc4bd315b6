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

// Package firestore provides a Cloud Firestore implementation of the
// configuration store.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/GoogleCloudPlatform/genai-product-catalog/model"
	"github.com/GoogleCloudPlatform/genai-product-catalog/persist"
)

var _ persist.Store = (*Store)(nil)

// Store persists session configurations to a Firestore collection.
type Store struct {
	client     *firestore.Client
	collection string
}

// New connects to the named Firestore database. Credentials are resolved
// through application default credentials.
func New(ctx context.Context, projectID, databaseID, collection string) (*Store, error) {
	if projectID == "" || collection == "" {
		return nil, fmt.Errorf("firestore project id and collection are required")
	}
	var (
		client *firestore.Client
		err    error
	)
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &Store{client: client, collection: collection}, nil
}

// SaveConfig upserts the configuration document for the session id.
// The caller is responsible for redacting the credential token first.
func (s *Store) SaveConfig(ctx context.Context, id string, cfg model.Config) error {
	// MergeAll requires map data.
	doc := map[string]any{
		"id":     id,
		"date":   time.Now().UnixMilli(),
		"config": cfg,
	}
	if _, err := s.client.Collection(s.collection).Doc(id).Set(ctx, doc, firestore.MergeAll); err != nil {
		return fmt.Errorf("persist session config %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
