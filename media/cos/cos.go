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

// Package cos provides a Tencent Cloud Object Storage backed media store.
//
// Authentication credentials are provided via the COS_SECRETID and
// COS_SECRETKEY environment variables or the WithSecretID / WithSecretKey
// options.
package cos

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	cos "github.com/tencentyun/cos-go-sdk-v5"

	"github.com/GoogleCloudPlatform/genai-product-catalog/media"
)

const defaultTimeout = 60 * time.Second

var _ media.Store = (*Store)(nil)

// Store saves temporary media objects in a COS bucket.
type Store struct {
	client    *cos.Client
	bucketURL string
}

// Option configures the store.
type Option func(*options)

type options struct {
	httpClient *http.Client
	timeout    time.Duration
	secretID   string
	secretKey  string
}

// WithTimeout sets the timeout duration for storage requests.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithSecretID sets the COS secret ID for authentication.
func WithSecretID(secretID string) Option {
	return func(o *options) {
		o.secretID = secretID
	}
}

// WithSecretKey sets the COS secret key for authentication.
func WithSecretKey(secretKey string) Option {
	return func(o *options) {
		o.secretKey = secretKey
	}
}

// WithHTTPClient sets the HTTP client used for storage requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// New creates a store for the given bucket URL
// (https://bucket.cos.region.myqcloud.com).
func New(bucketURL string, opts ...Option) (*Store, error) {
	o := &options{
		timeout:   defaultTimeout,
		secretID:  os.Getenv("COS_SECRETID"),
		secretKey: os.Getenv("COS_SECRETKEY"),
	}
	for _, opt := range opts {
		opt(o)
	}

	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("parse bucket URL: %w", err)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: o.timeout,
			Transport: &cos.AuthorizationTransport{
				SecretID:  o.secretID,
				SecretKey: o.secretKey,
			},
		}
	}

	return &Store{
		client:    cos.NewClient(&cos.BaseURL{BucketURL: u}, httpClient),
		bucketURL: strings.TrimSuffix(bucketURL, "/"),
	}, nil
}

// Save uploads the object and returns its bucket URI.
func (s *Store) Save(ctx context.Context, name, mimeType string, data []byte) (string, error) {
	opt := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{
			ContentType: mimeType,
		},
	}
	if _, err := s.client.Object.Put(ctx, name, bytes.NewReader(data), opt); err != nil {
		return "", fmt.Errorf("upload media object %s: %w", name, err)
	}
	return s.bucketURL + "/" + name, nil
}

// Delete removes the object behind a URI returned by Save. Missing objects
// are not an error.
func (s *Store) Delete(ctx context.Context, uri string) error {
	name := uri[strings.LastIndexByte(uri, '/')+1:]
	if _, err := s.client.Object.Delete(ctx, name); err != nil && !cos.IsNotFoundError(err) {
		return fmt.Errorf("delete media object %s: %w", name, err)
	}
	return nil
}
