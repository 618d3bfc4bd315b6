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

// Command server runs the catalog assistant API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoogleCloudPlatform/genai-product-catalog/gemini"
	"github.com/GoogleCloudPlatform/genai-product-catalog/log"
	"github.com/GoogleCloudPlatform/genai-product-catalog/media"
	"github.com/GoogleCloudPlatform/genai-product-catalog/media/cos"
	"github.com/GoogleCloudPlatform/genai-product-catalog/media/inmemory"
	"github.com/GoogleCloudPlatform/genai-product-catalog/model"
	"github.com/GoogleCloudPlatform/genai-product-catalog/persist/firestore"
	"github.com/GoogleCloudPlatform/genai-product-catalog/server"
	"github.com/GoogleCloudPlatform/genai-product-catalog/session"
	googlespeech "github.com/GoogleCloudPlatform/genai-product-catalog/speech/google"
	"github.com/GoogleCloudPlatform/genai-product-catalog/telemetry"
	"github.com/GoogleCloudPlatform/genai-product-catalog/workflow"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		clean, err := telemetry.Start(ctx, telemetry.WithEndpoint(endpoint))
		if err != nil {
			log.Warnf("telemetry disabled: %v", err)
		} else {
			defer func() {
				if err := clean(); err != nil {
					log.Warnf("telemetry shutdown: %v", err)
				}
			}()
		}
	}

	registry := session.NewRegistry(handleFactory, registryOptions(ctx)...)
	registry.StartSweeper(ctx)

	store := mediaStore()
	opts := serverOptions(ctx, store)
	srv, err := server.New(registry, store, opts...)
	if err != nil {
		log.Fatalf("create server: %v", err)
	}
	defer srv.Close()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warnf("server shutdown: %v", err)
		}
	}()

	log.Infof("server listening on http://localhost:%s", port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server: %v", err)
	}
}

// handleFactory builds the model handle set for one session configuration.
// Every registration write gets a fresh client bound to the session's own
// credential.
func handleFactory(cfg model.GenerativeConfig) (session.Handles, error) {
	apiKey := cfg.GenAIToken
	if apiKey == "" {
		apiKey = os.Getenv("GENAI_API_KEY")
	}
	client, err := gemini.NewClient(context.Background(), apiKey)
	if err != nil {
		return session.Handles{}, err
	}
	plain, grounded := client.Handles(cfg)
	return session.Handles{Model: plain, GroundedModel: grounded, Images: client}, nil
}

// registryOptions attaches the configuration store when Firestore is
// configured.
func registryOptions(ctx context.Context) []session.Option {
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		return nil
	}
	collection := os.Getenv("FIRESTORE_COLLECTION")
	if collection == "" {
		collection = "sessions"
	}
	store, err := firestore.New(ctx, projectID, os.Getenv("FIRESTORE_DATABASE"), collection)
	if err != nil {
		log.Warnf("configuration persistence disabled: %v", err)
		return nil
	}
	return []session.Option{session.WithStore(store)}
}

// mediaStore selects object storage for temporary uploads: COS when a
// bucket is configured, process memory otherwise.
func mediaStore() media.Store {
	bucketURL := os.Getenv("STORAGE_BUCKET_URL")
	if bucketURL == "" {
		log.Infof("no storage bucket configured, keeping media uploads in memory")
		return inmemory.New()
	}
	store, err := cos.New(bucketURL)
	if err != nil {
		log.Warnf("object storage unavailable, keeping media uploads in memory: %v", err)
		return inmemory.New()
	}
	return store
}

// serverOptions wires the voice workflow when speech recognition is
// available.
func serverOptions(ctx context.Context, store media.Store) []server.Option {
	recognizer, err := googlespeech.New(ctx)
	if err != nil {
		log.Warnf("speech recognition disabled: %v", err)
		return nil
	}
	return []server.Option{server.WithVoice(workflow.NewVoice(store, recognizer))}
}
