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

// Package server exposes the catalog assistant over HTTP: session
// registration, the prompt endpoints, the linear video pipeline and the two
// SSE streams.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"google.golang.org/genai"

	"github.com/GoogleCloudPlatform/genai-product-catalog/gemini"
	"github.com/GoogleCloudPlatform/genai-product-catalog/log"
	"github.com/GoogleCloudPlatform/genai-product-catalog/media"
	"github.com/GoogleCloudPlatform/genai-product-catalog/prompt"
	"github.com/GoogleCloudPlatform/genai-product-catalog/session"
	"github.com/GoogleCloudPlatform/genai-product-catalog/workflow"
)

// serviceName and serviceVersion identify the API on the default routes.
const (
	serviceName    = "genai-product-catalog"
	serviceVersion = "1.0.0"
)

// Server routes catalog assistant requests to the session registry and the
// workflow implementations.
type Server struct {
	router   *mux.Router
	sessions *session.Registry
	video    *workflow.VideoPipeline
	voice    *workflow.Voice
	batch    *workflow.Batch
}

// Option customizes the server.
type Option func(*Server)

// WithVoice installs the voice workflow. Without it the audio and voice
// endpoints report that transcription is not configured.
func WithVoice(v *workflow.Voice) Option {
	return func(s *Server) { s.voice = v }
}

// New wires the HTTP surface. The media store backs the video pipeline; the
// batch workflow owns its worker pool until Close.
func New(sessions *session.Registry, store media.Store, opts ...Option) (*Server, error) {
	batch, err := workflow.NewBatch()
	if err != nil {
		return nil, err
	}
	s := &Server{
		router:   mux.NewRouter(),
		sessions: sessions,
		video:    workflow.NewVideoPipeline(store),
		batch:    batch,
	}
	for _, opt := range opts {
		opt(s)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"*"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s, nil
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

// Close releases the batch worker pool.
func (s *Server) Close() {
	s.batch.Release()
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/", s.handleDefault).Methods(http.MethodGet)
	s.router.HandleFunc("/api", s.handleDefault).Methods(http.MethodGet)

	s.router.HandleFunc("/api/registration", s.handleRegistration).Methods(http.MethodPost)
	s.router.HandleFunc("/api/text", s.handleText).Methods(http.MethodPost)
	s.router.HandleFunc("/api/images", s.handleImages).Methods(http.MethodPost)
	s.router.HandleFunc("/api/audio", s.handleAudio).Methods(http.MethodPost)
	s.router.HandleFunc("/api/voice", s.handleVoiceStream).Methods(http.MethodPost)
	s.router.HandleFunc("/api/video", s.handleVideo).Methods(http.MethodPost)
	s.router.HandleFunc("/api/batch", s.handleBatchSeed).Methods(http.MethodGet)
	s.router.HandleFunc("/api/batch/stream", s.handleBatchStream).Methods(http.MethodPost)
}

// ---- Response helpers ---------------------------------------------------

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("server: marshal response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, ErrorResponse{Error: message})
}

// respondWithText sends model output verbatim. The normalized text is
// already JSON (or a sentinel the clients understand), so the content type
// stays application/json.
func respondWithText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, text)
}

// failedDependency is the uniform absent-session reply. Resolution misses
// are a normal outcome, not an error.
func failedDependency(w http.ResponseWriter) {
	respondWithJSON(w, http.StatusFailedDependency,
		ErrorResponse{Code: codeSessionNotFound, Error: "failed to find session"})
}

func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// ---- Handlers -----------------------------------------------------------

func (s *Server) handleDefault(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, ServiceInfo{Name: serviceName, Version: serviceVersion})
}

func (s *Server) handleRegistration(w http.ResponseWriter, r *http.Request) {
	var req ConfigurationRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, status, err := s.sessions.Register(r.Context(), req.SessionID, req.Config)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	httpStatus := http.StatusCreated
	if status == session.StatusUpdated {
		httpStatus = http.StatusAccepted
	}
	respondWithJSON(w, httpStatus, ConfigurationResponse{SessionID: id, Message: string(status)})
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	var req TextPromptRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, ok := s.sessions.Resolve(req.SessionID)
	if !ok {
		failedDependency(w)
		return
	}

	text, err := sess.GroundedModel.Invoke(r.Context(), prompt.Chat(req.Prompt, req.Value))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithText(w, http.StatusOK, text)
}

func (s *Server) handleImages(w http.ResponseWriter, r *http.Request) {
	var req ImagePromptRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, ok := s.sessions.Resolve(req.SessionID)
	if !ok {
		failedDependency(w)
		return
	}

	parts := make([]*genai.Part, 0, len(req.Value))
	for _, image := range req.Value {
		data, err := media.DecodeDataURL(image.Base64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		parts = append(parts, gemini.InlineData(data, image.Type))
	}

	text, err := sess.Model.Invoke(r.Context(), req.Prompt, parts...)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithText(w, http.StatusOK, text)
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	var req AudioPromptRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, ok := s.sessions.Resolve(req.SessionID)
	if !ok {
		failedDependency(w)
		return
	}
	if s.voice == nil {
		respondWithError(w, http.StatusServiceUnavailable, "transcription is not configured")
		return
	}

	result, err := s.voice.Respond(r.Context(), sess, workflow.VoiceRequest{
		MIMEType:    req.Type,
		DataURL:     req.Value,
		ProductData: req.Prompt,
	})
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, AudioPromptResponse(result))
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	var req VideoPromptRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, ok := s.sessions.Resolve(req.SessionID)
	if !ok {
		failedDependency(w)
		return
	}

	text, err := s.video.Run(r.Context(), sess, workflow.VideoRequest{
		MIMEType:            media.CleanMIME(req.Type),
		DataURL:             req.Value,
		Prompt:              req.Prompt,
		CategoryPrompt:      req.CategoryPrompt,
		ProductDetailPrompt: req.ProductDetailPrompt,
	})
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithText(w, http.StatusOK, text)
}

func (s *Server) handleBatchSeed(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, seedProducts)
}

// ---- SSE ----------------------------------------------------------------

func streamEvents(w http.ResponseWriter, r *http.Request, events <-chan workflow.Event) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			log.Errorf("server: marshal SSE event: %v", err)
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}

func (s *Server) handleVoiceStream(w http.ResponseWriter, r *http.Request) {
	var req AudioPromptRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, ok := s.sessions.Resolve(req.SessionID)
	if !ok {
		failedDependency(w)
		return
	}
	if s.voice == nil {
		respondWithError(w, http.StatusServiceUnavailable, "transcription is not configured")
		return
	}

	events := s.voice.Stream(r.Context(), sess, workflow.VoiceRequest{
		MIMEType:    req.Type,
		DataURL:     req.Value,
		ProductData: req.Prompt,
	})
	streamEvents(w, r, events)
}

func (s *Server) handleBatchStream(w http.ResponseWriter, r *http.Request) {
	var req BatchPromptRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, ok := s.sessions.Resolve(req.SessionID)
	if !ok {
		failedDependency(w)
		return
	}

	events := s.batch.Run(r.Context(), sess, req.Values)
	streamEvents(w, r, events)
}
